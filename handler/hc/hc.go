package hc

import (
	"context"
	"net/http"
	"time"

	"lending/handler/render"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/twitchtv/twirp"
)

// Probe reports whether a dependency is usable
type Probe func(ctx context.Context) error

// Handle health check, every probe must pass
func Handle(ver string, probes map[string]Probe) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NoCache)
	r.Handle("/", handle(ver, probes))
	return r
}

func handle(version string, probes map[string]Probe) http.HandlerFunc {
	b := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		for name, probe := range probes {
			if err := probe(r.Context()); err != nil {
				render.Error(w, twirp.NewError(twirp.Unavailable, name+": "+err.Error()))
				return
			}
		}

		uptime := time.Since(b).Truncate(time.Millisecond)
		render.JSON(w, render.H{
			"uptime":  uptime.String(),
			"version": version,
		})
	}
}
