package handler

import (
	"net/http"

	"lending/core"
	"lending/handler/hc"
	"lending/handler/render"
	"lending/handler/rest"

	"github.com/go-chi/chi"
	"github.com/twitchtv/twirp"
)

// Server server
type Server struct {
	ledger  core.LedgerService
	version string
	probes  map[string]hc.Probe
	wrap    bool
}

// New new server function
func New(
	ledger core.LedgerService,
	version string,
	probes map[string]hc.Probe,
	wrap bool,
) Server {
	return Server{
		ledger:  ledger,
		version: version,
		probes:  probes,
		wrap:    wrap,
	}
}

// HandleHealthCheck handle hc
func (s Server) HandleHealthCheck() http.Handler {
	return hc.Handle(s.version, s.probes)
}

// HandleRestAPI handle restful apis
func (s Server) HandleRestAPI() http.Handler {
	r := chi.NewRouter()
	r.Use(resetRoutePath)
	r.Use(render.WrapResponse(s.wrap))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Error(w, twirp.NotFoundError("not found"))
	})

	r.Mount("/", rest.Handle(s.ledger))
	return r
}

func resetRoutePath(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if c := chi.RouteContext(ctx); c != nil {
			c.RoutePath = r.URL.Path
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
