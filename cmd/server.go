package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"lending/handler"
	"lending/handler/hc"
	"lending/worker/loader"

	"github.com/drone/signal"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run the read only lending api server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		poolStore := providePoolStore(database)
		positionStore := providePositionStore(database)

		deps := provideLedgerDeps()
		ledger := provideLedger(deps)

		// replica of the worker's ledger, refreshed from the stores
		if _, err := loader.Load(ctx, ledger, poolStore, positionStore); err != nil {
			logrus.WithError(err).Fatal("load ledger")
		}

		job, err := loader.New(cfg.App.Location, cfg.App.SyncInterval, ledger, poolStore, positionStore)
		if err != nil {
			logrus.WithError(err).Fatal("create loader")
		}

		if err := job.Start(); err != nil {
			logrus.WithError(err).Fatal("start loader")
		}
		defer job.Stop()

		port, _ := cmd.Flags().GetInt("port")
		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newMux(handler.New(ledger, rootCmd.Version, probes(database), true)),
		}

		serve(ctx, server)
	},
}

func newMux(s handler.Server) http.Handler {
	mux := chi.NewMux()
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(cors.AllowAll().Handler)
	mux.Use(logger.WithRequestID)
	mux.Use(middleware.Logger)
	mux.Use(middleware.NewCompressor(5).Handler)

	{
		// hc
		mux.Mount("/hc", s.HandleHealthCheck())
	}

	{
		// restful api
		mux.Mount("/", s.HandleRestAPI())
	}

	return mux
}

func probes(database *db.DB) map[string]hc.Probe {
	return map[string]hc.Probe{
		"db": func(ctx context.Context) error {
			return database.View().DB().PingContext(ctx)
		},
	}
}

// serve blocks until the server is closed by a termination signal
func serve(ctx context.Context, server *http.Server) {
	ctx, quit := context.WithCancel(ctx)
	done := make(chan struct{}, 1)
	signal.WithContextFunc(ctx, func() {
		quit()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("graceful shutdown server failed")
		}

		close(done)
	})

	logrus.Infoln("serve at", server.Addr)
	err := server.ListenAndServe()
	if err != http.ErrServerClosed {
		logrus.WithError(err).Fatal("server aborted")
	}

	<-done
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntP("port", "p", 9000, "server port")
}
