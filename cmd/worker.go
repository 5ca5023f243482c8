package cmd

import (
	"context"
	"fmt"
	"net/http"

	"lending/handler"
	"lending/worker/syncer"

	"github.com/fox-one/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "lending ledger worker, syncs pools and persists the ledger",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx).WithField("cmd", "worker")
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		poolStore := providePoolStore(database)
		positionStore := providePositionStore(database)
		propertyStore := providePropertyStore(database)

		deps := provideLedgerDeps()
		ledger := provideLedger(deps)
		if err := bootLedger(ctx, ledger, deps, poolStore, positionStore); err != nil {
			log.WithError(err).Fatal("boot ledger")
		}

		job, err := syncer.New(cfg.App.Location, cfg.App.SyncInterval, database, ledger, deps.oracle, poolStore, positionStore, propertyStore, deps.clock)
		if err != nil {
			log.WithError(err).Fatal("create syncer")
		}

		if checkpoint, err := job.Checkpoint(ctx); err == nil && !checkpoint.IsZero() {
			log.Infoln("last checkpoint", checkpoint)
		}

		port, _ := cmd.Flags().GetInt("port")
		server := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newMux(handler.New(ledger, rootCmd.Version, probes(database), true)),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := job.Start(); err != nil {
				return err
			}

			<-ctx.Done()
			if err := job.Stop(); err != nil {
				return err
			}

			// persist whatever accrued since the last tick
			return job.Flush(context.Background())
		})

		g.Go(func() error {
			serve(ctx, server)
			return context.Canceled
		})

		if err := g.Wait(); err != nil && err != context.Canceled {
			logrus.WithError(err).Errorln("worker stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.Flags().IntP("port", "p", 9001, "api port")
}
