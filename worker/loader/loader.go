package loader

import (
	"context"

	"lending/core"
	"lending/worker"

	"github.com/fox-one/pkg/logger"
)

// Load restores the ledger from the stores. Nothing is restored while the
// stores are empty.
func Load(ctx context.Context, ledger core.LedgerService, pools core.IPoolStore, positions core.IPositionStore) (bool, error) {
	log := logger.FromContext(ctx).WithField("worker", "loader")

	ps, err := pools.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("pools.All")
		return false, err
	}

	if len(ps) == 0 {
		return false, nil
	}

	entries, locked, err := positions.All(ctx)
	if err != nil {
		log.WithError(err).Errorln("positions.All")
		return false, err
	}

	snapshot := &core.Snapshot{
		Pools:     ps,
		Positions: entries,
		Locked:    locked,
	}

	if err := ledger.Restore(ctx, snapshot); err != nil {
		log.WithError(err).Errorln("ledger.Restore")
		return false, err
	}

	log.Debugf("restored %d pools, %d positions", len(ps), len(entries))
	return true, nil
}

// Loader keeps a read replica of the ledger in step with the stores
type Loader struct {
	worker.BaseJob
	ledger    core.LedgerService
	pools     core.IPoolStore
	positions core.IPositionStore
}

// New new loader job
func New(
	location, spec string,
	ledger core.LedgerService,
	pools core.IPoolStore,
	positions core.IPositionStore,
) (*Loader, error) {
	job := Loader{
		ledger:    ledger,
		pools:     pools,
		positions: positions,
	}

	job.Cron = worker.NewCron(location)
	if _, err := job.Cron.AddFunc(spec, job.Run); err != nil {
		return nil, err
	}

	job.OnWork = func() error {
		_, err := Load(context.Background(), job.ledger, job.pools, job.positions)
		return err
	}

	return &job, nil
}
