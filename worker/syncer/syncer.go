package syncer

import (
	"context"
	"time"

	"lending/core"
	"lending/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/sirupsen/logrus"
)

const checkpointKey = "ledger_sync_checkpoint"

// Warmer preloads prices before a sync round
type Warmer interface {
	Warm(ctx context.Context, tokens []string)
}

// Syncer accrues every pool and persists the ledger
type Syncer struct {
	worker.BaseJob
	db        *db.DB
	ledger    core.LedgerService
	oracle    Warmer
	pools     core.IPoolStore
	positions core.IPositionStore
	property  property.Store
	clock     core.Clock
}

// New new sync worker
func New(
	location, spec string,
	database *db.DB,
	ledger core.LedgerService,
	oracle Warmer,
	pools core.IPoolStore,
	positions core.IPositionStore,
	property property.Store,
	clock core.Clock,
) (*Syncer, error) {
	syncer := Syncer{
		db:        database,
		ledger:    ledger,
		oracle:    oracle,
		pools:     pools,
		positions: positions,
		property:  property,
		clock:     clock,
	}

	syncer.Cron = worker.NewCron(location)
	if _, err := syncer.Cron.AddFunc(spec, syncer.Run); err != nil {
		return nil, err
	}

	syncer.OnWork = func() error {
		return syncer.onWork(context.Background())
	}

	return &syncer, nil
}

// Checkpoint time of the last persisted snapshot
func (w *Syncer) Checkpoint(ctx context.Context) (time.Time, error) {
	v, err := w.property.Get(ctx, checkpointKey)
	if err != nil {
		return time.Time{}, err
	}

	return v.Time(), nil
}

func (w *Syncer) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "syncer")
	ctx = logger.WithContext(ctx, log)

	pools, err := w.ledger.Pools(ctx)
	if err != nil {
		log.WithError(err).Errorln("ledger.Pools")
		return err
	}

	tokens := make([]string, 0, len(pools))
	for _, p := range pools {
		tokens = append(tokens, p.Token)
	}

	w.oracle.Warm(ctx, tokens)

	for _, token := range tokens {
		if err := w.ledger.SyncManually(ctx, token); err != nil {
			log.WithError(err).WithField("token", token).Errorln("ledger.SyncManually")
		}
	}

	return w.persist(ctx)
}

func (w *Syncer) persist(ctx context.Context) error {
	log := logger.FromContext(ctx)

	snapshot, err := w.ledger.Snapshot(ctx)
	if err != nil {
		log.WithError(err).Errorln("ledger.Snapshot")
		return err
	}

	if err := w.db.Tx(func(tx *db.DB) error {
		if err := w.pools.Save(ctx, tx, snapshot.Pools); err != nil {
			return err
		}

		return w.positions.Save(ctx, tx, snapshot.Positions, snapshot.Locked)
	}); err != nil {
		log.WithError(err).Errorln("persist snapshot")
		return err
	}

	now := w.clock.Now()
	if err := w.property.Save(ctx, checkpointKey, now); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
		return err
	}

	log.WithFields(logrus.Fields{
		"pools":     len(snapshot.Pools),
		"positions": len(snapshot.Positions),
	}).Debugln("snapshot persisted")
	return nil
}

// Flush persists the current ledger right away
func (w *Syncer) Flush(ctx context.Context) error {
	return w.persist(ctx)
}
