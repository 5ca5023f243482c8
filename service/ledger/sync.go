package ledger

import (
	"context"

	"lending/core"
	"lending/pkg/lasa"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/fox-one/pkg/logger"
	"github.com/sirupsen/logrus"
)

// accrue brings the pool totals to now at the stored borrow rate and mints the
// protocol fee to the fee position, CollectFees pays it out
func (s *service) accrue(ctx context.Context, tx *txn, p *core.Pool) error {
	acc, err := pool.Accrue(p, s.now())
	if err != nil {
		return err
	}

	if !acc.FeeShares.IsZero() {
		fp := tx.position(core.FeePosition)
		shares, err := number.Add(fp.LendingShares(p.Token), acc.FeeShares)
		if err != nil {
			return err
		}
		fp.SetLendingShares(p.Token, shares)
	}

	return nil
}

// reprice recomputes utilization, steps the rate curve when its window has
// passed and derives the new borrow rate
func (s *service) reprice(ctx context.Context, p *core.Pool) error {
	u, err := pool.Utilization(p)
	if err != nil {
		return err
	}
	p.Utilization = u

	value, err := lasa.Value(p.PseudoTotalBorrowAmount, p.BorrowRate)
	if err != nil {
		return err
	}

	now := s.now()
	var elapsed uint64
	if now > p.TimeStampScaling {
		elapsed = now - p.TimeStampScaling
	}

	tr, err := lasa.Adjust(&p.Curve, lasa.Observation{
		Value:         value,
		Utilization:   u,
		Elapsed:       elapsed,
		Window:        s.cfg.AdjustmentWindow,
		FlatTolerance: s.cfg.FlatTolerance,
	})
	if err != nil {
		return err
	}

	if tr != lasa.None {
		p.TimeStampScaling = now
		logger.FromContext(ctx).WithFields(logrus.Fields{
			"token":      p.Token,
			"transition": tr.String(),
			"pole":       p.Curve.Pole.Dec(),
		}).Debugln("rate curve adjusted")
	}

	rate, err := lasa.BorrowRate(&p.Curve, u)
	if err != nil {
		return err
	}
	p.BorrowRate = rate

	return pool.CheckInvariant(p)
}

// sync full accrual and repricing of one pool
func (s *service) sync(ctx context.Context, tx *txn, p *core.Pool) error {
	if err := s.accrue(ctx, tx, p); err != nil {
		return err
	}

	return s.reprice(ctx, p)
}

// syncPosition syncs every pool the position has entries in
func (s *service) syncPosition(ctx context.Context, tx *txn, pos *core.Position) error {
	for _, list := range []*core.TokenList{pos.LendingTokens, pos.BorrowTokens} {
		for _, token := range list.Items() {
			p, err := tx.pool(token)
			if err != nil {
				return err
			}

			if err := s.sync(ctx, tx, p); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *service) SyncManually(ctx context.Context, token string) error {
	return s.mutate(ctx, "sync", logrus.Fields{"token": token}, func(ctx context.Context, tx *txn) error {
		p, err := tx.pool(token)
		if err != nil {
			return err
		}

		return s.sync(ctx, tx, p)
	})
}
