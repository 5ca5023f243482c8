package ledger

import (
	"context"

	"lending/core"
	"lending/pkg/lasa"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

func validatePoolParams(params core.PoolParams) error {
	if params.Token == "" {
		return core.ErrInvalidAction
	}

	for _, v := range []*uint256.Int{params.PoolFee, params.CollateralFactor, params.MaxDepositAmount, params.MultiplicativeFactor} {
		if v == nil {
			return core.ErrInvalidAction
		}
	}

	if params.MaxDepositAmount.IsZero() || params.MultiplicativeFactor.IsZero() {
		return core.ErrInvalidAction
	}

	if params.PoolFee.Gt(number.Wad()) || params.CollateralFactor.Gt(number.Wad()) {
		return core.ErrInvalidAction
	}

	return nil
}

func (s *service) CreatePool(ctx context.Context, caller string, params core.PoolParams) (*core.Pool, error) {
	var created *core.Pool
	err := s.mutate(ctx, "create_pool", logrus.Fields{"token": params.Token}, func(ctx context.Context, tx *txn) error {
		if !s.isAdmin(caller) {
			return core.ErrOperationForbidden
		}

		if err := validatePoolParams(params); err != nil {
			return err
		}

		if _, ok := s.pools[params.Token]; ok {
			return core.ErrPoolExists
		}

		curve, err := lasa.Init(params.MultiplicativeFactor)
		if err != nil {
			return err
		}

		p := pool.New(params)
		p.Curve = curve
		p.LastSyncTimestamp = s.now()
		p.TimeStampScaling = p.LastSyncTimestamp
		tx.addPool(p)

		created = p.Clone()
		return nil
	})

	if err != nil {
		return nil, err
	}

	return created, nil
}

// updateCurve syncs the pool at the old curve, applies fn and reprices
func (s *service) updateCurve(ctx context.Context, op string, caller, token string, fn func(p *core.Pool) error) error {
	return s.mutate(ctx, op, logrus.Fields{"token": token}, func(ctx context.Context, tx *txn) error {
		if !s.isAdmin(caller) {
			return core.ErrOperationForbidden
		}

		p, err := tx.pool(token)
		if err != nil {
			return err
		}

		if err := s.sync(ctx, tx, p); err != nil {
			return err
		}

		if err := fn(p); err != nil {
			return err
		}

		rate, err := lasa.BorrowRate(&p.Curve, p.Utilization)
		if err != nil {
			return err
		}

		p.BorrowRate = rate
		return nil
	})
}

func (s *service) LockCurve(ctx context.Context, caller string, token string) error {
	return s.updateCurve(ctx, "lock_curve", caller, token, func(p *core.Pool) error {
		p.Curve.Lock = true
		return nil
	})
}

// UnlockCurve resumes adjustment, the next window starts now
func (s *service) UnlockCurve(ctx context.Context, caller string, token string) error {
	return s.updateCurve(ctx, "unlock_curve", caller, token, func(p *core.Pool) error {
		p.Curve.Lock = false
		p.TimeStampScaling = s.now()
		return nil
	})
}

// SetCurveParameters only applies to a locked curve
func (s *service) SetCurveParameters(ctx context.Context, caller string, token string, params core.CurveParams) error {
	return s.updateCurve(ctx, "set_curve_parameters", caller, token, func(p *core.Pool) error {
		if !p.Curve.Lock {
			return core.ErrInvalidAction
		}

		if params.MultiplicativeFactor != nil {
			if err := lasa.Reconfigure(&p.Curve, params.MultiplicativeFactor); err != nil {
				return err
			}
		}

		if params.Pole != nil {
			if params.Pole.Lt(p.Curve.MinPole) || params.Pole.Gt(p.Curve.MaxPole) {
				return core.ErrInvalidAction
			}

			p.Curve.Pole = params.Pole.Clone()
			p.Curve.BestPole = params.Pole.Clone()
		}

		return nil
	})
}

func (s *service) SetPositionLock(ctx context.Context, caller string, pid core.PositionID, locked bool) error {
	return s.mutate(ctx, "set_position_lock", logrus.Fields{"position": uint64(pid), "locked": locked}, func(ctx context.Context, tx *txn) error {
		if !s.isAdmin(caller) {
			return core.ErrOperationForbidden
		}

		if pid.Reserved() {
			return core.ErrInvalidAction
		}

		if locked {
			s.locked[pid] = true
		} else {
			delete(s.locked, pid)
		}

		return nil
	})
}

// CollectFees redeems every fee position share of token and pays the amount
// out to caller. The fee ledger is credited with what was paid.
func (s *service) CollectFees(ctx context.Context, caller string, token string) (*uint256.Int, error) {
	paid := number.Zero()
	err := s.mutate(ctx, "collect_fees", logrus.Fields{"token": token}, func(ctx context.Context, tx *txn) error {
		if !s.isAdmin(caller) {
			return core.ErrOperationForbidden
		}

		p, err := tx.pool(token)
		if err != nil {
			return err
		}

		if err := s.accrue(ctx, tx, p); err != nil {
			return err
		}

		if fp, ok := s.positions[core.FeePosition]; !ok || fp.LendingShares(token).IsZero() {
			return s.reprice(ctx, p)
		}

		fp := tx.position(core.FeePosition)
		shares := fp.LendingShares(token)
		if paid, err = pool.AmountForWithdrawShares(p, shares); err != nil {
			return err
		}

		if err := s.burnDeposit(p, fp, paid, shares); err != nil {
			return err
		}

		if err := s.reprice(ctx, p); err != nil {
			return err
		}

		if !paid.IsZero() {
			tx.push(caller, token, paid)
			tx.credit(token, paid)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return paid, nil
}
