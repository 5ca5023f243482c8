package ledger

import (
	"context"

	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

func (s *service) setCollateral(ctx context.Context, caller string, pid core.PositionID, token string, on bool) error {
	op := "collateralize_deposit"
	if !on {
		op = "uncollateralize_deposit"
	}

	return s.mutate(ctx, op, fields(pid, token, nil), func(ctx context.Context, tx *txn) error {
		if err := s.checkOwner(ctx, caller, pid); err != nil {
			return err
		}

		if _, err := tx.pool(token); err != nil {
			return err
		}

		pos := tx.position(pid)
		entry, ok := pos.Lending[token]
		if !ok {
			return core.ErrInvalidAction
		}

		if entry.Collateral == on {
			return nil
		}

		entry.Collateral = on
		if on {
			return nil
		}

		return s.checkSolvency(ctx, tx, pos)
	})
}

func (s *service) CollateralizeDeposit(ctx context.Context, caller string, pid core.PositionID, token string) error {
	return s.setCollateral(ctx, caller, pid, token, true)
}

func (s *service) UnCollateralizeDeposit(ctx context.Context, caller string, pid core.PositionID, token string) error {
	return s.setCollateral(ctx, caller, pid, token, false)
}

// SolelyDeposit books amount as pure collateral, outside the interest bearing pool
func (s *service) SolelyDeposit(ctx context.Context, caller string, pid core.PositionID, token string, amount *uint256.Int) error {
	return s.mutate(ctx, "solely_deposit", fields(pid, token, amount), func(ctx context.Context, tx *txn) error {
		if err := positive(amount); err != nil {
			return err
		}

		if _, err := s.checkPosition(ctx, pid); err != nil {
			return err
		}

		p, err := tx.pool(token)
		if err != nil {
			return err
		}

		if err := s.accrue(ctx, tx, p); err != nil {
			return err
		}

		held, err := number.Add(p.TotalDeposited, p.TotalPureCollateral)
		if err != nil {
			return err
		}

		if err := checkDepositCap(held, amount, p.MaxDepositAmount); err != nil {
			return err
		}

		if p.TotalPureCollateral, err = number.Add(p.TotalPureCollateral, amount); err != nil {
			return err
		}

		pos := tx.position(pid)
		pure, err := number.Add(pos.PureCollateralOf(token), amount)
		if err != nil {
			return err
		}
		pos.SetPureCollateral(token, pure)

		tx.pull(caller, token, amount)
		return s.reprice(ctx, p)
	})
}

// SolelyWithdraw releases pure collateral
func (s *service) SolelyWithdraw(ctx context.Context, caller string, pid core.PositionID, token string, amount *uint256.Int) error {
	return s.mutate(ctx, "solely_withdraw", fields(pid, token, amount), func(ctx context.Context, tx *txn) error {
		if err := positive(amount); err != nil {
			return err
		}

		if err := s.checkOwner(ctx, caller, pid); err != nil {
			return err
		}

		p, err := tx.pool(token)
		if err != nil {
			return err
		}

		if err := s.accrue(ctx, tx, p); err != nil {
			return err
		}

		pos := tx.position(pid)
		pure := pos.PureCollateralOf(token)
		if amount.Gt(pure) {
			return core.ErrInsufficientShares
		}

		if p.TotalPureCollateral, err = number.Sub(p.TotalPureCollateral, amount); err != nil {
			return core.ErrInvariantViolation
		}
		pos.SetPureCollateral(token, new(uint256.Int).Sub(pure, amount))

		if err := s.reprice(ctx, p); err != nil {
			return err
		}

		if err := s.checkSolvency(ctx, tx, pos); err != nil {
			return err
		}

		tx.push(caller, token, amount)
		return nil
	})
}
