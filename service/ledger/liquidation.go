package ledger

import (
	"context"

	"lending/core"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// receiveAmount collateral tokens owed to the liquidator for paying amount of
// the borrow token, incentive included
func (s *service) receiveAmount(ctx context.Context, borrowToken, collateralToken string, amount *uint256.Int) (*uint256.Int, error) {
	bonus, err := number.Add(number.Wad(), s.cfg.LiquidationIncentive)
	if err != nil {
		return nil, err
	}

	if borrowToken == collateralToken {
		return number.WadMul(amount, bonus)
	}

	value, err := s.price(ctx, borrowToken, amount)
	if err != nil {
		return nil, err
	}

	if value, err = number.WadMul(value, bonus); err != nil {
		return nil, err
	}

	if err := s.fresh(ctx, collateralToken); err != nil {
		return nil, err
	}

	return s.oracle.AmountForValue(ctx, collateralToken, value)
}

// seize moves up to amount of collateralToken from target to liquidator,
// deposit shares first and pure collateral after
func seize(p *core.Pool, target, liquidator *core.Position, amount *uint256.Int, out *core.Liquidation) error {
	out.ReceivedShares = number.Zero()
	out.ReceivedPureCollateral = number.Zero()
	out.ReceivedAmount = number.Zero()

	token := p.Token
	remaining := amount.Clone()

	if e, ok := target.Lending[token]; ok && e.Collateral && !p.PseudoTotalPool.IsZero() {
		want, err := number.MulDivDown(remaining, p.TotalDepositShares, p.PseudoTotalPool)
		if err != nil {
			return err
		}

		shares := number.Min(want, e.Shares)
		value, err := pool.AmountForWithdrawShares(p, shares)
		if err != nil {
			return err
		}

		held, err := number.Add(liquidator.LendingShares(token), shares)
		if err != nil {
			return err
		}

		target.SetLendingShares(token, new(uint256.Int).Sub(e.Shares, shares))
		liquidator.SetLendingShares(token, held)

		out.ReceivedShares = shares
		out.ReceivedAmount = value
		remaining = number.SubFloor(remaining, value)
	}

	if pure := target.PureCollateralOf(token); !remaining.IsZero() && !pure.IsZero() {
		moved := number.Min(remaining, pure)
		held, err := number.Add(liquidator.PureCollateralOf(token), moved)
		if err != nil {
			return err
		}

		target.SetPureCollateral(token, new(uint256.Int).Sub(pure, moved))
		liquidator.SetPureCollateral(token, held)

		out.ReceivedPureCollateral = moved
		if out.ReceivedAmount, err = number.Add(out.ReceivedAmount, moved); err != nil {
			return err
		}
	}

	if out.ReceivedAmount.IsZero() {
		return core.ErrInvalidAction
	}

	return nil
}

func (s *service) LiquidatePartiallyFromTokens(
	ctx context.Context,
	caller string,
	target, liquidator core.PositionID,
	borrowToken, collateralToken string,
	shares *uint256.Int,
) (*core.Liquidation, error) {
	f := logrus.Fields{
		"target":           uint64(target),
		"liquidator":       uint64(liquidator),
		"borrow_token":     borrowToken,
		"collateral_token": collateralToken,
	}
	if shares != nil {
		f["shares"] = shares.Dec()
	}

	out := &core.Liquidation{}
	err := s.mutate(ctx, "liquidate", f, func(ctx context.Context, tx *txn) error {
		if err := positive(shares); err != nil {
			return err
		}

		if target == liquidator || target.Reserved() {
			return core.ErrInvalidAction
		}

		if err := s.checkOwner(ctx, caller, liquidator); err != nil {
			return err
		}

		if _, err := s.registry.OwnerOf(ctx, target); err != nil {
			return err
		}

		bp, err := tx.pool(borrowToken)
		if err != nil {
			return err
		}

		cp, err := tx.pool(collateralToken)
		if err != nil {
			return err
		}

		victim := tx.position(target)
		if err := s.syncPosition(ctx, tx, victim); err != nil {
			return err
		}

		// pools the target has no entries in yet
		for _, p := range []*core.Pool{bp, cp} {
			if err := s.sync(ctx, tx, p); err != nil {
				return err
			}
		}

		if out.DebtRatioBefore, err = s.debtRatio(ctx, tx, victim); err != nil {
			return err
		}

		if !out.DebtRatioBefore.Gt(s.cfg.MaxDebtRatio) {
			return core.ErrNotLiquidatable
		}

		held := victim.BorrowShares(borrowToken)
		if held.IsZero() {
			return core.ErrInsufficientShares
		}

		limit, err := number.WadMul(held, s.cfg.CloseFactor)
		if err != nil {
			return err
		}

		out.PaidShares = number.Min(number.Min(shares, limit), held)
		if out.PaidShares.IsZero() {
			return core.ErrInvalidAction
		}

		if out.PaidAmount, err = pool.AmountForPayback(bp, out.PaidShares); err != nil {
			return err
		}

		if err := repay(bp, victim, out.PaidAmount, out.PaidShares); err != nil {
			return err
		}

		receive, err := s.receiveAmount(ctx, borrowToken, collateralToken, out.PaidAmount)
		if err != nil {
			return err
		}

		if err := seize(cp, victim, tx.position(liquidator), receive, out); err != nil {
			return err
		}

		tx.pull(caller, borrowToken, out.PaidAmount)

		for _, p := range []*core.Pool{bp, cp} {
			if err := s.reprice(ctx, p); err != nil {
				return err
			}
		}

		if out.DebtRatioAfter, err = s.debtRatio(ctx, tx, victim); err != nil {
			return err
		}

		if !out.DebtRatioAfter.Lt(out.DebtRatioBefore) {
			return core.ErrLiquidationNoImprovement
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}
