package ledger

import (
	"context"

	"lending/core"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/holiman/uint256"
)

var maxRatio = new(uint256.Int).SetAllOne()

func (s *service) fresh(ctx context.Context, token string) error {
	stale, err := s.oracle.IsStale(ctx, token)
	if err != nil {
		return err
	}

	if stale {
		return core.ErrStalePrice
	}

	return nil
}

// price reference value of amount, refusing stale prices
func (s *service) price(ctx context.Context, token string, amount *uint256.Int) (*uint256.Int, error) {
	if err := s.fresh(ctx, token); err != nil {
		return nil, err
	}

	if amount.IsZero() {
		return number.Zero(), nil
	}

	return s.oracle.Value(ctx, token, amount)
}

// collateralAmount raw tokens of token backing the position: withdrawable
// deposits flagged as collateral plus pure collateral
func collateralAmount(p *core.Pool, pos *core.Position, token string) (*uint256.Int, error) {
	amount := pos.PureCollateralOf(token)
	if e, ok := pos.Lending[token]; ok && e.Collateral {
		withdrawable, err := pool.AmountForWithdrawShares(p, e.Shares)
		if err != nil {
			return nil, err
		}

		if amount, err = number.Add(amount, withdrawable); err != nil {
			return nil, err
		}
	}

	return amount, nil
}

func (s *service) collateralValue(ctx context.Context, tx *txn, pos *core.Position) (*uint256.Int, error) {
	total := number.Zero()
	for _, token := range pos.LendingTokens.Items() {
		p, err := tx.pool(token)
		if err != nil {
			return nil, err
		}

		amount, err := collateralAmount(p, pos, token)
		if err != nil {
			return nil, err
		}

		if amount.IsZero() {
			continue
		}

		value, err := s.price(ctx, token, amount)
		if err != nil {
			return nil, err
		}

		weighted, err := number.WadMul(value, p.CollateralFactor)
		if err != nil {
			return nil, err
		}

		if total, err = number.Add(total, weighted); err != nil {
			return nil, err
		}
	}

	return total, nil
}

func (s *service) borrowValue(ctx context.Context, tx *txn, pos *core.Position) (*uint256.Int, error) {
	total := number.Zero()
	for _, token := range pos.BorrowTokens.Items() {
		p, err := tx.pool(token)
		if err != nil {
			return nil, err
		}

		amount, err := pool.AmountForPayback(p, pos.BorrowShares(token))
		if err != nil {
			return nil, err
		}

		value, err := s.price(ctx, token, amount)
		if err != nil {
			return nil, err
		}

		if total, err = number.Add(total, value); err != nil {
			return nil, err
		}
	}

	return total, nil
}

// debtRatio borrow value over weighted collateral value, rounded up.
// Debt without collateral is the largest ratio, no debt is zero.
func (s *service) debtRatio(ctx context.Context, tx *txn, pos *core.Position) (*uint256.Int, error) {
	borrowed, err := s.borrowValue(ctx, tx, pos)
	if err != nil {
		return nil, err
	}

	if borrowed.IsZero() {
		return number.Zero(), nil
	}

	collateral, err := s.collateralValue(ctx, tx, pos)
	if err != nil {
		return nil, err
	}

	if collateral.IsZero() {
		return maxRatio.Clone(), nil
	}

	ratio, err := number.WadDivUp(borrowed, collateral)
	if err == number.ErrOverflow {
		return maxRatio.Clone(), nil
	}

	return ratio, err
}

// checkSolvency syncs every pool of the position and rejects a debt ratio
// above the maximum
func (s *service) checkSolvency(ctx context.Context, tx *txn, pos *core.Position) error {
	if pos.BorrowTokens.Len() == 0 {
		return nil
	}

	if err := s.syncPosition(ctx, tx, pos); err != nil {
		return err
	}

	ratio, err := s.debtRatio(ctx, tx, pos)
	if err != nil {
		return err
	}

	if ratio.Gt(s.cfg.MaxDebtRatio) {
		return core.ErrResultsInBadDebt
	}

	return nil
}
