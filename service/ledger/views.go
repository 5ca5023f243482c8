package ledger

import (
	"context"

	"lending/core"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/holiman/uint256"
)

// Pool current pool state, accrued to now without persisting anything
func (s *service) Pool(ctx context.Context, token string) (*core.Pool, error) {
	var out *core.Pool
	err := s.view(ctx, func(ctx context.Context, tx *txn) error {
		p, err := tx.pool(token)
		if err != nil {
			return err
		}

		if err := s.sync(ctx, tx, p); err != nil {
			return err
		}

		out = p.Clone()
		return nil
	})

	return out, err
}

func (s *service) Pools(ctx context.Context) ([]*core.Pool, error) {
	var out []*core.Pool
	err := s.view(ctx, func(ctx context.Context, tx *txn) error {
		out = make([]*core.Pool, 0, len(s.tokens))
		for _, token := range s.tokens {
			p, err := tx.pool(token)
			if err != nil {
				return err
			}

			if err := s.sync(ctx, tx, p); err != nil {
				return err
			}

			out = append(out, p.Clone())
		}

		return nil
	})

	return out, err
}

func (s *service) Position(ctx context.Context, pid core.PositionID) (*core.Position, error) {
	var out *core.Position
	err := s.view(ctx, func(ctx context.Context, tx *txn) error {
		if pos, ok := s.positions[pid]; ok {
			out = pos.Clone()
		} else {
			out = core.NewPosition(pid)
		}
		return nil
	})

	return out, err
}

// IsLocked reports whether the position is restricted by the admin
func (s *service) IsLocked(ctx context.Context, pid core.PositionID) (bool, error) {
	var locked bool
	err := s.view(ctx, func(ctx context.Context, tx *txn) error {
		locked = s.locked[pid]
		return nil
	})

	return locked, err
}

func (s *service) Lending(ctx context.Context, pid core.PositionID, token string) (*core.LendingEntry, error) {
	pos, err := s.Position(ctx, pid)
	if err != nil {
		return nil, err
	}

	if e, ok := pos.Lending[token]; ok {
		return e, nil
	}

	return &core.LendingEntry{Shares: number.Zero()}, nil
}

func (s *service) Borrowing(ctx context.Context, pid core.PositionID, token string) (*core.BorrowEntry, error) {
	pos, err := s.Position(ctx, pid)
	if err != nil {
		return nil, err
	}

	return &core.BorrowEntry{Shares: pos.BorrowShares(token)}, nil
}

func (s *service) PureCollateral(ctx context.Context, pid core.PositionID, token string) (*uint256.Int, error) {
	pos, err := s.Position(ctx, pid)
	if err != nil {
		return nil, err
	}

	return pos.PureCollateralOf(token), nil
}

func (s *service) LendingTokens(ctx context.Context, pid core.PositionID) ([]string, error) {
	pos, err := s.Position(ctx, pid)
	if err != nil {
		return nil, err
	}

	return pos.LendingTokens.Items(), nil
}

func (s *service) BorrowTokens(ctx context.Context, pid core.PositionID) ([]string, error) {
	pos, err := s.Position(ctx, pid)
	if err != nil {
		return nil, err
	}

	return pos.BorrowTokens.Items(), nil
}

func (s *service) Utilization(ctx context.Context, token string) (*uint256.Int, error) {
	p, err := s.Pool(ctx, token)
	if err != nil {
		return nil, err
	}

	return p.Utilization, nil
}

func (s *service) BorrowRate(ctx context.Context, token string) (*uint256.Int, error) {
	p, err := s.Pool(ctx, token)
	if err != nil {
		return nil, err
	}

	return p.BorrowRate, nil
}

func (s *service) DepositRate(ctx context.Context, token string) (*uint256.Int, error) {
	p, err := s.Pool(ctx, token)
	if err != nil {
		return nil, err
	}

	return pool.DepositRate(p)
}

func (s *service) Curve(ctx context.Context, token string) (*core.RateCurve, error) {
	p, err := s.Pool(ctx, token)
	if err != nil {
		return nil, err
	}

	return &p.Curve, nil
}

// positionView runs fn on a position whose pools are accrued to now
func (s *service) positionView(ctx context.Context, pid core.PositionID, fn func(ctx context.Context, tx *txn, pos *core.Position) (*uint256.Int, error)) (*uint256.Int, error) {
	var out *uint256.Int
	err := s.view(ctx, func(ctx context.Context, tx *txn) error {
		pos, ok := s.positions[pid]
		if !ok {
			out = number.Zero()
			return nil
		}

		if err := s.syncPosition(ctx, tx, pos); err != nil {
			return err
		}

		var err error
		out, err = fn(ctx, tx, pos)
		return err
	})

	return out, err
}

func (s *service) CollateralValue(ctx context.Context, pid core.PositionID) (*uint256.Int, error) {
	return s.positionView(ctx, pid, s.collateralValue)
}

func (s *service) BorrowValue(ctx context.Context, pid core.PositionID) (*uint256.Int, error) {
	return s.positionView(ctx, pid, s.borrowValue)
}

func (s *service) DebtRatio(ctx context.Context, pid core.PositionID) (*uint256.Int, error) {
	return s.positionView(ctx, pid, s.debtRatio)
}
