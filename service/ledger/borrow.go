package ledger

import (
	"context"

	"lending/core"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/holiman/uint256"
)

// repay burns borrow shares against amount paid in. Payments above the
// outstanding pseudo borrow are dust and go to the lenders.
func repay(p *core.Pool, pos *core.Position, amount, shares *uint256.Int) error {
	held := pos.BorrowShares(p.Token)
	if shares.Gt(held) {
		return core.ErrInsufficientShares
	}

	var err error
	if p.TotalBorrowShares, err = number.Sub(p.TotalBorrowShares, shares); err != nil {
		return core.ErrInvariantViolation
	}

	if amount.Gt(p.PseudoTotalBorrowAmount) {
		dust := new(uint256.Int).Sub(amount, p.PseudoTotalBorrowAmount)
		if p.PseudoTotalPool, err = number.Add(p.PseudoTotalPool, dust); err != nil {
			return err
		}
		p.PseudoTotalBorrowAmount = number.Zero()
	} else {
		p.PseudoTotalBorrowAmount = new(uint256.Int).Sub(p.PseudoTotalBorrowAmount, amount)
	}

	p.TotalBorrowed = number.SubFloor(p.TotalBorrowed, amount)
	if p.TotalDeposited, err = number.Add(p.TotalDeposited, amount); err != nil {
		return err
	}

	pos.SetBorrowShares(p.Token, new(uint256.Int).Sub(held, shares))
	return nil
}

func (s *service) BorrowExactAmount(ctx context.Context, caller string, pid core.PositionID, token string, amount *uint256.Int) (*uint256.Int, error) {
	var minted *uint256.Int
	err := s.mutate(ctx, "borrow_exact_amount", fields(pid, token, amount), func(ctx context.Context, tx *txn) error {
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

		if amount.Gt(p.TotalDeposited) {
			return core.ErrInsufficientLiquidity
		}

		if minted, err = pool.SharesForBorrow(p, amount); err != nil {
			return err
		}

		if p.TotalBorrowShares, err = number.Add(p.TotalBorrowShares, minted); err != nil {
			return err
		}

		if p.PseudoTotalBorrowAmount, err = number.Add(p.PseudoTotalBorrowAmount, amount); err != nil {
			return err
		}

		if p.TotalBorrowed, err = number.Add(p.TotalBorrowed, amount); err != nil {
			return err
		}

		p.TotalDeposited = new(uint256.Int).Sub(p.TotalDeposited, amount)

		pos := tx.position(pid)
		held, err := number.Add(pos.BorrowShares(token), minted)
		if err != nil {
			return err
		}
		pos.SetBorrowShares(token, held)

		if err := s.reprice(ctx, p); err != nil {
			return err
		}

		if err := s.checkSolvency(ctx, tx, pos); err != nil {
			return err
		}

		tx.push(caller, token, amount)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return minted, nil
}

func (s *service) PaybackExactShares(ctx context.Context, caller string, pid core.PositionID, token string, shares *uint256.Int) (*uint256.Int, error) {
	var amount *uint256.Int
	err := s.mutate(ctx, "payback_exact_shares", fields(pid, token, shares), func(ctx context.Context, tx *txn) error {
		if err := positive(shares); err != nil {
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

		if amount, err = pool.AmountForPayback(p, shares); err != nil {
			return err
		}

		if err := repay(p, tx.position(pid), amount, shares); err != nil {
			return err
		}

		tx.pull(caller, token, amount)
		return s.reprice(ctx, p)
	})

	if err != nil {
		return nil, err
	}

	return amount, nil
}

func (s *service) PaybackExactAmount(ctx context.Context, caller string, pid core.PositionID, token string, amount *uint256.Int) (*uint256.Int, error) {
	var burned *uint256.Int
	err := s.mutate(ctx, "payback_exact_amount", fields(pid, token, amount), func(ctx context.Context, tx *txn) error {
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

		if burned, err = pool.SharesForPaybackAmount(p, amount); err != nil {
			return err
		}

		if burned.IsZero() {
			return core.ErrInvalidAction
		}

		if err := repay(p, tx.position(pid), amount, burned); err != nil {
			return err
		}

		tx.pull(caller, token, amount)
		return s.reprice(ctx, p)
	})

	if err != nil {
		return nil, err
	}

	return burned, nil
}
