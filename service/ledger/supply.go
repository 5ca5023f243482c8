package ledger

import (
	"context"

	"lending/core"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

func fields(pid core.PositionID, token string, v *uint256.Int) logrus.Fields {
	f := logrus.Fields{
		"position": uint64(pid),
		"token":    token,
	}
	if v != nil {
		f["value"] = v.Dec()
	}

	return f
}

// cleanup folds unaccounted custody tokens into the pool before new shares are priced
func (s *service) cleanup(ctx context.Context, p *core.Pool) error {
	balance, err := s.vault.Balance(ctx, p.Token)
	if err != nil {
		return err
	}

	_, err = pool.Reconcile(p, balance)
	return err
}

func checkDepositCap(deposited, amount, limit *uint256.Int) error {
	total, err := number.Add(deposited, amount)
	if err != nil {
		return err
	}

	if total.Gt(limit) {
		return core.ErrInvalidAction
	}

	return nil
}

// mintDeposit books amount in and shares out. On an empty pool the dead
// shares are carved out of shares and kept by the dead position.
func (s *service) mintDeposit(tx *txn, p *core.Pool, pos *core.Position, amount, shares *uint256.Int) (*uint256.Int, error) {
	minted := shares.Clone()
	if p.TotalDepositShares.IsZero() {
		if !minted.Gt(pool.DeadShares) {
			return nil, core.ErrInvalidAction
		}

		minted.Sub(minted, pool.DeadShares)
		tx.position(core.DeadPosition).SetLendingShares(p.Token, pool.DeadShares)
	}

	if minted.IsZero() {
		return nil, core.ErrInvalidAction
	}

	var err error
	if p.TotalDepositShares, err = number.Add(p.TotalDepositShares, shares); err != nil {
		return nil, err
	}

	if p.PseudoTotalPool, err = number.Add(p.PseudoTotalPool, amount); err != nil {
		return nil, err
	}

	if p.TotalDeposited, err = number.Add(p.TotalDeposited, amount); err != nil {
		return nil, err
	}

	held, err := number.Add(pos.LendingShares(p.Token), minted)
	if err != nil {
		return nil, err
	}
	pos.SetLendingShares(p.Token, held)

	return minted, nil
}

// burnDeposit books shares in and amount out
func (s *service) burnDeposit(p *core.Pool, pos *core.Position, amount, shares *uint256.Int) error {
	held := pos.LendingShares(p.Token)
	if shares.Gt(held) {
		return core.ErrInsufficientShares
	}

	if amount.Gt(p.TotalDeposited) {
		return core.ErrInsufficientLiquidity
	}

	var err error
	if p.TotalDepositShares, err = number.Sub(p.TotalDepositShares, shares); err != nil {
		return core.ErrInvariantViolation
	}

	if p.PseudoTotalPool, err = number.Sub(p.PseudoTotalPool, amount); err != nil {
		return core.ErrInvariantViolation
	}

	p.TotalDeposited = new(uint256.Int).Sub(p.TotalDeposited, amount)
	pos.SetLendingShares(p.Token, new(uint256.Int).Sub(held, shares))
	return nil
}

func (s *service) DepositExactAmount(ctx context.Context, caller string, pid core.PositionID, token string, amount *uint256.Int) (*uint256.Int, error) {
	var minted *uint256.Int
	err := s.mutate(ctx, "deposit_exact_amount", fields(pid, token, amount), func(ctx context.Context, tx *txn) error {
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

		if err := s.cleanup(ctx, p); err != nil {
			return err
		}

		if err := checkDepositCap(p.TotalDeposited, amount, p.MaxDepositAmount); err != nil {
			return err
		}

		shares, err := pool.SharesForDeposit(p, amount)
		if err != nil {
			return err
		}

		if minted, err = s.mintDeposit(tx, p, tx.position(pid), amount, shares); err != nil {
			return err
		}

		tx.pull(caller, token, amount)
		return s.reprice(ctx, p)
	})

	if err != nil {
		return nil, err
	}

	return minted, nil
}

func (s *service) DepositExactShares(ctx context.Context, caller string, pid core.PositionID, token string, shares *uint256.Int) (*uint256.Int, error) {
	var amount *uint256.Int
	err := s.mutate(ctx, "deposit_exact_shares", fields(pid, token, shares), func(ctx context.Context, tx *txn) error {
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

		if err := s.cleanup(ctx, p); err != nil {
			return err
		}

		total := shares.Clone()
		if p.TotalDepositShares.IsZero() {
			// the depositor keeps exactly shares, the dead shares are paid on top
			if total, err = number.Add(shares, pool.DeadShares); err != nil {
				return err
			}
		}

		if amount, err = pool.AmountForDepositShares(p, total); err != nil {
			return err
		}

		if err := checkDepositCap(p.TotalDeposited, amount, p.MaxDepositAmount); err != nil {
			return err
		}

		if _, err := s.mintDeposit(tx, p, tx.position(pid), amount, total); err != nil {
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

func (s *service) WithdrawExactAmount(ctx context.Context, caller string, pid core.PositionID, token string, amount *uint256.Int) (*uint256.Int, error) {
	var burned *uint256.Int
	err := s.mutate(ctx, "withdraw_exact_amount", fields(pid, token, amount), func(ctx context.Context, tx *txn) error {
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

		if burned, err = pool.SharesForWithdrawAmount(p, amount); err != nil {
			return err
		}

		pos := tx.position(pid)
		if err := s.burnDeposit(p, pos, amount, burned); err != nil {
			return err
		}

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

	return burned, nil
}

func (s *service) WithdrawExactShares(ctx context.Context, caller string, pid core.PositionID, token string, shares *uint256.Int) (*uint256.Int, error) {
	var amount *uint256.Int
	err := s.mutate(ctx, "withdraw_exact_shares", fields(pid, token, shares), func(ctx context.Context, tx *txn) error {
		if err := positive(shares); err != nil {
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

		if amount, err = pool.AmountForWithdrawShares(p, shares); err != nil {
			return err
		}

		if amount.IsZero() {
			return core.ErrInvalidAction
		}

		pos := tx.position(pid)
		if err := s.burnDeposit(p, pos, amount, shares); err != nil {
			return err
		}

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

	return amount, nil
}
