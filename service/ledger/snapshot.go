package ledger

import (
	"context"
	"sort"

	"lending/core"
	"lending/pkg/pool"

	"github.com/sirupsen/logrus"
)

// Snapshot deep copy of the whole ledger, positions ordered by id
func (s *service) Snapshot(ctx context.Context) (*core.Snapshot, error) {
	out := &core.Snapshot{}
	err := s.view(ctx, func(ctx context.Context, tx *txn) error {
		for _, token := range s.tokens {
			out.Pools = append(out.Pools, s.pools[token].Clone())
		}

		for _, pos := range s.positions {
			out.Positions = append(out.Positions, pos.Clone())
		}
		sort.Slice(out.Positions, func(i, j int) bool {
			return out.Positions[i].ID < out.Positions[j].ID
		})

		for pid := range s.locked {
			out.Locked = append(out.Locked, pid)
		}
		sort.Slice(out.Locked, func(i, j int) bool {
			return out.Locked[i] < out.Locked[j]
		})

		return nil
	})

	return out, err
}

// rebuild fresh position from its entry maps, token lists included
func rebuild(src *core.Position) *core.Position {
	pos := core.NewPosition(src.ID)
	for token, e := range src.Lending {
		pos.SetLendingShares(token, e.Shares)
		if entry, ok := pos.Lending[token]; ok {
			entry.Collateral = e.Collateral
		}
	}

	for token, e := range src.Borrowing {
		pos.SetBorrowShares(token, e.Shares)
	}

	for token, v := range src.PureCollateral {
		pos.SetPureCollateral(token, v)
	}

	return pos
}

// Restore replaces the whole ledger with snapshot
func (s *service) Restore(ctx context.Context, snapshot *core.Snapshot) error {
	f := logrus.Fields{
		"pools":     len(snapshot.Pools),
		"positions": len(snapshot.Positions),
	}

	return s.mutate(ctx, "restore", f, func(ctx context.Context, tx *txn) error {
		pools := make(map[string]*core.Pool, len(snapshot.Pools))
		tokens := make([]string, 0, len(snapshot.Pools))
		for _, p := range snapshot.Pools {
			if _, ok := pools[p.Token]; ok {
				return core.ErrPoolExists
			}

			if err := pool.CheckInvariant(p); err != nil {
				return err
			}

			pools[p.Token] = p.Clone()
			tokens = append(tokens, p.Token)
		}

		positions := make(map[core.PositionID]*core.Position, len(snapshot.Positions))
		for _, pos := range snapshot.Positions {
			positions[pos.ID] = rebuild(pos)
		}

		locked := make(map[core.PositionID]bool, len(snapshot.Locked))
		for _, pid := range snapshot.Locked {
			locked[pid] = true
		}

		s.pools = pools
		s.tokens = tokens
		s.positions = positions
		s.locked = locked
		return nil
	})
}
