package ledger

import (
	"context"

	"lending/core"

	"github.com/holiman/uint256"
)

type transfer struct {
	push   bool
	party  string
	token  string
	amount *uint256.Int
}

type credit struct {
	token  string
	amount *uint256.Int
}

// txn journal of one ledger call
//
// The first touch of a pool or position keeps a deep copy of it, rollback puts
// the copies back. Transfers and fee credits are queued and only run on commit.
type txn struct {
	s         *service
	pools     map[string]*core.Pool
	created   []string
	positions map[core.PositionID]*core.Position
	transfers []transfer
	credits   []credit
}

func (s *service) begin() *txn {
	return &txn{
		s:         s,
		pools:     make(map[string]*core.Pool),
		positions: make(map[core.PositionID]*core.Position),
	}
}

func (tx *txn) pool(token string) (*core.Pool, error) {
	p, ok := tx.s.pools[token]
	if !ok {
		return nil, core.ErrPoolNotFound
	}

	if _, ok := tx.pools[token]; !ok {
		tx.pools[token] = p.Clone()
	}

	return p, nil
}

func (tx *txn) addPool(p *core.Pool) {
	tx.s.pools[p.Token] = p
	tx.s.tokens = append(tx.s.tokens, p.Token)
	tx.created = append(tx.created, p.Token)
}

// position loads or lazily creates the ledger entry of pid
func (tx *txn) position(pid core.PositionID) *core.Position {
	pos, ok := tx.s.positions[pid]
	if _, seen := tx.positions[pid]; !seen {
		if ok {
			tx.positions[pid] = pos.Clone()
		} else {
			tx.positions[pid] = nil
		}
	}

	if !ok {
		pos = core.NewPosition(pid)
		tx.s.positions[pid] = pos
	}

	return pos
}

func (tx *txn) pull(from, token string, amount *uint256.Int) {
	tx.transfers = append(tx.transfers, transfer{party: from, token: token, amount: amount.Clone()})
}

func (tx *txn) push(to, token string, amount *uint256.Int) {
	tx.transfers = append(tx.transfers, transfer{push: true, party: to, token: token, amount: amount.Clone()})
}

func (tx *txn) credit(token string, amount *uint256.Int) {
	tx.credits = append(tx.credits, credit{token: token, amount: amount.Clone()})
}

// commit runs the queued transfers and credits. Entries that do not carry
// the call context are rejected until it returns, the lock is still held.
func (tx *txn) commit(ctx context.Context) error {
	tx.s.external.Store(true)
	defer tx.s.external.Store(false)

	for _, t := range tx.transfers {
		var err error
		if t.push {
			err = tx.s.vault.Push(ctx, t.party, t.token, t.amount)
		} else {
			err = tx.s.vault.Pull(ctx, t.party, t.token, t.amount)
		}

		if err != nil {
			return err
		}
	}

	for _, c := range tx.credits {
		tx.s.fees.Credit(ctx, c.token, c.amount)
	}

	tx.transfers = nil
	tx.credits = nil
	return nil
}

func (tx *txn) rollback() {
	for token, p := range tx.pools {
		tx.s.pools[token] = p
	}

	for pid, pos := range tx.positions {
		if pos == nil {
			delete(tx.s.positions, pid)
		} else {
			tx.s.positions[pid] = pos
		}
	}

	if len(tx.created) > 0 {
		for _, token := range tx.created {
			delete(tx.s.pools, token)
		}
		tx.s.tokens = tx.s.tokens[:len(tx.s.tokens)-len(tx.created)]
	}

	tx.pools = nil
	tx.positions = nil
	tx.created = nil
	tx.transfers = nil
	tx.credits = nil
}
