package fee

import (
	"context"
	"sync"

	"lending/pkg/number"

	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
)

// Ledger in memory claimable protocol fees per token
type Ledger struct {
	mu       sync.Mutex
	balances map[string]*uint256.Int
}

// New empty fee ledger
func New() *Ledger {
	return &Ledger{balances: make(map[string]*uint256.Int)}
}

func (l *Ledger) Credit(ctx context.Context, token string, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.balances[token]
	if !ok {
		b = number.Zero()
	}

	l.balances[token] = new(uint256.Int).Add(b, amount)
	logger.FromContext(ctx).WithField("token", token).Debugf("fee credited: %s", amount.Dec())
}

// Balance claimable fees of token
func (l *Ledger) Balance(token string) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.balances[token]; ok {
		return b.Clone()
	}

	return number.Zero()
}

// Claim resets the balance of token and returns it
func (l *Ledger) Claim(ctx context.Context, token string) *uint256.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.balances[token]
	if !ok {
		return number.Zero()
	}

	delete(l.balances, token)
	return b
}
