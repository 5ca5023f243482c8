package vault

import (
	"context"
	"errors"
	"sync"

	"lending/pkg/number"

	"github.com/holiman/uint256"
)

// ErrInsufficientFunds wallet or custody balance too low
var ErrInsufficientFunds = errors.New("vault: insufficient funds")

// Vault in memory custody with per party wallets
type Vault struct {
	mu      sync.Mutex
	custody map[string]*uint256.Int
	wallets map[string]map[string]*uint256.Int
	// OnTransfer runs before every pull or push, an error aborts the transfer
	OnTransfer func(ctx context.Context) error
}

// New empty vault
func New() *Vault {
	return &Vault{
		custody: make(map[string]*uint256.Int),
		wallets: make(map[string]map[string]*uint256.Int),
	}
}

func balanceOf(m map[string]*uint256.Int, token string) *uint256.Int {
	if v, ok := m[token]; ok {
		return v
	}

	return number.Zero()
}

func (v *Vault) wallet(party string) map[string]*uint256.Int {
	w, ok := v.wallets[party]
	if !ok {
		w = make(map[string]*uint256.Int)
		v.wallets[party] = w
	}

	return w
}

// Fund credits amount of token to the wallet of party
func (v *Vault) Fund(party, token string, amount *uint256.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	w := v.wallet(party)
	w[token] = new(uint256.Int).Add(balanceOf(w, token), amount)
}

// Donate sends tokens straight into custody, bypassing the ledger
func (v *Vault) Donate(token string, amount *uint256.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.custody[token] = new(uint256.Int).Add(balanceOf(v.custody, token), amount)
}

// WalletOf balance of token held by party outside custody
func (v *Vault) WalletOf(party, token string) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return balanceOf(v.wallet(party), token).Clone()
}

func (v *Vault) hook(ctx context.Context) error {
	if v.OnTransfer == nil {
		return nil
	}

	return v.OnTransfer(ctx)
}

func (v *Vault) Pull(ctx context.Context, from string, token string, amount *uint256.Int) error {
	if err := v.hook(ctx); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	w := v.wallet(from)
	held := balanceOf(w, token)
	if held.Lt(amount) {
		return ErrInsufficientFunds
	}

	w[token] = new(uint256.Int).Sub(held, amount)
	v.custody[token] = new(uint256.Int).Add(balanceOf(v.custody, token), amount)
	return nil
}

func (v *Vault) Push(ctx context.Context, to string, token string, amount *uint256.Int) error {
	if err := v.hook(ctx); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	held := balanceOf(v.custody, token)
	if held.Lt(amount) {
		return ErrInsufficientFunds
	}

	v.custody[token] = new(uint256.Int).Sub(held, amount)
	w := v.wallet(to)
	w[token] = new(uint256.Int).Add(balanceOf(w, token), amount)
	return nil
}

func (v *Vault) Balance(ctx context.Context, token string) (*uint256.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return balanceOf(v.custody, token).Clone(), nil
}
