package ledger

import (
	"context"
	"testing"
	"time"

	"lending/core"
	"lending/internal/clock"
	"lending/pkg/number"
	"lending/service/fee"
	"lending/service/oracle"
	"lending/service/registry"
	"lending/service/vault"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

const admin = "admin"

type env struct {
	t        *testing.T
	ctx      context.Context
	clock    *clock.Manual
	feed     *oracle.StaticFeed
	registry *registry.Registry
	vault    *vault.Vault
	fees     *fee.Ledger
	svc      *service
	core.LedgerService
}

type option func(o *oracle.Config, cfg *Config)

func withHeartbeat(d time.Duration) option {
	return func(o *oracle.Config, cfg *Config) {
		o.Heartbeat = d
	}
}

func withIncentive(v string) option {
	return func(o *oracle.Config, cfg *Config) {
		cfg.LiquidationIncentive = number.MustParse(v)
	}
}

func newEnv(t *testing.T, opts ...option) *env {
	oc := oracle.Config{}
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&oc, &cfg)
	}

	e := &env{
		t:        t,
		ctx:      context.Background(),
		clock:    clock.NewManual(time.Unix(1_700_000_000, 0)),
		feed:     oracle.NewStaticFeed(),
		registry: registry.New(),
		vault:    vault.New(),
		fees:     fee.New(),
	}

	system := &core.Config{Admins: []string{admin}}
	e.LedgerService = New(e.clock, oracle.New(e.feed, e.clock, oc), e.registry, e.fees, e.vault, system, cfg)
	e.svc = e.LedgerService.(*service)
	return e
}

func wad(v string) *uint256.Int {
	return number.MustParse(v)
}

func (e *env) createPool(token, collateralFactor string) *core.Pool {
	p, err := e.CreatePool(e.ctx, admin, core.PoolParams{
		Token:                token,
		Decimals:             18,
		PoolFee:              wad("0.2"),
		CollateralFactor:     wad(collateralFactor),
		MaxDepositAmount:     wad("1000000000"),
		MultiplicativeFactor: wad("0.0625"),
	})
	require.Nil(e.t, err)
	e.setPrice(token, "1")
	return p
}

func (e *env) setPrice(token, price string) {
	e.feed.Set(token, number.Decimal(price), e.clock.Now())
}

// open mints a position for owner and funds the owner's wallet
func (e *env) open(owner string, funds map[string]string) core.PositionID {
	for token, amount := range funds {
		e.vault.Fund(owner, token, wad(amount))
	}

	return e.registry.Mint(e.ctx, owner)
}

func (e *env) deposit(owner string, pid core.PositionID, token, amount string) *uint256.Int {
	shares, err := e.DepositExactAmount(e.ctx, owner, pid, token, wad(amount))
	require.Nil(e.t, err)
	return shares
}

func (e *env) borrow(owner string, pid core.PositionID, token, amount string) *uint256.Int {
	shares, err := e.BorrowExactAmount(e.ctx, owner, pid, token, wad(amount))
	require.Nil(e.t, err)
	return shares
}

func (e *env) pool(token string) *core.Pool {
	p, ok := e.svc.pools[token]
	require.True(e.t, ok)
	return p.Clone()
}

func (e *env) advance(d time.Duration) {
	e.clock.Advance(d)
}

// checkBooks asserts the ledger wide invariants
func (e *env) checkBooks() {
	for _, token := range e.svc.tokens {
		p := e.svc.pools[token]
		require.False(e.t, p.PseudoTotalPool.Lt(p.TotalDeposited), "pool value below cash: %s", token)
		require.False(e.t, p.Utilization.Gt(number.Wad()), "utilization above one: %s", token)
		require.False(e.t, p.Curve.Pole.Lt(p.Curve.MinPole), "pole below min: %s", token)
		require.False(e.t, p.Curve.Pole.Gt(p.Curve.MaxPole), "pole above max: %s", token)

		lent, borrowed, pure := number.Zero(), number.Zero(), number.Zero()
		for _, pos := range e.svc.positions {
			lent.Add(lent, pos.LendingShares(token))
			borrowed.Add(borrowed, pos.BorrowShares(token))
			pure.Add(pure, pos.PureCollateralOf(token))
			require.Equal(e.t, pos.LendingShares(token).IsZero() && pos.PureCollateralOf(token).IsZero(), !pos.LendingTokens.Has(token))
			require.Equal(e.t, pos.BorrowShares(token).IsZero(), !pos.BorrowTokens.Has(token))
		}

		require.Equal(e.t, p.TotalDepositShares.Dec(), lent.Dec(), "deposit shares: %s", token)
		require.Equal(e.t, p.TotalBorrowShares.Dec(), borrowed.Dec(), "borrow shares: %s", token)
		require.Equal(e.t, p.TotalPureCollateral.Dec(), pure.Dec(), "pure collateral: %s", token)

		balance, err := e.vault.Balance(e.ctx, token)
		require.Nil(e.t, err)
		require.Equal(e.t, new(uint256.Int).Add(p.TotalDeposited, p.TotalPureCollateral).Dec(), balance.Dec(), "custody: %s", token)
	}
}
