package cmd

import (
	"context"
	"fmt"

	"lending/config"
	"lending/core"
	"lending/internal/clock"
	"lending/service/fee"
	"lending/service/ledger"
	"lending/service/oracle"
	"lending/service/registry"
	"lending/service/vault"
	"lending/store/pool"
	"lending/store/position"
	"lending/worker/loader"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
	"github.com/holiman/uint256"

	// postgres driver
	_ "github.com/lib/pq"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

func provideClock() core.Clock {
	c, err := clock.New(cfg.App.Location)
	if err != nil {
		panic(err)
	}

	return c
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func providePoolStore(db *db.DB) core.IPoolStore {
	return pool.New(db)
}

func providePositionStore(db *db.DB) core.IPositionStore {
	return position.New(db)
}

// ------------------service------------------------------------

func provideOracle(clock core.Clock) *oracle.Oracle {
	if cfg.PriceOracle.EndPoint == "" {
		panic("price_oracle.end_point not set")
	}

	oc, err := config.Oracle(provideConfig())
	if err != nil {
		panic(err)
	}

	return oracle.New(oracle.NewFeed(cfg.PriceOracle.EndPoint), clock, oc)
}

type ledgerDeps struct {
	clock    core.Clock
	oracle   *oracle.Oracle
	registry *registry.Registry
	fees     *fee.Ledger
	vault    *vault.Vault
}

func provideLedger(deps ledgerDeps) core.LedgerService {
	lc, err := config.Ledger(provideConfig())
	if err != nil {
		panic(err)
	}

	return ledger.New(deps.clock, deps.oracle, deps.registry, deps.fees, deps.vault, provideConfig(), lc)
}

func provideLedgerDeps() ledgerDeps {
	c := provideClock()
	return ledgerDeps{
		clock:    c,
		oracle:   provideOracle(c),
		registry: registry.New(),
		fees:     fee.New(),
		vault:    vault.New(),
	}
}

// bootLedger restores the persisted ledger, backs the restored pools with
// custody and registers configured pools that are still missing
func bootLedger(ctx context.Context, l core.LedgerService, deps ledgerDeps, pools core.IPoolStore, positions core.IPositionStore) error {
	if _, err := loader.Load(ctx, l, pools, positions); err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	restored, err := l.Pools(ctx)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(restored))
	for _, p := range restored {
		known[p.Token] = true
		deps.vault.Donate(p.Token, new(uint256.Int).Add(p.TotalDeposited, p.TotalPureCollateral))
	}

	params, err := config.Pools(provideConfig())
	if err != nil {
		return err
	}

	admin := ""
	if len(cfg.Admins) > 0 {
		admin = cfg.Admins[0]
	}

	for _, p := range params {
		if known[p.Token] {
			continue
		}

		if _, err := l.CreatePool(ctx, admin, p); err != nil {
			return fmt.Errorf("create pool %s: %w", p.Token, err)
		}
	}

	return nil
}
