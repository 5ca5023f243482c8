package core

import (
	"github.com/fox-one/pkg/store/db"
)

// Config lending config
type Config struct {
	App         App          `json:"app"`
	DB          db.Config    `json:"db"`
	PriceOracle PriceOracle  `json:"price_oracle"`
	Protocol    Protocol     `json:"protocol"`
	Pools       []PoolConfig `json:"pools"`
	Admins      []string     `json:"admins"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	if len(c.Admins) <= 0 {
		return false
	}

	for _, a := range c.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// App app config
type App struct {
	Location string `json:"location"`
	// cron spec of the pool syncer, e.g. "@every 1m"
	SyncInterval string `json:"sync_interval"`
}

// PriceOracle price oracle config
type PriceOracle struct {
	EndPoint string `json:"end_point"`
	// default heartbeat, e.g. "1h"
	Heartbeat string `json:"heartbeat"`
	// price cache ttl, e.g. "10s"
	CacheTTL string `json:"cache_ttl"`
	// per token heartbeat overrides
	Heartbeats map[string]string `json:"heartbeats"`
}

// Protocol risk parameters, decimals as strings
type Protocol struct {
	MaxDebtRatio         string `json:"max_debt_ratio"`
	CloseFactor          string `json:"close_factor"`
	LiquidationIncentive string `json:"liquidation_incentive"`
	AdjustmentWindow     string `json:"adjustment_window"`
	FlatTolerance        string `json:"flat_tolerance"`
}

// PoolConfig pool registered on startup
type PoolConfig struct {
	Token                string `json:"token"`
	Decimals             uint8  `json:"decimals"`
	PoolFee              string `json:"pool_fee"`
	CollateralFactor     string `json:"collateral_factor"`
	MaxDepositAmount     string `json:"max_deposit_amount"`
	MultiplicativeFactor string `json:"multiplicative_factor"`
}
