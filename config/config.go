package config

import (
	"fmt"
	"time"

	"lending/core"
	"lending/pkg/number"
	"lending/service/ledger"
	"lending/service/oracle"

	"github.com/asaskevich/govalidator"
	configUtil "github.com/fox-one/pkg/config"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

const (
	defaultLocation     = "UTC"
	defaultSyncInterval = "@every 1m"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("LENDING")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	withDefaults(config)
	return Validate(config)
}

func withDefaults(cfg *core.Config) {
	if cfg.App.Location == "" {
		cfg.App.Location = defaultLocation
	}

	if cfg.App.SyncInterval == "" {
		cfg.App.SyncInterval = defaultSyncInterval
	}

	if cfg.DB.Dialect == "" {
		cfg.DB.Dialect = "postgres"
	}
}

// Validate rejects malformed decimal and url settings
func Validate(cfg *core.Config) error {
	if e := cfg.PriceOracle.EndPoint; e != "" && !govalidator.IsURL(e) {
		return fmt.Errorf("price_oracle.end_point: invalid url %q", e)
	}

	decimals := map[string]string{
		"protocol.max_debt_ratio":        cfg.Protocol.MaxDebtRatio,
		"protocol.close_factor":          cfg.Protocol.CloseFactor,
		"protocol.liquidation_incentive": cfg.Protocol.LiquidationIncentive,
		"protocol.flat_tolerance":        cfg.Protocol.FlatTolerance,
	}

	for i, p := range cfg.Pools {
		if p.Token == "" {
			return fmt.Errorf("pools[%d]: token missing", i)
		}

		decimals[fmt.Sprintf("pools[%d].pool_fee", i)] = p.PoolFee
		decimals[fmt.Sprintf("pools[%d].collateral_factor", i)] = p.CollateralFactor
		decimals[fmt.Sprintf("pools[%d].max_deposit_amount", i)] = p.MaxDepositAmount
		decimals[fmt.Sprintf("pools[%d].multiplicative_factor", i)] = p.MultiplicativeFactor
	}

	for key, v := range decimals {
		if v != "" && !govalidator.IsFloat(v) {
			return fmt.Errorf("%s: invalid decimal %q", key, v)
		}
	}

	return nil
}

// Ledger risk parameters, unset values keep the ledger defaults
func Ledger(cfg *core.Config) (ledger.Config, error) {
	out := ledger.DefaultConfig()
	p := cfg.Protocol

	for _, f := range []struct {
		v   string
		dst **uint256.Int
	}{
		{p.MaxDebtRatio, &out.MaxDebtRatio},
		{p.CloseFactor, &out.CloseFactor},
		{p.LiquidationIncentive, &out.LiquidationIncentive},
		{p.FlatTolerance, &out.FlatTolerance},
	} {
		if f.v == "" {
			continue
		}

		x, err := number.Parse(f.v)
		if err != nil {
			return out, err
		}
		*f.dst = x
	}

	if p.AdjustmentWindow != "" {
		d, err := cast.ToDurationE(p.AdjustmentWindow)
		if err != nil {
			return out, err
		}

		if d <= 0 {
			return out, fmt.Errorf("protocol.adjustment_window: must be positive")
		}
		out.AdjustmentWindow = uint64(d.Seconds())
	}

	return out, nil
}

// Oracle heartbeat and cache settings, pool decimals come from the pool list
func Oracle(cfg *core.Config) (oracle.Config, error) {
	var (
		out oracle.Config
		err error
	)

	po := cfg.PriceOracle
	if po.Heartbeat != "" {
		if out.Heartbeat, err = cast.ToDurationE(po.Heartbeat); err != nil {
			return out, err
		}
	}

	if po.CacheTTL != "" {
		if out.CacheTTL, err = cast.ToDurationE(po.CacheTTL); err != nil {
			return out, err
		}
	}

	for token, v := range po.Heartbeats {
		d, err := cast.ToDurationE(v)
		if err != nil {
			return out, fmt.Errorf("price_oracle.heartbeats.%s: %w", token, err)
		}

		if out.Heartbeats == nil {
			out.Heartbeats = make(map[string]time.Duration, len(po.Heartbeats))
		}
		out.Heartbeats[token] = d
	}

	out.Decimals = make(map[string]uint8, len(cfg.Pools))
	for _, p := range cfg.Pools {
		out.Decimals[p.Token] = p.Decimals
	}

	return out, nil
}

// Pools registration parameters of the configured pools
func Pools(cfg *core.Config) ([]core.PoolParams, error) {
	out := make([]core.PoolParams, 0, len(cfg.Pools))
	for _, p := range cfg.Pools {
		params := core.PoolParams{
			Token:    p.Token,
			Decimals: p.Decimals,
		}

		for _, f := range []struct {
			v   string
			dst **uint256.Int
		}{
			{p.PoolFee, &params.PoolFee},
			{p.CollateralFactor, &params.CollateralFactor},
			{p.MultiplicativeFactor, &params.MultiplicativeFactor},
		} {
			x, err := number.Parse(f.v)
			if err != nil {
				return nil, fmt.Errorf("pool %s: %w", p.Token, err)
			}
			*f.dst = x
		}

		// max deposit is a token amount, scaled by the pool decimals
		d, err := decimal.NewFromString(p.MaxDepositAmount)
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", p.Token, err)
		}

		maxDeposit, err := number.Scale(d, int32(p.Decimals))
		if err != nil {
			return nil, fmt.Errorf("pool %s: %w", p.Token, err)
		}
		params.MaxDepositAmount = maxDeposit

		out = append(out, params)
	}

	return out, nil
}
