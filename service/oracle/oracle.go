package oracle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lending/core"
	"lending/pkg/concurrency"
	"lending/pkg/number"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/holiman/uint256"
	"golang.org/x/sync/singleflight"
)

// Config oracle adapter config
type Config struct {
	// zero disables the staleness check
	Heartbeat time.Duration
	// per token heartbeat overrides
	Heartbeats map[string]time.Duration
	// zero disables the ticker cache
	CacheTTL time.Duration
	// token decimals, 18 when missing
	Decimals map[string]uint8
}

// Oracle price adapter over a feed with heartbeat checks
type Oracle struct {
	feed  core.PriceFeed
	clock core.Clock
	cfg   Config
	cache gcache.Cache
	sf    *singleflight.Group
}

// New new oracle adapter
func New(feed core.PriceFeed, clock core.Clock, cfg Config) *Oracle {
	return &Oracle{
		feed:  feed,
		clock: clock,
		cfg:   cfg,
		cache: gcache.New(1024).LRU().Build(),
		sf:    &singleflight.Group{},
	}
}

func (o *Oracle) tickerKey(token string) string {
	return fmt.Sprintf("ticker:%s", token)
}

func (o *Oracle) ticker(ctx context.Context, token string) (*core.PriceTicker, error) {
	key := o.tickerKey(token)
	if v, err := o.cache.Get(key); err == nil {
		if t, ok := v.(*core.PriceTicker); ok {
			return t, nil
		}
	}

	v, err, _ := o.sf.Do(key, func() (interface{}, error) {
		t, err := o.feed.Ticker(ctx, token)
		if err != nil {
			return nil, err
		}

		if o.cfg.CacheTTL > 0 {
			_ = o.cache.SetWithExpire(key, t, o.cfg.CacheTTL)
		}

		return t, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.PriceTicker), nil
}

// price one whole token in 18 decimal reference units
func (o *Oracle) price(ctx context.Context, token string) (*uint256.Int, error) {
	t, err := o.ticker(ctx, token)
	if err != nil {
		return nil, err
	}

	if !t.Price.IsPositive() {
		return nil, core.ErrStalePrice
	}

	return number.FromDecimal(t.Price)
}

func (o *Oracle) unit(token string) *uint256.Int {
	decimals, ok := o.cfg.Decimals[token]
	if !ok {
		decimals = number.Precision
	}

	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
}

func (o *Oracle) heartbeat(token string) time.Duration {
	if d, ok := o.cfg.Heartbeats[token]; ok {
		return d
	}

	return o.cfg.Heartbeat
}

func (o *Oracle) IsStale(ctx context.Context, token string) (bool, error) {
	t, err := o.ticker(ctx, token)
	if err != nil {
		return false, err
	}

	if !t.Price.IsPositive() {
		return true, nil
	}

	hb := o.heartbeat(token)
	if hb <= 0 {
		return false, nil
	}

	return o.clock.Now().Sub(t.UpdatedAt) > hb, nil
}

// Value reference value of a raw token amount, rounded down
func (o *Oracle) Value(ctx context.Context, token string, amount *uint256.Int) (*uint256.Int, error) {
	price, err := o.price(ctx, token)
	if err != nil {
		return nil, err
	}

	return number.MulDivDown(amount, price, o.unit(token))
}

// AmountForValue raw token amount worth value, rounded down
func (o *Oracle) AmountForValue(ctx context.Context, token string, value *uint256.Int) (*uint256.Int, error) {
	price, err := o.price(ctx, token)
	if err != nil {
		return nil, err
	}

	return number.MulDivDown(value, o.unit(token), price)
}

// Warm loads the tickers of tokens into the cache concurrently
func (o *Oracle) Warm(ctx context.Context, tokens []string) {
	log := logger.FromContext(ctx)
	limit := concurrency.NewGoLimit(8)

	var wg sync.WaitGroup
	for _, token := range tokens {
		token := token
		wg.Add(1)
		limit.Go(func() {
			defer wg.Done()
			if _, err := o.ticker(ctx, token); err != nil {
				log.WithError(err).WithField("token", token).Warnln("warm price failed")
			}
		})
	}

	wg.Wait()
}
