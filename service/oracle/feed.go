package oracle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"lending/core"
	"lending/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type httpFeed struct {
	endpoint string
}

// NewFeed price feed served over http, GET {endpoint}/api/v2/tickers/{token}
func NewFeed(endpoint string) core.PriceFeed {
	return &httpFeed{endpoint: strings.TrimSuffix(endpoint, "/")}
}

func (f *httpFeed) Ticker(ctx context.Context, token string) (*core.PriceTicker, error) {
	url := fmt.Sprintf("%s/api/v2/tickers/%s", f.endpoint, token)
	logger.FromContext(ctx).Debugln("pull price:", url)

	var ticker core.PriceTicker
	if err := resthttp.Get(ctx, url, &ticker); err != nil {
		if resthttp.IsNotFound(err) {
			return nil, core.ErrStalePrice
		}

		return nil, err
	}

	if ticker.Token == "" {
		ticker.Token = token
	}

	return &ticker, nil
}

// StaticFeed in memory price feed
type StaticFeed struct {
	mu      sync.RWMutex
	tickers map[string]*core.PriceTicker
}

// NewStaticFeed empty static feed
func NewStaticFeed() *StaticFeed {
	return &StaticFeed{tickers: make(map[string]*core.PriceTicker)}
}

// Set publishes price for token at t
func (f *StaticFeed) Set(token string, price decimal.Decimal, t time.Time) {
	f.mu.Lock()
	f.tickers[token] = &core.PriceTicker{Token: token, Price: price, UpdatedAt: t}
	f.mu.Unlock()
}

func (f *StaticFeed) Ticker(ctx context.Context, token string) (*core.PriceTicker, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	t, ok := f.tickers[token]
	if !ok {
		return nil, core.ErrStalePrice
	}

	cp := *t
	return &cp, nil
}
