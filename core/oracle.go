package core

import (
	"context"
	"time"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// PriceTicker price of one whole token in the reference unit
type PriceTicker struct {
	Token     string          `json:"token,omitempty"`
	Price     decimal.Decimal `json:"price,omitempty"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// PriceFeed raw price source the oracle adapter reads from
type PriceFeed interface {
	Ticker(ctx context.Context, token string) (*PriceTicker, error)
}

// Oracle converts raw token amounts to reference value (18 decimals)
type Oracle interface {
	Value(ctx context.Context, token string, amount *uint256.Int) (*uint256.Int, error)
	AmountForValue(ctx context.Context, token string, value *uint256.Int) (*uint256.Int, error)
	IsStale(ctx context.Context, token string) (bool, error)
}
