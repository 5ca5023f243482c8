package core

import (
	"context"

	"github.com/holiman/uint256"
)

// FeeLedger receives the protocol share of accrued interest
type FeeLedger interface {
	Credit(ctx context.Context, token string, amount *uint256.Int)
}
