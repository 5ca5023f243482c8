package core

import (
	"context"

	"github.com/holiman/uint256"
)

// Vault custody of raw pool tokens
type Vault interface {
	// Pull moves amount of token from the caller into custody
	Pull(ctx context.Context, from string, token string, amount *uint256.Int) error
	// Push releases amount of token to the recipient
	Push(ctx context.Context, to string, token string, amount *uint256.Int) error
	Balance(ctx context.Context, token string) (*uint256.Int, error)
}
