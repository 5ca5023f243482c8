package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001
	// ErrReentrantCall nested call into a mutating entry point
	ErrReentrantCall ErrorCode = 100002

	// ErrPoolNotFound no pool
	ErrPoolNotFound ErrorCode = 100100
	// ErrPoolExists pool already registered
	ErrPoolExists ErrorCode = 100101
	// ErrInvalidAction structural precondition violated
	ErrInvalidAction ErrorCode = 100102
	// ErrNotOwner caller does not hold the position
	ErrNotOwner ErrorCode = 100103
	// ErrPositionLocked position is restricted
	ErrPositionLocked ErrorCode = 100104
	// ErrResultsInBadDebt debt ratio would exceed the maximum
	ErrResultsInBadDebt ErrorCode = 100105
	// ErrStalePrice oracle heartbeat exceeded
	ErrStalePrice ErrorCode = 100106
	// ErrInsufficientShares not enough shares
	ErrInsufficientShares ErrorCode = 100107
	// ErrInsufficientLiquidity not enough raw tokens in the pool
	ErrInsufficientLiquidity ErrorCode = 100108
	// ErrInvariantViolation ledger invariant broken
	ErrInvariantViolation ErrorCode = 100109
	// ErrNotLiquidatable debt ratio below threshold
	ErrNotLiquidatable ErrorCode = 100110
	// ErrLiquidationNoImprovement liquidation did not reduce the debt ratio
	ErrLiquidationNoImprovement ErrorCode = 100111
	// ErrPositionNotFound unknown position
	ErrPositionNotFound ErrorCode = 100112
)

var errorNames = map[ErrorCode]string{
	ErrUnknown:                  "unknown",
	ErrOperationForbidden:       "operation forbidden",
	ErrReentrantCall:            "reentrant call",
	ErrPoolNotFound:             "pool not found",
	ErrPoolExists:               "pool exists",
	ErrInvalidAction:            "invalid action",
	ErrNotOwner:                 "not owner",
	ErrPositionLocked:           "position locked",
	ErrResultsInBadDebt:         "results in bad debt",
	ErrStalePrice:               "stale price",
	ErrInsufficientShares:       "insufficient shares",
	ErrInsufficientLiquidity:    "insufficient liquidity",
	ErrInvariantViolation:       "invariant violation",
	ErrNotLiquidatable:          "not liquidatable",
	ErrLiquidationNoImprovement: "liquidation does not improve debt ratio",
	ErrPositionNotFound:         "position not found",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

// Name human readable name
func (e ErrorCode) Name() string {
	if name, ok := errorNames[e]; ok {
		return name
	}

	return errorNames[ErrUnknown]
}

func (e ErrorCode) Error() string {
	return e.Name() + " (" + e.String() + ")"
}
