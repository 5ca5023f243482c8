package core

import (
	"context"

	"github.com/holiman/uint256"
)

// CurveParams privileged curve update, nil fields are left unchanged
type CurveParams struct {
	MultiplicativeFactor *uint256.Int `json:"multiplicative_factor,omitempty"`
	Pole                 *uint256.Int `json:"pole,omitempty"`
}

// Liquidation outcome of a partial liquidation
type Liquidation struct {
	// borrow shares burned on the target
	PaidShares *uint256.Int `json:"paid_shares"`
	// raw borrow tokens pulled from the liquidator
	PaidAmount *uint256.Int `json:"paid_amount"`
	// deposit shares moved to the liquidator
	ReceivedShares *uint256.Int `json:"received_shares"`
	// pure collateral moved to the liquidator
	ReceivedPureCollateral *uint256.Int `json:"received_pure_collateral"`
	// raw collateral tokens the liquidator received in total
	ReceivedAmount  *uint256.Int `json:"received_amount"`
	DebtRatioBefore *uint256.Int `json:"debt_ratio_before"`
	DebtRatioAfter  *uint256.Int `json:"debt_ratio_after"`
}

// Snapshot full ledger state
type Snapshot struct {
	Pools     []*Pool      `json:"pools"`
	Positions []*Position  `json:"positions"`
	Locked    []PositionID `json:"locked"`
}

// LedgerService pooled lending ledger
//
// caller is the identity acting on the position, as reported by the
// position registry. Amounts are raw token units.
type LedgerService interface {
	DepositExactAmount(ctx context.Context, caller string, id PositionID, token string, amount *uint256.Int) (*uint256.Int, error)
	DepositExactShares(ctx context.Context, caller string, id PositionID, token string, shares *uint256.Int) (*uint256.Int, error)
	WithdrawExactAmount(ctx context.Context, caller string, id PositionID, token string, amount *uint256.Int) (*uint256.Int, error)
	WithdrawExactShares(ctx context.Context, caller string, id PositionID, token string, shares *uint256.Int) (*uint256.Int, error)
	BorrowExactAmount(ctx context.Context, caller string, id PositionID, token string, amount *uint256.Int) (*uint256.Int, error)
	PaybackExactShares(ctx context.Context, caller string, id PositionID, token string, shares *uint256.Int) (*uint256.Int, error)
	PaybackExactAmount(ctx context.Context, caller string, id PositionID, token string, amount *uint256.Int) (*uint256.Int, error)
	CollateralizeDeposit(ctx context.Context, caller string, id PositionID, token string) error
	UnCollateralizeDeposit(ctx context.Context, caller string, id PositionID, token string) error
	SolelyDeposit(ctx context.Context, caller string, id PositionID, token string, amount *uint256.Int) error
	SolelyWithdraw(ctx context.Context, caller string, id PositionID, token string, amount *uint256.Int) error
	SyncManually(ctx context.Context, token string) error
	LiquidatePartiallyFromTokens(ctx context.Context, caller string, target, liquidator PositionID, borrowToken, collateralToken string, shares *uint256.Int) (*Liquidation, error)

	Pool(ctx context.Context, token string) (*Pool, error)
	Pools(ctx context.Context) ([]*Pool, error)
	Position(ctx context.Context, id PositionID) (*Position, error)
	IsLocked(ctx context.Context, id PositionID) (bool, error)
	Lending(ctx context.Context, id PositionID, token string) (*LendingEntry, error)
	Borrowing(ctx context.Context, id PositionID, token string) (*BorrowEntry, error)
	PureCollateral(ctx context.Context, id PositionID, token string) (*uint256.Int, error)
	LendingTokens(ctx context.Context, id PositionID) ([]string, error)
	BorrowTokens(ctx context.Context, id PositionID) ([]string, error)
	Utilization(ctx context.Context, token string) (*uint256.Int, error)
	BorrowRate(ctx context.Context, token string) (*uint256.Int, error)
	DepositRate(ctx context.Context, token string) (*uint256.Int, error)
	Curve(ctx context.Context, token string) (*RateCurve, error)
	CollateralValue(ctx context.Context, id PositionID) (*uint256.Int, error)
	BorrowValue(ctx context.Context, id PositionID) (*uint256.Int, error)
	DebtRatio(ctx context.Context, id PositionID) (*uint256.Int, error)

	CreatePool(ctx context.Context, caller string, params PoolParams) (*Pool, error)
	LockCurve(ctx context.Context, caller string, token string) error
	UnlockCurve(ctx context.Context, caller string, token string) error
	SetCurveParameters(ctx context.Context, caller string, token string, params CurveParams) error
	SetPositionLock(ctx context.Context, caller string, id PositionID, locked bool) error
	CollectFees(ctx context.Context, caller string, token string) (*uint256.Int, error)

	Snapshot(ctx context.Context) (*Snapshot, error)
	Restore(ctx context.Context, snapshot *Snapshot) error
}
