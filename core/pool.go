package core

import (
	"context"

	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

// Pool per token ledger record
//
// Amounts are raw token units, rates and factors are 18-decimal fixed point.
type Pool struct {
	Token    string `json:"token"`
	Decimals uint8  `json:"decimals"`
	// raw tokens held by the pool and available for withdrawals and borrows
	TotalDeposited *uint256.Int `json:"total_deposited"`
	// raw principal currently lent out
	TotalBorrowed *uint256.Int `json:"total_borrowed"`
	// interest-inflated value of the deposit side, shares are priced against it
	PseudoTotalPool *uint256.Int `json:"pseudo_total_pool"`
	// interest-inflated value of the borrow side
	PseudoTotalBorrowAmount *uint256.Int `json:"pseudo_total_borrow_amount"`
	TotalDepositShares      *uint256.Int `json:"total_deposit_shares"`
	TotalBorrowShares       *uint256.Int `json:"total_borrow_shares"`
	// deposits accounted outside the interest bearing pool
	TotalPureCollateral *uint256.Int `json:"total_pure_collateral"`
	Utilization         *uint256.Int `json:"utilization"`
	// annualized borrow rate
	BorrowRate        *uint256.Int `json:"borrow_rate"`
	LastSyncTimestamp uint64       `json:"last_sync_timestamp"`
	// last time the rate curve ran its adjustment step
	TimeStampScaling uint64 `json:"time_stamp_scaling"`
	// share of accrued interest retained by the protocol
	PoolFee          *uint256.Int `json:"pool_fee"`
	CollateralFactor *uint256.Int `json:"collateral_factor"`
	MaxDepositAmount *uint256.Int `json:"max_deposit_amount"`
	Curve            RateCurve    `json:"curve"`
}

// RateCurve LASA curve state of a pool
type RateCurve struct {
	Pole                 *uint256.Int `json:"pole"`
	MinPole              *uint256.Int `json:"min_pole"`
	MaxPole              *uint256.Int `json:"max_pole"`
	DeltaPole            *uint256.Int `json:"delta_pole"`
	MultiplicativeFactor *uint256.Int `json:"multiplicative_factor"`
	BestPole             *uint256.Int `json:"best_pole"`
	MaxValue             *uint256.Int `json:"max_value"`
	IncreasePole         bool         `json:"increase_pole"`
	LastUtilization      *uint256.Int `json:"last_utilization"`
	Lock                 bool         `json:"lock"`
}

// PoolParams parameters a pool is registered with
type PoolParams struct {
	Token                string
	Decimals             uint8
	PoolFee              *uint256.Int
	CollateralFactor     *uint256.Int
	MaxDepositAmount     *uint256.Int
	MultiplicativeFactor *uint256.Int
}

// Clone deep copy
func (c RateCurve) Clone() RateCurve {
	return RateCurve{
		Pole:                 clone(c.Pole),
		MinPole:              clone(c.MinPole),
		MaxPole:              clone(c.MaxPole),
		DeltaPole:            clone(c.DeltaPole),
		MultiplicativeFactor: clone(c.MultiplicativeFactor),
		BestPole:             clone(c.BestPole),
		MaxValue:             clone(c.MaxValue),
		IncreasePole:         c.IncreasePole,
		LastUtilization:      clone(c.LastUtilization),
		Lock:                 c.Lock,
	}
}

// Clone deep copy
func (p *Pool) Clone() *Pool {
	return &Pool{
		Token:                   p.Token,
		Decimals:                p.Decimals,
		TotalDeposited:          clone(p.TotalDeposited),
		TotalBorrowed:           clone(p.TotalBorrowed),
		PseudoTotalPool:         clone(p.PseudoTotalPool),
		PseudoTotalBorrowAmount: clone(p.PseudoTotalBorrowAmount),
		TotalDepositShares:      clone(p.TotalDepositShares),
		TotalBorrowShares:       clone(p.TotalBorrowShares),
		TotalPureCollateral:     clone(p.TotalPureCollateral),
		Utilization:             clone(p.Utilization),
		BorrowRate:              clone(p.BorrowRate),
		LastSyncTimestamp:       p.LastSyncTimestamp,
		TimeStampScaling:        p.TimeStampScaling,
		PoolFee:                 clone(p.PoolFee),
		CollateralFactor:        clone(p.CollateralFactor),
		MaxDepositAmount:        clone(p.MaxDepositAmount),
		Curve:                   p.Curve.Clone(),
	}
}

func clone(x *uint256.Int) *uint256.Int {
	if x == nil {
		return new(uint256.Int)
	}

	return x.Clone()
}

// IPoolStore pool store interface
type IPoolStore interface {
	Save(ctx context.Context, tx *db.DB, pools []*Pool) error
	Find(ctx context.Context, token string) (*Pool, error)
	All(ctx context.Context) ([]*Pool, error)
}
