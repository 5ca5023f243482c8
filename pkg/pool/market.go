package pool

import (
	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

// New empty pool, the rate curve is set up by the caller
func New(params core.PoolParams) *core.Pool {
	return &core.Pool{
		Token:                   params.Token,
		Decimals:                params.Decimals,
		TotalDeposited:          number.Zero(),
		TotalBorrowed:           number.Zero(),
		PseudoTotalPool:         number.Zero(),
		PseudoTotalBorrowAmount: number.Zero(),
		TotalDepositShares:      number.Zero(),
		TotalBorrowShares:       number.Zero(),
		TotalPureCollateral:     number.Zero(),
		Utilization:             number.Zero(),
		BorrowRate:              number.Zero(),
		PoolFee:                 params.PoolFee.Clone(),
		CollateralFactor:        params.CollateralFactor.Clone(),
		MaxDepositAmount:        params.MaxDepositAmount.Clone(),
	}
}

// Utilization share of the pool value currently lent out
func Utilization(p *core.Pool) (*uint256.Int, error) {
	if p.PseudoTotalPool.IsZero() {
		return number.Zero(), nil
	}

	cash, err := number.WadDiv(p.TotalDeposited, p.PseudoTotalPool)
	if err != nil {
		return nil, err
	}

	return number.SubFloor(number.Wad(), cash), nil
}

// DepositRate annualized rate earned by lenders after the pool fee
func DepositRate(p *core.Pool) (*uint256.Int, error) {
	earned, err := number.WadMul(p.BorrowRate, p.Utilization)
	if err != nil {
		return nil, err
	}

	return number.WadMul(earned, number.SubFloor(number.Wad(), p.PoolFee))
}

// Reconcile folds tokens held beyond the pool accounting into the pool value.
// balance is the raw custody balance of the token.
func Reconcile(p *core.Pool, balance *uint256.Int) (*uint256.Int, error) {
	accounted, err := number.Add(p.TotalDeposited, p.TotalPureCollateral)
	if err != nil {
		return nil, err
	}

	excess := number.SubFloor(balance, accounted)
	if excess.IsZero() {
		return excess, nil
	}

	if p.PseudoTotalPool, err = number.Add(p.PseudoTotalPool, excess); err != nil {
		return nil, err
	}

	if p.TotalDeposited, err = number.Add(p.TotalDeposited, excess); err != nil {
		return nil, err
	}

	return excess, nil
}

// CheckInvariant raw tokens never exceed the accounted pool value
func CheckInvariant(p *core.Pool) error {
	if p.PseudoTotalPool.Lt(p.TotalDeposited) {
		return core.ErrInvariantViolation
	}

	if p.TotalDepositShares.IsZero() != p.PseudoTotalPool.IsZero() {
		return core.ErrInvariantViolation
	}

	return nil
}
