package pool

import (
	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

// SecondsPerYear 365 days
const SecondsPerYear = 31_536_000

var secondsPerYearWad = new(uint256.Int).Mul(uint256.NewInt(SecondsPerYear), number.Wad())

// Accrual interest booked by one sync
type Accrual struct {
	Elapsed   uint64
	Interest  *uint256.Int
	Fee       *uint256.Int
	FeeShares *uint256.Int
}

// Accrue advances the pool to now at the stored borrow rate.
//
// The whole interest is added to both pseudo totals; the fee part is minted as
// deposit shares for the fee position, so lenders' claims grow by interest-fee.
// Calls for a timestamp at or before the last sync change nothing.
func Accrue(p *core.Pool, now uint64) (*Accrual, error) {
	acc := &Accrual{
		Interest:  number.Zero(),
		Fee:       number.Zero(),
		FeeShares: number.Zero(),
	}

	if now <= p.LastSyncTimestamp {
		return acc, nil
	}

	acc.Elapsed = now - p.LastSyncTimestamp
	p.LastSyncTimestamp = now

	if p.PseudoTotalBorrowAmount.IsZero() || p.BorrowRate.IsZero() {
		return acc, nil
	}

	rateTime, err := number.Mul(p.BorrowRate, uint256.NewInt(acc.Elapsed))
	if err != nil {
		return nil, err
	}

	if acc.Interest, err = number.MulDivDown(p.PseudoTotalBorrowAmount, rateTime, secondsPerYearWad); err != nil {
		return nil, err
	}

	if acc.Interest.IsZero() {
		return acc, nil
	}

	if acc.Fee, err = number.WadMul(acc.Interest, p.PoolFee); err != nil {
		return nil, err
	}

	if p.PseudoTotalBorrowAmount, err = number.Add(p.PseudoTotalBorrowAmount, acc.Interest); err != nil {
		return nil, err
	}

	if p.PseudoTotalPool, err = number.Add(p.PseudoTotalPool, acc.Interest); err != nil {
		return nil, err
	}

	if acc.Fee.IsZero() || p.TotalDepositShares.IsZero() {
		return acc, nil
	}

	if acc.FeeShares, err = number.MulDivDown(acc.Fee, p.TotalDepositShares, new(uint256.Int).Sub(p.PseudoTotalPool, acc.Fee)); err != nil {
		return nil, err
	}

	if p.TotalDepositShares, err = number.Add(p.TotalDepositShares, acc.FeeShares); err != nil {
		return nil, err
	}

	return acc, nil
}
