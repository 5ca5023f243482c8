package pool

import (
	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

// DeadShares shares locked forever on the first deposit of a pool
var DeadShares = uint256.NewInt(1)

// SharesForDeposit deposit shares minted for amount, rounded down.
// An empty pool mints 1:1.
func SharesForDeposit(p *core.Pool, amount *uint256.Int) (*uint256.Int, error) {
	if p.TotalDepositShares.IsZero() {
		return amount.Clone(), nil
	}

	return number.MulDivDown(amount, p.TotalDepositShares, p.PseudoTotalPool)
}

// SharesForWithdrawAmount deposit shares burned to withdraw amount, rounded up
func SharesForWithdrawAmount(p *core.Pool, amount *uint256.Int) (*uint256.Int, error) {
	if p.PseudoTotalPool.IsZero() {
		return nil, core.ErrInsufficientShares
	}

	return number.MulDivUp(amount, p.TotalDepositShares, p.PseudoTotalPool)
}

// AmountForWithdrawShares tokens owed for deposit shares, rounded down
func AmountForWithdrawShares(p *core.Pool, shares *uint256.Int) (*uint256.Int, error) {
	if p.TotalDepositShares.IsZero() {
		return number.Zero(), nil
	}

	return number.MulDivDown(shares, p.PseudoTotalPool, p.TotalDepositShares)
}

// AmountForDepositShares tokens required to mint deposit shares, rounded up.
// An empty pool prices 1:1.
func AmountForDepositShares(p *core.Pool, shares *uint256.Int) (*uint256.Int, error) {
	if p.TotalDepositShares.IsZero() {
		return shares.Clone(), nil
	}

	return number.MulDivUp(shares, p.PseudoTotalPool, p.TotalDepositShares)
}

// SharesForBorrow borrow shares minted for amount, rounded up
func SharesForBorrow(p *core.Pool, amount *uint256.Int) (*uint256.Int, error) {
	if p.TotalBorrowShares.IsZero() || p.PseudoTotalBorrowAmount.IsZero() {
		return amount.Clone(), nil
	}

	return number.MulDivUp(amount, p.TotalBorrowShares, p.PseudoTotalBorrowAmount)
}

// AmountForPayback tokens owed for borrow shares, rounded up
func AmountForPayback(p *core.Pool, shares *uint256.Int) (*uint256.Int, error) {
	if p.TotalBorrowShares.IsZero() {
		return number.Zero(), nil
	}

	return number.MulDivUp(shares, p.PseudoTotalBorrowAmount, p.TotalBorrowShares)
}

// SharesForPaybackAmount borrow shares burned by paying amount back, rounded down
func SharesForPaybackAmount(p *core.Pool, amount *uint256.Int) (*uint256.Int, error) {
	if p.PseudoTotalBorrowAmount.IsZero() {
		return number.Zero(), nil
	}

	return number.MulDivDown(amount, p.TotalBorrowShares, p.PseudoTotalBorrowAmount)
}
