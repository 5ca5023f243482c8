package views

import (
	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Curve rate curve view, poles and factors in whole units
type Curve struct {
	Pole                 decimal.Decimal `json:"pole,omitnested"`
	MinPole              decimal.Decimal `json:"min_pole,omitnested"`
	MaxPole              decimal.Decimal `json:"max_pole,omitnested"`
	BestPole             decimal.Decimal `json:"best_pole,omitnested"`
	MultiplicativeFactor decimal.Decimal `json:"multiplicative_factor,omitnested"`
	IncreasePole         bool            `json:"increase_pole"`
	Lock                 bool            `json:"lock"`
}

// Pool pool view, token amounts scaled by the pool decimals
type Pool struct {
	Token                   string          `json:"token"`
	Decimals                uint8           `json:"decimals"`
	TotalDeposited          decimal.Decimal `json:"total_deposited,omitnested"`
	TotalBorrowed           decimal.Decimal `json:"total_borrowed,omitnested"`
	PseudoTotalPool         decimal.Decimal `json:"pseudo_total_pool,omitnested"`
	PseudoTotalBorrowAmount decimal.Decimal `json:"pseudo_total_borrow_amount,omitnested"`
	TotalDepositShares      decimal.Decimal `json:"total_deposit_shares,omitnested"`
	TotalBorrowShares       decimal.Decimal `json:"total_borrow_shares,omitnested"`
	TotalPureCollateral     decimal.Decimal `json:"total_pure_collateral,omitnested"`
	MaxDepositAmount        decimal.Decimal `json:"max_deposit_amount,omitnested"`
	Utilization             decimal.Decimal `json:"utilization,omitnested"`
	BorrowRate              decimal.Decimal `json:"borrow_rate,omitnested"`
	DepositRate             decimal.Decimal `json:"deposit_rate,omitnested"`
	PoolFee                 decimal.Decimal `json:"pool_fee,omitnested"`
	CollateralFactor        decimal.Decimal `json:"collateral_factor,omitnested"`
	LastSyncTimestamp       uint64          `json:"last_sync_timestamp"`
	TimeStampScaling        uint64          `json:"time_stamp_scaling"`
	Curve                   Curve           `json:"curve"`
}

// PoolView renders p, depositRate is the annualized lender rate
func PoolView(p *core.Pool, depositRate decimal.Decimal) *Pool {
	exp := int32(p.Decimals)
	amount := func(x *uint256.Int) decimal.Decimal {
		return number.ToDecimal(x, exp)
	}

	return &Pool{
		Token:                   p.Token,
		Decimals:                p.Decimals,
		TotalDeposited:          amount(p.TotalDeposited),
		TotalBorrowed:           amount(p.TotalBorrowed),
		PseudoTotalPool:         amount(p.PseudoTotalPool),
		PseudoTotalBorrowAmount: amount(p.PseudoTotalBorrowAmount),
		TotalDepositShares:      amount(p.TotalDepositShares),
		TotalBorrowShares:       amount(p.TotalBorrowShares),
		TotalPureCollateral:     amount(p.TotalPureCollateral),
		MaxDepositAmount:        amount(p.MaxDepositAmount),
		Utilization:             number.WadToDecimal(p.Utilization),
		BorrowRate:              number.WadToDecimal(p.BorrowRate),
		DepositRate:             depositRate,
		PoolFee:                 number.WadToDecimal(p.PoolFee),
		CollateralFactor:        number.WadToDecimal(p.CollateralFactor),
		LastSyncTimestamp:       p.LastSyncTimestamp,
		TimeStampScaling:        p.TimeStampScaling,
		Curve: Curve{
			Pole:                 number.WadToDecimal(p.Curve.Pole),
			MinPole:              number.WadToDecimal(p.Curve.MinPole),
			MaxPole:              number.WadToDecimal(p.Curve.MaxPole),
			BestPole:             number.WadToDecimal(p.Curve.BestPole),
			MultiplicativeFactor: number.WadToDecimal(p.Curve.MultiplicativeFactor),
			IncreasePole:         p.Curve.IncreasePole,
			Lock:                 p.Curve.Lock,
		},
	}
}
