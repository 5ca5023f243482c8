package views

import (
	"lending/core"
	"lending/pkg/id"
	"lending/pkg/number"
	"lending/pkg/pool"

	"github.com/shopspring/decimal"
)

// Lending deposit side of a position in one token
type Lending struct {
	Token          string          `json:"token"`
	Shares         decimal.Decimal `json:"shares,omitnested"`
	Amount         decimal.Decimal `json:"amount,omitnested"`
	Collateral     bool            `json:"collateral"`
	PureCollateral decimal.Decimal `json:"pure_collateral,omitnested"`
}

// Borrowing borrow side of a position in one token
type Borrowing struct {
	Token  string          `json:"token"`
	Shares decimal.Decimal `json:"shares,omitnested"`
	Amount decimal.Decimal `json:"amount,omitnested"`
}

// Position position view, values in the oracle reference unit
type Position struct {
	ID              string              `json:"id"`
	Locked          bool                `json:"locked"`
	Lending         []*Lending          `json:"lending"`
	Borrowing       []*Borrowing        `json:"borrowing"`
	CollateralValue decimal.NullDecimal `json:"collateral_value,omitnested"`
	BorrowValue     decimal.NullDecimal `json:"borrow_value,omitnested"`
	// empty for debt without collateral
	DebtRatio decimal.NullDecimal `json:"debt_ratio,omitnested"`
}

// Valuation oracle derived figures of a position, nil when unavailable
type Valuation struct {
	CollateralValue *decimal.Decimal
	BorrowValue     *decimal.Decimal
	DebtRatio       *decimal.Decimal
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// PositionView renders pos with the withdrawable and payback amounts priced
// against pools, which must hold every token of the position
func PositionView(pos *core.Position, locked bool, pools map[string]*core.Pool, v Valuation) (*Position, error) {
	view := &Position{
		ID:              id.Position(uint64(pos.ID)),
		Locked:          locked,
		Lending:         make([]*Lending, 0, pos.LendingTokens.Len()),
		Borrowing:       make([]*Borrowing, 0, pos.BorrowTokens.Len()),
		CollateralValue: nullable(v.CollateralValue),
		BorrowValue:     nullable(v.BorrowValue),
		DebtRatio:       nullable(v.DebtRatio),
	}

	for _, token := range pos.LendingTokens.Items() {
		p, ok := pools[token]
		if !ok {
			return nil, core.ErrPoolNotFound
		}

		shares := pos.LendingShares(token)
		withdrawable, err := pool.AmountForWithdrawShares(p, shares)
		if err != nil {
			return nil, err
		}

		exp := int32(p.Decimals)
		l := &Lending{
			Token:          token,
			Shares:         number.ToDecimal(shares, exp),
			Amount:         number.ToDecimal(withdrawable, exp),
			PureCollateral: number.ToDecimal(pos.PureCollateralOf(token), exp),
		}
		if e, ok := pos.Lending[token]; ok {
			l.Collateral = e.Collateral
		}

		view.Lending = append(view.Lending, l)
	}

	for _, token := range pos.BorrowTokens.Items() {
		p, ok := pools[token]
		if !ok {
			return nil, core.ErrPoolNotFound
		}

		shares := pos.BorrowShares(token)
		debt, err := pool.AmountForPayback(p, shares)
		if err != nil {
			return nil, err
		}

		exp := int32(p.Decimals)
		view.Borrowing = append(view.Borrowing, &Borrowing{
			Token:  token,
			Shares: number.ToDecimal(shares, exp),
			Amount: number.ToDecimal(debt, exp),
		})
	}

	return view, nil
}
