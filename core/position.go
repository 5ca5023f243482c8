package core

import (
	"context"
	"math"

	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
)

// PositionID opaque position identifier issued by the position registry
type PositionID uint64

const (
	// DeadPosition holds the permanent dead share of every pool
	DeadPosition PositionID = 0
	// FeePosition holds the deposit shares minted for protocol fees
	FeePosition PositionID = math.MaxUint64
)

// Reserved reports whether the id belongs to the ledger itself
func (id PositionID) Reserved() bool {
	return id == DeadPosition || id == FeePosition
}

// LendingEntry deposit side entry of a position
type LendingEntry struct {
	Shares     *uint256.Int `json:"shares"`
	Collateral bool         `json:"collateral"`
}

// BorrowEntry borrow side entry of a position
type BorrowEntry struct {
	Shares *uint256.Int `json:"shares"`
}

// Position per position ledger entries
type Position struct {
	ID             PositionID               `json:"id"`
	Lending        map[string]*LendingEntry `json:"lending"`
	Borrowing      map[string]*BorrowEntry  `json:"borrowing"`
	PureCollateral map[string]*uint256.Int  `json:"pure_collateral"`
	LendingTokens  *TokenList               `json:"-"`
	BorrowTokens   *TokenList               `json:"-"`
}

// NewPosition empty position
func NewPosition(id PositionID) *Position {
	return &Position{
		ID:             id,
		Lending:        make(map[string]*LendingEntry),
		Borrowing:      make(map[string]*BorrowEntry),
		PureCollateral: make(map[string]*uint256.Int),
		LendingTokens:  NewTokenList(),
		BorrowTokens:   NewTokenList(),
	}
}

// LendingShares deposit shares held in token, zero if none
func (p *Position) LendingShares(token string) *uint256.Int {
	if e, ok := p.Lending[token]; ok {
		return e.Shares.Clone()
	}

	return new(uint256.Int)
}

// BorrowShares borrow shares owed in token, zero if none
func (p *Position) BorrowShares(token string) *uint256.Int {
	if e, ok := p.Borrowing[token]; ok {
		return e.Shares.Clone()
	}

	return new(uint256.Int)
}

// PureCollateralOf pure collateral amount in token, zero if none
func (p *Position) PureCollateralOf(token string) *uint256.Int {
	if v, ok := p.PureCollateral[token]; ok {
		return v.Clone()
	}

	return new(uint256.Int)
}

// SetLendingShares updates the lending entry and keeps the lending token list
// in sync. A token stays listed while it has shares or pure collateral.
func (p *Position) SetLendingShares(token string, shares *uint256.Int) {
	if shares.IsZero() {
		delete(p.Lending, token)
	} else if e, ok := p.Lending[token]; ok {
		e.Shares = shares.Clone()
	} else {
		p.Lending[token] = &LendingEntry{Shares: shares.Clone(), Collateral: true}
	}

	p.relistLending(token)
}

// SetPureCollateral updates the pure collateral amount of token
func (p *Position) SetPureCollateral(token string, amount *uint256.Int) {
	if amount.IsZero() {
		delete(p.PureCollateral, token)
	} else {
		p.PureCollateral[token] = amount.Clone()
	}

	p.relistLending(token)
}

// SetBorrowShares updates the borrow entry and the borrow token list
func (p *Position) SetBorrowShares(token string, shares *uint256.Int) {
	if shares.IsZero() {
		delete(p.Borrowing, token)
		p.BorrowTokens.Remove(token)
		return
	}

	if e, ok := p.Borrowing[token]; ok {
		e.Shares = shares.Clone()
	} else {
		p.Borrowing[token] = &BorrowEntry{Shares: shares.Clone()}
	}

	p.BorrowTokens.Add(token)
}

func (p *Position) relistLending(token string) {
	_, hasShares := p.Lending[token]
	_, hasPure := p.PureCollateral[token]
	if hasShares || hasPure {
		p.LendingTokens.Add(token)
	} else {
		p.LendingTokens.Remove(token)
	}
}

// Empty reports whether the position holds nothing
func (p *Position) Empty() bool {
	return p.LendingTokens.Len() == 0 && p.BorrowTokens.Len() == 0
}

// Clone deep copy
func (p *Position) Clone() *Position {
	c := NewPosition(p.ID)
	for token, e := range p.Lending {
		c.Lending[token] = &LendingEntry{Shares: e.Shares.Clone(), Collateral: e.Collateral}
	}
	for token, e := range p.Borrowing {
		c.Borrowing[token] = &BorrowEntry{Shares: e.Shares.Clone()}
	}
	for token, v := range p.PureCollateral {
		c.PureCollateral[token] = v.Clone()
	}
	c.LendingTokens = p.LendingTokens.Clone()
	c.BorrowTokens = p.BorrowTokens.Clone()
	return c
}

// IPositionStore position store interface, Save replaces every stored position
type IPositionStore interface {
	Save(ctx context.Context, tx *db.DB, positions []*Position, locked []PositionID) error
	All(ctx context.Context) ([]*Position, []PositionID, error)
}
