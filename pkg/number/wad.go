package number

import (
	"errors"

	"github.com/holiman/uint256"
)

// Precision decimals of the fixed point unit
const Precision = 18

var (
	// ErrOverflow result does not fit 256 bits
	ErrOverflow = errors.New("number: overflow")
	// ErrUnderflow subtraction below zero
	ErrUnderflow = errors.New("number: underflow")
	// ErrDivisionByZero zero divisor
	ErrDivisionByZero = errors.New("number: division by zero")
)

var wad = uint256.NewInt(1_000_000_000_000_000_000)

// Wad fixed point one
func Wad() *uint256.Int {
	return wad.Clone()
}

// Zero new zero
func Zero() *uint256.Int {
	return new(uint256.Int)
}

// MulDivDown floor(x*y/d), the product is kept in 512 bits
func MulDivDown(x, y, d *uint256.Int) (*uint256.Int, error) {
	if d.IsZero() {
		return nil, ErrDivisionByZero
	}

	z, overflow := new(uint256.Int).MulDivOverflow(x, y, d)
	if overflow {
		return nil, ErrOverflow
	}

	return z, nil
}

// MulDivUp ceil(x*y/d)
func MulDivUp(x, y, d *uint256.Int) (*uint256.Int, error) {
	z, err := MulDivDown(x, y, d)
	if err != nil {
		return nil, err
	}

	if new(uint256.Int).MulMod(x, y, d).IsZero() {
		return z, nil
	}

	return Add(z, uint256.NewInt(1))
}

// WadMul x*y/WAD rounded down
func WadMul(x, y *uint256.Int) (*uint256.Int, error) {
	return MulDivDown(x, y, wad)
}

// WadDiv x*WAD/y rounded down
func WadDiv(x, y *uint256.Int) (*uint256.Int, error) {
	return MulDivDown(x, wad, y)
}

// WadDivUp x*WAD/y rounded up
func WadDivUp(x, y *uint256.Int) (*uint256.Int, error) {
	return MulDivUp(x, wad, y)
}

// Add x+y, ErrOverflow on overflow
func Add(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).AddOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}

	return z, nil
}

// Sub x-y, ErrUnderflow when y > x
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, ErrUnderflow
	}

	return z, nil
}

// Mul x*y, ErrOverflow on overflow
func Mul(x, y *uint256.Int) (*uint256.Int, error) {
	z, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrOverflow
	}

	return z, nil
}

// SubFloor x-y saturating at zero
func SubFloor(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return new(uint256.Int)
	}

	return new(uint256.Int).Sub(x, y)
}

// Diff |x-y|
func Diff(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return new(uint256.Int).Sub(y, x)
	}

	return new(uint256.Int).Sub(x, y)
}

// Min copy of the smaller of x and y
func Min(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return x.Clone()
	}

	return y.Clone()
}

// Max copy of the larger of x and y
func Max(x, y *uint256.Int) *uint256.Int {
	if x.Gt(y) {
		return x.Clone()
	}

	return y.Clone()
}

// Clamp x into [lo, hi]
func Clamp(x, lo, hi *uint256.Int) *uint256.Int {
	return Min(Max(x, lo), hi)
}

// Sqrt integer square root rounded down
func Sqrt(x *uint256.Int) *uint256.Int {
	return new(uint256.Int).Sqrt(x)
}
