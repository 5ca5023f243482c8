package number

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// ErrNegative negative decimals have no fixed point representation
var ErrNegative = errors.New("number: negative value")

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

// Scale converts d to an integer with exp implied decimals, truncating the rest
func Scale(d decimal.Decimal, exp int32) (*uint256.Int, error) {
	if d.IsNegative() {
		return nil, ErrNegative
	}

	v, overflow := uint256.FromBig(d.Shift(exp).Truncate(0).BigInt())
	if overflow {
		return nil, ErrOverflow
	}

	return v, nil
}

// FromDecimal 18 decimal fixed point of d
func FromDecimal(d decimal.Decimal) (*uint256.Int, error) {
	return Scale(d, Precision)
}

// Parse 18 decimal fixed point of a decimal string
func Parse(s string) (*uint256.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}

	return FromDecimal(d)
}

// MustParse panics on malformed input, for constants and tests
func MustParse(s string) *uint256.Int {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return v
}

// ToDecimal decimal with exp implied decimals
func ToDecimal(x *uint256.Int, exp int32) decimal.Decimal {
	if x == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(x.ToBig(), -exp)
}

// WadToDecimal decimal of an 18 decimal fixed point
func WadToDecimal(x *uint256.Int) decimal.Decimal {
	return ToDecimal(x, Precision)
}
