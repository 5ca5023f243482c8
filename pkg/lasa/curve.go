package lasa

import (
	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

const (
	// NormalizationFactor seconds the pole needs to travel from one bound to the other (8 weeks)
	NormalizationFactor = 4_838_400
	// DefaultAdjustmentWindow seconds between two adjustment steps
	DefaultAdjustmentWindow = 3 * 60 * 60
)

var (
	// UpperBoundMaxRate borrow rate at full utilization for the steepest curve
	UpperBoundMaxRate = number.MustParse("3")
	// LowerBoundMaxRate borrow rate at full utilization for the flattest curve
	LowerBoundMaxRate = number.MustParse("1")
	// ResetThreshold share of the best value below which the best value is forgotten
	ResetThreshold = number.MustParse("0.75")

	wadSquared = new(uint256.Int).Mul(number.Wad(), number.Wad())
	halfWad    = new(uint256.Int).Div(number.Wad(), uint256.NewInt(2))
)

// PoleForMaxRate pole at which the curve reaches maxRate at full utilization.
//
//	pole = WAD/2 + sqrt(WAD²/4 + mf·WAD²/maxRate)
func PoleForMaxRate(mf, maxRate *uint256.Int) (*uint256.Int, error) {
	k, err := number.MulDivDown(mf, wadSquared, maxRate)
	if err != nil {
		return nil, err
	}

	quarter := new(uint256.Int).Div(wadSquared, uint256.NewInt(4))
	radicand, err := number.Add(quarter, k)
	if err != nil {
		return nil, err
	}

	return number.Add(halfWad, number.Sqrt(radicand))
}

// Init curve state for a multiplicative factor, the pole starts in the middle
// of its bounds.
func Init(mf *uint256.Int) (core.RateCurve, error) {
	c := core.RateCurve{
		MaxValue:        number.Zero(),
		LastUtilization: number.Zero(),
	}

	if err := setBounds(&c, mf); err != nil {
		return c, err
	}

	c.Pole = midpoint(c.MinPole, c.MaxPole)
	c.BestPole = c.Pole.Clone()
	return c, nil
}

// Reconfigure swaps the multiplicative factor of a curve and restarts the
// search from the current pole, clamped into the new bounds.
func Reconfigure(c *core.RateCurve, mf *uint256.Int) error {
	if err := setBounds(c, mf); err != nil {
		return err
	}

	c.Pole = number.Clamp(c.Pole, c.MinPole, c.MaxPole)
	c.BestPole = c.Pole.Clone()
	c.MaxValue = number.Zero()
	return nil
}

func setBounds(c *core.RateCurve, mf *uint256.Int) error {
	if mf.IsZero() {
		return core.ErrInvalidAction
	}

	minPole, err := PoleForMaxRate(mf, UpperBoundMaxRate)
	if err != nil {
		return err
	}

	maxPole, err := PoleForMaxRate(mf, LowerBoundMaxRate)
	if err != nil {
		return err
	}

	c.MultiplicativeFactor = mf.Clone()
	c.MinPole = minPole
	c.MaxPole = maxPole
	c.DeltaPole = new(uint256.Int).Div(
		new(uint256.Int).Sub(maxPole, minPole),
		uint256.NewInt(NormalizationFactor),
	)
	return nil
}

func midpoint(lo, hi *uint256.Int) *uint256.Int {
	d := new(uint256.Int).Sub(hi, lo)
	return new(uint256.Int).Add(lo, d.Rsh(d, 1))
}

// BorrowRate annualized rate of the curve at utilization u.
//
//	rate = mf·u·WAD / (pole·(pole−u))
func BorrowRate(c *core.RateCurve, u *uint256.Int) (*uint256.Int, error) {
	if u.IsZero() {
		return number.Zero(), nil
	}

	if !c.Pole.Gt(u) {
		return nil, core.ErrInvariantViolation
	}

	num, err := number.Mul(c.MultiplicativeFactor, u)
	if err != nil {
		return nil, err
	}

	den, err := number.Mul(c.Pole, new(uint256.Int).Sub(c.Pole, u))
	if err != nil {
		return nil, err
	}

	return number.MulDivDown(num, number.Wad(), den)
}

// Value product the adjustment hill-climbs on
func Value(pseudoTotalBorrow, rate *uint256.Int) (*uint256.Int, error) {
	return number.Mul(pseudoTotalBorrow, rate)
}
