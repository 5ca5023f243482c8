package lasa

import (
	"lending/core"
	"lending/pkg/number"

	"github.com/holiman/uint256"
)

// Transition outcome of one adjustment step
type Transition int

const (
	// None adjustment window has not elapsed
	None Transition = iota
	// NewMax value improved, keep stepping in the same direction
	NewMax
	// Reverse value regressed, step back from the best pole the other way
	Reverse
	// Reset utilization stayed flat, pole goes back to the best pole
	Reset
	// Locked curve is frozen
	Locked
)

func (t Transition) String() string {
	switch t {
	case NewMax:
		return "new_max"
	case Reverse:
		return "reverse"
	case Reset:
		return "reset"
	case Locked:
		return "locked"
	default:
		return "none"
	}
}

// Observation pool state one adjustment step looks at
type Observation struct {
	// pseudo total borrow amount times borrow rate
	Value       *uint256.Int
	Utilization *uint256.Int
	// seconds since the last adjustment
	Elapsed uint64
	// minimum seconds between two adjustments
	Window uint64
	// utilization moves within the tolerance count as flat
	FlatTolerance *uint256.Int
}

// Adjust runs one hill-climbing step on the curve. The pole always ends up
// within [MinPole, MaxPole].
func Adjust(c *core.RateCurve, obs Observation) (Transition, error) {
	if c.Lock {
		return Locked, nil
	}

	if obs.Elapsed == 0 || obs.Elapsed < obs.Window {
		return None, nil
	}

	flat := !number.Diff(obs.Utilization, c.LastUtilization).Gt(obs.FlatTolerance)
	c.LastUtilization = obs.Utilization.Clone()

	if flat {
		c.Pole = number.Clamp(c.BestPole, c.MinPole, c.MaxPole)
		return Reset, nil
	}

	step, err := number.Mul(c.DeltaPole, uint256.NewInt(obs.Elapsed))
	if err != nil {
		return None, err
	}

	if obs.Value.Gt(c.MaxValue) {
		c.MaxValue = obs.Value.Clone()
		c.BestPole = c.Pole.Clone()
		c.Pole = move(c, c.Pole, step)
		return NewMax, nil
	}

	c.IncreasePole = !c.IncreasePole

	floor, err := number.WadMul(c.MaxValue, ResetThreshold)
	if err != nil {
		return None, err
	}

	if obs.Value.Lt(floor) {
		c.MaxValue = obs.Value.Clone()
	}

	c.Pole = move(c, c.BestPole, step)
	return Reverse, nil
}

func move(c *core.RateCurve, from, step *uint256.Int) *uint256.Int {
	var to *uint256.Int
	if c.IncreasePole {
		sum, overflow := new(uint256.Int).AddOverflow(from, step)
		if overflow {
			sum = c.MaxPole.Clone()
		}
		to = sum
	} else {
		to = number.SubFloor(from, step)
	}

	return number.Clamp(to, c.MinPole, c.MaxPole)
}
