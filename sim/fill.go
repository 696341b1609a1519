package sim

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim/logic"
)

// Fill is the start-up policy for the state of a new output port.
type Fill byte

const (
	FillLow       Fill = '0'
	FillHigh      Fill = '1'
	FillUndefined Fill = 'U'
	FillRandom    Fill = 'R'
)

// ParseFill maps "0", "1", "U" and "R" to a Fill. The empty string is
// FillUndefined.
func ParseFill(s string) (Fill, error) {
	switch s {
	case "0":
		return FillLow, nil
	case "1":
		return FillHigh, nil
	case "", "U", "u":
		return FillUndefined, nil
	case "R", "r":
		return FillRandom, nil
	}
	return 0, errors.Errorf("unknown fill %q (valid: 0, 1, U, R)", s)
}

func (f Fill) String() string { return string(f) }

// Vector returns n bits following policy f. r is only used by FillRandom and
// may be nil otherwise.
func (f Fill) Vector(n int, r *rand.Rand) logic.Vector {
	switch f {
	case FillLow:
		return logic.Filled(n, logic.Low)
	case FillHigh:
		return logic.Filled(n, logic.High)
	case FillRandom:
		return logic.Random(n, r)
	default:
		return logic.Undefs(n)
	}
}
