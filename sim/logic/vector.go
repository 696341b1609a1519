package logic

import (
	"math/bits"
	"math/rand"
	"strings"

	"github.com/pkg/errors"
)

// MaxWidth is the widest vector a port can carry.
const MaxWidth = 64

var (
	// ErrWidth is returned when a width is outside [0, MaxWidth] or when two
	// widths that must agree do not.
	ErrWidth = errors.New("invalid vector width")
	// ErrIndex is returned for bit positions outside a vector.
	ErrIndex = errors.New("bit index out of range")
)

// Vector is a fixed-width sequence of tri-state bits.
//
// The representation is two parallel masks: val holds the level of every
// defined bit and def marks which bits are defined. Positions that are
// undefined or beyond the width are always zero in both masks, so two
// vectors are equal exactly when == says so.
type Vector struct {
	n   uint8
	val uint64
	def uint64
}

func mask(n int) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

func checkWidth(n int) {
	if n < 0 || n > MaxWidth {
		panic(errors.Wrapf(ErrWidth, "width %d", n))
	}
}

// CheckWidth reports whether n is a usable vector width.
func CheckWidth(n int) error {
	if n < 0 || n > MaxWidth {
		return errors.Wrapf(ErrWidth, "width %d not in [0, %d]", n, MaxWidth)
	}
	return nil
}

// Filled returns an n-bit vector with every bit set to b.
// It panics if n is not a valid width.
func Filled(n int, b Bit) Vector {
	checkWidth(n)
	v := Vector{n: uint8(n)}
	switch b {
	case Low:
		v.def = mask(n)
	case High:
		v.def = mask(n)
		v.val = mask(n)
	}
	return v
}

// Undefs returns an n-bit all-undefined vector.
func Undefs(n int) Vector { return Filled(n, Undefined) }

// FromUint64 returns the n low bits of x, bit 0 first.
func FromUint64(n int, x uint64) Vector {
	checkWidth(n)
	m := mask(n)
	return Vector{n: uint8(n), val: x & m, def: m}
}

// FromBits builds a vector from individual bits, bs[0] being bit 0.
func FromBits(bs ...Bit) Vector {
	checkWidth(len(bs))
	v := Vector{n: uint8(len(bs))}
	for i, b := range bs {
		v = v.With(i, b)
	}
	return v
}

// Random returns n random defined bits drawn from r.
func Random(n int, r *rand.Rand) Vector {
	return FromUint64(n, r.Uint64())
}

// Parse reads a vector from its index-0-first string form, e.g. "01U1".
func Parse(s string) (Vector, error) {
	if len(s) > MaxWidth {
		return Vector{}, errors.Wrapf(ErrWidth, "%q is %d bits wide", s, len(s))
	}
	v := Vector{n: uint8(len(s))}
	for i := 0; i < len(s); i++ {
		b, ok := BitFromChar(s[i])
		if !ok {
			return Vector{}, errors.Errorf("invalid bit %q at position %d in %q", s[i], i, s)
		}
		v = v.With(i, b)
	}
	return v, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Vector {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Len returns the width of v.
func (v Vector) Len() int { return int(v.n) }

// Bit returns bit i. It panics if i is out of range.
func (v Vector) Bit(i int) Bit {
	if i < 0 || i >= int(v.n) {
		panic(errors.Wrapf(ErrIndex, "bit %d of %d", i, v.n))
	}
	m := uint64(1) << uint(i)
	switch {
	case v.def&m == 0:
		return Undefined
	case v.val&m != 0:
		return High
	default:
		return Low
	}
}

// With returns a copy of v with bit i set to b.
func (v Vector) With(i int, b Bit) Vector {
	if i < 0 || i >= int(v.n) {
		panic(errors.Wrapf(ErrIndex, "bit %d of %d", i, v.n))
	}
	m := uint64(1) << uint(i)
	v.val &^= m
	v.def &^= m
	switch b {
	case Low:
		v.def |= m
	case High:
		v.def |= m
		v.val |= m
	}
	return v
}

// Equal reports whether v and w have the same width and the same bits.
func (v Vector) Equal(w Vector) bool { return v == w }

// AnyUndefined reports whether at least one bit of v is undefined.
func (v Vector) AnyUndefined() bool { return v.def != mask(int(v.n)) }

// Uint64 returns the numeric value of v, bit 0 being the least significant
// bit. ok is false when any bit is undefined.
func (v Vector) Uint64() (x uint64, ok bool) {
	if v.AnyUndefined() {
		return 0, false
	}
	return v.val, true
}

// OnesCount returns the number of High bits.
func (v Vector) OnesCount() int { return bits.OnesCount64(v.val) }

// Not inverts every defined bit.
func (v Vector) Not() Vector {
	v.val = ^v.val & v.def
	return v
}

// Slice returns bits [lo, hi) of v.
func (v Vector) Slice(lo, hi int) (Vector, error) {
	if lo < 0 || hi > int(v.n) || lo > hi {
		return Vector{}, errors.Wrapf(ErrIndex, "slice [%d:%d] of %d bits", lo, hi, v.n)
	}
	m := mask(hi - lo)
	return Vector{n: uint8(hi - lo), val: v.val >> uint(lo) & m, def: v.def >> uint(lo) & m}, nil
}

// Project returns the bits of v at the given positions, in the order given.
// Positions may repeat. A nil taps slice returns v unchanged.
func (v Vector) Project(taps []int) (Vector, error) {
	if taps == nil {
		return v, nil
	}
	if len(taps) > MaxWidth {
		return Vector{}, errors.Wrapf(ErrWidth, "%d taps", len(taps))
	}
	r := Vector{n: uint8(len(taps))}
	for i, t := range taps {
		if t < 0 || t >= int(v.n) {
			return Vector{}, errors.Wrapf(ErrIndex, "tap %d of %d-bit vector", t, v.n)
		}
		m := uint64(1) << uint(t)
		if v.def&m != 0 {
			r.def |= 1 << uint(i)
			if v.val&m != 0 {
				r.val |= 1 << uint(i)
			}
		}
	}
	return r, nil
}

// Concat joins vectors so that the first bit of vs[0] becomes bit 0 of the
// result, followed by the bits of vs[1], and so on.
func Concat(vs ...Vector) (Vector, error) {
	var r Vector
	for _, v := range vs {
		n := int(r.n) + int(v.n)
		if n > MaxWidth {
			return Vector{}, errors.Wrapf(ErrWidth, "concatenation is %d bits wide", n)
		}
		r.val |= v.val << uint(r.n)
		r.def |= v.def << uint(r.n)
		r.n = uint8(n)
	}
	return r, nil
}

// String renders v index-0-first, e.g. "01U1".
func (v Vector) String() string {
	var b strings.Builder
	b.Grow(int(v.n))
	for i := 0; i < int(v.n); i++ {
		b.WriteByte(v.Bit(i).Char())
	}
	return b.String()
}

// MSBString renders v most significant bit first, as waveform viewers
// expect it.
func (v Vector) MSBString() string {
	var b strings.Builder
	b.Grow(int(v.n))
	for i := int(v.n) - 1; i >= 0; i-- {
		b.WriteByte(v.Bit(i).Char())
	}
	return b.String()
}
