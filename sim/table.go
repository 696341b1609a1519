package sim

import (
	"math/bits"
	"math/rand"
	"strings"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim/logic"
)

// Table is a lookup table of 2^n words of equal width, addressed by an n-bit
// vector.
type Table struct {
	width    int
	addrBits int
	words    []logic.Vector
}

// NewTable builds a table from its words. The number of words must be a
// power of two and every word must be width bits wide.
func NewTable(width int, words []logic.Vector) (*Table, error) {
	if width < 1 || width > logic.MaxWidth {
		return nil, errors.Wrapf(ErrWidthMismatch, "table width %d not in [1, %d]", width, logic.MaxWidth)
	}
	if len(words) == 0 || len(words)&(len(words)-1) != 0 {
		return nil, errors.Wrapf(ErrAddress, "table has %d words, want a power of two", len(words))
	}
	for i, w := range words {
		if w.Len() != width {
			return nil, errors.Wrapf(ErrWidthMismatch, "table word %d is %d bits, want %d", i, w.Len(), width)
		}
	}
	return &Table{
		width:    width,
		addrBits: bits.TrailingZeros(uint(len(words))),
		words:    append([]logic.Vector(nil), words...),
	}, nil
}

// ParseTable splits a flat index-0-first bit string into words of width bits
// and pads it to a power of two words following fill. A trailing partial
// word is completed with fill as well.
func ParseTable(s string, width int, fill Fill, r *rand.Rand) (*Table, error) {
	if width < 1 || width > logic.MaxWidth {
		return nil, errors.Wrapf(ErrWidthMismatch, "table width %d not in [1, %d]", width, logic.MaxWidth)
	}
	s = strings.Join(strings.Fields(s), "")
	var words []logic.Vector
	for len(s) > 0 {
		n := min(width, len(s))
		w, err := logic.Parse(s[:n])
		if err != nil {
			return nil, errors.Wrapf(err, "table word %d", len(words))
		}
		if n < width {
			w, _ = logic.Concat(w, fill.Vector(width-n, r))
		}
		words = append(words, w)
		s = s[n:]
	}
	size := 1
	for size < len(words) {
		size <<= 1
	}
	for len(words) < size {
		words = append(words, fill.Vector(width, r))
	}
	return NewTable(width, words)
}

// Width returns the word width.
func (t *Table) Width() int { return t.width }

// AddressBits returns n, the table holding 2^n words.
func (t *Table) AddressBits() int { return t.addrBits }

// Len returns the number of words.
func (t *Table) Len() int { return len(t.words) }

// Word returns word i.
func (t *Table) Word(i int) logic.Vector { return t.words[i] }

// Lookup returns the word at addr. If any address bit is undefined the result
// is all undefined.
func (t *Table) Lookup(addr logic.Vector) (logic.Vector, error) {
	if addr.Len() != t.addrBits {
		return logic.Vector{}, errors.Wrapf(ErrAddress, "address is %d bits, table needs %d", addr.Len(), t.addrBits)
	}
	i, ok := addr.Uint64()
	if !ok {
		return logic.Undefs(t.width), nil
	}
	return t.words[i], nil
}

// String renders the words index-0-first, most significant bit first.
func (t *Table) String() string {
	parts := make([]string, len(t.words))
	for i, w := range t.words {
		parts[i] = w.MSBString()
	}
	return strings.Join(parts, " ")
}

// Address concatenates the states of ports in registration order: bit 0 of
// the first port is the least significant address bit.
func Address(ports []*Port) (logic.Vector, error) {
	vs := make([]logic.Vector, len(ports))
	for i, p := range ports {
		vs[i] = p.Get()
	}
	return logic.Concat(vs...)
}

// AddressWidth returns the width Address would produce for ports.
func AddressWidth(ports []*Port) int {
	n := 0
	for _, p := range ports {
		n += p.Size()
	}
	return n
}
