// Package logic provides the tri-state bit and the fixed-width bit-vector
// values exchanged between simulated devices.
//
// Bit index 0 is the first element of a vector and the least significant bit
// of any numeric interpretation. String forms follow the same order: the first
// character is bit 0. Use MSBString for the conventional most-significant-first
// rendering.
package logic

// Bit is a single tri-state logic level.
type Bit uint8

const (
	// Low is logical 0.
	Low Bit = iota
	// High is logical 1.
	High
	// Undefined is the unknown level ('U'). It propagates through
	// combinational logic instead of raising an error.
	Undefined
)

// Char returns the trace character for b: '0', '1' or 'U'.
func (b Bit) Char() byte {
	switch b {
	case Low:
		return '0'
	case High:
		return '1'
	default:
		return 'U'
	}
}

func (b Bit) String() string { return string(b.Char()) }

// Not inverts a defined bit. Undefined stays undefined.
func (b Bit) Not() Bit {
	switch b {
	case Low:
		return High
	case High:
		return Low
	default:
		return Undefined
	}
}

// BitFromChar maps a character to a Bit. It accepts '0', '1' and the
// undefined spellings 'U', 'u', 'X', 'x'.
func BitFromChar(c byte) (Bit, bool) {
	switch c {
	case '0':
		return Low, true
	case '1':
		return High, true
	case 'U', 'u', 'X', 'x':
		return Undefined, true
	}
	return Undefined, false
}

// BitFromBool returns High for true and Low for false.
func BitFromBool(v bool) Bit {
	if v {
		return High
	}
	return Low
}
