package devices

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim"
	"github.com/logicsim/logicsim/sim/logic"
)

// GateKind selects the boolean function of a Gate.
type GateKind string

const (
	AND  GateKind = "AND"
	NAND GateKind = "NAND"
	OR   GateKind = "OR"
	NOR  GateKind = "NOR"
	EQU  GateKind = "EQU" // all inputs equal
	EOR  GateKind = "EOR" // inputs not all equal
)

// GateKinds lists the supported kinds.
var GateKinds = []GateKind{AND, NAND, OR, NOR, EQU, EOR}

// ParseGateKind maps a case-insensitive name to a GateKind.
func ParseGateKind(s string) (GateKind, error) {
	k := GateKind(strings.ToUpper(s))
	for _, g := range GateKinds {
		if g == k {
			return k, nil
		}
	}
	return "", errors.Errorf("unknown gate %q (valid: %v)", s, GateKinds)
}

// MaxGateInputs bounds the number of inputs of a Gate: its truth table holds
// 2^n entries.
const MaxGateInputs = 16

// truthTable returns the 2^n entries of kind over n inputs, entry i being the
// output for the input bits of i (first input least significant).
func (k GateKind) truthTable(n int) (string, error) {
	if n < 1 || n > MaxGateInputs {
		return "", errors.Wrapf(sim.ErrAddress, "gate has %d inputs, want 1 to %d", n, MaxGateInputs)
	}
	size := 1 << n
	switch k {
	case AND:
		return strings.Repeat("0", size-1) + "1", nil
	case NAND:
		return strings.Repeat("1", size-1) + "0", nil
	case OR:
		return "0" + strings.Repeat("1", size-1), nil
	case NOR:
		return "1" + strings.Repeat("0", size-1), nil
	case EQU:
		return "1" + strings.Repeat("0", size-2) + "1", nil
	case EOR:
		return "0" + strings.Repeat("1", size-2) + "0", nil
	}
	return "", errors.Errorf("unknown gate %q", string(k))
}

// Gate applies a boolean function bitwise across its A inputs: bit i of Q is
// the function of bit i of every input. All inputs must be Width bits wide.
// An undefined bit in any input makes the matching output bit undefined.
type Gate struct {
	base
	Kind  GateKind
	Width int

	table *sim.Table
	q     *sim.Port
	a     []*sim.Port
}

// NewGate returns a gate of the given kind operating on width-bit buses.
func NewGate(kind GateKind, width int) *Gate {
	return &Gate{Kind: kind, Width: width}
}

func (g *Gate) GenericName() string { return "gate_" + string(g.Kind) }

func (g *Gate) Start(d *sim.Device) error {
	if _, err := g.Kind.truthTable(1); err != nil {
		return err
	}
	g.dev = d
	q, err := d.AddOutput(g.Width, sim.Named("Q"), sim.FillUndefined)
	if err != nil {
		return err
	}
	g.q = q
	return nil
}

// Q returns the gate output.
func (g *Gate) Q() *sim.Port { return g.q }

func (g *Gate) Roles() []string { return []string{"A"} }

func (g *Gate) Connect(role string, src *sim.Port, taps []int) error {
	if role != "A" {
		return unknownRole(role, g.Roles())
	}
	p, err := g.multi(role, src, taps)
	if err != nil {
		return err
	}
	g.a = append(g.a, p)
	g.table = nil
	return nil
}

// Check builds the truth table once the number of inputs is final.
func (g *Gate) Check(*sim.Device) error {
	if len(g.a) == 0 {
		return errors.New("gate has no input")
	}
	if len(g.a) > MaxGateInputs {
		return errors.Wrapf(sim.ErrAddress, "gate has %d inputs, at most %d", len(g.a), MaxGateInputs)
	}
	for _, p := range g.a {
		if p.Size() != g.Width {
			return errors.Wrapf(sim.ErrWidthMismatch, "input %s is %d bits, gate is %d", p.Name(), p.Size(), g.Width)
		}
	}
	tt, err := g.Kind.truthTable(len(g.a))
	if err != nil {
		return err
	}
	g.table, err = sim.ParseTable(tt, 1, sim.FillUndefined, nil)
	return err
}

func (g *Gate) UpdateOutputs(*sim.Device, int64) error {
	if g.table == nil {
		if err := g.Check(nil); err != nil {
			return err
		}
	}
	return g.q.Set(lutBitwise(g.table, g.Width, g.a))
}

// lutBitwise looks up every bit position of the inputs in a one-bit table.
func lutBitwise(t *sim.Table, width int, inputs []*sim.Port) logic.Vector {
	out := logic.Undefs(width)
	addr := make([]logic.Bit, len(inputs))
	for i := 0; i < width; i++ {
		for j, p := range inputs {
			addr[j] = p.Bit(i)
		}
		v, _ := t.Lookup(logic.FromBits(addr...))
		out = out.With(i, v.Bit(0))
	}
	return out
}

func (g *Gate) Display(w io.Writer, d *sim.Device) {
	header(w, "gate_"+string(g.Kind), d)
	field(w, "bits", g.Width)
	if g.table != nil {
		field(w, "table", g.table.String())
	}
	field(w, "value", "Q="+g.q.Get().MSBString())
}

// Not inverts the concatenation of its A inputs, which must be Width bits.
type Not struct {
	base
	Width int

	q *sim.Port
	a []*sim.Port
}

// NewNot returns an inverter over width bits.
func NewNot(width int) *Not { return &Not{Width: width} }

func (n *Not) GenericName() string { return "gate_NOT" }

func (n *Not) Start(d *sim.Device) error {
	n.dev = d
	q, err := d.AddOutput(n.Width, sim.Named("Q"), sim.FillUndefined)
	if err != nil {
		return err
	}
	n.q = q
	return nil
}

// Q returns the inverted output.
func (n *Not) Q() *sim.Port { return n.q }

func (n *Not) Roles() []string { return []string{"A"} }

func (n *Not) Connect(role string, src *sim.Port, taps []int) error {
	if role != "A" {
		return unknownRole(role, n.Roles())
	}
	p, err := n.multi(role, src, taps)
	if err != nil {
		return err
	}
	n.a = append(n.a, p)
	return nil
}

func (n *Not) Check(*sim.Device) error {
	if w := sim.AddressWidth(n.a); w != n.Width {
		return errors.Wrapf(sim.ErrWidthMismatch, "inputs are %d bits, inverter is %d", w, n.Width)
	}
	return nil
}

func (n *Not) UpdateOutputs(*sim.Device, int64) error {
	v, err := sim.Address(n.a)
	if err != nil {
		return err
	}
	return n.q.Set(v.Not())
}

func (n *Not) Display(w io.Writer, d *sim.Device) {
	header(w, "gate_NOT", d)
	field(w, "bits", n.Width)
	field(w, "value", "Q="+n.q.Get().MSBString())
}
