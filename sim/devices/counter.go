package devices

import (
	"io"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim"
	"github.com/logicsim/logicsim/sim/logic"
)

// Counter is a binary up-counter of Width bits with output Q.
//
// A low clr input clears Q to zero whatever clk does. Otherwise every rising
// edge of clk increments Q modulo 2^Width. An undefined count stays
// undefined when incremented. Q starts following Fill, random by default.
type Counter struct {
	base
	Width int
	Fill  sim.Fill

	q, clk, clr *sim.Port
}

// NewCounter returns a counter of width bits.
func NewCounter(width int) *Counter { return &Counter{Width: width, Fill: sim.FillRandom} }

func (c *Counter) GenericName() string { return "cnt" }

func (c *Counter) Start(d *sim.Device) error {
	c.dev = d
	q, err := d.AddOutput(c.Width, sim.Named("Q"), c.Fill)
	if err != nil {
		return err
	}
	c.q = q
	return nil
}

// Q returns the count output.
func (c *Counter) Q() *sim.Port { return c.q }

func (c *Counter) Roles() []string { return []string{"clk", "clr"} }

func (c *Counter) Connect(role string, src *sim.Port, taps []int) error {
	var err error
	switch role {
	case "clk":
		c.clk, err = c.single(role, src, taps)
	case "clr":
		c.clr, err = c.single(role, src, taps)
	default:
		return unknownRole(role, c.Roles())
	}
	return err
}

func (c *Counter) Check(*sim.Device) error {
	return checkControls(c.clk, c.clr)
}

func (c *Counter) UpdateOutputs(*sim.Device, int64) error {
	if c.clr != nil && c.clr.Bit(0) == logic.Low {
		return c.q.Set(logic.Filled(c.Width, logic.Low))
	}
	if c.clk != nil && c.clk.Rising() {
		return c.q.Set(increment(c.q.Get()))
	}
	return nil
}

func increment(v logic.Vector) logic.Vector {
	n, ok := v.Uint64()
	if !ok {
		return logic.Undefs(v.Len())
	}
	return logic.FromUint64(v.Len(), n+1)
}

func (c *Counter) Display(w io.Writer, d *sim.Device) {
	header(w, "counter", d)
	if c.clk != nil {
		field(w, "trigger", edge(c.clk))
	}
	if c.clr != nil {
		field(w, "clear", c.clr.Get())
	}
	field(w, "size", c.Width)
	field(w, "value", "Q="+c.q.Get().MSBString())
}

// checkControls requires single-bit clk and clr inputs when they are bound.
func checkControls(ports ...*sim.Port) error {
	for _, p := range ports {
		if p != nil && p.Size() != 1 {
			return errors.Wrapf(sim.ErrWidthMismatch, "control input %s is %d bits, want 1", p.Name(), p.Size())
		}
	}
	return nil
}

// Register latches the concatenation of its A inputs into Q on every rising
// edge of clk. A low clr input clears Q.
type Register struct {
	base
	Width int
	Fill  sim.Fill

	q, clk, clr *sim.Port
	a           []*sim.Port
}

// NewRegister returns a register of width bits starting undefined.
func NewRegister(width int) *Register {
	return &Register{Width: width, Fill: sim.FillUndefined}
}

func (r *Register) GenericName() string { return "reg" }

func (r *Register) Start(d *sim.Device) error {
	r.dev = d
	q, err := d.AddOutput(r.Width, sim.Named("Q"), r.Fill)
	if err != nil {
		return err
	}
	r.q = q
	return nil
}

// Q returns the register output.
func (r *Register) Q() *sim.Port { return r.q }

func (r *Register) Roles() []string { return []string{"A", "clk", "clr"} }

func (r *Register) Connect(role string, src *sim.Port, taps []int) error {
	var err error
	switch role {
	case "A":
		var p *sim.Port
		if p, err = r.multi(role, src, taps); err == nil {
			r.a = append(r.a, p)
		}
	case "clk":
		r.clk, err = r.single(role, src, taps)
	case "clr":
		r.clr, err = r.single(role, src, taps)
	default:
		return unknownRole(role, r.Roles())
	}
	return err
}

func (r *Register) Check(*sim.Device) error {
	if n := sim.AddressWidth(r.a); n != r.Width {
		return errors.Wrapf(sim.ErrWidthMismatch, "data inputs are %d bits, register is %d", n, r.Width)
	}
	return checkControls(r.clk, r.clr)
}

func (r *Register) UpdateOutputs(*sim.Device, int64) error {
	if r.clr != nil && r.clr.Bit(0) == logic.Low {
		return r.q.Set(logic.Filled(r.Width, logic.Low))
	}
	if r.clk != nil && r.clk.Rising() {
		v, err := sim.Address(r.a)
		if err != nil {
			return err
		}
		return r.q.Set(v)
	}
	return nil
}

func (r *Register) Display(w io.Writer, d *sim.Device) {
	header(w, "register", d)
	if r.clk != nil {
		field(w, "clock", edge(r.clk))
	}
	if r.clr != nil {
		field(w, "clear", r.clr.Get())
	}
	field(w, "bits", r.Width)
	if in, err := sim.Address(r.a); err == nil {
		field(w, "input", "A="+in.MSBString())
	}
	field(w, "output", "Q="+r.q.Get().MSBString())
}
