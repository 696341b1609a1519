package devices

import (
	"io"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim"
	"github.com/logicsim/logicsim/sim/logic"
)

// Multiplexer routes one Width-bit slice of its data inputs to Q. The data
// inputs A are concatenated into 2^k slices, k being the width of the
// concatenated select inputs S; slice 0 holds the first bits of the first A
// input. An undefined select bit makes Q undefined.
type Multiplexer struct {
	base
	Width int
	Fill  sim.Fill

	q    *sim.Port
	a, s []*sim.Port
}

// NewMultiplexer returns a multiplexer with width-bit output.
func NewMultiplexer(width int) *Multiplexer {
	return &Multiplexer{Width: width, Fill: sim.FillUndefined}
}

func (m *Multiplexer) GenericName() string { return "mux" }

func (m *Multiplexer) Start(d *sim.Device) error {
	m.dev = d
	q, err := d.AddOutput(m.Width, sim.Named("Q"), m.Fill)
	if err != nil {
		return err
	}
	m.q = q
	return nil
}

// Q returns the selected output.
func (m *Multiplexer) Q() *sim.Port { return m.q }

func (m *Multiplexer) Roles() []string { return []string{"A", "S"} }

func (m *Multiplexer) Connect(role string, src *sim.Port, taps []int) error {
	var p *sim.Port
	var err error
	switch role {
	case "A":
		if p, err = m.multi(role, src, taps); err == nil {
			m.a = append(m.a, p)
		}
	case "S":
		if p, err = m.multi(role, src, taps); err == nil {
			m.s = append(m.s, p)
		}
	default:
		return unknownRole(role, m.Roles())
	}
	return err
}

func (m *Multiplexer) Check(*sim.Device) error {
	sel := sim.AddressWidth(m.s)
	if sel >= logic.MaxWidth {
		return errors.Wrapf(sim.ErrAddress, "select inputs are %d bits", sel)
	}
	want := m.Width << uint(sel)
	if got := sim.AddressWidth(m.a); got != want {
		return errors.Wrapf(sim.ErrAddress, "data inputs are %d bits, want %d x 2^%d = %d",
			got, m.Width, sel, want)
	}
	return nil
}

func (m *Multiplexer) UpdateOutputs(*sim.Device, int64) error {
	sel, err := sim.Address(m.s)
	if err != nil {
		return err
	}
	i, ok := sel.Uint64()
	if !ok {
		return m.q.Set(logic.Undefs(m.Width))
	}
	data, err := sim.Address(m.a)
	if err != nil {
		return err
	}
	lo := int(i) * m.Width
	v, err := data.Slice(lo, lo+m.Width)
	if err != nil {
		return err
	}
	return m.q.Set(v)
}

func (m *Multiplexer) Display(w io.Writer, d *sim.Device) {
	header(w, "multiplexer", d)
	field(w, "bits", m.Width)
	if sel, err := sim.Address(m.s); err == nil {
		field(w, "select", "S="+sel.MSBString())
	}
	if data, err := sim.Address(m.a); err == nil {
		field(w, "data", "A="+data.MSBString())
	}
	field(w, "value", "Q="+m.q.Get().MSBString())
}
