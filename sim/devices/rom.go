package devices

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim"
)

// ROM is a read-only memory: Q is the word addressed by the concatenation of
// its A inputs. The table is padded to a power of two words with Fill.
type ROM struct {
	base
	Bits  string // flat table, bit 0 of word 0 first
	Width int
	Fill  sim.Fill

	table *sim.Table
	q     *sim.Port
	a     []*sim.Port
}

// NewROM returns a ROM holding the words of table, each width bits wide.
func NewROM(table string, width int, fill sim.Fill) *ROM {
	return &ROM{Bits: table, Width: width, Fill: fill}
}

func (r *ROM) GenericName() string { return "rom" }

func (r *ROM) Start(d *sim.Device) error {
	r.dev = d
	t, err := sim.ParseTable(r.Bits, r.Width, r.Fill, d.Rand(sim.SubsystemTables))
	if err != nil {
		return err
	}
	r.table = t
	q, err := d.AddOutput(r.Width, sim.Named("Q"), sim.FillUndefined)
	if err != nil {
		return err
	}
	r.q = q
	return nil
}

// Q returns the data output.
func (r *ROM) Q() *sim.Port { return r.q }

// Table returns the padded table.
func (r *ROM) Table() *sim.Table { return r.table }

func (r *ROM) Roles() []string { return []string{"A"} }

func (r *ROM) Connect(role string, src *sim.Port, taps []int) error {
	if role != "A" {
		return unknownRole(role, r.Roles())
	}
	p, err := r.multi(role, src, taps)
	if err != nil {
		return err
	}
	r.a = append(r.a, p)
	return nil
}

func (r *ROM) Check(*sim.Device) error {
	if n := sim.AddressWidth(r.a); n != r.table.AddressBits() {
		return errors.Wrapf(sim.ErrAddress, "address inputs are %d bits, table of %d words needs %d",
			n, r.table.Len(), r.table.AddressBits())
	}
	return nil
}

func (r *ROM) UpdateOutputs(*sim.Device, int64) error {
	addr, err := sim.Address(r.a)
	if err != nil {
		return err
	}
	v, err := r.table.Lookup(addr)
	if err != nil {
		return err
	}
	return r.q.Set(v)
}

func (r *ROM) Display(w io.Writer, d *sim.Device) {
	header(w, "read only memory", d)
	field(w, "length", fmt.Sprintf("%dx%d", r.table.Len(), r.Width))
	field(w, "value", "Q="+r.q.Get().MSBString())
	field(w, "table", r.table.String())
}
