package devices

import (
	"io"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim"
	"github.com/logicsim/logicsim/sim/logic"
)

// Clock is a periodic pulse generator with a single output Q.
//
// Q is high when (t - Shift) mod Period < Width. With Count > 0 the waveform
// is followed while t < Count*Period and Q holds its last level afterwards;
// Count == 0 generates pulses forever. Q is defined at t = 0.
type Clock struct {
	base
	Period int64
	Width  int64
	Shift  int64
	Count  int64

	q *sim.Port
}

// NewClock returns a free-running clock.
func NewClock(period, width, shift int64) *Clock {
	return &Clock{Period: period, Width: width, Shift: shift}
}

func (c *Clock) GenericName() string { return "clk" }

func (c *Clock) Start(d *sim.Device) error {
	if c.Period <= 0 {
		return errors.Errorf("clock period %d must be positive", c.Period)
	}
	if c.Width < 0 || c.Width > c.Period {
		return errors.Errorf("clock width %d not in [0, %d]", c.Width, c.Period)
	}
	if c.Count < 0 {
		return errors.Errorf("clock count %d must not be negative", c.Count)
	}
	c.dev = d
	q, err := d.AddOutput(1, sim.Named("Q"), sim.FillUndefined)
	if err != nil {
		return err
	}
	c.q = q
	return q.SetBit(c.level(0))
}

// Q returns the clock output.
func (c *Clock) Q() *sim.Port { return c.q }

func (c *Clock) level(t int64) logic.Bit {
	phase := (t - c.Shift) % c.Period
	if phase < 0 {
		phase += c.Period
	}
	return logic.BitFromBool(phase < c.Width)
}

func (c *Clock) UpdateOutputs(_ *sim.Device, now int64) error {
	if c.Count > 0 && now >= c.Count*c.Period {
		return nil
	}
	return c.q.SetBit(c.level(now))
}

func (c *Clock) Display(w io.Writer, d *sim.Device) {
	header(w, "clock", d)
	field(w, "period", c.Period)
	field(w, "width", c.Width)
	field(w, "shift", c.Shift)
	if c.Count > 0 {
		field(w, "count", c.Count)
	} else {
		field(w, "count", "unlimited")
	}
	field(w, "value", "Q="+c.q.Get().String())
}

// Reset is a one-shot start-up pulse: Q is low and P high while t < Width,
// then Q is high and P low for the rest of the run.
type Reset struct {
	base
	Width int64

	p, q *sim.Port
}

// NewReset returns a reset pulse lasting width ticks.
func NewReset(width int64) *Reset { return &Reset{Width: width} }

func (r *Reset) GenericName() string { return "rst" }

func (r *Reset) Start(d *sim.Device) error {
	if r.Width < 0 {
		return errors.Errorf("reset width %d must not be negative", r.Width)
	}
	r.dev = d
	var err error
	if r.p, err = d.AddOutput(1, sim.Named("P"), sim.FillUndefined); err != nil {
		return err
	}
	if r.q, err = d.AddOutput(1, sim.Named("Q"), sim.FillUndefined); err != nil {
		return err
	}
	return r.UpdateOutputs(d, 0)
}

// P returns the active-high output.
func (r *Reset) P() *sim.Port { return r.p }

// Q returns the active-low output.
func (r *Reset) Q() *sim.Port { return r.q }

func (r *Reset) UpdateOutputs(_ *sim.Device, now int64) error {
	active := now < r.Width
	if err := r.p.SetBit(logic.BitFromBool(active)); err != nil {
		return err
	}
	return r.q.SetBit(logic.BitFromBool(!active))
}

func (r *Reset) Display(w io.Writer, d *sim.Device) {
	header(w, "reset", d)
	field(w, "width", r.Width)
	field(w, "value", "P="+r.p.Get().String()+" Q="+r.q.Get().String())
}
