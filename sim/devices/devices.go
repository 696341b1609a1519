// Package devices is the library of concrete devices: clocks, reset pulses,
// counters, ROMs, gates, registers and multiplexers.
//
// Every device is a sim.Behavior. It is registered with System.Add or
// Device.AddChild, after which its inputs are bound with Connect:
//
//	cnt := devices.NewCounter(4)
//	if _, err := sys.Add(sim.Named("cnt"), cnt); err != nil { ... }
//	if err := cnt.Connect("clk", clk.Q(), nil); err != nil { ... }
//
// Input roles that accept several ports ("A", "S") register them in call
// order; the first one holds the least significant address bits.
package devices

import (
	"fmt"
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim"
)

// ErrUnknownRole is returned by Connect for an input role a device does not
// have.
var ErrUnknownRole = errors.New("unknown input role")

// ErrNotStarted is returned when wiring a device that is not registered yet.
var ErrNotStarted = errors.New("device not registered")

// Connector is implemented by every device with inputs.
type Connector interface {
	sim.Behavior
	// Connect binds a new input of the given role to the bits taps of src.
	Connect(role string, src *sim.Port, taps []int) error
	// Roles lists the accepted input roles.
	Roles() []string
}

// Outputter exposes the output ports of a device by name.
type Outputter interface {
	Output(name string) (*sim.Port, bool)
}

// base carries the registered device of a behavior.
type base struct {
	dev *sim.Device
}

func (b *base) started() error {
	if b.dev == nil {
		return ErrNotStarted
	}
	return nil
}

// Output returns the output port registered as name.
func (b *base) Output(name string) (*sim.Port, bool) {
	if b.dev == nil {
		return nil, false
	}
	return b.dev.Output(name)
}

// single binds a one-off named input, e.g. "clk".
func (b *base) single(role string, src *sim.Port, taps []int) (*sim.Port, error) {
	if err := b.started(); err != nil {
		return nil, err
	}
	return b.dev.AddInput(src, sim.Named(role), taps)
}

// multi binds one more input of a repeatable role, named A0, A1, ...
func (b *base) multi(role string, src *sim.Port, taps []int) (*sim.Port, error) {
	if err := b.started(); err != nil {
		return nil, err
	}
	return b.dev.AddInput(src, sim.Generic(role), taps)
}

func unknownRole(role string, roles []string) error {
	sorted := append([]string(nil), roles...)
	sort.Strings(sorted)
	return errors.Wrapf(ErrUnknownRole, "%q (valid: %v)", role, sorted)
}

// header writes the first display line: <kind> name.
func header(w io.Writer, kind string, d *sim.Device) {
	name := d.Name()
	if name == "" {
		name = "(anonymous)"
	}
	fmt.Fprintf(w, "<%s> %s\n", kind, name)
}

func field(w io.Writer, key string, value any) {
	fmt.Fprintf(w, "  %-7s %v\n", key, value)
}

// edge describes a single-bit control input for display.
func edge(p *sim.Port) string {
	s := p.Get().String()
	switch {
	case p.Rising():
		s += ", rising"
	case p.Falling():
		s += ", falling"
	}
	return s
}
