package sim

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim/logic"
	"github.com/logicsim/logicsim/sim/trace"
)

// SignalID identifies a port within its System. Ids are assigned in
// registration order and never reused.
type SignalID int

// String returns the compact trace identifier, e.g. "W12".
func (id SignalID) String() string { return fmt.Sprintf("W%d", id) }

// network is the port table shared by every device of one System. Input ports
// reach their source through it by SignalID instead of holding a pointer to a
// port owned by another device.
type network struct {
	ports  []*Port
	rng    *PartitionedRNG
	frozen bool // no more registration once the trace is open
}

func newNetwork(rng *PartitionedRNG) *network {
	return &network{rng: rng}
}

func (n *network) register(p *Port) {
	p.id = SignalID(len(n.ports))
	n.ports = append(n.ports, p)
}

func (n *network) lookup(id SignalID) *Port {
	return n.ports[id]
}

// Port is a named, fixed-width connection point of a device.
//
// Output ports hold the state their device computes. Input ports mirror a
// selection of bits (the tap) of one output port, the source, and are only
// written by Update during the input phase of a step.
type Port struct {
	id    SignalID
	name  string // "" means not exported
	owner *Device
	net   *network

	state    logic.Vector
	upToDate bool
	exported bool // true once the state has been written to a trace frame
	rising   bool
	falling  bool

	input bool
	src   SignalID
	taps  []int // nil means every bit of the source
}

// ID returns the signal id of p.
func (p *Port) ID() SignalID { return p.id }

// Name returns the registered name, "" for an unnamed port.
func (p *Port) Name() string { return p.name }

// Device returns the device owning p.
func (p *Port) Device() *Device { return p.owner }

// IsInput reports whether p is an input port.
func (p *Port) IsInput() bool { return p.input }

// Size returns the fixed width of p.
func (p *Port) Size() int { return p.state.Len() }

// Path returns the dotted device path followed by the port name.
func (p *Port) Path() string {
	name := p.name
	if name == "" {
		name = p.id.String()
	}
	return p.owner.Path() + "." + name
}

// Source returns the port an input port mirrors, nil for output ports.
func (p *Port) Source() *Port {
	if !p.input {
		return nil
	}
	return p.net.lookup(p.src)
}

// Taps returns the source bit positions mirrored by an input port. A nil
// result means every bit of the source, in order.
func (p *Port) Taps() []int { return p.taps }

// Get returns the current state.
func (p *Port) Get() logic.Vector { return p.state }

// GetBits returns the projection of the current state on taps.
func (p *Port) GetBits(taps []int) (logic.Vector, error) {
	v, err := p.state.Project(taps)
	if err != nil {
		return logic.Vector{}, errors.Wrap(err, p.Path())
	}
	return v, nil
}

// Bit returns bit i of the current state.
func (p *Port) Bit(i int) logic.Bit { return p.state.Bit(i) }

// Set assigns a new state to an output port. The width of v must match the
// port width. Input ports only change through Update.
//
// Set refreshes the up-to-date flag against the previous state, and for
// single-bit ports the rising and falling flags. A port is expected to be
// assigned at most once per step: a later assignment in the same step
// overrides the flags of an earlier one.
func (p *Port) Set(v logic.Vector) error {
	if p.input {
		return errors.Wrapf(ErrState, "%s: input ports are only written by Update", p.Path())
	}
	return p.set(v)
}

func (p *Port) set(v logic.Vector) error {
	if v.Len() != p.state.Len() {
		return errors.Wrapf(ErrWidthMismatch, "%s: port is %d bits, value %s is %d bits",
			p.Path(), p.state.Len(), v.MSBString(), v.Len())
	}
	prev := p.state
	p.upToDate = prev == v
	if v.Len() == 1 {
		was, now := prev.Bit(0), v.Bit(0)
		p.rising = was == logic.Low && now == logic.High
		p.falling = was == logic.High && now == logic.Low
	}
	p.state = v
	return nil
}

// SetBit assigns a single-bit port.
func (p *Port) SetBit(b logic.Bit) error {
	return p.Set(logic.Filled(1, b))
}

// Update latches an input port from its source. It is a no-op on output
// ports.
func (p *Port) Update() error {
	if !p.input {
		return nil
	}
	v, err := p.net.lookup(p.src).GetBits(p.taps)
	if err != nil {
		return err
	}
	return p.set(v)
}

// Rising reports whether the last assignment of a single-bit port was 0 to 1.
func (p *Port) Rising() bool { return p.rising }

// Falling reports whether the last assignment of a single-bit port was 1 to 0.
func (p *Port) Falling() bool { return p.falling }

// UpToDate reports whether the last assignment left the state unchanged.
func (p *Port) UpToDate() bool { return p.upToDate }

// Export returns the value-change token of p, or "" when p is unnamed or
// its state was already written. The first call on a named port always
// reports the start-up state.
func (p *Port) Export() string {
	if p.name == "" || (p.upToDate && p.exported) {
		return ""
	}
	p.upToDate = true
	p.exported = true
	return trace.Change(p.id.String(), p.state)
}

// Label returns the trace label <device>_<port>, with a bit range for buses.
func (p *Port) Label() string {
	return trace.Label(p.owner.name, p.name, p.Size())
}

func (p *Port) traceVar() trace.Var {
	return trace.Var{Width: p.Size(), ID: p.id.String(), Label: p.Label()}
}

func (p *Port) String() string {
	dir := "out"
	if p.input {
		dir = "in"
	}
	return fmt.Sprintf("%s %s[%d] = %s", dir, p.Path(), p.Size(), p.state.MSBString())
}
