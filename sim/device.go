package sim

import (
	"fmt"
	"io"
	"math/rand"
	"strings"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim/logic"
	"github.com/logicsim/logicsim/sim/trace"
)

// Behavior is the device-specific part of a Device: what it creates at
// registration and how it computes its outputs.
type Behavior interface {
	// Start is called once when the device is registered with its parent. It
	// creates the device's ports and children.
	Start(d *Device) error
	// UpdateOutputs computes the outputs of d for time now from the inputs
	// latched on the previous step. Children have already been updated.
	UpdateOutputs(d *Device, now int64) error
	// Display writes a human-readable description of d's configuration.
	Display(w io.Writer, d *Device)
}

// Checker is implemented by behaviors that validate their wiring once the
// whole circuit is built, before the trace is opened.
type Checker interface {
	Check(d *Device) error
}

// GenericNamer supplies the base name used when a device is registered under
// Generic("").
type GenericNamer interface {
	GenericName() string
}

// Base is a Behavior with no ports and nothing to compute. Embed it to
// implement only the methods a device needs.
type Base struct{}

func (Base) Start(*Device) error                { return nil }
func (Base) UpdateOutputs(*Device, int64) error { return nil }
func (Base) Display(w io.Writer, d *Device)     { DisplayPorts(w, d) }

// Group is a pure container: a device whose only role is to scope its
// children in the trace.
type Group struct{ Base }

// GenericName implements GenericNamer.
func (Group) GenericName() string { return "G" }

// Device is a node of the simulated hierarchy. It owns its ports and child
// devices; what it computes is delegated to its Behavior.
type Device struct {
	name     string
	behavior Behavior
	parent   *Device
	net      *network

	inputs   []*Port
	outputs  []*Port
	children []*Device
}

// Name returns the registered name, "" for an anonymous device.
func (d *Device) Name() string { return d.name }

// Behavior returns the behavior d was registered with.
func (d *Device) Behavior() Behavior { return d.behavior }

// Parent returns the enclosing device, nil for the System root.
func (d *Device) Parent() *Device { return d.parent }

// Inputs returns the input ports in registration order.
func (d *Device) Inputs() []*Port { return d.inputs }

// Outputs returns the output ports in registration order.
func (d *Device) Outputs() []*Port { return d.outputs }

// Children returns the child devices in registration order.
func (d *Device) Children() []*Device { return d.children }

// Path returns the dotted names from the root's first level down to d.
// Anonymous devices show as "~".
func (d *Device) Path() string {
	if d.parent == nil {
		return d.name
	}
	name := d.name
	if name == "" {
		name = "~"
	}
	if d.parent.parent == nil {
		return name
	}
	return d.parent.Path() + "." + name
}

// Input returns the input port registered as name.
func (d *Device) Input(name string) (*Port, bool) { return findPort(d.inputs, name) }

// Output returns the output port registered as name.
func (d *Device) Output(name string) (*Port, bool) { return findPort(d.outputs, name) }

// Child returns the child device registered as name.
func (d *Device) Child(name string) (*Device, bool) {
	for _, c := range d.children {
		if c.name != "" && c.name == name {
			return c, true
		}
	}
	return nil, false
}

// Port returns the input or output port registered as name.
func (d *Device) Port(name string) (*Port, bool) {
	if p, ok := d.Input(name); ok {
		return p, true
	}
	return d.Output(name)
}

// Rand returns the generator of subsystem scoped to d, e.g. for padding a
// lookup table with random words.
func (d *Device) Rand(subsystem string) *rand.Rand {
	return d.net.rng.ForSubsystem(subsystem + ":" + d.rngPath())
}

// rngPath is Path with every anonymous segment numbered by its position
// among its siblings, so anonymous devices draw from distinct generators.
func (d *Device) rngPath() string {
	if d.parent == nil {
		return d.name
	}
	name := d.name
	if name == "" {
		name = fmt.Sprintf("~%d", d.index())
	}
	if d.parent.parent == nil {
		return name
	}
	return d.parent.rngPath() + "." + name
}

func (d *Device) index() int {
	for i, c := range d.parent.children {
		if c == d {
			return i
		}
	}
	return -1
}

func findPort(ports []*Port, name string) (*Port, bool) {
	for _, p := range ports {
		if p.name != "" && p.name == name {
			return p, true
		}
	}
	return nil, false
}

func (d *Device) mutable() error {
	if d.net.frozen {
		return errors.Wrapf(ErrState, "%s: circuit is frozen once tracing has started", d.Path())
	}
	return nil
}

// portNameTaken covers inputs and outputs together: both share one trace
// scope.
func (d *Device) portNameTaken(s string) bool {
	_, ok := d.Port(s)
	return ok
}

// AddOutput registers a new output port of the given width whose start-up
// state follows fill.
func (d *Device) AddOutput(width int, name Name, fill Fill) (*Port, error) {
	if err := d.mutable(); err != nil {
		return nil, err
	}
	if width < 1 || width > logic.MaxWidth {
		return nil, errors.Wrapf(ErrWidthMismatch, "%s: output %s: width %d not in [1, %d]",
			d.Path(), name, width, logic.MaxWidth)
	}
	n, err := name.resolve(d.portNameTaken)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: output", d.Path())
	}
	p := &Port{name: n, owner: d, net: d.net}
	d.net.register(p)
	if fill == FillRandom {
		p.state = fill.Vector(width, d.net.rng.ForSubsystem(SubsystemPort(d.rngPath()+"."+portLabel(p))))
	} else {
		p.state = fill.Vector(width, nil)
	}
	d.outputs = append(d.outputs, p)
	return p, nil
}

// AddInput registers a new input port mirroring the bits taps of src. A nil
// taps slice selects every bit of src. The port immediately takes the
// current value of its source.
func (d *Device) AddInput(src *Port, name Name, taps []int) (*Port, error) {
	if err := d.mutable(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.Errorf("%s: input %s: no source port", d.Path(), name)
	}
	if src.net != d.net {
		return nil, errors.Wrapf(ErrForeignPort, "%s: input %s from %s", d.Path(), name, src.Path())
	}
	if src.input {
		return nil, errors.Wrapf(ErrNotOutput, "%s: input %s: source %s is an input port", d.Path(), name, src.Path())
	}
	v, err := src.GetBits(taps)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: input %s", d.Path(), name)
	}
	if v.Len() == 0 {
		return nil, errors.Wrapf(ErrWidthMismatch, "%s: input %s: empty tap", d.Path(), name)
	}
	n, err := name.resolve(d.portNameTaken)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: input", d.Path())
	}
	p := &Port{name: n, owner: d, net: d.net, input: true, src: src.id}
	if taps != nil {
		p.taps = append([]int(nil), taps...)
	}
	d.net.register(p)
	p.state = v
	d.inputs = append(d.inputs, p)
	return p, nil
}

// AddChild registers a new child device and starts its behavior.
func (d *Device) AddChild(name Name, b Behavior) (*Device, error) {
	if err := d.mutable(); err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errors.Errorf("%s: child %s: nil behavior", d.Path(), name)
	}
	if name.IsGeneric() && name.base == "" {
		name.base = "D"
		if gn, ok := b.(GenericNamer); ok {
			name.base = gn.GenericName()
		}
	}
	n, err := name.resolve(func(s string) bool {
		_, ok := d.Child(s)
		return ok
	})
	if err != nil {
		return nil, errors.Wrapf(err, "%s: child", d.Path())
	}
	c := &Device{name: n, behavior: b, parent: d, net: d.net}
	d.children = append(d.children, c)
	nports := len(d.net.ports)
	if err := b.Start(c); err != nil {
		d.children = d.children[:len(d.children)-1]
		d.net.ports = d.net.ports[:nports]
		return nil, errors.Wrapf(err, "starting %s", c.Path())
	}
	return c, nil
}

// UpdateOutputs recomputes the outputs of every child, then of d itself.
func (d *Device) UpdateOutputs(now int64) error {
	for _, c := range d.children {
		if err := c.UpdateOutputs(now); err != nil {
			return err
		}
	}
	if err := d.behavior.UpdateOutputs(d, now); err != nil {
		return errors.Wrapf(err, "%s at t=%d", d.Path(), now)
	}
	return nil
}

// UpdateInputs latches every input port of d, then of every child.
func (d *Device) UpdateInputs() error {
	for _, p := range d.inputs {
		if err := p.Update(); err != nil {
			return err
		}
	}
	for _, c := range d.children {
		if err := c.UpdateInputs(); err != nil {
			return err
		}
	}
	return nil
}

// Export returns the concatenated value-change tokens of d's inputs, then its
// children, then its outputs. An anonymous device exports nothing, nor does
// anything below it.
func (d *Device) Export() string {
	var b strings.Builder
	d.export(&b)
	return b.String()
}

func (d *Device) export(b *strings.Builder) int {
	if d.name == "" {
		return 0
	}
	n := 0
	for _, p := range d.inputs {
		if s := p.Export(); s != "" {
			b.WriteString(s)
			n++
		}
	}
	for _, c := range d.children {
		n += c.export(b)
	}
	for _, p := range d.outputs {
		if s := p.Export(); s != "" {
			b.WriteString(s)
			n++
		}
	}
	return n
}

// check runs every Checker in the subtree, children first.
func (d *Device) check() error {
	for _, c := range d.children {
		if err := c.check(); err != nil {
			return err
		}
	}
	if c, ok := d.behavior.(Checker); ok {
		if err := c.Check(d); err != nil {
			return errors.Wrapf(err, "checking %s", d.Path())
		}
	}
	return nil
}

// scope describes the traced part of d's subtree. ok is false when d is
// anonymous.
func (d *Device) scope() (s trace.Scope, ok bool) {
	if d.name == "" {
		return trace.Scope{}, false
	}
	s.Name = d.name
	for _, p := range d.inputs {
		if p.name != "" {
			s.Vars = append(s.Vars, p.traceVar())
		}
	}
	for _, p := range d.outputs {
		if p.name != "" {
			s.Vars = append(s.Vars, p.traceVar())
		}
	}
	s.Scopes = d.childScopes()
	return s, true
}

func (d *Device) childScopes() []trace.Scope {
	var scopes []trace.Scope
	for _, c := range d.children {
		if cs, ok := c.scope(); ok {
			scopes = append(scopes, cs)
		}
	}
	return scopes
}

// Walk calls fn for d and every device below it in pre-order.
func (d *Device) Walk(fn func(d *Device, depth int)) {
	d.walk(fn, 0)
}

func (d *Device) walk(fn func(*Device, int), depth int) {
	fn(d, depth)
	for _, c := range d.children {
		c.walk(fn, depth+1)
	}
}

// Display writes the behavior's description of d.
func (d *Device) Display(w io.Writer) {
	d.behavior.Display(w, d)
}

// DisplayPorts writes one line per port of d with its current state.
func DisplayPorts(w io.Writer, d *Device) {
	for _, p := range d.inputs {
		src := p.Source()
		fmt.Fprintf(w, "  in  %-8s %2d bits = %s  <- %s%s\n", portLabel(p), p.Size(), p.state.MSBString(), src.Path(), tapLabel(p.taps))
	}
	for _, p := range d.outputs {
		fmt.Fprintf(w, "  out %-8s %2d bits = %s\n", portLabel(p), p.Size(), p.state.MSBString())
	}
}

func portLabel(p *Port) string {
	if p.name == "" {
		return p.id.String()
	}
	return p.name
}

func tapLabel(taps []int) string {
	if taps == nil {
		return ""
	}
	parts := make([]string, len(taps))
	for i, t := range taps {
		parts[i] = fmt.Sprint(t)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
