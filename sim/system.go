package sim

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/logicsim/logicsim/sim/trace"
)

// State is the lifecycle stage of a System.
type State int

const (
	// StateIdle: the circuit is being built. Devices and ports may be added.
	StateIdle State = iota
	// StateTracing: the trace is open and the circuit is frozen.
	StateTracing
	// StateClosed: the trace has been flushed. Nothing else may happen.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTracing:
		return "tracing"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Option configures a System.
type Option func(*System)

// WithSeed sets the master seed for random start-up states and table padding.
func WithSeed(seed int64) Option {
	return func(s *System) { s.rng = NewPartitionedRNG(NewSimulationKey(seed)) }
}

// WithDate fixes the creation time written to the trace header.
func WithDate(t time.Time) Option {
	return func(s *System) { s.date = t }
}

// WithVersion overrides the $version text of the trace header.
func WithVersion(v string) Option {
	return func(s *System) { s.version = v }
}

// WithLogger sets the logger used for run diagnostics. A "run" field carrying
// the run id is added to it.
func WithLogger(l *logrus.Entry) Option {
	return func(s *System) { s.log = l }
}

// System is the root of a simulated circuit. It owns the device tree, the
// simulated time and the trace sink.
type System struct {
	root    *Device
	net     *network
	rng     *PartitionedRNG
	state   State
	now     int64
	date    time.Time
	version string
	runID   string
	log     *logrus.Entry
	tw      *trace.Writer
	metrics *Metrics
	started time.Time
}

// NewSystem returns an empty System in StateIdle at time 0.
func NewSystem(opts ...Option) *System {
	s := &System{
		rng:     NewPartitionedRNG(NewSimulationKey(0)),
		date:    time.Now(),
		runID:   uuid.NewString(),
		metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	s.log = s.log.WithField("run", s.runID)
	s.net = newNetwork(s.rng)
	s.root = &Device{name: trace.RootScope, behavior: Group{}, net: s.net}
	return s
}

// Add registers a top-level device.
func (s *System) Add(name Name, b Behavior) (*Device, error) {
	if err := s.expect(StateIdle, "add a device"); err != nil {
		return nil, err
	}
	return s.root.AddChild(name, b)
}

// Root returns the root device. Top-level devices are its children.
func (s *System) Root() *Device { return s.root }

// Device returns the device at the dotted path, e.g. "cpu.alu".
func (s *System) Device(path string) (*Device, bool) {
	d := s.root
	for _, name := range splitPath(path) {
		c, ok := d.Child(name)
		if !ok {
			return nil, false
		}
		d = c
	}
	return d, d != s.root
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// Port returns the port with the given signal id.
func (s *System) Port(id SignalID) (*Port, bool) {
	if id < 0 || int(id) >= len(s.net.ports) {
		return nil, false
	}
	return s.net.lookup(id), true
}

// RNG returns the partitioned generator of the System.
func (s *System) RNG() *PartitionedRNG { return s.rng }

// RunID returns the identifier attached to every log line of this System.
func (s *System) RunID() string { return s.runID }

// Time returns the current simulated time.
func (s *System) Time() int64 { return s.now }

// State returns the lifecycle stage.
func (s *System) State() State { return s.state }

// Metrics returns the counters accumulated so far.
func (s *System) Metrics() *Metrics { return s.metrics }

func (s *System) expect(want State, op string) error {
	if s.state != want {
		return errors.Wrapf(ErrState, "cannot %s: system is %s, want %s", op, s.state, want)
	}
	return nil
}

// Open validates the circuit, writes the trace header and declarations to w,
// and freezes the circuit. w is closed by Close if it implements io.Closer.
func (s *System) Open(w io.Writer) error {
	if err := s.expect(StateIdle, "open the trace"); err != nil {
		return err
	}
	if err := s.root.check(); err != nil {
		return err
	}
	tw := trace.NewWriter(w)
	h := trace.Header{Version: s.version, Date: s.date}
	if err := tw.WriteHeader(h, s.root.childScopes()); err != nil {
		return err
	}
	s.tw = tw
	s.net.frozen = true
	s.state = StateTracing
	s.started = time.Now()
	s.metrics.Ports = len(s.net.ports)
	s.root.Walk(func(*Device, int) { s.metrics.Devices++ })
	s.metrics.Devices-- // root
	s.log.Infof("[tick %07d] Trace opened: %d devices, %d ports", s.now, s.metrics.Devices, s.metrics.Ports)
	return nil
}

// RunStep advances the simulation by one tick: it exports the changes of the
// current tick, advances time, recomputes every output, then latches every
// input.
func (s *System) RunStep() error {
	if err := s.expect(StateTracing, "step"); err != nil {
		return err
	}
	if err := s.flush(); err != nil {
		return err
	}
	s.now++
	if err := s.root.UpdateOutputs(s.now); err != nil {
		return err
	}
	if err := s.root.UpdateInputs(); err != nil {
		return err
	}
	s.metrics.Steps++
	return nil
}

// RunUntil steps while the current time is below t.
func (s *System) RunUntil(t int64) error {
	if err := s.expect(StateTracing, "run"); err != nil {
		return err
	}
	for s.now < t {
		if err := s.RunStep(); err != nil {
			return err
		}
	}
	s.log.Debugf("[tick %07d] Reached target time %d", s.now, t)
	return nil
}

// Close exports the pending changes of the current tick and closes the trace.
func (s *System) Close() error {
	if err := s.expect(StateTracing, "close"); err != nil {
		return err
	}
	err := s.flush()
	if cerr := s.tw.Close(); err == nil {
		err = cerr
	}
	s.state = StateClosed
	s.metrics.SimEndedTime = s.now
	s.metrics.TraceBytes = s.tw.Bytes()
	s.metrics.WallTime = time.Since(s.started)
	s.log.Infof("[tick %07d] Simulation ended", s.now)
	return err
}

func (s *System) flush() error {
	changes, n := s.export()
	if n == 0 {
		return nil
	}
	if err := s.tw.WriteFrame(s.now, changes); err != nil {
		return err
	}
	s.metrics.Frames++
	s.metrics.Changes += int64(n)
	s.log.Tracef("[tick %07d] %d changes", s.now, n)
	return nil
}

func (s *System) export() (string, int) {
	var b strings.Builder
	n := 0
	for _, c := range s.root.children {
		n += c.export(&b)
	}
	return b.String(), n
}

// Display writes every device's description, depth-first, with the path of
// the device as a heading.
func (s *System) Display(w io.Writer) {
	fmt.Fprintf(w, "system %s at t=%d (%s)\n", s.runID, s.now, s.state)
	s.root.Walk(func(d *Device, depth int) {
		if d == s.root {
			return
		}
		fmt.Fprintf(w, "%s [%T]\n", d.Path(), d.behavior)
		d.Display(w)
	})
}
