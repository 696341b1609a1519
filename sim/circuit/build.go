package circuit

import (
	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim"
	"github.com/logicsim/logicsim/sim/devices"
)

// Build creates every device of c under a new System, then binds the
// inputs. Options are applied after the seed of the description, so a
// WithSeed option overrides it. The System is returned idle.
func Build(c *Circuit, opts ...sim.Option) (*sim.System, error) {
	sys := sim.NewSystem(append([]sim.Option{sim.WithSeed(c.Seed)}, opts...)...)

	behaviors := make([]sim.Behavior, len(c.Devices))
	for i := range c.Devices {
		spec := &c.Devices[i]
		b, err := c.behavior(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "device %s", spec.label())
		}
		name := sim.Generic("")
		if spec.Name != "" {
			name = sim.Named(spec.Name)
		}
		if _, err := sys.Add(name, b); err != nil {
			return nil, errors.Wrapf(err, "device %s", spec.label())
		}
		behaviors[i] = b
	}

	for i := range c.Devices {
		spec := &c.Devices[i]
		if len(spec.Inputs) == 0 {
			continue
		}
		if err := connect(sys, spec, behaviors[i]); err != nil {
			return nil, errors.Wrapf(err, "device %s", spec.label())
		}
	}
	return sys, nil
}

// connect binds the inputs of one device, role by role in the order the
// device lists its roles.
func connect(sys *sim.System, spec *DeviceSpec, b sim.Behavior) error {
	conn, ok := b.(devices.Connector)
	if !ok {
		return errors.Errorf("%s devices have no inputs", spec.Type)
	}
	known := make(map[string]bool)
	for _, role := range conn.Roles() {
		known[role] = true
	}
	for role := range spec.Inputs {
		if !known[role] {
			return errors.Wrapf(devices.ErrUnknownRole, "%q (valid: %v)", role, conn.Roles())
		}
	}
	for _, role := range conn.Roles() {
		for _, s := range spec.Inputs[role] {
			ref, err := ParseRef(s)
			if err != nil {
				return err
			}
			src, err := resolve(sys, ref)
			if err != nil {
				return err
			}
			if err := conn.Connect(role, src, ref.Taps); err != nil {
				return errors.Wrapf(err, "input %s <- %s", role, ref)
			}
		}
	}
	return nil
}

func resolve(sys *sim.System, ref Ref) (*sim.Port, error) {
	d, ok := sys.Device(ref.Device)
	if !ok {
		return nil, errors.Errorf("%s: no device %q", ref, ref.Device)
	}
	p, ok := d.Output(ref.Port)
	if !ok {
		return nil, errors.Errorf("%s: device %q has no output %q", ref, ref.Device, ref.Port)
	}
	return p, nil
}

func (c *Circuit) behavior(s *DeviceSpec) (sim.Behavior, error) {
	fill, err := sim.ParseFill(s.Fill)
	if err != nil {
		return nil, err
	}
	switch s.Type {
	case TypeClock:
		clk := devices.NewClock(s.Period, s.Width, s.Shift)
		clk.Count = s.Count
		return clk, nil
	case TypeReset:
		return devices.NewReset(s.Width), nil
	case TypeCounter:
		cnt := devices.NewCounter(s.Bits)
		if s.Fill != "" {
			cnt.Fill = fill
		}
		return cnt, nil
	case TypeRegister:
		reg := devices.NewRegister(s.Bits)
		if s.Fill != "" {
			reg.Fill = fill
		}
		return reg, nil
	case TypeROM:
		return c.rom(s, fill)
	case TypeGate:
		kind, err := devices.ParseGateKind(s.Kind)
		if err != nil {
			return nil, err
		}
		return devices.NewGate(kind, s.Bits), nil
	case TypeNot:
		return devices.NewNot(s.Bits), nil
	case TypeMultiplexer:
		mux := devices.NewMultiplexer(s.Bits)
		if s.Fill != "" {
			mux.Fill = fill
		}
		return mux, nil
	}
	return nil, errors.Errorf("unknown device type %q", s.Type)
}

// rom builds a ROM from an inline bit table or a table file. Missing words
// are padded with the fill, undefined by default.
func (c *Circuit) rom(s *DeviceSpec, fill sim.Fill) (sim.Behavior, error) {
	if s.TableFile == "" {
		return devices.NewROM(s.Table, s.Bits, fill), nil
	}
	td, err := devices.LoadTable(c.tablePath(s.TableFile))
	if err != nil {
		return nil, err
	}
	if s.Bits != 0 && s.Bits != td.Width {
		return nil, errors.Wrapf(sim.ErrWidthMismatch, "bits is %d, table file words are %d bits", s.Bits, td.Width)
	}
	return devices.NewROM(td.Bits, td.Width, fill), nil
}
