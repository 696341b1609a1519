// Package circuit loads YAML circuit descriptions and builds them into a
// ready-to-run sim.System.
//
// A description lists devices by type with their parameters, and binds
// device inputs to output ports of other devices:
//
//	version: "1"
//	seed: 42
//	until: 200
//	devices:
//	  - {name: clock, type: clock, period: 20, width: 10, shift: 10}
//	  - {name: reset, type: reset, width: 5}
//	  - name: counter
//	    type: counter
//	    bits: 4
//	    inputs: {clk: [clock.Q], clr: [reset.Q]}
//
// Port references are <device>.<port>, optionally followed by a tap list:
// "counter.Q[3,2]". A device may reference devices declared after it.
package circuit

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Version is the only description format version understood.
const Version = "1"

// Device types.
const (
	TypeClock       = "clock"
	TypeReset       = "reset"
	TypeCounter     = "counter"
	TypeRegister    = "register"
	TypeROM         = "rom"
	TypeGate        = "gate"
	TypeNot         = "not"
	TypeMultiplexer = "mux"
)

// Circuit is a parsed circuit description.
type Circuit struct {
	Version string       `yaml:"version" validate:"omitempty,eq=1"`
	Seed    int64        `yaml:"seed"`
	Until   int64        `yaml:"until" validate:"gte=0"`
	Devices []DeviceSpec `yaml:"devices" validate:"required,min=1,dive"`

	// Path is the file the description was loaded from, "" for Parse.
	// Relative table files are resolved against its directory.
	Path string `yaml:"-"`
}

// DeviceSpec describes one device. Which parameters apply depends on Type.
type DeviceSpec struct {
	Name string `yaml:"name" validate:"omitempty,devname"`
	Type string `yaml:"type" validate:"required,oneof=clock reset counter register rom gate not mux"`

	// clock and reset
	Period int64 `yaml:"period" validate:"gte=0"`
	Width  int64 `yaml:"width" validate:"gte=0"`
	Shift  int64 `yaml:"shift"`
	Count  int64 `yaml:"count" validate:"gte=0"`

	Bits      int    `yaml:"bits" validate:"gte=0,lte=64"`
	Fill      string `yaml:"fill" validate:"omitempty,oneof=0 1 U R u r"`
	Kind      string `yaml:"kind"`
	Table     string `yaml:"table"`
	TableFile string `yaml:"table_file"`

	Inputs map[string][]string `yaml:"inputs" validate:"omitempty,dive,keys,required,endkeys,required,min=1,dive,portref"`
}

var (
	validate *validator.Validate

	devNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("devname", func(fl validator.FieldLevel) bool {
		return devNameRe.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("portref", func(fl validator.FieldLevel) bool {
		_, err := ParseRef(fl.Field().String())
		return err == nil
	})
}

// Load reads and validates the description in path.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading circuit")
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	c.Path = path
	return c, nil
}

// Parse decodes and validates a description.
func Parse(data []byte) (*Circuit, error) {
	var c Circuit
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, errors.Wrap(err, "parsing circuit")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks field ranges and the parameters each device type needs.
func (c *Circuit) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid circuit")
	}
	for i := range c.Devices {
		if err := c.Devices[i].validateParams(); err != nil {
			return errors.Wrapf(err, "devices[%d] (%s)", i, c.Devices[i].label())
		}
	}
	return nil
}

func (s *DeviceSpec) label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Type
}

func (s *DeviceSpec) validateParams() error {
	switch s.Type {
	case TypeClock:
		if s.Period <= 0 {
			return errors.Errorf("period must be positive, got %d", s.Period)
		}
		if s.Width > s.Period {
			return errors.Errorf("width %d exceeds period %d", s.Width, s.Period)
		}
	case TypeReset:
		if s.Width <= 0 {
			return errors.Errorf("width must be positive, got %d", s.Width)
		}
	case TypeROM:
		if (s.Table == "") == (s.TableFile == "") {
			return errors.New("exactly one of table and table_file is required")
		}
		if s.Table != "" && s.Bits == 0 {
			return errors.New("bits is required with an inline table")
		}
	case TypeGate:
		if s.Kind == "" {
			return errors.New("kind is required")
		}
		fallthrough
	case TypeCounter, TypeRegister, TypeNot, TypeMultiplexer:
		if s.Bits == 0 {
			return errors.New("bits is required")
		}
	}
	if s.Type != TypeGate && s.Kind != "" {
		return errors.Errorf("kind does not apply to %s", s.Type)
	}
	return nil
}

// tablePath resolves a table file against the directory of the
// description.
func (c *Circuit) tablePath(name string) string {
	if c.Path == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(filepath.Dir(c.Path), name)
}
