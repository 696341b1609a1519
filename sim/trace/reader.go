package trace

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Dump is a trace read back from its text form.
type Dump struct {
	Version   string
	Date      string
	Timescale string
	Vars      []Var             // every declaration, in file order
	Scopes    map[string]string // signal id -> dotted scope path
	Frames    []Frame
}

// Frame is one timestamped set of value changes.
type Frame struct {
	Time    int64
	Changes []Value
}

// Value is one value change. Bits are MSB first, as written.
type Value struct {
	ID   string
	Bits string
}

// Read parses a trace produced by Writer.
func Read(r io.Reader) (*Dump, error) {
	d := &Dump{Scopes: map[string]string{}}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var scope []string
	inBody := false
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if inBody {
			f, err := parseFrame(text)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", line)
			}
			d.Frames = append(d.Frames, f)
			continue
		}
		fields := strings.Fields(text)
		if fields[len(fields)-1] != "$end" {
			return nil, errors.Errorf("line %d: declaration %q is not terminated by $end", line, text)
		}
		body := strings.Join(fields[1:len(fields)-1], " ")
		switch fields[0] {
		case "$version":
			d.Version = body
		case "$date":
			d.Date = body
		case "$timescale":
			d.Timescale = body
		case "$scope":
			if len(fields) != 4 {
				return nil, errors.Errorf("line %d: malformed scope %q", line, text)
			}
			scope = append(scope, fields[2])
		case "$upscope":
			if len(scope) == 0 {
				return nil, errors.Errorf("line %d: $upscope without $scope", line)
			}
			scope = scope[:len(scope)-1]
		case "$var":
			if len(fields) != 6 {
				return nil, errors.Errorf("line %d: malformed var %q", line, text)
			}
			w, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrapf(err, "line %d: var width", line)
			}
			v := Var{Width: w, ID: fields[3], Label: fields[4]}
			d.Vars = append(d.Vars, v)
			d.Scopes[v.ID] = strings.Join(scope, ".")
		case "$enddefinitions":
			if len(scope) != 0 {
				return nil, errors.Errorf("line %d: %d scopes left open", line, len(scope))
			}
			inBody = true
		default:
			return nil, errors.Errorf("line %d: unknown declaration %q", line, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading trace")
	}
	if !inBody {
		return nil, errors.New("trace has no $enddefinitions")
	}
	return d, nil
}

func parseFrame(text string) (Frame, error) {
	fields := strings.Fields(text)
	if !strings.HasPrefix(fields[0], "#") {
		return Frame{}, errors.Errorf("frame %q does not start with #", text)
	}
	t, err := strconv.ParseInt(fields[0][1:], 10, 64)
	if err != nil {
		return Frame{}, errors.Wrap(err, "frame time")
	}
	f := Frame{Time: t}
	for i := 1; i < len(fields); i++ {
		tok := fields[i]
		if tok[0] == 'b' {
			if i+1 == len(fields) {
				return Frame{}, errors.Errorf("bus value %q has no signal id", tok)
			}
			f.Changes = append(f.Changes, Value{ID: fields[i+1], Bits: tok[1:]})
			i++
			continue
		}
		if len(tok) < 2 {
			return Frame{}, errors.Errorf("malformed value change %q", tok)
		}
		f.Changes = append(f.Changes, Value{ID: tok[1:], Bits: tok[:1]})
	}
	return f, nil
}

// Var returns the declaration of id.
func (d *Dump) Var(id string) (Var, bool) {
	for _, v := range d.Vars {
		if v.ID == id {
			return v, true
		}
	}
	return Var{}, false
}
