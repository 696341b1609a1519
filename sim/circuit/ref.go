package circuit

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Ref names an output port, optionally restricted to some of its bits.
type Ref struct {
	Device string
	Port   string
	Taps   []int // nil means every bit
}

var refRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)(?:\[([0-9,\s]*)\])?$`)

// ParseRef parses "<device>.<port>" or "<device>.<port>[i,j,...]".
func ParseRef(s string) (Ref, error) {
	m := refRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Ref{}, errors.Errorf("bad port reference %q, want <device>.<port>[taps]", s)
	}
	r := Ref{Device: m[1], Port: m[2]}
	if m[3] == "" {
		if strings.HasSuffix(s, "[]") {
			return Ref{}, errors.Errorf("bad port reference %q: empty tap list", s)
		}
		return r, nil
	}
	for _, f := range strings.Split(m[3], ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return Ref{}, errors.Errorf("bad port reference %q: tap %q", s, f)
		}
		r.Taps = append(r.Taps, i)
	}
	return r, nil
}

func (r Ref) String() string {
	s := r.Device + "." + r.Port
	if r.Taps == nil {
		return s
	}
	parts := make([]string, len(r.Taps))
	for i, t := range r.Taps {
		parts[i] = strconv.Itoa(t)
	}
	return s + "[" + strings.Join(parts, ",") + "]"
}
