package sim

import (
	"strconv"

	"github.com/pkg/errors"
)

// Name is the label under which a device or a port is registered with its
// parent. There are three kinds:
//   - explicit names (Named) are used as given; reusing one among siblings is
//     an error,
//   - generic names (Generic) get the smallest free integer suffix among
//     siblings: A0, A1, ...,
//   - Anonymous registers an unnamed element: it is simulated but left out of
//     the trace.
type Name struct {
	base    string
	generic bool
}

// Anonymous is the zero Name.
var Anonymous = Name{}

// Named returns an explicit name.
func Named(s string) Name { return Name{base: s} }

// Generic returns a name to be disambiguated among siblings. For devices, an
// empty base falls back to the behavior's GenericName.
func Generic(s string) Name { return Name{base: s, generic: true} }

// IsAnonymous reports whether n registers an unnamed element.
func (n Name) IsAnonymous() bool { return n.base == "" && !n.generic }

// IsGeneric reports whether n is subject to suffix disambiguation.
func (n Name) IsGeneric() bool { return n.generic }

func (n Name) String() string {
	if n.generic {
		return n.base + "#"
	}
	return n.base
}

// resolve picks the registered name for n given the predicate of names already
// taken among siblings.
func (n Name) resolve(taken func(string) bool) (string, error) {
	switch {
	case n.IsAnonymous():
		return "", nil
	case !n.generic:
		if taken(n.base) {
			return "", errors.Wrapf(ErrDuplicateName, "%q", n.base)
		}
		return n.base, nil
	}
	for i := 0; ; i++ {
		s := n.base + strconv.Itoa(i)
		if !taken(s) {
			return s, nil
		}
	}
}
