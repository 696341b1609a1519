package sim

import "github.com/pkg/errors"

// Configuration errors. They describe a structurally invalid circuit and are
// not recoverable: callers are expected to abort the run.
var (
	// ErrWidthMismatch is returned when a value does not fit a port width.
	ErrWidthMismatch = errors.New("width mismatch")
	// ErrDuplicateName is returned when an explicit name is already used by a
	// sibling.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrState is returned when an operation is not allowed in the current
	// System state.
	ErrState = errors.New("invalid system state")
	// ErrForeignPort is returned when binding to a port of another System.
	ErrForeignPort = errors.New("port belongs to another system")
	// ErrNotOutput is returned when an input port is bound to a source that
	// is not an output port.
	ErrNotOutput = errors.New("source is not an output port")
	// ErrAddress is returned when an address does not match a table size.
	ErrAddress = errors.New("address width mismatch")
)
