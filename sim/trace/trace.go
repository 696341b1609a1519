// Package trace writes the waveform dump produced by a simulation run.
// It only formats text; the device tree is described to it with plain
// Scope and Var values so that it has no dependency on the sim package.
package trace

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/logicsim/logicsim/sim/logic"
)

// DateLayout is the time.Format layout of the $date header entry.
const DateLayout = "Monday, 02 Jan 2006 at 15:04:05"

// Timescale is the fixed duration of one simulation tick.
const Timescale = "1ns"

// RootScope is the name of the outermost module scope.
const RootScope = "SYSTEM"

// DefaultVersion is written to the $version entry when Header.Version is empty.
const DefaultVersion = "generated by logicsim"

// Header carries the metadata written before the declarations.
type Header struct {
	Version string
	Date    time.Time
}

// Var declares one traced signal.
type Var struct {
	Width int
	ID    string // compact signal identifier, e.g. "W12"
	Label string // <device>_<port>
}

// Scope is one module block of the declaration section.
type Scope struct {
	Name   string
	Vars   []Var
	Scopes []Scope
}

// Writer serializes a run into the waveform text format. It is not safe for
// concurrent use; a System owns exactly one.
type Writer struct {
	w      *bufio.Writer
	closer io.Closer
	frames int
	bytes  int64
}

// NewWriter returns a Writer appending to w. If w is also an io.Closer it is
// closed by Close.
func NewWriter(w io.Writer) *Writer {
	tw := &Writer{w: bufio.NewWriter(w)}
	if c, ok := w.(io.Closer); ok {
		tw.closer = c
	}
	return tw
}

func (tw *Writer) write(s string) error {
	n, err := tw.w.WriteString(s)
	tw.bytes += int64(n)
	return err
}

// WriteHeader writes the header and the nested declaration block. Every
// scope in scopes becomes a child of the SYSTEM module.
func (tw *Writer) WriteHeader(h Header, scopes []Scope) error {
	version := h.Version
	if version == "" {
		version = DefaultVersion
	}
	var b strings.Builder
	b.WriteString("$version " + version + " $end\n")
	b.WriteString("$date " + h.Date.Format(DateLayout) + " $end\n")
	b.WriteString("$timescale " + Timescale + " $end\n")
	b.WriteString("$scope module " + RootScope + " $end\n")
	for _, s := range scopes {
		declare(&b, s, 1)
	}
	b.WriteString("$upscope $end\n")
	b.WriteString("$enddefinitions $end\n")
	if err := tw.write(b.String()); err != nil {
		return errors.Wrap(err, "writing trace header")
	}
	return nil
}

func declare(b *strings.Builder, s Scope, depth int) {
	tab := strings.Repeat("\t", depth)
	b.WriteString(tab + "$scope module " + s.Name + " $end\n")
	for _, v := range s.Vars {
		b.WriteString(tab + "\t$var wire " + strconv.Itoa(v.Width) + " " + v.ID + " " + v.Label + " $end\n")
	}
	for _, c := range s.Scopes {
		declare(b, c, depth+1)
	}
	b.WriteString(tab + "$upscope $end\n")
}

// Label builds the human label of a signal: <device>_<port>, with a
// [width-1:0] suffix for buses.
func Label(device, port string, width int) string {
	l := device + "_" + port
	if width > 1 {
		l += "[" + strconv.Itoa(width-1) + ":0]"
	}
	return l
}

// Change formats one value-change token, including its trailing separator.
// Single bits are written as <bit><id>, buses as b<msb..lsb> <id>.
func Change(id string, v logic.Vector) string {
	if v.Len() > 1 {
		return "b" + v.MSBString() + " " + id + " "
	}
	return v.String() + id + " "
}

// WriteFrame writes one frame of value changes stamped with time t. The
// changes string is the concatenation of Change tokens. An empty changes
// string writes nothing.
func (tw *Writer) WriteFrame(t int64, changes string) error {
	if changes == "" {
		return nil
	}
	if err := tw.write("#" + strconv.FormatInt(t, 10) + " " + changes + "\n"); err != nil {
		return errors.Wrapf(err, "writing trace frame #%d", t)
	}
	tw.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (tw *Writer) Frames() int { return tw.frames }

// Bytes returns the number of bytes handed to the sink so far.
func (tw *Writer) Bytes() int64 { return tw.bytes }

// Flush pushes buffered output to the sink.
func (tw *Writer) Flush() error {
	return errors.Wrap(tw.w.Flush(), "flushing trace")
}

// Close flushes and, when the sink is closable, closes it.
func (tw *Writer) Close() error {
	if err := tw.Flush(); err != nil {
		return err
	}
	if tw.closer != nil {
		return errors.Wrap(tw.closer.Close(), "closing trace")
	}
	return nil
}
