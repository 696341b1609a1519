// Package testutil provides shared test infrastructure for the logicsim
// packages: golden trace files and helpers to read frames back out of a
// trace.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"
)

// FixedDate is the creation time used by tests that compare whole traces.
var FixedDate = time.Date(2025, time.June, 4, 9, 30, 0, 0, time.UTC)

// GoldenPath resolves name inside the repository testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func GoldenPath(t *testing.T, name string) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", name)
}

// LoadGolden returns the content of testdata/name.
func LoadGolden(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(GoldenPath(t, name))
	if err != nil {
		t.Fatalf("Failed to read golden file %s: %v", name, err)
	}
	return string(data)
}

// Frame is one timestamped block of value changes.
type Frame struct {
	Time   int64
	Tokens []string // e.g. "1W0", "b0101 W3"
}

// ParseFrames returns the frames following $enddefinitions.
func ParseFrames(t *testing.T, trace string) []Frame {
	t.Helper()
	_, body, ok := strings.Cut(trace, "$enddefinitions $end\n")
	if !ok {
		t.Fatalf("trace has no $enddefinitions")
	}
	var frames []Frame
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			t.Fatalf("frame line %q does not start with #", line)
		}
		stamp, rest, _ := strings.Cut(line[1:], " ")
		ts, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			t.Fatalf("bad frame time in %q: %v", line, err)
		}
		frames = append(frames, Frame{Time: ts, Tokens: splitTokens(rest)})
	}
	return frames
}

// splitTokens undoes the space joining of tokens, keeping "b<bits> <id>"
// together.
func splitTokens(s string) []string {
	fields := strings.Fields(s)
	var tokens []string
	for i := 0; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "b") && i+1 < len(fields) {
			tokens = append(tokens, fields[i]+" "+fields[i+1])
			i++
			continue
		}
		tokens = append(tokens, fields[i])
	}
	return tokens
}

// Values returns, for the signal id, the value recorded in every frame where
// it changes, keyed by time. Bus values are MSB first.
func Values(frames []Frame, id string) map[int64]string {
	out := map[int64]string{}
	for _, f := range frames {
		for _, tok := range f.Tokens {
			if v, sig, ok := strings.Cut(tok, " "); ok {
				if sig == id {
					out[f.Time] = strings.TrimPrefix(v, "b")
				}
				continue
			}
			if tok[1:] == id {
				out[f.Time] = tok[:1]
			}
		}
	}
	return out
}

// Edges returns the times at which a single-bit signal went 0→1 and 1→0.
func Edges(frames []Frame, id string) (rising, falling []int64) {
	prev := ""
	for _, f := range frames {
		v, ok := Values([]Frame{f}, id)[f.Time]
		if !ok {
			continue
		}
		switch {
		case prev == "0" && v == "1":
			rising = append(rising, f.Time)
		case prev == "1" && v == "0":
			falling = append(falling, f.Time)
		}
		prev = v
	}
	return rising, falling
}
