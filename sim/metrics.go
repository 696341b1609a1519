// Tracks run-wide counters of a simulation: steps taken, trace frames and
// value changes written, and the size of the circuit.

package sim

import (
	"fmt"
	"io"
	"time"
)

// Metrics aggregates statistics about a run for final reporting.
type Metrics struct {
	Devices      int   // Devices registered below the root
	Ports        int   // Ports registered, traced or not
	Steps        int64 // Calls to RunStep
	Frames       int64 // Trace frames written
	Changes      int64 // Value-change tokens written
	TraceBytes   int64 // Bytes handed to the trace sink
	SimEndedTime int64 // Simulated time at Close

	WallTime time.Duration // Wall-clock time between Open and Close
}

// NewMetrics returns zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ChangesPerStep returns the mean number of value changes per step.
func (m *Metrics) ChangesPerStep() float64 {
	if m.Steps == 0 {
		return 0
	}
	return float64(m.Changes) / float64(m.Steps)
}

// Print writes the metrics in the run summary layout.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Devices              : %d\n", m.Devices)
	fmt.Fprintf(w, "Ports                : %d\n", m.Ports)
	fmt.Fprintf(w, "Steps                : %d\n", m.Steps)
	fmt.Fprintf(w, "Simulated Time       : %d ticks\n", m.SimEndedTime)
	fmt.Fprintf(w, "Trace Frames         : %d\n", m.Frames)
	fmt.Fprintf(w, "Value Changes        : %d\n", m.Changes)
	if m.Steps > 0 {
		fmt.Fprintf(w, "Changes per Step     : %.2f\n", m.ChangesPerStep())
	}
	fmt.Fprintf(w, "Trace Size           : %d bytes\n", m.TraceBytes)
	fmt.Fprintf(w, "Wall Time            : %s\n", m.WallTime.Round(time.Microsecond))
}
