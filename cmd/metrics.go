package cmd

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/logicsim/logicsim/sim"
)

// Namespace for all metrics
const metricsNamespace = "logicsim"

// runCollector exports the final Metrics of each run as gauges labelled by
// circuit file.
type runCollector struct {
	Devices     *prometheus.GaugeVec
	Ports       *prometheus.GaugeVec
	Steps       *prometheus.GaugeVec
	Frames      *prometheus.GaugeVec
	Changes     *prometheus.GaugeVec
	TraceBytes  *prometheus.GaugeVec
	SimTime     *prometheus.GaugeVec
	WallSeconds *prometheus.GaugeVec
}

func newRunCollector(reg prometheus.Registerer) *runCollector {
	f := promauto.With(reg)
	gauge := func(name, help string) *prometheus.GaugeVec {
		return f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		}, []string{"circuit"})
	}
	return &runCollector{
		Devices:     gauge("devices", "Devices in the circuit."),
		Ports:       gauge("ports", "Ports in the circuit, traced or not."),
		Steps:       gauge("steps", "Simulation steps run."),
		Frames:      gauge("trace_frames", "Trace frames written."),
		Changes:     gauge("value_changes", "Value changes written to the trace."),
		TraceBytes:  gauge("trace_bytes", "Size of the trace in bytes."),
		SimTime:     gauge("simulated_ticks", "Simulated time at the end of the run."),
		WallSeconds: gauge("wall_seconds", "Wall-clock duration of the run."),
	}
}

func (c *runCollector) observe(circuit string, m *sim.Metrics) {
	c.Devices.WithLabelValues(circuit).Set(float64(m.Devices))
	c.Ports.WithLabelValues(circuit).Set(float64(m.Ports))
	c.Steps.WithLabelValues(circuit).Set(float64(m.Steps))
	c.Frames.WithLabelValues(circuit).Set(float64(m.Frames))
	c.Changes.WithLabelValues(circuit).Set(float64(m.Changes))
	c.TraceBytes.WithLabelValues(circuit).Set(float64(m.TraceBytes))
	c.SimTime.WithLabelValues(circuit).Set(float64(m.SimEndedTime))
	c.WallSeconds.WithLabelValues(circuit).Set(m.WallTime.Seconds())
}
