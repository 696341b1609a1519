// Package sim provides the discrete-time simulation kernel for logicsim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - port.go: output ports own state, input ports mirror a tap of one output port
//   - device.go: the device tree, port/child registration and the generic sweeps
//   - system.go: the root device, simulated time and the two-phase step
//
// # Architecture
//
// Value types live in sim/logic (tri-state bits and packed bit-vectors) and the
// waveform writer lives in sim/trace. Concrete devices (clocks, counters, ROMs,
// gates, registers, multiplexers) live in sim/devices and are plugged in through
// the Behavior interface. sim/circuit builds a System from a YAML description.
//
// # Step semantics
//
// Every call to System.RunStep
//  1. exports the ports that changed since the previous frame, stamped with the
//     current time,
//  2. advances time by one tick,
//  3. recomputes every device's outputs (children before their parent) from the
//     inputs latched on the previous step,
//  4. latches every input port from its source.
//
// Phases 3 and 4 are separated across the whole tree, so the network behaves like
// a synchronous circuit: all combinational outputs settle against last step's
// inputs, then all inputs capture at once.
package sim
