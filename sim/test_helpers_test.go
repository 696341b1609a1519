package sim

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/logicsim/logicsim/sim/internal/testutil"
	"github.com/logicsim/logicsim/sim/logic"
)

// driver sets Q from a function of time.
type driver struct {
	Base
	width int
	fill  Fill
	wave  func(now int64) logic.Vector
	q     *Port
}

func (dr *driver) Start(d *Device) error {
	q, err := d.AddOutput(dr.width, Named("Q"), dr.fill)
	dr.q = q
	return err
}

func (dr *driver) UpdateOutputs(_ *Device, now int64) error {
	if dr.wave == nil {
		return nil
	}
	return dr.q.Set(dr.wave(now))
}

// follower copies its single input A to Q, one step late.
type follower struct {
	Base
	width int
	src   *Port
	taps  []int
	a, q  *Port
	seen  []logic.Vector
}

func (f *follower) Start(d *Device) error {
	var err error
	if f.a, err = d.AddInput(f.src, Named("A"), f.taps); err != nil {
		return err
	}
	f.q, err = d.AddOutput(f.width, Named("Q"), FillUndefined)
	return err
}

func (f *follower) UpdateOutputs(*Device, int64) error {
	f.seen = append(f.seen, f.a.Get())
	return f.q.Set(f.a.Get())
}

// brokenStart registers an output, then fails.
type brokenStart struct {
	Base
	err error
}

func (b *brokenStart) Start(d *Device) error {
	if _, err := d.AddOutput(1, Named("Q"), FillLow); err != nil {
		return err
	}
	return b.err
}

// lateChecker records that Check ran.
type lateChecker struct {
	Base
	err     error
	checked bool
}

func (c *lateChecker) Check(*Device) error {
	c.checked = true
	return c.err
}

func newTestSystem(opts ...Option) *System {
	l := logrus.New()
	l.SetOutput(io.Discard)
	opts = append([]Option{WithDate(testutil.FixedDate), WithLogger(logrus.NewEntry(l))}, opts...)
	return NewSystem(opts...)
}

// square returns a 1-bit wave high for t mod period < period/2.
func square(period int64) func(int64) logic.Vector {
	return func(now int64) logic.Vector {
		return logic.Filled(1, logic.BitFromBool(now%period < period/2))
	}
}

func runToString(t *testing.T, s *System, until int64) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, s.Open(&buf))
	require.NoError(t, s.RunUntil(until))
	require.NoError(t, s.Close())
	return buf.String()
}
