package devices

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicsim/logicsim/sim"
	"github.com/logicsim/logicsim/sim/logic"
)

type counterBench struct {
	sys      *sim.System
	clk, clr *manual
	cnt      *Counter
}

func newCounterBench(t *testing.T, width int) *counterBench {
	t.Helper()
	b := &counterBench{
		sys: newSystem(sim.WithSeed(11)),
		clk: &manual{width: 1, fill: sim.FillLow},
		clr: &manual{width: 1, fill: sim.FillLow},
		cnt: NewCounter(width),
	}
	add(t, b.sys, "clk", b.clk)
	add(t, b.sys, "clr", b.clr)
	add(t, b.sys, "cnt", b.cnt)
	connect(t, b.cnt, "clk", b.clk.q, nil)
	connect(t, b.cnt, "clr", b.clr.q, nil)
	open(t, b.sys)
	return b
}

func (b *counterBench) step(t *testing.T, clk string) {
	t.Helper()
	if clk != "" {
		b.clk.drive(logic.MustParse(clk))
	}
	require.NoError(t, b.sys.RunStep())
}

func TestCounter_CountsRisingEdgesModulo(t *testing.T) {
	for _, n := range []int{0, 1, 5, 15, 16, 21, 40} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			// GIVEN a 4-bit counter held clear
			b := newCounterBench(t, 4)
			b.step(t, "")
			b.step(t, "")
			require.Equal(t, logic.MustParse("0000"), b.cnt.Q().Get())

			// WHEN clear is released and n rising edges are applied, with
			// falling and undefined transitions in between
			b.clr.drive(logic.MustParse("1"))
			b.step(t, "")
			for i := 0; i < n; i++ {
				b.step(t, "1")
				b.step(t, "U")
				b.step(t, "0")
				b.step(t, "0")
			}
			b.step(t, "")
			b.step(t, "")

			// THEN the count is n mod 16
			got, ok := b.cnt.Q().Get().Uint64()
			require.True(t, ok)
			assert.Equal(t, uint64(n%16), got)
		})
	}
}

func TestCounter_ClearOverridesClock(t *testing.T) {
	b := newCounterBench(t, 4)
	b.clr.drive(logic.MustParse("1"))
	b.step(t, "")
	for i := 0; i < 3; i++ {
		b.step(t, "1")
		b.step(t, "0")
	}
	b.step(t, "")
	got, _ := b.cnt.Q().Get().Uint64()
	require.Equal(t, uint64(3), got)

	// WHEN clear goes low while the clock keeps toggling
	b.clr.drive(logic.MustParse("0"))
	b.step(t, "")
	for i := 0; i < 3; i++ {
		b.step(t, "1")
		b.step(t, "0")
	}

	// THEN the counter stays at zero
	assert.Equal(t, logic.MustParse("0000"), b.cnt.Q().Get())
}

func TestCounter_StartsRandomAndSeeded(t *testing.T) {
	q := func(seed int64) logic.Vector {
		s := newSystem(sim.WithSeed(seed))
		c := NewCounter(32)
		add(t, s, "cnt", c)
		return c.Q().Get()
	}

	assert.False(t, q(1).AnyUndefined())
	assert.Equal(t, q(1), q(1))
	assert.NotEqual(t, q(1), q(2))
}

func TestIncrement(t *testing.T) {
	assert.Equal(t, logic.FromUint64(4, 8), increment(logic.FromUint64(4, 7)))
	assert.Equal(t, logic.FromUint64(4, 0), increment(logic.FromUint64(4, 15)))
	assert.Equal(t, logic.Undefs(4), increment(logic.MustParse("1U00")))
}

func TestCounter_Check_ControlWidth(t *testing.T) {
	s := newSystem()
	bus := &manual{width: 2, fill: sim.FillLow}
	add(t, s, "bus", bus)
	cnt := NewCounter(4)
	add(t, s, "cnt", cnt)
	connect(t, cnt, "clk", bus.q, nil)

	err := s.Open(nil)

	assert.ErrorIs(t, err, sim.ErrWidthMismatch)
}

func TestRegister_LatchesOnRisingEdge(t *testing.T) {
	// GIVEN a 3-bit register fed by a 2-bit and a 1-bit source
	s := newSystem()
	lo := &manual{width: 2, fill: sim.FillLow}
	hi := &manual{width: 1, fill: sim.FillLow}
	clk := &manual{width: 1, fill: sim.FillLow}
	add(t, s, "lo", lo)
	add(t, s, "hi", hi)
	add(t, s, "clk", clk)
	reg := NewRegister(3)
	add(t, s, "reg", reg)
	connect(t, reg, "A", lo.q, nil)
	connect(t, reg, "A", hi.q, nil)
	connect(t, reg, "clk", clk.q, nil)
	open(t, s)
	assert.Equal(t, logic.Undefs(3), reg.Q().Get())

	// WHEN data changes without a clock edge
	lo.drive(logic.FromUint64(2, 2))
	hi.drive(logic.MustParse("1"))
	require.NoError(t, s.RunStep())
	require.NoError(t, s.RunStep())

	// THEN the output is unchanged
	assert.Equal(t, logic.Undefs(3), reg.Q().Get())

	// WHEN the clock rises
	clk.drive(logic.MustParse("1"))
	require.NoError(t, s.RunStep())
	require.NoError(t, s.RunStep())

	// THEN the concatenated inputs are captured, first input least significant
	got, ok := reg.Q().Get().Uint64()
	require.True(t, ok)
	assert.Equal(t, uint64(0b110), got)
}

func TestRegister_Check_Width(t *testing.T) {
	s := newSystem()
	src := &manual{width: 2, fill: sim.FillLow}
	add(t, s, "src", src)
	reg := NewRegister(3)
	add(t, s, "reg", reg)
	connect(t, reg, "A", src.q, nil)

	err := s.Open(nil)

	assert.ErrorIs(t, err, sim.ErrWidthMismatch)
}

func TestRegister_Clear(t *testing.T) {
	s := newSystem()
	clr := &manual{width: 1, fill: sim.FillLow}
	src := &manual{width: 2, fill: sim.FillHigh}
	add(t, s, "clr", clr)
	add(t, s, "src", src)
	reg := NewRegister(2)
	add(t, s, "reg", reg)
	connect(t, reg, "A", src.q, nil)
	connect(t, reg, "clr", clr.q, nil)
	open(t, s)

	require.NoError(t, s.RunStep())

	assert.Equal(t, logic.MustParse("00"), reg.Q().Get())
}
