package sim

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicsim/logicsim/sim/logic"
)

func newOutput(t *testing.T, width int, fill Fill) *Port {
	t.Helper()
	s := newTestSystem()
	dr := &driver{width: width, fill: fill}
	_, err := s.Add(Named("drv"), dr)
	require.NoError(t, err)
	return dr.q
}

func TestPort_Set_RejectsWidthMismatch(t *testing.T) {
	p := newOutput(t, 4, FillLow)

	err := p.Set(logic.MustParse("01"))

	assert.ErrorIs(t, err, ErrWidthMismatch)
	assert.Equal(t, logic.MustParse("0000"), p.Get(), "state must be unchanged")
}

func TestPort_Set_UpToDateTracksLastAssignment(t *testing.T) {
	p := newOutput(t, 2, FillLow)

	require.NoError(t, p.Set(logic.MustParse("01")))
	assert.False(t, p.UpToDate())

	require.NoError(t, p.Set(logic.MustParse("01")))
	assert.True(t, p.UpToDate())

	require.NoError(t, p.Set(logic.MustParse("U1")))
	assert.False(t, p.UpToDate())
}

func TestPort_EdgeDetection(t *testing.T) {
	// Every ordered pair of levels, starting from each level.
	levels := []logic.Bit{logic.Low, logic.High, logic.Undefined}
	for _, from := range levels {
		for _, to := range levels {
			t.Run(from.String()+"->"+to.String(), func(t *testing.T) {
				p := newOutput(t, 1, FillUndefined)
				require.NoError(t, p.SetBit(from))
				require.NoError(t, p.SetBit(to))

				assert.Equal(t, from == logic.Low && to == logic.High, p.Rising(), "rising")
				assert.Equal(t, from == logic.High && to == logic.Low, p.Falling(), "falling")
			})
		}
	}
}

func TestPort_EdgeDetection_Sequence(t *testing.T) {
	p := newOutput(t, 1, FillUndefined)
	seq := "01101U10U0"
	var rising, falling []int
	for i := 0; i < len(seq); i++ {
		b, _ := logic.BitFromChar(seq[i])
		require.NoError(t, p.SetBit(b))
		if p.Rising() {
			rising = append(rising, i)
		}
		if p.Falling() {
			falling = append(falling, i)
		}
	}
	assert.Equal(t, []int{1, 4}, rising)
	assert.Equal(t, []int{3, 7}, falling)
}

func TestPort_Export(t *testing.T) {
	p := newOutput(t, 1, FillLow)

	// GIVEN a named port never exported
	// THEN its start-up state is reported once
	assert.Equal(t, "0W0 ", p.Export())
	assert.Equal(t, "", p.Export())

	// WHEN the state changes
	require.NoError(t, p.SetBit(logic.High))
	assert.Equal(t, "1W0 ", p.Export())

	// WHEN it is assigned the same value
	require.NoError(t, p.SetBit(logic.High))
	assert.Equal(t, "", p.Export())
}

func TestPort_Export_Bus(t *testing.T) {
	p := newOutput(t, 4, FillUndefined)
	require.NoError(t, p.Set(logic.MustParse("1100")))

	assert.Equal(t, "b0011 W0 ", p.Export())
}

func TestPort_Export_UnnamedPortIsSilent(t *testing.T) {
	s := newTestSystem()
	d, err := s.Add(Named("dev"), Group{})
	require.NoError(t, err)
	p, err := d.AddOutput(1, Anonymous, FillHigh)
	require.NoError(t, err)

	assert.Equal(t, "", p.Export())
}

func TestPort_Update_ProjectsTaps(t *testing.T) {
	s := newTestSystem()
	dr := &driver{width: 4, fill: FillLow}
	_, err := s.Add(Named("drv"), dr)
	require.NoError(t, err)
	f := &follower{width: 2, src: dr.q, taps: []int{3, 0}}
	_, err = s.Add(Named("f"), f)
	require.NoError(t, err)

	require.NoError(t, dr.q.Set(logic.MustParse("10U1")))
	require.NoError(t, f.a.Update())

	assert.Equal(t, logic.MustParse("11"), f.a.Get())
	assert.Same(t, dr.q, f.a.Source())
	assert.Equal(t, []int{3, 0}, f.a.Taps())
}

func TestPort_Update_NoopOnOutput(t *testing.T) {
	p := newOutput(t, 1, FillHigh)

	require.NoError(t, p.Update())

	assert.Equal(t, logic.MustParse("1"), p.Get())
	assert.Nil(t, p.Source())
}

func TestPort_Set_RejectsInputPort(t *testing.T) {
	s := newTestSystem()
	dr := &driver{width: 1, fill: FillLow}
	_, err := s.Add(Named("drv"), dr)
	require.NoError(t, err)
	f := &follower{width: 1, src: dr.q}
	_, err = s.Add(Named("f"), f)
	require.NoError(t, err)

	assert.ErrorIs(t, f.a.Set(logic.MustParse("1")), ErrState)
	assert.ErrorIs(t, f.a.SetBit(logic.High), ErrState)
	assert.Equal(t, logic.MustParse("0"), f.a.Get(), "state must be unchanged")
}

func TestPort_AddInput_RejectsInputSource(t *testing.T) {
	// GIVEN f1 following drv, which toggles every tick
	s := newTestSystem()
	dr := &driver{width: 1, fill: FillLow, wave: square(2)}
	_, err := s.Add(Named("drv"), dr)
	require.NoError(t, err)
	f1 := &follower{width: 1, src: dr.q}
	_, err = s.Add(Named("f1"), f1)
	require.NoError(t, err)

	// WHEN another device binds an input to f1's input port
	_, err = s.Add(Named("chained"), &follower{width: 1, src: f1.a})

	// THEN it is refused and nothing is registered
	assert.ErrorIs(t, err, ErrNotOutput)
	_, ok := s.Device("chained")
	assert.False(t, ok)

	// AND the remaining circuit still steps from pre-step values
	require.NoError(t, s.Open(&bytes.Buffer{}))
	for i := 0; i < 4; i++ {
		before := dr.q.Get()
		require.NoError(t, s.RunStep())
		assert.Equal(t, before, f1.q.Get(), "step %d: f1.Q", i)
		assert.Equal(t, dr.q.Get(), f1.a.Get(), "step %d: f1.A", i)
	}
}

func TestPort_GetBits(t *testing.T) {
	p := newOutput(t, 4, FillUndefined)
	require.NoError(t, p.Set(logic.MustParse("01U1")))

	v, err := p.GetBits([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, logic.MustParse("1U"), v)

	_, err = p.GetBits([]int{4})
	assert.ErrorIs(t, err, logic.ErrIndex)
}

func TestSignalID_String(t *testing.T) {
	assert.Equal(t, "W0", SignalID(0).String())
	assert.Equal(t, "W17", SignalID(17).String())
}
