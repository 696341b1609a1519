package sim

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName_GenericSuffixes(t *testing.T) {
	s := newTestSystem()

	var names []string
	for i := 0; i < 4; i++ {
		d, err := s.Add(Generic("cnt"), Group{})
		require.NoError(t, err)
		names = append(names, d.Name())
	}

	assert.Equal(t, []string{"cnt0", "cnt1", "cnt2", "cnt3"}, names)
}

func TestName_GenericIsIdempotent(t *testing.T) {
	// GIVEN k devices registered under one generic name
	const k = 25
	s := newTestSystem()
	seen := map[string]bool{}
	for i := 0; i < k; i++ {
		d, err := s.Add(Generic("g"), Group{})
		require.NoError(t, err)
		seen[d.Name()] = true
	}

	// THEN every name is distinct and resolvable
	assert.Len(t, seen, k)
	for name := range seen {
		d, ok := s.Device(name)
		require.True(t, ok, name)
		assert.Equal(t, name, d.Name())
	}

	// AND a further registration still finds a free name
	d, err := s.Add(Generic("g"), Group{})
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("g%d", k), d.Name())
}

func TestName_GenericFillsSmallestGap(t *testing.T) {
	s := newTestSystem()
	_, err := s.Add(Named("a0"), Group{})
	require.NoError(t, err)
	_, err = s.Add(Named("a2"), Group{})
	require.NoError(t, err)

	d, err := s.Add(Generic("a"), Group{})
	require.NoError(t, err)

	assert.Equal(t, "a1", d.Name())
}

func TestName_ExplicitDuplicateIsAnError(t *testing.T) {
	s := newTestSystem()
	_, err := s.Add(Named("clk"), Group{})
	require.NoError(t, err)

	_, err = s.Add(Named("clk"), Group{})

	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Len(t, s.Root().Children(), 1)
}

func TestName_AnonymousNeverCollides(t *testing.T) {
	s := newTestSystem()
	for i := 0; i < 3; i++ {
		d, err := s.Add(Anonymous, Group{})
		require.NoError(t, err)
		assert.Equal(t, "", d.Name())
	}
	assert.Len(t, s.Root().Children(), 3)
}

func TestName_EmptyGenericUsesBehaviorName(t *testing.T) {
	s := newTestSystem()

	d0, err := s.Add(Generic(""), Group{})
	require.NoError(t, err)
	d1, err := s.Add(Generic(""), &driver{width: 1})
	require.NoError(t, err)

	assert.Equal(t, "G0", d0.Name())
	assert.Equal(t, "D0", d1.Name())
}

func TestName_PortsShareOneNamespace(t *testing.T) {
	s := newTestSystem()
	dr := &driver{width: 1, fill: FillLow}
	d, err := s.Add(Named("dev"), dr)
	require.NoError(t, err)

	a, err := d.AddInput(dr.q, Generic("Q"), nil)
	require.NoError(t, err)
	_, err = d.AddInput(dr.q, Named("Q"), nil)

	assert.Equal(t, "Q0", a.Name())
	assert.ErrorIs(t, err, ErrDuplicateName)
}
