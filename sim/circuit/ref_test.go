package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{"clock.Q", Ref{Device: "clock", Port: "Q"}},
		{"cnt.Q[0]", Ref{Device: "cnt", Port: "Q", Taps: []int{0}}},
		{"cnt.Q[3, 1,1]", Ref{Device: "cnt", Port: "Q", Taps: []int{3, 1, 1}}},
		{" rst0.P ", Ref{Device: "rst0", Port: "P"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRef_Invalid(t *testing.T) {
	for _, s := range []string{"", "clock", ".Q", "clock.", "a.b.c", "cnt.Q[]", "cnt.Q[x]", "cnt.Q[1", "cnt.Q[,]"} {
		_, err := ParseRef(s)
		assert.Error(t, err, s)
	}
}

func TestRef_String(t *testing.T) {
	assert.Equal(t, "cnt.Q", Ref{Device: "cnt", Port: "Q"}.String())
	assert.Equal(t, "cnt.Q[2,0]", Ref{Device: "cnt", Port: "Q", Taps: []int{2, 0}}.String())
}
