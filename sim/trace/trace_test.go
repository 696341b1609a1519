package trace

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logicsim/logicsim/sim/logic"
)

var testDate = time.Date(2025, time.June, 4, 9, 30, 0, 0, time.UTC)

func TestChange_Tokens(t *testing.T) {
	tests := []struct {
		name string
		v    logic.Vector
		want string
	}{
		{"low bit", logic.MustParse("0"), "0W3 "},
		{"high bit", logic.MustParse("1"), "1W3 "},
		{"undefined bit", logic.MustParse("U"), "UW3 "},
		{"bus is MSB first", logic.MustParse("1100"), "b0011 W3 "},
		{"bus with undefined", logic.MustParse("U01"), "b10U W3 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Change("W3", tt.v))
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "clk_Q", Label("clk", "Q", 1))
	assert.Equal(t, "cnt_Q[3:0]", Label("cnt", "Q", 4))
}

func TestWriter_Header(t *testing.T) {
	// GIVEN a nested scope description
	scopes := []Scope{
		{Name: "clk", Vars: []Var{{Width: 1, ID: "W0", Label: "clk_Q"}}},
		{Name: "cpu", Scopes: []Scope{
			{Name: "alu", Vars: []Var{{Width: 8, ID: "W1", Label: "alu_Q[7:0]"}}},
		}},
	}
	var buf bytes.Buffer
	tw := NewWriter(&buf)

	// WHEN the header is written
	require.NoError(t, tw.WriteHeader(Header{Date: testDate}, scopes))
	require.NoError(t, tw.Flush())

	// THEN it follows the fixed layout with tab-indented scopes
	want := "$version generated by logicsim $end\n" +
		"$date Wednesday, 04 Jun 2025 at 09:30:00 $end\n" +
		"$timescale 1ns $end\n" +
		"$scope module SYSTEM $end\n" +
		"\t$scope module clk $end\n" +
		"\t\t$var wire 1 W0 clk_Q $end\n" +
		"\t$upscope $end\n" +
		"\t$scope module cpu $end\n" +
		"\t\t$scope module alu $end\n" +
		"\t\t\t$var wire 8 W1 alu_Q[7:0] $end\n" +
		"\t\t$upscope $end\n" +
		"\t$upscope $end\n" +
		"$upscope $end\n" +
		"$enddefinitions $end\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, int64(len(want)), tw.Bytes())
}

func TestWriter_Frames(t *testing.T) {
	var buf bytes.Buffer
	tw := NewWriter(&buf)

	require.NoError(t, tw.WriteFrame(0, "0W0 b0000 W1 "))
	require.NoError(t, tw.WriteFrame(1, ""))
	require.NoError(t, tw.WriteFrame(10, "1W0 "))
	require.NoError(t, tw.Flush())

	assert.Equal(t, "#0 0W0 b0000 W1 \n#10 1W0 \n", buf.String())
	assert.Equal(t, 2, tw.Frames())
}

type closeRecorder struct {
	bytes.Buffer
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestWriter_Close_ClosesSink(t *testing.T) {
	sink := &closeRecorder{}
	tw := NewWriter(sink)
	require.NoError(t, tw.WriteFrame(3, "1W0 "))

	require.NoError(t, tw.Close())

	assert.True(t, sink.closed)
	assert.Equal(t, "#3 1W0 \n", sink.String())
}

func TestRead_RoundTrip(t *testing.T) {
	// GIVEN a trace produced by the writer
	var buf bytes.Buffer
	tw := NewWriter(&buf)
	scopes := []Scope{{Name: "top", Scopes: []Scope{
		{Name: "cnt", Vars: []Var{{Width: 2, ID: "W0", Label: "cnt_Q[1:0]"}}},
	}}, {Name: "clk", Vars: []Var{{Width: 1, ID: "W1", Label: "clk_Q"}}}}
	require.NoError(t, tw.WriteHeader(Header{Version: "v", Date: testDate}, scopes))
	require.NoError(t, tw.WriteFrame(0, Change("W0", logic.MustParse("00"))+Change("W1", logic.MustParse("0"))))
	require.NoError(t, tw.WriteFrame(5, Change("W1", logic.MustParse("1"))))
	require.NoError(t, tw.WriteFrame(6, Change("W0", logic.MustParse("10"))))
	require.NoError(t, tw.Close())

	// WHEN read back
	d, err := Read(strings.NewReader(buf.String()))
	require.NoError(t, err)

	// THEN declarations and frames survive
	assert.Equal(t, "v", d.Version)
	assert.Equal(t, "Wednesday, 04 Jun 2025 at 09:30:00", d.Date)
	assert.Equal(t, "1ns", d.Timescale)
	require.Len(t, d.Vars, 2)
	assert.Equal(t, "SYSTEM.top.cnt", d.Scopes["W0"])
	assert.Equal(t, "SYSTEM.clk", d.Scopes["W1"])
	v, ok := d.Var("W0")
	require.True(t, ok)
	assert.Equal(t, 2, v.Width)

	require.Len(t, d.Frames, 3)
	assert.Equal(t, []Value{{ID: "W0", Bits: "00"}, {ID: "W1", Bits: "0"}}, d.Frames[0].Changes)
	assert.Equal(t, Frame{Time: 6, Changes: []Value{{ID: "W0", Bits: "01"}}}, d.Frames[2])
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no definitions end", "$version x $end\n"},
		{"unterminated declaration", "$version x\n$enddefinitions $end\n"},
		{"unbalanced scope", "$scope module A $end\n$enddefinitions $end\n"},
		{"bad frame", "$enddefinitions $end\n0W1\n"},
		{"dangling bus", "$enddefinitions $end\n#1 b01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}
