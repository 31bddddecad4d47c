package hl7

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncoder_Segments(t *testing.T) {
	msg := &Message{}
	msg.Add(NewSegment("MSH")).Set(3, "APP").Set(9, "ADT", "A01").Set(12, "2.5.1")
	msg.Add(NewSegment("PID")).Set(3, "P1", "", "", "HFP", "MR").Set(5, "Smith", "Alice")

	out := NewEncoder().Encode(msg)

	assert.Equal(t,
		"MSH|^~\\&|APP||||||ADT^A01|||2.5.1\r"+
			"PID|||P1^^^HFP^MR||Smith^Alice\r",
		out)
}

func TestEncoder_TrimsTrailingEmpties(t *testing.T) {
	msg := &Message{}
	seg := msg.Add(NewSegment("PV1")).Set(2, "O", "", "")
	seg.Set(6, "")

	assert.Equal(t, "PV1||O\r", NewEncoder().Encode(msg))
}

func TestEncoder_EmptyMSHKeepsEncodingCharacters(t *testing.T) {
	msg := &Message{}
	msg.Add(NewSegment("MSH"))

	assert.Equal(t, "MSH|^~\\&\r", NewEncoder().Encode(msg))
}

func TestEncoder_Repetitions(t *testing.T) {
	seg := NewSegment("PID")
	seg.Fields = []Field{nil, nil, {{"A", "", "", "X"}, {"B"}}}
	msg := &Message{Segments: []*Segment{seg}}

	assert.Equal(t, "PID|||A^^^X~B\r", NewEncoder().Encode(msg))
}

func TestEncoder_Escape(t *testing.T) {
	e := NewEncoder()

	tests := []struct {
		in   string
		want string
	}{
		{in: "plain", want: "plain"},
		{in: "A|B", want: `A\F\B`},
		{in: "A^B", want: `A\S\B`},
		{in: "A&B", want: `A\T\B`},
		{in: "A~B", want: `A\R\B`},
		{in: `A\B`, want: `A\E\B`},
		{in: "A\rB", want: `A\X0D\B`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Escape(tt.in))
		})
	}
}

func TestEncoder_EscapesValuesNotDelimiters(t *testing.T) {
	msg := &Message{}
	msg.Add(NewSegment("PID")).Set(5, "O'Neil|Smith", "Ann^Marie")

	out := NewEncoder().Encode(msg)
	assert.Equal(t, `PID|||||O'Neil\F\Smith^Ann\S\Marie`+"\r", out)
	assert.Equal(t, 1, strings.Count(out, "^"))
}

func TestSegment_Get(t *testing.T) {
	seg := NewSegment("PID").Set(5, "Smith", "Alice")

	assert.Equal(t, "Smith", seg.Get(5, 1))
	assert.Equal(t, "Alice", seg.Get(5, 2))
	assert.Equal(t, "", seg.Get(5, 3))
	assert.Equal(t, "", seg.Get(9, 1))
	assert.Equal(t, "", seg.Get(0, 1))
}
