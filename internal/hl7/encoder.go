package hl7

import (
	"strings"
)

const (
	FieldSeparator        = '|'
	ComponentSeparator    = '^'
	RepetitionSeparator   = '~'
	EscapeCharacter       = '\\'
	SubcomponentSeparator = '&'

	EncodingCharacters = "^~\\&"
	SegmentTerminator  = "\r"
)

// Encoder renders messages with the standard |^~\& delimiter set, one
// segment per line terminated by a carriage return.
type Encoder struct {
	escaper *strings.Replacer
}

func NewEncoder() *Encoder {
	return &Encoder{
		escaper: strings.NewReplacer(
			`\`, `\E\`,
			`|`, `\F\`,
			`^`, `\S\`,
			`&`, `\T\`,
			`~`, `\R\`,
			"\r", `\X0D\`,
			"\n", `\X0A\`,
		),
	}
}

// Escape replaces delimiter characters in a value with HL7 escape
// sequences.
func (e *Encoder) Escape(value string) string {
	return e.escaper.Replace(value)
}

func (e *Encoder) Encode(msg *Message) string {
	var b strings.Builder
	for _, seg := range msg.Segments {
		e.encodeSegment(&b, seg)
		b.WriteString(SegmentTerminator)
	}
	return b.String()
}

func (e *Encoder) encodeSegment(b *strings.Builder, seg *Segment) {
	b.WriteString(seg.Name)

	first := 0
	if seg.Name == "MSH" {
		b.WriteByte(FieldSeparator)
		b.WriteString(EncodingCharacters)
		first = 2
	}

	fields := seg.Fields
	for len(fields) > first && isEmptyField(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}

	for i := first; i < len(fields); i++ {
		b.WriteByte(FieldSeparator)
		e.encodeField(b, fields[i])
	}
}

func (e *Encoder) encodeField(b *strings.Builder, field Field) {
	for r, rep := range field {
		if r > 0 {
			b.WriteByte(RepetitionSeparator)
		}
		comps := rep
		for len(comps) > 0 && comps[len(comps)-1] == "" {
			comps = comps[:len(comps)-1]
		}
		for c, comp := range comps {
			if c > 0 {
				b.WriteByte(ComponentSeparator)
			}
			b.WriteString(e.Escape(comp))
		}
	}
}

func isEmptyField(field Field) bool {
	for _, rep := range field {
		for _, comp := range rep {
			if comp != "" {
				return false
			}
		}
	}
	return true
}
