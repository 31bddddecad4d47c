// Package hl7 builds HL7 v2 admission messages and renders them in the
// pipe-delimited wire format.
package hl7

// Field holds the repetitions of one field; each repetition is a list of
// components.
type Field [][]string

// Segment is a named, positionally addressed list of fields. Fields[0] is
// field 1. For MSH, fields 1 and 2 (separator and encoding characters) are
// supplied by the encoder and ignored here.
type Segment struct {
	Name   string
	Fields []Field
}

func NewSegment(name string) *Segment {
	return &Segment{Name: name}
}

// Set stores a single-repetition value at 1-based position n.
func (s *Segment) Set(n int, components ...string) *Segment {
	if n < 1 {
		return s
	}
	for len(s.Fields) < n {
		s.Fields = append(s.Fields, nil)
	}
	s.Fields[n-1] = Field{components}
	return s
}

// Get returns the first repetition's component c (1-based) of field n, or
// "" when absent.
func (s *Segment) Get(n, c int) string {
	if n < 1 || n > len(s.Fields) || len(s.Fields[n-1]) == 0 {
		return ""
	}
	comps := s.Fields[n-1][0]
	if c < 1 || c > len(comps) {
		return ""
	}
	return comps[c-1]
}

type Message struct {
	Segments []*Segment
}

func (m *Message) Add(seg *Segment) *Segment {
	m.Segments = append(m.Segments, seg)
	return seg
}

// Segment returns the first segment called name, or nil.
func (m *Message) Segment(name string) *Segment {
	for _, seg := range m.Segments {
		if seg.Name == name {
			return seg
		}
	}
	return nil
}

// AdmissionMessage is an encoded message ready to be persisted.
type AdmissionMessage struct {
	FileName string
	Content  string
}
