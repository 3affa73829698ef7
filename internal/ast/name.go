package ast

import (
	"strings"

	"quill/internal/source"
)

// Segment is one dotted component of a Name.
type Segment struct {
	ID   source.StringID
	Span source.Span
}

// Name is one identifier occurrence: a bare name, a dotted path usage, a
// declared item name, or a pattern binder. Resolution results are keyed by
// the Name's NodeID.
type Name struct {
	Segments []Segment
	Span     source.Span
}

// IsPath reports whether the name has a namespace qualifier.
func (n *Name) IsPath() bool {
	return len(n.Segments) > 1
}

// Final returns the last segment (the item name proper).
func (n *Name) Final() Segment {
	return n.Segments[len(n.Segments)-1]
}

// Qualifier returns the dotted text of everything before the final segment,
// or "" for an unqualified name.
func (n *Name) Qualifier(strs *source.Interner) string {
	if len(n.Segments) < 2 {
		return ""
	}
	return joinSegments(n.Segments[:len(n.Segments)-1], strs)
}

// QualifierSpan covers the qualifier segments.
func (n *Name) QualifierSpan() source.Span {
	sp := n.Segments[0].Span
	for _, seg := range n.Segments[:len(n.Segments)-1] {
		sp = sp.Cover(seg.Span)
	}
	return sp
}

// Text returns the full dotted text of the name.
func (n *Name) Text(strs *source.Interner) string {
	return joinSegments(n.Segments, strs)
}

func joinSegments(segs []Segment, strs *source.Interner) string {
	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		parts = append(parts, strs.MustLookup(seg.ID))
	}
	return strings.Join(parts, ".")
}
