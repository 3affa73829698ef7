package source

import (
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// EntryName is the synthetic name given to the entry-expression source.
const EntryName = "<entry>"

// NamedSource pairs a source name with its raw text.
type NamedSource struct {
	Name string
	Text string
}

// Source is one named text placed at a fixed offset inside a SourceMap.
type Source struct {
	Name     string
	Contents []byte
	Offset   uint32
	lineIdx  []uint32
}

// Span returns the span covering the whole source.
func (s *Source) Span() Span {
	lenContents, err := safecast.Conv[uint32](len(s.Contents))
	if err != nil {
		panic(fmt.Errorf("source length overflow: %w", err))
	}
	return Span{Start: s.Offset, End: s.Offset + lenContents}
}

// SourceMap concatenates named source texts into one virtual offset space.
// File sources come first in insertion order; the optional entry-expression
// source always sits after every file source.
type SourceMap struct {
	sources []Source
	entry   *Source
	next    uint32
}

// NewSourceMap lays out the given sources back to back. If entry is non-empty
// it is appended as a synthetic source named EntryName.
func NewSourceMap(sources []NamedSource, entry string) *SourceMap {
	m := &SourceMap{sources: make([]Source, 0, len(sources))}
	for _, src := range sources {
		m.push(src.Name, []byte(src.Text))
	}
	if entry != "" {
		s := m.push(EntryName, []byte(entry))
		m.entry = s
	}
	return m
}

func (m *SourceMap) push(name string, contents []byte) *Source {
	lenContents, err := safecast.Conv[uint32](len(contents))
	if err != nil {
		panic(fmt.Errorf("source length overflow: %w", err))
	}
	m.sources = append(m.sources, Source{
		Name:     name,
		Contents: contents,
		Offset:   m.next,
		lineIdx:  buildLineIndex(contents),
	})
	// +1 keeps adjacent sources from sharing a boundary offset.
	m.next += lenContents + 1
	return &m.sources[len(m.sources)-1]
}

// Len returns the number of sources, including the entry source.
func (m *SourceMap) Len() int {
	return len(m.sources)
}

// Sources returns the sources in offset order.
// The returned slice is read-only.
func (m *SourceMap) Sources() []Source {
	return m.sources
}

// Entry returns the entry-expression source, if one was supplied.
func (m *SourceMap) Entry() *Source {
	return m.entry
}

// Find locates the source containing the absolute offset, or nil if the
// offset is outside every source.
func (m *SourceMap) Find(offset uint32) *Source {
	i := sort.Search(len(m.sources), func(i int) bool {
		return m.sources[i].Offset > offset
	})
	if i == 0 {
		return nil
	}
	src := &m.sources[i-1]
	if offset > src.Span().End {
		return nil
	}
	return src
}

// Resolve converts a span into its owning source plus line/column positions.
// Spans covering no known source yield a nil source.
func (m *SourceMap) Resolve(span Span) (src *Source, start, end LineCol) {
	src = m.Find(span.Start)
	if src == nil {
		return nil, LineCol{}, LineCol{}
	}
	start = toLineCol(src.lineIdx, span.Start-src.Offset)
	end = toLineCol(src.lineIdx, span.End-src.Offset)
	return src, start, end
}

// Line returns the 1-based line lineNum of the source, without the newline.
func (s *Source) Line(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lenIdx, err := safecast.Conv[uint32](len(s.lineIdx))
	if err != nil {
		panic(fmt.Errorf("line index overflow: %w", err))
	}
	lenContents, err := safecast.Conv[uint32](len(s.Contents))
	if err != nil {
		panic(fmt.Errorf("source length overflow: %w", err))
	}

	var start uint32
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < lenIdx:
		start = s.lineIdx[lineNum-2] + 1
	default:
		return ""
	}

	end := lenContents
	if lineNum-1 < lenIdx {
		end = s.lineIdx[lineNum-1]
	}
	if start >= lenContents {
		return ""
	}
	if end > lenContents {
		end = lenContents
	}
	return string(s.Contents[start:end])
}

// buildLineIndex records the offset of every '\n' in contents.
func buildLineIndex(contents []byte) []uint32 {
	var idx []uint32
	for i, b := range contents {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("line offset overflow: %w", err))
			}
			idx = append(idx, off)
		}
	}
	return idx
}

// toLineCol maps a source-relative offset to a 1-based line/column pair.
func toLineCol(lineIdx []uint32, offset uint32) LineCol {
	line := sort.Search(len(lineIdx), func(i int) bool {
		return lineIdx[i] >= offset
	})
	col := offset + 1
	if line > 0 {
		col = offset - lineIdx[line-1]
	}
	lineNum, err := safecast.Conv[uint32](line + 1)
	if err != nil {
		panic(fmt.Errorf("line number overflow: %w", err))
	}
	return LineCol{Line: lineNum, Col: col}
}
