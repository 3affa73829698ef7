package source

import (
	"testing"
)

func TestSourceMapOffsetsAreContiguous(t *testing.T) {
	m := NewSourceMap([]NamedSource{
		{Name: "a.ql", Text: "namespace A {}"},
		{Name: "b.ql", Text: "namespace B {}"},
	}, "")

	srcs := m.Sources()
	if len(srcs) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(srcs))
	}
	if srcs[0].Offset != 0 {
		t.Fatalf("first source must start at 0, got %d", srcs[0].Offset)
	}
	want := srcs[0].Span().End + 1
	if srcs[1].Offset != want {
		t.Fatalf("second source offset: got %d, want %d", srcs[1].Offset, want)
	}
}

func TestSourceMapEntryIsLast(t *testing.T) {
	m := NewSourceMap([]NamedSource{
		{Name: "a.ql", Text: "namespace A {}"},
	}, "A.Main()")

	entry := m.Entry()
	if entry == nil {
		t.Fatalf("expected entry source")
	}
	if entry.Name != EntryName {
		t.Fatalf("entry name: got %q", entry.Name)
	}
	srcs := m.Sources()
	if entry.Offset <= srcs[0].Offset {
		t.Fatalf("entry must sit after file sources")
	}
}

func TestFindLocatesOwningSource(t *testing.T) {
	m := NewSourceMap([]NamedSource{
		{Name: "a.ql", Text: "0123456789"},
		{Name: "b.ql", Text: "abcdefghij"},
	}, "")

	if src := m.Find(3); src == nil || src.Name != "a.ql" {
		t.Fatalf("offset 3 should land in a.ql, got %v", src)
	}
	second := m.Sources()[1]
	if src := m.Find(second.Offset + 2); src == nil || src.Name != "b.ql" {
		t.Fatalf("offset in second source should land in b.ql, got %v", src)
	}
	if src := m.Find(second.Span().End + 100); src != nil {
		t.Fatalf("offset past the map should find nothing, got %v", src)
	}
}

func TestResolveLineCol(t *testing.T) {
	m := NewSourceMap([]NamedSource{
		{Name: "a.ql", Text: "one\ntwo\nthree"},
	}, "")

	// span covering "two"
	src, start, end := m.Resolve(Span{Start: 4, End: 7})
	if src == nil || src.Name != "a.ql" {
		t.Fatalf("expected a.ql, got %v", src)
	}
	if start.Line != 2 || start.Col != 1 {
		t.Fatalf("start: got %d:%d, want 2:1", start.Line, start.Col)
	}
	if end.Line != 2 || end.Col != 4 {
		t.Fatalf("end: got %d:%d, want 2:4", end.Line, end.Col)
	}
	if got := src.Line(2); got != "two" {
		t.Fatalf("Line(2): got %q", got)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{Start: 4, End: 7}
	b := Span{Start: 1, End: 5}
	c := a.Cover(b)
	if c.Start != 1 || c.End != 7 {
		t.Fatalf("cover: got %v", c)
	}
}

func TestInternerRoundTrip(t *testing.T) {
	in := NewInterner()
	a := in.Intern("alpha")
	b := in.Intern("beta")
	if a == b {
		t.Fatalf("distinct strings must get distinct IDs")
	}
	if again := in.Intern("alpha"); again != a {
		t.Fatalf("interning twice must return the same ID")
	}
	if got := in.MustLookup(b); got != "beta" {
		t.Fatalf("lookup: got %q", got)
	}
	if in.Intern("") != NoStringID {
		t.Fatalf("empty string must map to NoStringID")
	}
}
