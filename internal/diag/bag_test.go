package diag

import (
	"testing"

	"quill/internal/source"
)

func TestBagSortOrdersBySpanThenSeverity(t *testing.T) {
	b := NewBag(8)
	b.Add(New(SevWarning, TypeMismatch, source.Span{Start: 10, End: 12}, "later"))
	b.Add(New(SevError, ResNotFound, source.Span{Start: 2, End: 3}, "earlier"))
	b.Add(New(SevError, TypeMismatch, source.Span{Start: 10, End: 12}, "same span, error"))
	b.Sort()

	items := b.Items()
	if items[0].Message != "earlier" {
		t.Fatalf("expected span order, got %q first", items[0].Message)
	}
	if items[1].Severity != SevError {
		t.Fatalf("same-span errors must sort before warnings")
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add(NewError(ResNotFound, source.Span{}, "first")) {
		t.Fatalf("first add should succeed")
	}
	if b.Add(NewError(ResNotFound, source.Span{}, "second")) {
		t.Fatalf("add past the limit should be rejected")
	}
	if b.Len() != 1 {
		t.Fatalf("len: got %d", b.Len())
	}
}

func TestCodePhaseRanges(t *testing.T) {
	cases := map[Code]Phase{
		LexUnknownChar:  PhaseParse,
		SynExpectItem:   PhaseParse,
		ResNotFound:     PhaseResolve,
		ResAmbiguous:    PhaseResolve,
		TypeMismatch:    PhaseType,
		LowMalformedHir: PhaseLower,
		IOLoadFileError: PhaseOther,
	}
	for code, want := range cases {
		if got := code.Phase(); got != want {
			t.Fatalf("%s: got phase %s, want %s", code, got, want)
		}
	}
}

func TestByPhaseFilters(t *testing.T) {
	b := NewBag(8)
	b.Add(NewError(ResNotFound, source.Span{Start: 1, End: 2}, "resolve"))
	b.Add(NewError(TypeMismatch, source.Span{Start: 3, End: 4}, "type"))
	res := b.ByPhase(PhaseResolve)
	if len(res) != 1 || res[0].Message != "resolve" {
		t.Fatalf("ByPhase(PhaseResolve): got %v", res)
	}
}
