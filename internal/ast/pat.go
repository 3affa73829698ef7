package ast

import (
	"quill/internal/source"
)

// PatKind enumerates pattern node variants.
type PatKind uint8

const (
	PatErr PatKind = iota
	// PatBind introduces one local binding.
	PatBind
	// PatWild discards the matched value.
	PatWild
	PatTuple
	// PatParen is a parenthesized pattern; unwrapped during lowering.
	PatParen
)

func (k PatKind) String() string {
	switch k {
	case PatBind:
		return "bind"
	case PatWild:
		return "wildcard"
	case PatTuple:
		return "tuple"
	case PatParen:
		return "paren"
	default:
		return "error"
	}
}

// Pat is one pattern node. Name is set for binds, Elems for tuples, Inner
// for parens.
type Pat struct {
	Kind  PatKind
	Span  source.Span
	Name  NameID
	Elems []PatID
	Inner PatID
}
