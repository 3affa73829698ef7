package ast

import (
	"quill/internal/source"
)

// TypeKind enumerates type-annotation node variants.
type TypeKind uint8

const (
	TypeErr TypeKind = iota
	// TypePath names a type: a primitive, a newtype, or a qualified path.
	TypePath
	// TypeParen is a parenthesized type; unwrapped during lowering.
	TypeParen
	// TypeTuple is a tuple type; the empty tuple is the unit type.
	TypeTuple
	// TypeArrow is a callable type T -> U.
	TypeArrow
)

func (k TypeKind) String() string {
	switch k {
	case TypePath:
		return "path"
	case TypeParen:
		return "paren"
	case TypeTuple:
		return "tuple"
	case TypeArrow:
		return "arrow"
	default:
		return "error"
	}
}

// Type is one type-annotation node. Path is set for paths, Elems for tuples,
// Inner for parens, Arg/Ret for arrows.
type Type struct {
	Kind  TypeKind
	Span  source.Span
	Path  NameID
	Elems []TypeID
	Inner TypeID
	Arg   TypeID
	Ret   TypeID
}
