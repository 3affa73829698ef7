package ast

import (
	"quill/internal/source"
)

// ItemKind enumerates top-level declarations inside a namespace.
type ItemKind uint8

const (
	// ItemErr is a parse-error placeholder; it binds nothing.
	ItemErr ItemKind = iota
	// ItemFunction is a callable declaration.
	ItemFunction
	// ItemNewtype is a named type declaration; it introduces both a type
	// name and a constructor term.
	ItemNewtype
	// ItemOpen makes another namespace's names visible in the current one.
	ItemOpen
	// ItemExport re-exports an imported or local item under an alias.
	ItemExport
)

func (k ItemKind) String() string {
	switch k {
	case ItemFunction:
		return "function"
	case ItemNewtype:
		return "newtype"
	case ItemOpen:
		return "open"
	case ItemExport:
		return "export"
	default:
		return "error"
	}
}

// Attr is a source attribute such as @target("threads").
type Attr struct {
	Name source.StringID
	Arg  string
	Span source.Span
}

// Item is one top-level declaration. Fields beyond Kind/Span/Attrs are
// populated per kind:
//   - ItemFunction: Name, Params, Return, Body
//   - ItemNewtype:  Name, Def
//   - ItemOpen:     Path, Alias (optional)
//   - ItemExport:   Path, Alias
type Item struct {
	Kind     ItemKind
	Span     source.Span
	Attrs    []Attr
	Internal bool

	Name   NameID
	Params []FnParamID
	Return TypeID
	Body   ExprID // block expression

	Def TypeID

	Path  NameID
	Alias NameID
}

// FnParam is one callable parameter.
type FnParam struct {
	Name NameID
	Type TypeID
	Span source.Span
}
