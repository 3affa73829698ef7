package ast

import (
	"quill/internal/source"
)

// Namespace is one namespace declaration with its items.
type Namespace struct {
	Name  NameID
	Attrs []Attr
	Items []ItemID
	Span  source.Span
}

// Package is one parsed package: its namespaces plus an optional entry
// expression.
type Package struct {
	Namespaces []NamespaceID
	Entry      ExprID
}
