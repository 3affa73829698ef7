package hir

import (
	"quill/internal/source"
	"quill/internal/types"
)

// Visibility is the cross-package visibility of an item.
type Visibility uint8

const (
	// Public items are visible to dependent packages.
	Public Visibility = iota
	// Internal items are invisible outside their own package.
	Internal
)

func (v Visibility) String() string {
	if v == Internal {
		return "internal"
	}
	return "public"
}

// ItemKind enumerates top-level HIR items.
type ItemKind uint8

const (
	// ItemNamespace is the container item every other item is parented to.
	ItemNamespace ItemKind = iota
	ItemCallable
	ItemNewtype
)

func (k ItemKind) String() string {
	switch k {
	case ItemCallable:
		return "callable"
	case ItemNewtype:
		return "newtype"
	default:
		return "namespace"
	}
}

// Item is one lowered top-level declaration.
type Item struct {
	ID         LocalItemID
	Span       source.Span
	Parent     LocalItemID // enclosing namespace item; 0 for namespaces
	Visibility Visibility
	Kind       ItemKind

	// ItemNamespace: the dotted namespace name.
	// ItemCallable / ItemNewtype: the declared name.
	Name string

	Callable *Callable
	Newtype  *Newtype
}

// Callable is a lowered function declaration.
type Callable struct {
	Params []*Pat
	Output types.TypeID
	Body   *Block
}

// Newtype is a lowered named type declaration.
type Newtype struct {
	Underlying types.TypeID
}

// Export is one re-export declaration: Alias becomes visible in Namespace,
// referring to the original Target item wherever it was declared.
type Export struct {
	Namespace string
	Alias     string
	Target    ItemID
	Span      source.Span
}

// Package is one package's lowered tree.
type Package struct {
	Items   []*Item // dense, Items[i].ID == LocalItemID(i+1)
	Exports []Export
	Entry   *Expr
}

// Item returns the item with the given local id, or nil.
func (p *Package) Item(id LocalItemID) *Item {
	if !id.IsValid() || int(id) > len(p.Items) {
		return nil
	}
	return p.Items[id-1]
}

// NamespaceName returns the dotted namespace an item lives in, or "".
func (p *Package) NamespaceName(id LocalItemID) string {
	item := p.Item(id)
	if item == nil {
		return ""
	}
	if item.Kind == ItemNamespace {
		return item.Name
	}
	parent := p.Item(item.Parent)
	if parent == nil {
		return ""
	}
	return parent.Name
}
