package ast

import (
	"quill/internal/source"
)

// Hints suggest arena capacities for a Builder.
type Hints struct{ Namespaces, Items, Stmts, Exprs, Pats, Types, Names uint }

// Builder owns every AST arena for one package. Arena allocation order is the
// node-id assignment: ids grow monotonically and are never reused, so keeping
// the Builder alive lets a caller keep extending the same package (incremental
// recompilation) without ever renumbering existing nodes.
type Builder struct {
	Namespaces *Arena[Namespace]
	Items      *Arena[Item]
	Stmts      *Arena[Stmt]
	Exprs      *Arena[Expr]
	Pats       *Arena[Pat]
	Types      *Arena[Type]
	Names      *Arena[Name]
	Params     *Arena[FnParam]

	StringsInterner *source.Interner
}

// NewBuilder allocates the arenas. If strings is nil a fresh interner is used.
func NewBuilder(hints Hints, strings *source.Interner) *Builder {
	if hints.Namespaces == 0 {
		hints.Namespaces = 1 << 3
	}
	if hints.Items == 0 {
		hints.Items = 1 << 6
	}
	if hints.Stmts == 0 {
		hints.Stmts = 1 << 8
	}
	if hints.Exprs == 0 {
		hints.Exprs = 1 << 8
	}
	if hints.Pats == 0 {
		hints.Pats = 1 << 6
	}
	if hints.Types == 0 {
		hints.Types = 1 << 6
	}
	if hints.Names == 0 {
		hints.Names = 1 << 8
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	return &Builder{
		Namespaces:      NewArena[Namespace](hints.Namespaces),
		Items:           NewArena[Item](hints.Items),
		Stmts:           NewArena[Stmt](hints.Stmts),
		Exprs:           NewArena[Expr](hints.Exprs),
		Pats:            NewArena[Pat](hints.Pats),
		Types:           NewArena[Type](hints.Types),
		Names:           NewArena[Name](hints.Names),
		Params:          NewArena[FnParam](hints.Names),
		StringsInterner: strings,
	}
}

// NewName allocates a name node and returns its ID (the node id used as a
// resolution key).
func (b *Builder) NewName(segments []Segment, span source.Span) NameID {
	return NameID(b.Names.Allocate(Name{Segments: segments, Span: span}))
}

// NewIdent allocates a single-segment name.
func (b *Builder) NewIdent(id source.StringID, span source.Span) NameID {
	return b.NewName([]Segment{{ID: id, Span: span}}, span)
}

func (b *Builder) NewNamespace(ns Namespace) NamespaceID {
	return NamespaceID(b.Namespaces.Allocate(ns))
}

func (b *Builder) NewItem(item Item) ItemID {
	return ItemID(b.Items.Allocate(item))
}

func (b *Builder) NewStmt(stmt Stmt) StmtID {
	return StmtID(b.Stmts.Allocate(stmt))
}

func (b *Builder) NewExpr(expr Expr) ExprID {
	return ExprID(b.Exprs.Allocate(expr))
}

func (b *Builder) NewPat(pat Pat) PatID {
	return PatID(b.Pats.Allocate(pat))
}

func (b *Builder) NewType(ty Type) TypeID {
	return TypeID(b.Types.Allocate(ty))
}

func (b *Builder) NewParam(p FnParam) FnParamID {
	return FnParamID(b.Params.Allocate(p))
}

// Name returns the name node for id, or nil for the sentinel.
func (b *Builder) Name(id NameID) *Name {
	return b.Names.Get(uint32(id))
}

// NameText returns the dotted text of the name node, or "".
func (b *Builder) NameText(id NameID) string {
	n := b.Name(id)
	if n == nil {
		return ""
	}
	return n.Text(b.StringsInterner)
}
