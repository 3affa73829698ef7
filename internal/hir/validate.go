package hir

import (
	"fmt"

	"quill/internal/diag"
	"quill/internal/source"
)

// Validate checks structural well-formedness of a lowered package: dense
// item ids, parented items, allocated node ids, and local references that
// point at a real binder node. Violations are lowering bugs surfaced as
// diagnostics so a broken tree is still inspectable.
func Validate(pkg *Package, reporter diag.Reporter) {
	v := &validator{reporter: reporter, binders: make(map[NodeID]bool)}
	for i, item := range pkg.Items {
		if int(item.ID) != i+1 {
			v.malformed(item.Span, fmt.Sprintf("item %q has id %d at position %d", item.Name, item.ID, i+1))
		}
		switch item.Kind {
		case ItemNamespace:
			if item.Parent.IsValid() {
				v.malformed(item.Span, fmt.Sprintf("namespace %q has a parent", item.Name))
			}
		case ItemCallable:
			v.checkParent(pkg, item)
			if item.Callable == nil {
				v.malformed(item.Span, fmt.Sprintf("callable %q has no body record", item.Name))
				continue
			}
			for _, p := range item.Callable.Params {
				v.pat(p)
			}
			if item.Callable.Body != nil {
				v.block(item.Callable.Body)
			}
		case ItemNewtype:
			v.checkParent(pkg, item)
			if item.Newtype == nil {
				v.malformed(item.Span, fmt.Sprintf("newtype %q has no definition record", item.Name))
			}
		}
	}
	for _, ex := range pkg.Exports {
		if !ex.Target.Item.IsValid() {
			v.malformed(ex.Span, fmt.Sprintf("export %q has no target", ex.Alias))
		}
	}
	if pkg.Entry != nil {
		v.expr(pkg.Entry)
	}
}

type validator struct {
	reporter diag.Reporter
	binders  map[NodeID]bool
}

func (v *validator) malformed(sp source.Span, msg string) {
	diag.ReportError(v.reporter, diag.LowMalformedHir, sp, msg)
}

func (v *validator) checkParent(pkg *Package, item *Item) {
	parent := pkg.Item(item.Parent)
	if parent == nil || parent.Kind != ItemNamespace {
		diag.ReportError(v.reporter, diag.LowMissingParent, item.Span,
			fmt.Sprintf("item %q has no enclosing namespace", item.Name))
	}
}

func (v *validator) node(id NodeID, sp source.Span, what string) {
	if !id.IsValid() {
		v.malformed(sp, what+" has no node id")
	}
}

func (v *validator) expr(e *Expr) {
	if e == nil {
		return
	}
	v.node(e.ID, e.Span, "expression")
	switch e.Kind {
	case ExprVar:
		if e.Ref.Kind == ResLocal && !v.binders[e.Ref.Local] {
			v.malformed(e.Span, "local reference points at no binder")
		}
	case ExprString:
		for _, part := range e.Parts {
			v.expr(part.Expr)
		}
	case ExprCall:
		v.expr(e.Callee)
		for _, arg := range e.Args {
			v.expr(arg)
		}
	case ExprUnary:
		v.expr(e.Inner)
	case ExprBinary:
		v.expr(e.Lhs)
		v.expr(e.Rhs)
	case ExprTuple:
		for _, el := range e.Elems {
			v.expr(el)
		}
	case ExprBlockWrap:
		v.block(e.Block)
	case ExprIf:
		v.expr(e.Cond)
		v.block(e.Then)
		v.expr(e.Else)
	case ExprFor:
		v.expr(e.Lhs)
		v.pat(e.Pat)
		v.block(e.Block)
	case ExprRepeat:
		v.block(e.Block)
		v.expr(e.Cond)
	case ExprLambda:
		v.pat(e.Pat)
		v.expr(e.Inner)
	}
}

func (v *validator) block(b *Block) {
	if b == nil {
		return
	}
	v.node(b.ID, b.Span, "block")
	for _, s := range b.Stmts {
		v.stmt(s)
	}
}

func (v *validator) stmt(s *Stmt) {
	if s == nil {
		return
	}
	v.node(s.ID, s.Span, "statement")
	v.expr(s.Init)
	v.pat(s.Pat)
	v.block(s.Block)
	v.expr(s.Expr)
}

func (v *validator) pat(p *Pat) {
	if p == nil {
		return
	}
	v.node(p.ID, p.Span, "pattern")
	if p.Kind == PatBindKind {
		v.binders[p.ID] = true
	}
	for _, e := range p.Elems {
		v.pat(e)
	}
}
