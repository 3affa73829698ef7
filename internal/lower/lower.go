// Package lower translates a resolved, typed AST package into HIR. Lowering
// never fails: unresolved names become error-marked variable references,
// missing types stay at the error type, and every input tree produces a
// complete output tree so downstream tooling always has something to walk.
package lower

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/checker"
	"quill/internal/hir"
	"quill/internal/resolve"
	"quill/internal/source"
	"quill/internal/types"
)

// Options configures one lowering pass.
type Options struct {
	Builder *ast.Builder
	Res     *resolve.Result
	Check   *checker.Result
	// Assigner hands out node ids. Callers wanting stable ids across
	// repeated lowerings must pass the same assigner each time.
	Assigner *hir.Assigner
}

// Lowerer carries the per-pass state: the id index maps that make node
// identity idempotent within one pass, and the binder map that lets local
// variable references point at their binder's HIR node.
type Lowerer struct {
	b        *ast.Builder
	res      *resolve.Result
	check    *checker.Result
	assigner *hir.Assigner

	exprIDs map[ast.ExprID]hir.NodeID
	stmtIDs map[ast.StmtID]hir.NodeID
	patIDs  map[ast.PatID]hir.NodeID
	binders map[ast.NameID]hir.NodeID
}

// New builds a Lowerer. A nil assigner gets a fresh one.
func New(opts Options) *Lowerer {
	if opts.Assigner == nil {
		opts.Assigner = hir.NewAssigner()
	}
	return &Lowerer{
		b:        opts.Builder,
		res:      opts.Res,
		check:    opts.Check,
		assigner: opts.Assigner,
		exprIDs:  make(map[ast.ExprID]hir.NodeID),
		stmtIDs:  make(map[ast.StmtID]hir.NodeID),
		patIDs:   make(map[ast.PatID]hir.NodeID),
		binders:  make(map[ast.NameID]hir.NodeID),
	}
}

// Package lowers pkg. Item ids follow the order global binding assigned
// them; an item the binder skipped as a duplicate is skipped here too, so
// the output item list stays dense.
func (lw *Lowerer) Package(pkg *ast.Package) *hir.Package {
	out := &hir.Package{}
	for _, nsID := range pkg.Namespaces {
		ns := lw.b.Namespaces.Get(uint32(nsID))
		if ns == nil || !ns.Name.IsValid() {
			continue
		}
		nsItem, ok := lw.res.NamespaceItems[nsID]
		if !ok {
			panic(fmt.Sprintf("lower: namespace %q was never bound", lw.b.NameText(ns.Name)))
		}
		nsName := lw.b.NameText(ns.Name)
		lw.appendItem(out, &hir.Item{
			ID:   nsItem,
			Span: ns.Span,
			Kind: hir.ItemNamespace,
			Name: nsName,
		})
		for _, itemID := range ns.Items {
			lw.lowerItem(out, nsName, nsItem, itemID)
		}
	}
	if pkg.Entry.IsValid() {
		out.Entry = lw.lowerExpr(pkg.Entry)
	}
	return out
}

// appendItem keeps the dense-id contract: binding and lowering walk items in
// the same order, so a gap means an internal bug, not a user error.
func (lw *Lowerer) appendItem(out *hir.Package, item *hir.Item) {
	if int(item.ID) != len(out.Items)+1 {
		panic(fmt.Sprintf("lower: item %q has id %d, expected %d", item.Name, item.ID, len(out.Items)+1))
	}
	out.Items = append(out.Items, item)
}

func (lw *Lowerer) lowerItem(out *hir.Package, nsName string, parent hir.LocalItemID, itemID ast.ItemID) {
	item := lw.b.Items.Get(uint32(itemID))
	if item == nil {
		return
	}
	switch item.Kind {
	case ast.ItemFunction, ast.ItemNewtype:
		id, bound := lw.res.ItemIDs[itemID]
		if !bound {
			// duplicate declaration, dropped during binding
			return
		}
		sig := lw.check.ItemSigs[id]
		lowered := &hir.Item{
			ID:         id,
			Span:       item.Span,
			Parent:     parent,
			Visibility: visibilityOf(item),
			Name:       lw.b.NameText(item.Name),
		}
		if item.Kind == ast.ItemFunction {
			lowered.Kind = hir.ItemCallable
			lowered.Callable = lw.lowerCallable(item, sig)
		} else {
			lowered.Kind = hir.ItemNewtype
			lowered.Newtype = &hir.Newtype{Underlying: sig.Underlying}
		}
		lw.appendItem(out, lowered)
	case ast.ItemExport:
		target, ok := lw.res.ExportTargets[itemID]
		if !ok {
			return
		}
		alias := lw.b.NameText(item.Alias)
		if alias == "" {
			name := lw.b.Name(item.Path)
			alias = lw.b.StringsInterner.MustLookup(name.Final().ID)
		}
		out.Exports = append(out.Exports, hir.Export{
			Namespace: nsName,
			Alias:     alias,
			Target:    target,
			Span:      item.Span,
		})
	case ast.ItemOpen, ast.ItemErr:
	}
}

func visibilityOf(item *ast.Item) hir.Visibility {
	if item.Internal {
		return hir.Internal
	}
	return hir.Public
}

// lowerCallable lowers parameters before the body so local references find
// their binder nodes.
func (lw *Lowerer) lowerCallable(item *ast.Item, sig checker.Sig) *hir.Callable {
	c := &hir.Callable{Output: sig.Output}
	for i, paramID := range item.Params {
		param := lw.b.Params.Get(uint32(paramID))
		if param == nil {
			continue
		}
		ty := types.ErrTypeID
		if i < len(sig.Params) {
			ty = sig.Params[i]
		}
		p := &hir.Pat{
			ID:   lw.assigner.Next(),
			Span: param.Span,
			Type: ty,
			Kind: hir.PatBindKind,
			Name: lw.b.NameText(param.Name),
		}
		if param.Name.IsValid() {
			lw.binders[param.Name] = p.ID
		}
		c.Params = append(c.Params, p)
	}
	if item.Body.IsValid() {
		c.Body = lw.lowerToBlock(item.Body)
	}
	return c
}

// lowerToBlock lowers an expression expected to be a block, wrapping
// anything else in a synthesized single-statement block.
func (lw *Lowerer) lowerToBlock(exprID ast.ExprID) *hir.Block {
	expr := lw.b.Exprs.Get(uint32(exprID))
	if expr == nil {
		return &hir.Block{ID: lw.assigner.Next(), Type: types.ErrTypeID}
	}
	if expr.Kind == ast.ExprBlock {
		return lw.lowerBlock(exprID, expr)
	}
	inner := lw.lowerExpr(exprID)
	return &hir.Block{
		ID:   lw.assigner.Next(),
		Span: expr.Span,
		Type: inner.Type,
		Stmts: []*hir.Stmt{{
			ID:   lw.assigner.Next(),
			Span: expr.Span,
			Kind: hir.StmtExprKind,
			Expr: inner,
		}},
	}
}

func (lw *Lowerer) lowerBlock(exprID ast.ExprID, expr *ast.Expr) *hir.Block {
	block := &hir.Block{
		ID:   lw.nodeFor(lw.exprIDs, exprID),
		Span: expr.Span,
		Type: lw.typeOf(exprID),
	}
	for _, stmtID := range expr.Stmts {
		if s := lw.lowerStmt(stmtID); s != nil {
			block.Stmts = append(block.Stmts, s)
		}
	}
	return block
}

// nodeFor returns the HIR id for an AST node, allocating on first sight.
// Repeated lowering of the same node within one pass reuses the id.
func nodeForKey[K comparable](lw *Lowerer, index map[K]hir.NodeID, key K) hir.NodeID {
	if id, ok := index[key]; ok {
		return id
	}
	id := lw.assigner.Next()
	index[key] = id
	return id
}

func (lw *Lowerer) nodeFor(index map[ast.ExprID]hir.NodeID, key ast.ExprID) hir.NodeID {
	return nodeForKey(lw, index, key)
}

func (lw *Lowerer) typeOf(exprID ast.ExprID) types.TypeID {
	if ty, ok := lw.check.ExprTypes[exprID]; ok && ty.IsValid() {
		return ty
	}
	return types.ErrTypeID
}

func (lw *Lowerer) patTypeOf(patID ast.PatID) types.TypeID {
	if ty, ok := lw.check.PatTypes[patID]; ok && ty.IsValid() {
		return ty
	}
	return types.ErrTypeID
}

func spanOf(b *ast.Builder, exprID ast.ExprID) source.Span {
	if e := b.Exprs.Get(uint32(exprID)); e != nil {
		return e.Span
	}
	return source.Span{}
}
