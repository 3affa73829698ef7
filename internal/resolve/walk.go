package resolve

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/hir"
)

// ResolvePackage runs phase 2 over the package the builder was bound to.
// Every name-bearing node ends up either in the returned Resolutions or with
// a diagnostic; lowering degrades missing entries to error markers.
func (r *Resolver) ResolvePackage(pkg *ast.Package) *Result {
	r.exports = make(map[ast.ItemID]hir.ItemID)
	for _, nsID := range pkg.Namespaces {
		ns := r.builder.Namespaces.Get(uint32(nsID))
		if ns == nil || !ns.Name.IsValid() {
			continue
		}
		r.enterNamespace(ns)
		for _, itemID := range ns.Items {
			r.resolveItem(itemID)
		}
	}
	if pkg.Entry.IsValid() {
		// the entry expression sees every namespace only through qualified
		// paths and the prelude
		r.currentNS = ""
		r.opens = map[string][]openEntry{}
		r.pushScope()
		r.resolveExpr(pkg.Entry)
		r.popScope()
	}
	if len(r.scopes) != 0 {
		panic(fmt.Sprintf("resolve: %d scopes left after package walk", len(r.scopes)))
	}
	return &Result{
		Names:          r.names,
		ItemIDs:        r.itemIDs,
		NamespaceItems: r.nsItems,
		ExportTargets:  r.exports,
	}
}

// enterNamespace rebuilds the open table by scanning the namespace's open
// declarations up front, so opens apply to the whole namespace body
// regardless of where they appear.
func (r *Resolver) enterNamespace(ns *ast.Namespace) {
	r.currentNS = r.builder.NameText(ns.Name)
	r.opens = make(map[string][]openEntry)
	for _, itemID := range ns.Items {
		item := r.builder.Items.Get(uint32(itemID))
		if item == nil || item.Kind != ast.ItemOpen {
			continue
		}
		path := r.builder.NameText(item.Path)
		if path == "" {
			continue
		}
		if _, known := r.namespaces[path]; !known {
			diag.ReportError(r.reporter, diag.ResNotFound, r.builder.Name(item.Path).Span,
				fmt.Sprintf("namespace %q not found", path))
			continue
		}
		alias := ""
		if item.Alias.IsValid() {
			alias = r.builder.NameText(item.Alias)
		}
		r.opens[alias] = append(r.opens[alias], openEntry{Namespace: path, Span: item.Span})
	}
}

func (r *Resolver) resolveItem(itemID ast.ItemID) {
	item := r.builder.Items.Get(uint32(itemID))
	if item == nil {
		return
	}
	switch item.Kind {
	case ast.ItemFunction:
		r.resolveFunction(item)
	case ast.ItemNewtype:
		r.resolveType(item.Def)
	case ast.ItemExport:
		r.resolveExport(itemID, item)
	case ast.ItemOpen, ast.ItemErr:
		// opens were handled in enterNamespace
	}
}

func (r *Resolver) resolveFunction(item *ast.Item) {
	for _, paramID := range item.Params {
		param := r.builder.Params.Get(uint32(paramID))
		if param != nil {
			r.resolveType(param.Type)
		}
	}
	r.resolveType(item.Return)
	if !item.Body.IsValid() {
		return
	}
	// callable body scope holds the parameters
	r.pushScope()
	for _, paramID := range item.Params {
		param := r.builder.Params.Get(uint32(paramID))
		if param != nil && param.Name.IsValid() {
			r.declareLocal(param.Name)
		}
	}
	r.resolveExpr(item.Body)
	r.popScope()
}

// resolveExport resolves the exported path, preferring the term namespace
// and falling back to the type namespace for type-only names.
func (r *Resolver) resolveExport(itemID ast.ItemID, item *ast.Item) {
	name := r.builder.Name(item.Path)
	if name == nil {
		return
	}
	res, ok := r.peekPath(name, TermSpace)
	if !ok {
		res, ok = r.peekPath(name, TypeSpace)
	}
	if !ok {
		diag.ReportError(r.reporter, diag.ResExportNotFound, name.Span,
			fmt.Sprintf("cannot export %q: name not found", name.Text(r.builder.StringsInterner)))
		return
	}
	r.names[item.Path] = hir.Res{Kind: hir.ResItem, Item: res}
	r.exports[itemID] = res
}

// peekPath runs the global tiers of the lookup (no locals, no diagnostics)
// and reports whether exactly one item was found.
func (r *Resolver) peekPath(name *ast.Name, space Space) (hir.ItemID, bool) {
	final := r.builder.StringsInterner.MustLookup(name.Final().ID)
	qualifier := name.Qualifier(r.builder.StringsInterner)
	if qualifier == "" {
		if ref, ok := r.lookupIn(r.currentNS, final, space); ok {
			return ref, true
		}
	}
	var found []hir.ItemID
	for _, entry := range r.opens[qualifier] {
		if ref, ok := r.lookupIn(entry.Namespace, final, space); ok {
			found = append(found, ref)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	if len(found) > 1 {
		return hir.ItemID{}, false
	}
	if qualifier != "" {
		if ref, ok := r.lookupIn(qualifier, final, space); ok {
			return ref, true
		}
	}
	return hir.ItemID{}, false
}

func (r *Resolver) resolveType(tyID ast.TypeID) {
	ty := r.builder.Types.Get(uint32(tyID))
	if ty == nil {
		return
	}
	switch ty.Kind {
	case ast.TypePath:
		r.resolvePath(ty.Path, TypeSpace)
	case ast.TypeParen:
		r.resolveType(ty.Inner)
	case ast.TypeTuple:
		for _, e := range ty.Elems {
			r.resolveType(e)
		}
	case ast.TypeArrow:
		r.resolveType(ty.Arg)
		r.resolveType(ty.Ret)
	case ast.TypeErr:
	}
}

// bindPat declares every binder in the pattern in the innermost scope.
func (r *Resolver) bindPat(patID ast.PatID) {
	pat := r.builder.Pats.Get(uint32(patID))
	if pat == nil {
		return
	}
	switch pat.Kind {
	case ast.PatBind:
		r.declareLocal(pat.Name)
	case ast.PatTuple:
		for _, e := range pat.Elems {
			r.bindPat(e)
		}
	case ast.PatParen:
		r.bindPat(pat.Inner)
	case ast.PatWild, ast.PatErr:
	}
}

func (r *Resolver) resolveStmt(stmtID ast.StmtID) {
	stmt := r.builder.Stmts.Get(uint32(stmtID))
	if stmt == nil {
		return
	}
	switch stmt.Kind {
	case ast.StmtExpr, ast.StmtReturn:
		r.resolveExpr(stmt.Expr)
	case ast.StmtLet:
		// the initializer sees the outer binding, not the new one
		r.resolveExpr(stmt.Init)
		r.bindPat(stmt.Pat)
	case ast.StmtUse:
		r.resolveExpr(stmt.Init)
		if stmt.Block.IsValid() {
			// binding scoped to the trailing block only
			r.pushScope()
			r.bindPat(stmt.Pat)
			r.resolveExpr(stmt.Block)
			r.popScope()
		} else {
			r.bindPat(stmt.Pat)
		}
	case ast.StmtErr:
	}
}

func (r *Resolver) resolveExpr(exprID ast.ExprID) {
	expr := r.builder.Exprs.Get(uint32(exprID))
	if expr == nil {
		return
	}
	switch expr.Kind {
	case ast.ExprPath:
		r.resolvePath(expr.Path, TermSpace)
	case ast.ExprCall:
		r.resolveExpr(expr.Callee)
		for _, arg := range expr.Args {
			r.resolveExpr(arg)
		}
	case ast.ExprUnary:
		r.resolveExpr(expr.Inner)
	case ast.ExprBinary:
		r.resolveExpr(expr.Lhs)
		r.resolveExpr(expr.Rhs)
	case ast.ExprTuple:
		for _, e := range expr.Elems {
			r.resolveExpr(e)
		}
	case ast.ExprParen:
		r.resolveExpr(expr.Inner)
	case ast.ExprBlock:
		r.pushScope()
		for _, stmtID := range expr.Stmts {
			r.resolveStmt(stmtID)
		}
		r.popScope()
	case ast.ExprIf:
		r.resolveExpr(expr.Cond)
		r.resolveExpr(expr.Then)
		r.resolveExpr(expr.Else)
	case ast.ExprFor:
		r.resolveExpr(expr.Lhs) // iterated expression
		r.pushScope()
		r.bindPat(expr.Pat)
		r.resolveExpr(expr.Inner)
		r.popScope()
	case ast.ExprRepeat:
		r.resolveExpr(expr.Inner)
		r.resolveExpr(expr.Cond)
	case ast.ExprLambda:
		r.pushScope()
		r.bindPat(expr.Pat)
		r.resolveExpr(expr.Inner)
		r.popScope()
	case ast.ExprInterpString:
		for _, part := range expr.Parts {
			if part.Expr.IsValid() {
				r.resolveExpr(part.Expr)
			}
		}
	case ast.ExprErr, ast.ExprLitInt, ast.ExprLitFloat, ast.ExprLitBool, ast.ExprLitString:
	}
}
