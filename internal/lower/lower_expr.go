package lower

import (
	"quill/internal/ast"
	"quill/internal/hir"
	"quill/internal/types"
)

func (lw *Lowerer) lowerExpr(exprID ast.ExprID) *hir.Expr {
	expr := lw.b.Exprs.Get(uint32(exprID))
	if expr == nil {
		return &hir.Expr{ID: lw.assigner.Next(), Type: types.ErrTypeID, Kind: hir.ExprErrKind}
	}
	if expr.Kind == ast.ExprParen {
		return lw.lowerExpr(expr.Inner)
	}
	out := &hir.Expr{
		ID:   lw.nodeFor(lw.exprIDs, exprID),
		Span: expr.Span,
		Type: lw.typeOf(exprID),
	}
	switch expr.Kind {
	case ast.ExprLitInt:
		out.Kind = hir.ExprLitInt
		out.IntVal = expr.IntVal
	case ast.ExprLitFloat:
		out.Kind = hir.ExprLitDouble
		out.DoubleVal = expr.FloatVal
	case ast.ExprLitBool:
		out.Kind = hir.ExprLitBool
		out.BoolVal = expr.BoolVal
	case ast.ExprLitString:
		out.Kind = hir.ExprString
		out.Parts = []hir.StringComponent{{Lit: expr.StrVal}}
	case ast.ExprInterpString:
		out.Kind = hir.ExprString
		for _, part := range expr.Parts {
			if part.Expr.IsValid() {
				out.Parts = append(out.Parts, hir.StringComponent{Expr: lw.lowerExpr(part.Expr)})
			} else {
				out.Parts = append(out.Parts, hir.StringComponent{Lit: part.Lit})
			}
		}
	case ast.ExprPath:
		out.Kind = hir.ExprVar
		out.Ref = lw.varRef(expr.Path)
	case ast.ExprCall:
		out.Kind = hir.ExprCall
		out.Callee = lw.lowerExpr(expr.Callee)
		for _, arg := range expr.Args {
			out.Args = append(out.Args, lw.lowerExpr(arg))
		}
	case ast.ExprUnary:
		out.Kind = hir.ExprUnary
		out.Op = expr.Op
		out.Inner = lw.lowerExpr(expr.Inner)
	case ast.ExprBinary:
		out.Kind = hir.ExprBinary
		out.Op = expr.Op
		out.Lhs = lw.lowerExpr(expr.Lhs)
		out.Rhs = lw.lowerExpr(expr.Rhs)
	case ast.ExprTuple:
		out.Kind = hir.ExprTuple
		for _, e := range expr.Elems {
			out.Elems = append(out.Elems, lw.lowerExpr(e))
		}
	case ast.ExprBlock:
		out.Kind = hir.ExprBlockWrap
		out.Block = lw.lowerBlock(exprID, expr)
		// the wrapper shares the block's node id space but needs its own
		out.ID = lw.assigner.Next()
	case ast.ExprIf:
		out.Kind = hir.ExprIf
		out.Cond = lw.lowerExpr(expr.Cond)
		out.Then = lw.lowerToBlock(expr.Then)
		if expr.Else.IsValid() {
			out.Else = lw.lowerElse(expr.Else)
		}
	case ast.ExprFor:
		out.Kind = hir.ExprFor
		out.Lhs = lw.lowerExpr(expr.Lhs)
		out.Pat = lw.lowerPat(expr.Pat)
		out.Block = lw.lowerToBlock(expr.Inner)
	case ast.ExprRepeat:
		out.Kind = hir.ExprRepeat
		out.Block = lw.lowerToBlock(expr.Inner)
		out.Cond = lw.lowerExpr(expr.Cond)
	case ast.ExprLambda:
		out.Kind = hir.ExprLambda
		out.Pat = lw.lowerPat(expr.Pat)
		out.Inner = lw.lowerExpr(expr.Inner)
	default:
		out.Kind = hir.ExprErrKind
	}
	return out
}

// lowerElse keeps the else arm in its two legal shapes: a nested if or a
// block wrapper.
func (lw *Lowerer) lowerElse(exprID ast.ExprID) *hir.Expr {
	expr := lw.b.Exprs.Get(uint32(exprID))
	if expr != nil && expr.Kind == ast.ExprParen {
		return lw.lowerElse(expr.Inner)
	}
	if expr != nil && expr.Kind == ast.ExprIf {
		return lw.lowerExpr(exprID)
	}
	block := lw.lowerToBlock(exprID)
	return &hir.Expr{
		ID:    lw.assigner.Next(),
		Span:  spanOf(lw.b, exprID),
		Type:  block.Type,
		Kind:  hir.ExprBlockWrap,
		Block: block,
	}
}

// varRef canonicalizes a resolution: local references swap the binder's AST
// name for its HIR pattern node. Anything unresolved degrades to an error
// reference, never a missing node.
func (lw *Lowerer) varRef(nameID ast.NameID) hir.VarRef {
	res, ok := lw.res.Names[nameID]
	if !ok {
		return hir.VarRef{Kind: hir.ResErr}
	}
	switch res.Kind {
	case hir.ResItem:
		return hir.VarRef{Kind: hir.ResItem, Item: res.Item}
	case hir.ResLocal:
		binder, ok := lw.binders[res.Local]
		if !ok {
			return hir.VarRef{Kind: hir.ResErr}
		}
		return hir.VarRef{Kind: hir.ResLocal, Local: binder}
	default:
		return hir.VarRef{Kind: hir.ResErr}
	}
}

func (lw *Lowerer) lowerStmt(stmtID ast.StmtID) *hir.Stmt {
	stmt := lw.b.Stmts.Get(uint32(stmtID))
	if stmt == nil {
		return nil
	}
	out := &hir.Stmt{
		ID:   nodeForKey(lw, lw.stmtIDs, stmtID),
		Span: stmt.Span,
	}
	switch stmt.Kind {
	case ast.StmtExpr:
		out.Kind = hir.StmtExprKind
		out.Expr = lw.lowerExpr(stmt.Expr)
	case ast.StmtLet:
		out.Kind = hir.StmtLetKind
		out.Init = lw.lowerExpr(stmt.Init)
		out.Pat = lw.lowerPat(stmt.Pat)
	case ast.StmtUse:
		out.Kind = hir.StmtUseKind
		out.Init = lw.lowerExpr(stmt.Init)
		out.Pat = lw.lowerPat(stmt.Pat)
		if stmt.Block.IsValid() {
			out.Block = lw.lowerToBlock(stmt.Block)
		}
	case ast.StmtReturn:
		out.Kind = hir.StmtReturnKind
		if stmt.Expr.IsValid() {
			out.Expr = lw.lowerExpr(stmt.Expr)
		}
	default:
		out.Kind = hir.StmtExprKind
		out.Expr = &hir.Expr{ID: lw.assigner.Next(), Span: stmt.Span, Type: types.ErrTypeID, Kind: hir.ExprErrKind}
	}
	return out
}

// lowerPat unwraps parens and records every binder so later variable
// references can point at it.
func (lw *Lowerer) lowerPat(patID ast.PatID) *hir.Pat {
	pat := lw.b.Pats.Get(uint32(patID))
	if pat == nil {
		return &hir.Pat{ID: lw.assigner.Next(), Type: types.ErrTypeID, Kind: hir.PatErrKind}
	}
	if pat.Kind == ast.PatParen {
		return lw.lowerPat(pat.Inner)
	}
	out := &hir.Pat{
		ID:   nodeForKey(lw, lw.patIDs, patID),
		Span: pat.Span,
		Type: lw.patTypeOf(patID),
	}
	switch pat.Kind {
	case ast.PatBind:
		out.Kind = hir.PatBindKind
		out.Name = lw.b.NameText(pat.Name)
		if pat.Name.IsValid() {
			lw.binders[pat.Name] = out.ID
		}
	case ast.PatWild:
		out.Kind = hir.PatWildKind
	case ast.PatTuple:
		out.Kind = hir.PatTupleKind
		for _, e := range pat.Elems {
			out.Elems = append(out.Elems, lw.lowerPat(e))
		}
	default:
		out.Kind = hir.PatErrKind
	}
	return out
}
