// Package checker computes a node-to-type table over a resolved AST
// package. It is deliberately minimal: annotations drive everything, the
// error type absorbs whatever upstream phases could not determine, and no
// diagnostic is ever produced against an error-typed operand. Lowering
// consumes the table; it never recomputes types.
package checker

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/hir"
	"quill/internal/resolve"
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/types"
)

// Sig is the externally visible type information of one item.
type Sig struct {
	Kind   hir.ItemKind
	Params []types.TypeID
	Output types.TypeID
	// Underlying is the wrapped type of a newtype.
	Underlying types.TypeID
	// Value is the type of referencing the item in expression position:
	// an arrow for callables and constructors, NoTypeID for namespaces.
	Value types.TypeID
}

// ExternalSigs resolves a cross-package item reference to its signature,
// expressed in the current compilation's type interner.
type ExternalSigs func(hir.ItemID) (Sig, bool)

// Options configures one check pass.
type Options struct {
	Builder  *ast.Builder
	Res      *resolve.Result
	Types    *types.Interner
	Reporter diag.Reporter
	External ExternalSigs
}

// Result is the type table for one package.
type Result struct {
	ExprTypes map[ast.ExprID]types.TypeID
	PatTypes  map[ast.PatID]types.TypeID
	// LocalTypes maps binder name nodes to the binding's type.
	LocalTypes map[ast.NameID]types.TypeID
	// ItemSigs holds the signatures of the package's own items.
	ItemSigs map[hir.LocalItemID]Sig
}

type checker struct {
	b        *ast.Builder
	res      *resolve.Result
	tys      *types.Interner
	reporter diag.Reporter
	external ExternalSigs

	out *Result
}

// Check types every callable body and the entry expression of pkg.
// Items the resolver failed to bind are skipped; their uses degrade to the
// error type without further diagnostics.
func Check(pkg *ast.Package, opts Options) *Result {
	c := &checker{
		b:        opts.Builder,
		res:      opts.Res,
		tys:      opts.Types,
		reporter: opts.Reporter,
		external: opts.External,
		out: &Result{
			ExprTypes:  make(map[ast.ExprID]types.TypeID),
			PatTypes:   make(map[ast.PatID]types.TypeID),
			LocalTypes: make(map[ast.NameID]types.TypeID),
			ItemSigs:   make(map[hir.LocalItemID]Sig),
		},
	}
	c.collectSigs(pkg)
	c.checkBodies(pkg)
	if pkg.Entry.IsValid() {
		c.checkExpr(pkg.Entry)
	}
	return c.out
}

// collectSigs computes every local item's signature before any body is
// checked, so mutually recursive callables see each other's types.
func (c *checker) collectSigs(pkg *ast.Package) {
	c.eachItem(pkg, func(item *ast.Item, id hir.LocalItemID) {
		switch item.Kind {
		case ast.ItemFunction:
			sig := Sig{Kind: hir.ItemCallable, Output: types.UnitTypeID}
			for _, paramID := range item.Params {
				param := c.b.Params.Get(uint32(paramID))
				ty := types.ErrTypeID
				if param != nil && param.Type.IsValid() {
					ty = c.typeFromAst(param.Type)
				}
				sig.Params = append(sig.Params, ty)
			}
			if item.Return.IsValid() {
				sig.Output = c.typeFromAst(item.Return)
			}
			sig.Value = c.tys.Arrow(c.tys.Tuple(sig.Params), sig.Output)
			c.out.ItemSigs[id] = sig
		case ast.ItemNewtype:
			under := types.ErrTypeID
			if item.Def.IsValid() {
				under = c.typeFromAst(item.Def)
			}
			name := c.b.NameText(item.Name)
			named := c.tys.Named(uint32(hir.NoPackageID), uint32(id), name)
			c.out.ItemSigs[id] = Sig{
				Kind:       hir.ItemNewtype,
				Params:     []types.TypeID{under},
				Output:     named,
				Underlying: under,
				Value:      c.tys.Arrow(under, named),
			}
		}
	})
}

func (c *checker) checkBodies(pkg *ast.Package) {
	c.eachItem(pkg, func(item *ast.Item, id hir.LocalItemID) {
		if item.Kind != ast.ItemFunction || !item.Body.IsValid() {
			return
		}
		sig := c.out.ItemSigs[id]
		for i, paramID := range item.Params {
			param := c.b.Params.Get(uint32(paramID))
			if param != nil && param.Name.IsValid() {
				c.out.LocalTypes[param.Name] = sig.Params[i]
			}
		}
		got := c.checkExpr(item.Body)
		c.expect(sig.Output, got, c.b.Exprs.Get(uint32(item.Body)).Span,
			"function body")
	})
}

func (c *checker) eachItem(pkg *ast.Package, f func(*ast.Item, hir.LocalItemID)) {
	for _, nsID := range pkg.Namespaces {
		ns := c.b.Namespaces.Get(uint32(nsID))
		if ns == nil {
			continue
		}
		for _, itemID := range ns.Items {
			item := c.b.Items.Get(uint32(itemID))
			if item == nil {
				continue
			}
			id, bound := c.res.ItemIDs[itemID]
			if !bound {
				continue
			}
			f(item, id)
		}
	}
}

// sigOf looks up the signature behind a resolved item reference, local or
// cross-package.
func (c *checker) sigOf(ref hir.ItemID) (Sig, bool) {
	if !ref.Package.IsValid() {
		sig, ok := c.out.ItemSigs[ref.Item]
		return sig, ok
	}
	if c.external == nil {
		return Sig{}, false
	}
	return c.external(ref)
}

// typeFromAst converts a type annotation into an interned type, leaning on
// the resolver's verdict for every path.
func (c *checker) typeFromAst(tyID ast.TypeID) types.TypeID {
	ty := c.b.Types.Get(uint32(tyID))
	if ty == nil {
		return types.ErrTypeID
	}
	switch ty.Kind {
	case ast.TypePath:
		return c.typeFromPath(ty.Path)
	case ast.TypeParen:
		return c.typeFromAst(ty.Inner)
	case ast.TypeTuple:
		elems := make([]types.TypeID, 0, len(ty.Elems))
		for _, e := range ty.Elems {
			elems = append(elems, c.typeFromAst(e))
		}
		return c.tys.Tuple(elems)
	case ast.TypeArrow:
		return c.tys.Arrow(c.typeFromAst(ty.Arg), c.typeFromAst(ty.Ret))
	default:
		return types.ErrTypeID
	}
}

func (c *checker) typeFromPath(nameID ast.NameID) types.TypeID {
	res, ok := c.res.Names[nameID]
	if !ok {
		return types.ErrTypeID
	}
	switch res.Kind {
	case hir.ResPrim:
		switch res.Prim {
		case hir.PrimUnit:
			return types.UnitTypeID
		case hir.PrimInt:
			return types.IntTypeID
		case hir.PrimDouble:
			return types.DoubleTypeID
		case hir.PrimBool:
			return types.BoolTypeID
		case hir.PrimString:
			return types.StringTypeID
		}
	case hir.ResItem:
		if sig, ok := c.sigOf(res.Item); ok && sig.Kind == hir.ItemNewtype {
			return sig.Output
		}
	}
	return types.ErrTypeID
}

// expect reports a mismatch unless the two types are compatible.
func (c *checker) expect(want, got types.TypeID, sp source.Span, what string) {
	if !c.compatible(want, got) {
		diag.ReportError(c.reporter, diag.TypeMismatch, sp,
			fmt.Sprintf("%s has type %s, expected %s", what, c.tys.String(got), c.tys.String(want)))
	}
}

// compatible is structural equality with the error type absorbing anything
// at any depth, so one failure never cascades through a larger shape.
func (c *checker) compatible(a, b types.TypeID) bool {
	if a == b || a == types.ErrTypeID || b == types.ErrTypeID {
		return true
	}
	ta, tb := c.tys.Get(a), c.tys.Get(b)
	if ta.Kind != tb.Kind {
		return false
	}
	switch ta.Kind {
	case types.KindTuple:
		if len(ta.Elems) != len(tb.Elems) {
			return false
		}
		for i := range ta.Elems {
			if !c.compatible(ta.Elems[i], tb.Elems[i]) {
				return false
			}
		}
		return true
	case types.KindArrow:
		return c.compatible(ta.Arg, tb.Arg) && c.compatible(ta.Ret, tb.Ret)
	default:
		return false
	}
}

func (c *checker) setExpr(id ast.ExprID, ty types.TypeID) types.TypeID {
	c.out.ExprTypes[id] = ty
	return ty
}

func (c *checker) checkExpr(exprID ast.ExprID) types.TypeID {
	expr := c.b.Exprs.Get(uint32(exprID))
	if expr == nil {
		return types.ErrTypeID
	}
	switch expr.Kind {
	case ast.ExprLitInt:
		return c.setExpr(exprID, types.IntTypeID)
	case ast.ExprLitFloat:
		return c.setExpr(exprID, types.DoubleTypeID)
	case ast.ExprLitBool:
		return c.setExpr(exprID, types.BoolTypeID)
	case ast.ExprLitString:
		return c.setExpr(exprID, types.StringTypeID)
	case ast.ExprInterpString:
		for _, part := range expr.Parts {
			if part.Expr.IsValid() {
				c.checkExpr(part.Expr)
			}
		}
		return c.setExpr(exprID, types.StringTypeID)
	case ast.ExprPath:
		return c.setExpr(exprID, c.checkVar(expr))
	case ast.ExprCall:
		return c.setExpr(exprID, c.checkCall(expr))
	case ast.ExprUnary:
		return c.setExpr(exprID, c.checkUnary(expr))
	case ast.ExprBinary:
		return c.setExpr(exprID, c.checkBinary(expr))
	case ast.ExprTuple:
		elems := make([]types.TypeID, 0, len(expr.Elems))
		for _, e := range expr.Elems {
			elems = append(elems, c.checkExpr(e))
		}
		return c.setExpr(exprID, c.tys.Tuple(elems))
	case ast.ExprParen:
		return c.setExpr(exprID, c.checkExpr(expr.Inner))
	case ast.ExprBlock:
		return c.setExpr(exprID, c.checkBlock(expr))
	case ast.ExprIf:
		return c.setExpr(exprID, c.checkIf(expr))
	case ast.ExprFor:
		c.checkExpr(expr.Lhs)
		c.bindPat(expr.Pat, types.ErrTypeID)
		c.checkExpr(expr.Inner)
		return c.setExpr(exprID, types.UnitTypeID)
	case ast.ExprRepeat:
		c.checkExpr(expr.Inner)
		cond := c.checkExpr(expr.Cond)
		c.expect(types.BoolTypeID, cond, c.b.Exprs.Get(uint32(expr.Cond)).Span,
			"until condition")
		return c.setExpr(exprID, types.UnitTypeID)
	case ast.ExprLambda:
		// unannotated lambda parameters stay at the error type
		c.bindPat(expr.Pat, types.ErrTypeID)
		body := c.checkExpr(expr.Inner)
		arg := c.out.PatTypes[expr.Pat]
		return c.setExpr(exprID, c.tys.Arrow(arg, body))
	default:
		return c.setExpr(exprID, types.ErrTypeID)
	}
}

// checkVar types a name usage from its resolution.
func (c *checker) checkVar(expr *ast.Expr) types.TypeID {
	res, ok := c.res.Names[expr.Path]
	if !ok || res.Kind == hir.ResErr {
		// the resolver already reported this usage
		return types.ErrTypeID
	}
	switch res.Kind {
	case hir.ResLocal:
		if ty, ok := c.out.LocalTypes[res.Local]; ok {
			return ty
		}
		return types.ErrTypeID
	case hir.ResItem:
		sig, ok := c.sigOf(res.Item)
		if !ok || !sig.Value.IsValid() {
			return types.ErrTypeID
		}
		return sig.Value
	default:
		return types.ErrTypeID
	}
}

// checkCall types a call. An error-typed callee taints the whole call with
// one cascading diagnostic spanning the full expression, matching the span
// a reader sees underlined.
func (c *checker) checkCall(expr *ast.Expr) types.TypeID {
	callee := c.checkExpr(expr.Callee)
	args := make([]types.TypeID, 0, len(expr.Args))
	for _, arg := range expr.Args {
		args = append(args, c.checkExpr(arg))
	}
	if callee == types.ErrTypeID {
		diag.ReportError(c.reporter, diag.TypeUnresolved, expr.Span,
			"cannot determine the type of this call expression")
		return types.ErrTypeID
	}
	ct := c.tys.Get(callee)
	if ct.Kind != types.KindArrow {
		diag.ReportError(c.reporter, diag.TypeNotCallable, expr.Span,
			fmt.Sprintf("value of type %s is not callable", c.tys.String(callee)))
		return types.ErrTypeID
	}
	c.checkArgs(expr, ct.Arg, args)
	return ct.Ret
}

// checkArgs matches argument types against the callee's parameter type,
// unpacking tuples so multi-parameter callables check per argument.
func (c *checker) checkArgs(expr *ast.Expr, param types.TypeID, args []types.TypeID) {
	pt := c.tys.Get(param)
	if pt.Kind == types.KindTuple || param == types.UnitTypeID {
		want := pt.Elems
		if len(args) != len(want) {
			diag.ReportError(c.reporter, diag.TypeWrongArity, expr.Span,
				fmt.Sprintf("callable expects %d arguments, got %d", len(want), len(args)))
			return
		}
		for i, arg := range args {
			c.expect(want[i], arg, c.b.Exprs.Get(uint32(expr.Args[i])).Span,
				fmt.Sprintf("argument %d", i+1))
		}
		return
	}
	if len(args) != 1 {
		diag.ReportError(c.reporter, diag.TypeWrongArity, expr.Span,
			fmt.Sprintf("callable expects 1 argument, got %d", len(args)))
		return
	}
	c.expect(param, args[0], c.b.Exprs.Get(uint32(expr.Args[0])).Span, "argument 1")
}

func (c *checker) checkUnary(expr *ast.Expr) types.TypeID {
	inner := c.checkExpr(expr.Inner)
	if inner == types.ErrTypeID {
		return types.ErrTypeID
	}
	sp := c.b.Exprs.Get(uint32(expr.Inner)).Span
	switch expr.Op {
	case token.Minus:
		if inner != types.IntTypeID && inner != types.DoubleTypeID {
			diag.ReportError(c.reporter, diag.TypeMismatch, sp,
				fmt.Sprintf("operand has type %s, expected Int or Double", c.tys.String(inner)))
			return types.ErrTypeID
		}
		return inner
	case token.Bang:
		c.expect(types.BoolTypeID, inner, sp, "operand")
		return types.BoolTypeID
	default:
		return types.ErrTypeID
	}
}

func (c *checker) checkBinary(expr *ast.Expr) types.TypeID {
	lhs := c.checkExpr(expr.Lhs)
	rhs := c.checkExpr(expr.Rhs)
	switch expr.Op {
	case token.AndAnd, token.OrOr:
		c.expect(types.BoolTypeID, lhs, c.b.Exprs.Get(uint32(expr.Lhs)).Span, "operand")
		c.expect(types.BoolTypeID, rhs, c.b.Exprs.Get(uint32(expr.Rhs)).Span, "operand")
		return types.BoolTypeID
	case token.EqEq, token.BangEq:
		c.expect(lhs, rhs, expr.Span, "comparison operand")
		return types.BoolTypeID
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		c.checkNumeric(lhs, expr.Lhs)
		c.checkNumeric(rhs, expr.Rhs)
		c.expect(lhs, rhs, expr.Span, "comparison operand")
		return types.BoolTypeID
	case token.Plus:
		if lhs == types.StringTypeID || rhs == types.StringTypeID {
			c.expect(lhs, rhs, expr.Span, "operand")
			return types.StringTypeID
		}
		fallthrough
	case token.Minus, token.Star, token.Slash:
		lok := c.checkNumeric(lhs, expr.Lhs)
		rok := c.checkNumeric(rhs, expr.Rhs)
		if !lok || !rok {
			return types.ErrTypeID
		}
		c.expect(lhs, rhs, expr.Span, "operand")
		if lhs == types.ErrTypeID {
			return rhs
		}
		return lhs
	default:
		return types.ErrTypeID
	}
}

func (c *checker) checkNumeric(ty types.TypeID, at ast.ExprID) bool {
	if ty == types.ErrTypeID || ty == types.IntTypeID || ty == types.DoubleTypeID {
		return true
	}
	diag.ReportError(c.reporter, diag.TypeMismatch, c.b.Exprs.Get(uint32(at)).Span,
		fmt.Sprintf("operand has type %s, expected Int or Double", c.tys.String(ty)))
	return false
}

// checkBlock types the statements in order; the block's type is the final
// expression statement's when it has no trailing semicolon, Unit otherwise.
func (c *checker) checkBlock(expr *ast.Expr) types.TypeID {
	result := types.UnitTypeID
	for i, stmtID := range expr.Stmts {
		stmt := c.b.Stmts.Get(uint32(stmtID))
		if stmt == nil {
			continue
		}
		last := i == len(expr.Stmts)-1
		switch stmt.Kind {
		case ast.StmtExpr:
			ty := c.checkExpr(stmt.Expr)
			// a statement span extending past its expression means a
			// semicolon followed, so the block yields Unit
			if last && stmt.Span.End == c.exprEnd(stmt.Expr) {
				result = ty
			}
		case ast.StmtLet:
			init := c.checkExpr(stmt.Init)
			c.bindPat(stmt.Pat, init)
		case ast.StmtUse:
			init := c.checkExpr(stmt.Init)
			c.bindPat(stmt.Pat, init)
			if stmt.Block.IsValid() {
				c.checkExpr(stmt.Block)
			}
		case ast.StmtReturn:
			c.checkExpr(stmt.Expr)
		}
	}
	return result
}

func (c *checker) exprEnd(id ast.ExprID) uint32 {
	e := c.b.Exprs.Get(uint32(id))
	if e == nil {
		return 0
	}
	return e.Span.End
}

// bindPat assigns types to the pattern's binders from the matched type,
// destructuring tuples positionally. Shape mismatches degrade to the error
// type without a diagnostic; the initializer's own errors already cover
// them.
func (c *checker) bindPat(patID ast.PatID, ty types.TypeID) {
	pat := c.b.Pats.Get(uint32(patID))
	if pat == nil {
		return
	}
	c.out.PatTypes[patID] = ty
	switch pat.Kind {
	case ast.PatBind:
		if pat.Name.IsValid() {
			c.out.LocalTypes[pat.Name] = ty
		}
	case ast.PatParen:
		c.bindPat(pat.Inner, ty)
	case ast.PatTuple:
		elems := c.tys.Get(ty).Elems
		for i, e := range pat.Elems {
			et := types.ErrTypeID
			if i < len(elems) {
				et = elems[i]
			}
			c.bindPat(e, et)
		}
	}
}

func (c *checker) checkIf(expr *ast.Expr) types.TypeID {
	cond := c.checkExpr(expr.Cond)
	c.expect(types.BoolTypeID, cond, c.b.Exprs.Get(uint32(expr.Cond)).Span,
		"if condition")
	then := c.checkExpr(expr.Then)
	if !expr.Else.IsValid() {
		return types.UnitTypeID
	}
	els := c.checkExpr(expr.Else)
	if then == types.ErrTypeID || els == types.ErrTypeID {
		return types.ErrTypeID
	}
	c.expect(then, els, c.b.Exprs.Get(uint32(expr.Else)).Span, "else branch")
	return then
}
