package parser

import (
	"strconv"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/token"
)

// binding powers for binary operators, tighter binds higher.
func infixPower(k token.Kind) (int, bool) {
	switch k {
	case token.OrOr:
		return 1, true
	case token.AndAnd:
		return 2, true
	case token.EqEq, token.BangEq:
		return 3, true
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return 4, true
	case token.Plus, token.Minus:
		return 5, true
	case token.Star, token.Slash, token.Percent:
		return 6, true
	default:
		return 0, false
	}
}

const unaryPower = 7

// parseExpr is a Pratt loop: parse a prefix expression, then fold infix
// operators of at least minPower, then postfix calls.
func (p *Parser) parseExpr(minPower int) ast.ExprID {
	lhs := p.parsePrefix()
	if !lhs.IsValid() {
		return lhs
	}

	for {
		// postfix call binds tighter than any infix operator
		for p.at(token.LParen) {
			lhs = p.parseCall(lhs)
		}
		power, ok := infixPower(p.tok.Kind)
		if !ok || power < minPower {
			return lhs
		}
		op := p.bump()
		rhs := p.parseExpr(power + 1)
		span := p.b.Exprs.Get(uint32(lhs)).Span
		if rhs.IsValid() {
			span = span.Cover(p.b.Exprs.Get(uint32(rhs)).Span)
		}
		lhs = p.b.NewExpr(ast.Expr{
			Kind: ast.ExprBinary,
			Span: span,
			Op:   op.Kind,
			Lhs:  lhs,
			Rhs:  rhs,
		})
	}
}

func (p *Parser) parseCall(callee ast.ExprID) ast.ExprID {
	p.bump() // (
	var args []ast.ExprID
	for !p.at(token.RParen) && !p.at(token.EOF) {
		if len(args) > 0 {
			if _, ok := p.expect(token.Comma); !ok {
				break
			}
		}
		args = append(args, p.parseExpr(0))
	}
	rp, _ := p.expect(token.RParen)
	span := p.b.Exprs.Get(uint32(callee)).Span.Cover(rp.Span)
	return p.b.NewExpr(ast.Expr{
		Kind:   ast.ExprCall,
		Span:   span,
		Callee: callee,
		Args:   args,
	})
}

func (p *Parser) parsePrefix() ast.ExprID {
	switch p.tok.Kind {
	case token.Minus, token.Bang:
		op := p.bump()
		inner := p.parseExpr(unaryPower)
		span := op.Span
		if inner.IsValid() {
			span = span.Cover(p.b.Exprs.Get(uint32(inner)).Span)
		}
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprUnary, Span: span, Op: op.Kind, Inner: inner})

	case token.IntLit:
		tok := p.bump()
		val, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			p.errorAt(diag.LexBadNumber, tok.Span, "integer literal out of range")
		}
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprLitInt, Span: tok.Span, IntVal: val})

	case token.FloatLit:
		tok := p.bump()
		val, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			p.errorAt(diag.LexBadNumber, tok.Span, "float literal out of range")
		}
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprLitFloat, Span: tok.Span, FloatVal: val})

	case token.BoolLit:
		tok := p.bump()
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprLitBool, Span: tok.Span, BoolVal: tok.Text == "true"})

	case token.StringLit:
		tok := p.bump()
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprLitString, Span: tok.Span, StrVal: unquote(tok.Text)})

	case token.IStringLit:
		tok := p.bump()
		return p.parseInterpString(tok)

	case token.Ident:
		// single-ident lambda: x -> expr
		if p.lx.Peek().Kind == token.Arrow {
			tok := p.bump()
			name := p.b.NewIdent(p.b.StringsInterner.Intern(tok.Text), tok.Span)
			pat := p.b.NewPat(ast.Pat{Kind: ast.PatBind, Span: tok.Span, Name: name})
			p.bump() // ->
			body := p.parseExpr(0)
			span := tok.Span
			if body.IsValid() {
				span = span.Cover(p.b.Exprs.Get(uint32(body)).Span)
			}
			return p.b.NewExpr(ast.Expr{Kind: ast.ExprLambda, Span: span, Pat: pat, Inner: body})
		}
		path := p.parseDottedName()
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprPath, Span: p.b.Name(path).Span, Path: path})

	case token.LParen:
		lp := p.bump()
		var elems []ast.ExprID
		comma := false
		for !p.at(token.RParen) && !p.at(token.EOF) {
			if len(elems) > 0 {
				if _, ok := p.expect(token.Comma); !ok {
					break
				}
				comma = true
			}
			elems = append(elems, p.parseExpr(0))
		}
		rp, _ := p.expect(token.RParen)
		span := lp.Span.Cover(rp.Span)
		if len(elems) == 1 && !comma {
			return p.b.NewExpr(ast.Expr{Kind: ast.ExprParen, Span: span, Inner: elems[0]})
		}
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprTuple, Span: span, Elems: elems})

	case token.LBrace:
		return p.parseBlock()

	case token.KwIf:
		return p.parseIf()

	case token.KwFor:
		return p.parseFor()

	case token.KwRepeat:
		return p.parseRepeat()

	default:
		span := p.tok.Span
		p.errorAt(diag.SynExpectExpression, span, "expected expression, found "+p.tok.Kind.String())
		return p.b.NewExpr(ast.Expr{Kind: ast.ExprErr, Span: span})
	}
}

func (p *Parser) parseIf() ast.ExprID {
	kw := p.bump() // if
	cond := p.parseExpr(0)
	then := p.parseBlock()
	els := ast.NoExprID
	span := kw.Span
	if then.IsValid() {
		span = span.Cover(p.b.Exprs.Get(uint32(then)).Span)
	}
	if p.at(token.KwElse) {
		p.bump()
		if p.at(token.KwIf) {
			els = p.parseIf()
		} else {
			els = p.parseBlock()
		}
		if els.IsValid() {
			span = span.Cover(p.b.Exprs.Get(uint32(els)).Span)
		}
	}
	return p.b.NewExpr(ast.Expr{Kind: ast.ExprIf, Span: span, Cond: cond, Then: then, Else: els})
}

func (p *Parser) parseFor() ast.ExprID {
	kw := p.bump() // for
	pat := p.parsePat()
	p.expect(token.KwIn)
	iter := p.parseExpr(0)
	body := p.parseBlock()
	span := kw.Span
	if body.IsValid() {
		span = span.Cover(p.b.Exprs.Get(uint32(body)).Span)
	}
	return p.b.NewExpr(ast.Expr{Kind: ast.ExprFor, Span: span, Pat: pat, Lhs: iter, Inner: body})
}

func (p *Parser) parseRepeat() ast.ExprID {
	kw := p.bump() // repeat
	body := p.parseBlock()
	p.expect(token.KwUntil)
	cond := p.parseExpr(0)
	semi := p.expectSemicolon()
	return p.b.NewExpr(ast.Expr{
		Kind:  ast.ExprRepeat,
		Span:  kw.Span.Cover(semi),
		Inner: body,
		Cond:  cond,
	})
}
