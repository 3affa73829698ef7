package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/token"
)

// parseBlock parses '{' stmt* '}' into a block expression.
func (p *Parser) parseBlock() ast.ExprID {
	lb, ok := p.expect(token.LBrace)
	if !ok {
		return ast.NoExprID
	}
	var stmts []ast.StmtID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		stmts = append(stmts, p.parseStmt())
	}
	rb, _ := p.expect(token.RBrace)
	return p.b.NewExpr(ast.Expr{
		Kind:  ast.ExprBlock,
		Span:  lb.Span.Cover(rb.Span),
		Stmts: stmts,
	})
}

func (p *Parser) parseStmt() ast.StmtID {
	switch p.tok.Kind {
	case token.KwLet:
		return p.parseLet()
	case token.KwUse:
		return p.parseUse()
	case token.KwReturn:
		return p.parseReturn()
	default:
		expr := p.parseExpr(0)
		if !expr.IsValid() {
			span := p.tok.Span
			p.bump()
			return p.b.NewStmt(ast.Stmt{Kind: ast.StmtErr, Span: span})
		}
		span := p.b.Exprs.Get(uint32(expr)).Span
		if p.at(token.Semicolon) {
			span = span.Cover(p.bump().Span)
		} else if !p.at(token.RBrace) {
			p.errorAt(diag.SynExpectSemicolon, p.tok.Span, "expected ';', found "+p.tok.Kind.String())
		}
		return p.b.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Span: span, Expr: expr})
	}
}

func (p *Parser) parseLet() ast.StmtID {
	kw := p.bump() // let
	pat := p.parsePat()
	p.expect(token.Assign)
	init := p.parseExpr(0)
	semi := p.expectSemicolon()
	return p.b.NewStmt(ast.Stmt{
		Kind: ast.StmtLet,
		Span: kw.Span.Cover(semi),
		Pat:  pat,
		Init: init,
	})
}

// parseUse parses 'use' pat '=' expr followed by either a scoping block or a
// ';' that leaves the binding visible to the rest of the enclosing block.
func (p *Parser) parseUse() ast.StmtID {
	kw := p.bump() // use
	pat := p.parsePat()
	p.expect(token.Assign)
	init := p.parseExpr(0)
	span := kw.Span
	block := ast.NoExprID
	if p.at(token.LBrace) {
		block = p.parseBlock()
		span = span.Cover(p.b.Exprs.Get(uint32(block)).Span)
	} else {
		span = span.Cover(p.expectSemicolon())
	}
	return p.b.NewStmt(ast.Stmt{
		Kind:  ast.StmtUse,
		Span:  span,
		Pat:   pat,
		Init:  init,
		Block: block,
	})
}

func (p *Parser) parseReturn() ast.StmtID {
	kw := p.bump() // return
	expr := ast.NoExprID
	if !p.at(token.Semicolon) {
		expr = p.parseExpr(0)
	}
	semi := p.expectSemicolon()
	return p.b.NewStmt(ast.Stmt{
		Kind: ast.StmtReturn,
		Span: kw.Span.Cover(semi),
		Expr: expr,
	})
}

func (p *Parser) parsePat() ast.PatID {
	switch p.tok.Kind {
	case token.Ident:
		if p.tok.Text == "_" {
			tok := p.bump()
			return p.b.NewPat(ast.Pat{Kind: ast.PatWild, Span: tok.Span})
		}
		tok := p.bump()
		name := p.b.NewIdent(p.b.StringsInterner.Intern(tok.Text), tok.Span)
		return p.b.NewPat(ast.Pat{Kind: ast.PatBind, Span: tok.Span, Name: name})
	case token.LParen:
		lp := p.bump()
		var elems []ast.PatID
		for !p.at(token.RParen) && !p.at(token.EOF) {
			if len(elems) > 0 {
				if _, ok := p.expect(token.Comma); !ok {
					break
				}
			}
			elems = append(elems, p.parsePat())
		}
		rp, _ := p.expect(token.RParen)
		span := lp.Span.Cover(rp.Span)
		if len(elems) == 1 {
			return p.b.NewPat(ast.Pat{Kind: ast.PatParen, Span: span, Inner: elems[0]})
		}
		return p.b.NewPat(ast.Pat{Kind: ast.PatTuple, Span: span, Elems: elems})
	default:
		span := p.tok.Span
		p.errorAt(diag.SynExpectIdentifier, span, "expected pattern, found "+p.tok.Kind.String())
		return p.b.NewPat(ast.Pat{Kind: ast.PatErr, Span: span})
	}
}
