package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/token"
)

// parseType parses a type annotation. Arrows are right-associative.
func (p *Parser) parseType() ast.TypeID {
	lhs := p.parsePrimaryType()
	if !lhs.IsValid() {
		return lhs
	}
	if p.at(token.Arrow) {
		p.bump()
		ret := p.parseType()
		span := p.b.Types.Get(uint32(lhs)).Span
		if ret.IsValid() {
			span = span.Cover(p.b.Types.Get(uint32(ret)).Span)
		}
		return p.b.NewType(ast.Type{Kind: ast.TypeArrow, Span: span, Arg: lhs, Ret: ret})
	}
	return lhs
}

func (p *Parser) parsePrimaryType() ast.TypeID {
	switch p.tok.Kind {
	case token.Ident:
		path := p.parseDottedName()
		return p.b.NewType(ast.Type{
			Kind: ast.TypePath,
			Span: p.b.Name(path).Span,
			Path: path,
		})
	case token.LParen:
		lp := p.bump()
		var elems []ast.TypeID
		comma := false
		for !p.at(token.RParen) && !p.at(token.EOF) {
			if len(elems) > 0 {
				if _, ok := p.expect(token.Comma); !ok {
					break
				}
				comma = true
			}
			elems = append(elems, p.parseType())
		}
		rp, _ := p.expect(token.RParen)
		span := lp.Span.Cover(rp.Span)
		if len(elems) == 1 && !comma {
			return p.b.NewType(ast.Type{Kind: ast.TypeParen, Span: span, Inner: elems[0]})
		}
		return p.b.NewType(ast.Type{Kind: ast.TypeTuple, Span: span, Elems: elems})
	default:
		span := p.tok.Span
		p.errorAt(diag.SynExpectType, span, "expected type, found "+p.tok.Kind.String())
		return p.b.NewType(ast.Type{Kind: ast.TypeErr, Span: span})
	}
}
