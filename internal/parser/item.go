package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/token"
)

// parseItem dispatches on the leading token of a namespace-level declaration.
// Unrecognized input produces an ItemErr placeholder so later phases see a
// complete item list.
func (p *Parser) parseItem() ast.ItemID {
	attrs := p.parseAttrs()

	internal := false
	if p.at(token.KwInternal) {
		p.bump()
		internal = true
	}

	switch p.tok.Kind {
	case token.KwFunction:
		return p.parseFunction(attrs, internal)
	case token.KwNewtype:
		return p.parseNewtype(attrs, internal)
	case token.KwOpen:
		return p.parseOpen(attrs)
	case token.KwExport:
		return p.parseExport(attrs)
	default:
		span := p.tok.Span
		p.errorAt(diag.SynExpectItem, span, "expected item, found "+p.tok.Kind.String())
		p.bump()
		p.resyncTo(token.KwFunction, token.KwNewtype, token.KwOpen, token.KwExport,
			token.KwInternal, token.At, token.RBrace)
		return p.b.NewItem(ast.Item{Kind: ast.ItemErr, Span: span, Attrs: attrs})
	}
}

// parseAttrs parses a run of @name("arg") attributes.
func (p *Parser) parseAttrs() []ast.Attr {
	var attrs []ast.Attr
	for p.at(token.At) {
		at := p.bump()
		name, ok := p.expect(token.Ident)
		if !ok {
			p.resyncTo(token.KwFunction, token.KwNewtype, token.KwOpen, token.KwExport, token.RBrace)
			return attrs
		}
		attr := ast.Attr{
			Name: p.b.StringsInterner.Intern(name.Text),
			Span: at.Span.Cover(name.Span),
		}
		if p.at(token.LParen) {
			p.bump()
			arg, ok := p.expect(token.StringLit)
			if ok {
				attr.Arg = unquote(arg.Text)
			}
			if rp, ok := p.expect(token.RParen); ok {
				attr.Span = attr.Span.Cover(rp.Span)
			}
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func (p *Parser) parseFunction(attrs []ast.Attr, internal bool) ast.ItemID {
	kw := p.bump() // function
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.resyncTo(token.KwFunction, token.KwNewtype, token.RBrace)
		return p.b.NewItem(ast.Item{Kind: ast.ItemErr, Span: kw.Span, Attrs: attrs})
	}
	name := p.b.NewIdent(p.b.StringsInterner.Intern(nameTok.Text), nameTok.Span)

	p.expect(token.LParen)
	var params []ast.FnParamID
	for !p.at(token.RParen) && !p.at(token.EOF) {
		if len(params) > 0 {
			if _, ok := p.expect(token.Comma); !ok {
				break
			}
		}
		params = append(params, p.parseParam())
	}
	p.expect(token.RParen)

	ret := ast.NoTypeID
	if p.at(token.Colon) {
		p.bump()
		ret = p.parseType()
	}

	body := ast.NoExprID
	if p.at(token.LBrace) {
		body = p.parseBlock()
	} else {
		p.errorAt(diag.SynMalformedItem, p.tok.Span, "expected function body")
	}

	span := kw.Span
	if body.IsValid() {
		span = span.Cover(p.b.Exprs.Get(uint32(body)).Span)
	}
	return p.b.NewItem(ast.Item{
		Kind:     ast.ItemFunction,
		Span:     span,
		Attrs:    attrs,
		Internal: internal,
		Name:     name,
		Params:   params,
		Return:   ret,
		Body:     body,
	})
}

func (p *Parser) parseParam() ast.FnParamID {
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.resyncTo(token.Comma, token.RParen)
		return p.b.NewParam(ast.FnParam{Span: p.tok.Span})
	}
	name := p.b.NewIdent(p.b.StringsInterner.Intern(nameTok.Text), nameTok.Span)
	ty := ast.NoTypeID
	if _, ok := p.expect(token.Colon); ok {
		ty = p.parseType()
	}
	span := nameTok.Span
	if ty.IsValid() {
		span = span.Cover(p.b.Types.Get(uint32(ty)).Span)
	}
	return p.b.NewParam(ast.FnParam{Name: name, Type: ty, Span: span})
}

func (p *Parser) parseNewtype(attrs []ast.Attr, internal bool) ast.ItemID {
	kw := p.bump() // newtype
	nameTok, ok := p.expect(token.Ident)
	if !ok {
		p.resyncTo(token.Semicolon, token.RBrace)
		return p.b.NewItem(ast.Item{Kind: ast.ItemErr, Span: kw.Span, Attrs: attrs})
	}
	name := p.b.NewIdent(p.b.StringsInterner.Intern(nameTok.Text), nameTok.Span)
	p.expect(token.Assign)
	def := p.parseType()
	semi := p.expectSemicolon()
	span := kw.Span.Cover(nameTok.Span).Cover(semi)
	return p.b.NewItem(ast.Item{
		Kind:     ast.ItemNewtype,
		Span:     span,
		Attrs:    attrs,
		Internal: internal,
		Name:     name,
		Def:      def,
	})
}

func (p *Parser) parseOpen(attrs []ast.Attr) ast.ItemID {
	kw := p.bump() // open
	path := p.parseDottedName()
	alias := ast.NoNameID
	if p.at(token.KwAs) {
		p.bump()
		alias = p.parseDottedName()
		if !alias.IsValid() {
			p.errorAt(diag.SynExpectAlias, p.tok.Span, "expected alias after 'as'")
		}
	}
	semi := p.expectSemicolon()
	span := kw.Span.Cover(semi)
	return p.b.NewItem(ast.Item{
		Kind:  ast.ItemOpen,
		Span:  span,
		Attrs: attrs,
		Path:  path,
		Alias: alias,
	})
}

func (p *Parser) parseExport(attrs []ast.Attr) ast.ItemID {
	kw := p.bump() // export
	path := p.parseDottedName()
	alias := ast.NoNameID
	if p.at(token.KwAs) {
		p.bump()
		if tok, ok := p.expect(token.Ident); ok {
			alias = p.b.NewIdent(p.b.StringsInterner.Intern(tok.Text), tok.Span)
		}
	}
	semi := p.expectSemicolon()
	span := kw.Span.Cover(semi)
	return p.b.NewItem(ast.Item{
		Kind:  ast.ItemExport,
		Span:  span,
		Attrs: attrs,
		Path:  path,
		Alias: alias,
	})
}

// expectSemicolon consumes a ';' and returns its span, or reports and
// returns the current token's span.
func (p *Parser) expectSemicolon() source.Span {
	if p.at(token.Semicolon) {
		return p.bump().Span
	}
	p.errorAt(diag.SynExpectSemicolon, p.tok.Span, "expected ';', found "+p.tok.Kind.String())
	return p.tok.Span
}
