package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
)

// Options configures one parse.
type Options struct {
	Reporter diag.Reporter
	Features lexer.Features
}

// Parser is the per-chunk parse state. One parser instance consumes one
// contiguous source; ParsePackage drives an instance per source.
type Parser struct {
	lx   *lexer.Lexer
	b    *ast.Builder
	opts Options
	tok  token.Token // current token
}

// ParsePackage parses every source of the map into one ast.Package. File
// sources contribute namespaces; the entry source, if present, is parsed as a
// single expression.
func ParsePackage(m *source.SourceMap, b *ast.Builder, opts Options) *ast.Package {
	pkg := &ast.Package{}
	for i := range m.Sources() {
		src := &m.Sources()[i]
		if entry := m.Entry(); entry != nil && src.Name == entry.Name {
			continue
		}
		p := newParser(src.Contents, src.Offset, b, opts)
		p.parseNamespaces(pkg)
	}
	if entry := m.Entry(); entry != nil {
		p := newParser(entry.Contents, entry.Offset, b, opts)
		pkg.Entry = p.parseExpr(0)
		if p.tok.Kind != token.EOF {
			p.errorAt(diag.SynUnexpectedToken, p.tok.Span, "unexpected "+p.tok.Kind.String()+" after entry expression")
		}
	}
	return pkg
}

func newParser(contents []byte, base uint32, b *ast.Builder, opts Options) *Parser {
	lx := lexer.New(contents, base, lexer.Options{Reporter: opts.Reporter, Features: opts.Features})
	p := &Parser{lx: lx, b: b, opts: opts}
	p.tok = lx.Next()
	return p
}

func (p *Parser) bump() token.Token {
	tok := p.tok
	p.tok = p.lx.Next()
	return tok
}

func (p *Parser) at(k token.Kind) bool {
	return p.tok.Kind == k
}

// expect consumes a token of the given kind or reports and stays put.
func (p *Parser) expect(k token.Kind) (token.Token, bool) {
	if p.at(k) {
		return p.bump(), true
	}
	p.errorAt(diag.SynUnexpectedToken, p.tok.Span, "expected "+k.String()+", found "+p.tok.Kind.String())
	return p.tok, false
}

func (p *Parser) errorAt(code diag.Code, sp source.Span, msg string) {
	diag.ReportError(p.opts.Reporter, code, sp, msg)
}

// parseNamespaces is the top-level loop of one file source.
func (p *Parser) parseNamespaces(pkg *ast.Package) {
	for !p.at(token.EOF) {
		attrs := p.parseAttrs()
		if !p.at(token.KwNamespace) {
			p.errorAt(diag.SynExpectItem, p.tok.Span, "expected 'namespace', found "+p.tok.Kind.String())
			p.bump()
			continue
		}
		if nsID := p.parseNamespace(attrs); nsID.IsValid() {
			pkg.Namespaces = append(pkg.Namespaces, nsID)
		}
	}
}

func (p *Parser) parseNamespace(attrs []ast.Attr) ast.NamespaceID {
	kw := p.bump() // namespace
	name := p.parseDottedName()
	if !name.IsValid() {
		p.resyncTo(token.LBrace, token.KwNamespace)
	}
	span := kw.Span
	if _, ok := p.expect(token.LBrace); !ok {
		p.resyncTo(token.KwNamespace)
		return ast.NoNamespaceID
	}

	var items []ast.ItemID
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		items = append(items, p.parseItem())
	}
	end, _ := p.expect(token.RBrace)
	span = span.Cover(end.Span)

	return p.b.NewNamespace(ast.Namespace{Name: name, Attrs: attrs, Items: items, Span: span})
}

// parseDottedName parses Ident ('.' Ident)* into one Name node.
func (p *Parser) parseDottedName() ast.NameID {
	if !p.at(token.Ident) {
		p.errorAt(diag.SynExpectIdentifier, p.tok.Span, "expected identifier, found "+p.tok.Kind.String())
		return ast.NoNameID
	}
	first := p.bump()
	segs := []ast.Segment{{ID: p.b.StringsInterner.Intern(first.Text), Span: first.Span}}
	span := first.Span
	for p.at(token.Dot) {
		p.bump()
		seg, ok := p.expect(token.Ident)
		if !ok {
			break
		}
		segs = append(segs, ast.Segment{ID: p.b.StringsInterner.Intern(seg.Text), Span: seg.Span})
		span = span.Cover(seg.Span)
	}
	return p.b.NewName(segs, span)
}

// resyncTo skips tokens until one of the kinds (or EOF) is current.
func (p *Parser) resyncTo(kinds ...token.Kind) {
	for !p.at(token.EOF) {
		for _, k := range kinds {
			if p.at(k) {
				return
			}
		}
		p.bump()
	}
}
