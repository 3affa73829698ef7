package parser

import (
	"strings"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/token"
)

// parseInterpString splits a $"..." token into literal and embedded
// expression parts, in source order. Each embedded segment is handed to a
// fresh sub-parser positioned at the segment's absolute offset, so every span
// inside it stays resolvable.
func (p *Parser) parseInterpString(tok token.Token) ast.ExprID {
	text := tok.Text
	var parts []ast.StringPart

	// text is $"..."; walk the payload between the quotes.
	i := 2
	litStart := i
	var lit strings.Builder
	flushLit := func(end int) {
		if lit.Len() > 0 || end > litStart {
			parts = append(parts, ast.StringPart{
				Lit: lit.String(),
				Span: source.Span{
					Start: tok.Span.Start + uint32(litStart),
					End:   tok.Span.Start + uint32(end),
				},
			})
			lit.Reset()
		}
	}

	for i < len(text)-1 {
		switch text[i] {
		case '\\':
			if i+1 < len(text)-1 {
				lit.WriteByte(unescapeByte(text[i+1]))
				i += 2
			} else {
				i++
			}
		case '{':
			flushLit(i)
			exprStart := i + 1
			exprEnd := findCloseBrace(text, exprStart)
			if exprEnd < 0 {
				p.errorAt(diag.SynUnclosedDelimiter, tok.Span, "unclosed '{' in interpolated string")
				i = len(text) - 1
				litStart = i
				break
			}
			sub := newParser([]byte(text[exprStart:exprEnd]), tok.Span.Start+uint32(exprStart), p.b, p.opts)
			expr := sub.parseExpr(0)
			if sub.tok.Kind != token.EOF {
				sub.errorAt(diag.SynUnexpectedToken, sub.tok.Span, "unexpected "+sub.tok.Kind.String()+" in interpolation")
			}
			parts = append(parts, ast.StringPart{
				Expr: expr,
				Span: source.Span{
					Start: tok.Span.Start + uint32(exprStart),
					End:   tok.Span.Start + uint32(exprEnd),
				},
			})
			i = exprEnd + 1
			litStart = i
		default:
			lit.WriteByte(text[i])
			i++
		}
	}
	flushLit(len(text) - 1)

	return p.b.NewExpr(ast.Expr{
		Kind:  ast.ExprInterpString,
		Span:  tok.Span,
		Parts: parts,
	})
}

// findCloseBrace returns the index of the '}' matching the '{' just before
// start, respecting nested braces and string literals, or -1.
func findCloseBrace(text string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case inString:
			if ch == '\\' {
				i++
			} else if ch == '"' {
				inString = false
			}
		case ch == '"':
			inString = true
		case ch == '{':
			depth++
		case ch == '}':
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// unquote strips the quotes from a plain string literal and resolves escapes.
func unquote(text string) string {
	if len(text) >= 2 && text[0] == '"' {
		text = text[1 : len(text)-1]
	}
	var out strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) {
			out.WriteByte(unescapeByte(text[i+1]))
			i++
			continue
		}
		out.WriteByte(text[i])
	}
	return out.String()
}

func unescapeByte(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return b
	}
}
