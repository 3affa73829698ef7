package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/token"
)

func (lx *Lexer) scan() token.Token {
	lx.skipTrivia()
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.EmptySpan()}
	}

	ch := lx.cursor.Peek()
	switch {
	case isIdentStartByte(ch) || ch >= utf8.RuneSelf:
		return lx.scanIdentOrKeyword()
	case isDec(ch):
		return lx.scanNumber()
	case ch == '"':
		return lx.scanString(false)
	case ch == '$':
		if _, b1, ok := lx.cursor.Peek2(); ok && b1 == '"' {
			if !lx.opts.Features.Has(FeatureInterpolatedStrings) {
				start := lx.cursor.Pos()
				lx.cursor.Bump()
				lx.report(diag.LexInterpolationOff, source.Span{Start: start, End: lx.cursor.Pos()},
					"interpolated strings are not enabled for this compilation")
				lx.cursor.Bump()
				return lx.scanString(false)
			}
			lx.cursor.Bump()
			return lx.scanString(true)
		}
		return lx.scanUnknown()
	default:
		return lx.scanOperator()
	}
}

func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			lx.cursor.Bump()
		case ch == '/':
			if _, b1, ok := lx.cursor.Peek2(); ok && b1 == '/' {
				for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
					lx.cursor.Bump()
				}
				continue
			}
			return
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Pos()
	for !lx.cursor.EOF() {
		ch := lx.cursor.Peek()
		if isIdentContinueByte(ch) {
			lx.cursor.Bump()
			continue
		}
		if ch >= utf8.RuneSelf {
			r := lx.cursor.PeekRune()
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				lx.cursor.BumpRune()
				continue
			}
		}
		break
	}
	span := source.Span{Start: start, End: lx.cursor.Pos()}
	// Identifiers compare by NFC form so visually identical names are one name.
	text := norm.NFC.String(string(lx.cursor.Slice(span.Start, span.End)))
	if kind, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: kind, Span: span, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: span, Text: text}
}

func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Pos()
	kind := token.IntLit
	for !lx.cursor.EOF() && isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		for !lx.cursor.EOF() && isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}
	// trailing identifier chars make the number malformed: 12abc
	if !lx.cursor.EOF() && isIdentStartByte(lx.cursor.Peek()) {
		for !lx.cursor.EOF() && isIdentContinueByte(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		span := source.Span{Start: start, End: lx.cursor.Pos()}
		lx.report(diag.LexBadNumber, span, "malformed number literal")
		return token.Token{Kind: token.Invalid, Span: span, Text: string(lx.cursor.Slice(span.Start, span.End))}
	}
	span := source.Span{Start: start, End: lx.cursor.Pos()}
	return token.Token{Kind: kind, Span: span, Text: string(lx.cursor.Slice(span.Start, span.End))}
}

// scanString scans from the opening quote. For interpolated strings the span
// starts at '$' (the caller has already consumed it) and embedded {...}
// segments are kept verbatim in the token text for the parser to split.
func (lx *Lexer) scanString(interp bool) token.Token {
	start := lx.cursor.Pos()
	if interp {
		start-- // include the '$'
	}
	lx.cursor.Bump() // opening quote
	depth := 0
	for {
		if lx.cursor.EOF() {
			span := source.Span{Start: start, End: lx.cursor.Pos()}
			lx.report(diag.LexUnterminatedString, span, "unterminated string literal")
			return token.Token{Kind: token.Invalid, Span: span, Text: string(lx.cursor.Slice(span.Start, span.End))}
		}
		ch := lx.cursor.Peek()
		switch {
		case ch == '\\':
			lx.cursor.Bump()
			lx.cursor.Bump()
		case interp && ch == '{':
			depth++
			lx.cursor.Bump()
		case interp && ch == '}':
			if depth > 0 {
				depth--
			}
			lx.cursor.Bump()
		case ch == '"' && depth == 0:
			lx.cursor.Bump()
			span := source.Span{Start: start, End: lx.cursor.Pos()}
			kind := token.StringLit
			if interp {
				kind = token.IStringLit
			}
			return token.Token{Kind: kind, Span: span, Text: string(lx.cursor.Slice(span.Start, span.End))}
		default:
			lx.cursor.BumpRune()
		}
	}
}

func (lx *Lexer) scanOperator() token.Token {
	start := lx.cursor.Pos()
	ch := lx.cursor.Peek()
	lx.cursor.Bump()

	kind := token.Invalid
	switch ch {
	case '+':
		kind = token.Plus
	case '-':
		kind = token.Minus
		if lx.cursor.Peek() == '>' {
			lx.cursor.Bump()
			kind = token.Arrow
		}
	case '*':
		kind = token.Star
	case '/':
		kind = token.Slash
	case '%':
		kind = token.Percent
	case '=':
		kind = token.Assign
		if lx.cursor.Peek() == '=' {
			lx.cursor.Bump()
			kind = token.EqEq
		}
	case '!':
		kind = token.Bang
		if lx.cursor.Peek() == '=' {
			lx.cursor.Bump()
			kind = token.BangEq
		}
	case '<':
		kind = token.Lt
		if lx.cursor.Peek() == '=' {
			lx.cursor.Bump()
			kind = token.LtEq
		}
	case '>':
		kind = token.Gt
		if lx.cursor.Peek() == '=' {
			lx.cursor.Bump()
			kind = token.GtEq
		}
	case '&':
		if lx.cursor.Peek() == '&' {
			lx.cursor.Bump()
			kind = token.AndAnd
		}
	case '|':
		if lx.cursor.Peek() == '|' {
			lx.cursor.Bump()
			kind = token.OrOr
		}
	case ':':
		kind = token.Colon
	case ';':
		kind = token.Semicolon
	case ',':
		kind = token.Comma
	case '.':
		kind = token.Dot
	case '(':
		kind = token.LParen
	case ')':
		kind = token.RParen
	case '{':
		kind = token.LBrace
	case '}':
		kind = token.RBrace
	case '@':
		kind = token.At
	}

	span := source.Span{Start: start, End: lx.cursor.Pos()}
	text := string(lx.cursor.Slice(span.Start, span.End))
	if kind == token.Invalid {
		lx.report(diag.LexUnknownChar, span, "unknown character "+text)
	}
	return token.Token{Kind: kind, Span: span, Text: text}
}

func (lx *Lexer) scanUnknown() token.Token {
	start := lx.cursor.Pos()
	lx.cursor.BumpRune()
	span := source.Span{Start: start, End: lx.cursor.Pos()}
	text := string(lx.cursor.Slice(span.Start, span.End))
	lx.report(diag.LexUnknownChar, span, "unknown character "+text)
	return token.Token{Kind: token.Invalid, Span: span, Text: text}
}

func isIdentStartByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinueByte(b byte) bool {
	return isIdentStartByte(b) || isDec(b)
}

func isDec(b byte) bool {
	return b >= '0' && b <= '9'
}
