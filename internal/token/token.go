package token

import (
	"quill/internal/source"
)

// Token represents a single source token with its location.
type Token struct {
	Kind Kind
	Span source.Span
	Text string
}

// IsLiteral reports whether the token is a numeric, boolean, or string literal.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case IntLit, FloatLit, BoolLit, StringLit, IStringLit:
		return true
	default:
		return false
	}
}

// IsKeyword reports whether the token is a language keyword.
func (t Token) IsKeyword() bool {
	switch t.Kind {
	case KwNamespace, KwOpen, KwExport, KwFunction, KwNewtype, KwInternal,
		KwLet, KwUse, KwReturn, KwIf, KwElse, KwFor, KwIn, KwRepeat, KwUntil, KwAs:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

var keywords = map[string]Kind{
	"namespace": KwNamespace,
	"open":      KwOpen,
	"export":    KwExport,
	"function":  KwFunction,
	"newtype":   KwNewtype,
	"internal":  KwInternal,
	"let":       KwLet,
	"use":       KwUse,
	"return":    KwReturn,
	"if":        KwIf,
	"else":      KwElse,
	"for":       KwFor,
	"in":        KwIn,
	"repeat":    KwRepeat,
	"until":     KwUntil,
	"as":        KwAs,
	"true":      BoolLit,
	"false":     BoolLit,
}

// LookupKeyword maps an identifier to its keyword kind, if it is one.
// Keywords are case-sensitive.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
