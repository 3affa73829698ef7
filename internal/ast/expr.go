package ast

import (
	"quill/internal/source"
	"quill/internal/token"
)

// ExprKind enumerates expression node variants.
type ExprKind uint8

const (
	ExprErr ExprKind = iota
	ExprLitInt
	ExprLitFloat
	ExprLitBool
	ExprLitString
	// ExprInterpString is an interpolated string with ordered parts.
	ExprInterpString
	// ExprPath is a (possibly qualified) name usage.
	ExprPath
	ExprCall
	ExprUnary
	ExprBinary
	ExprTuple
	// ExprParen is a parenthesized expression; unwrapped during lowering.
	ExprParen
	ExprBlock
	ExprIf
	ExprFor
	ExprRepeat
	ExprLambda
)

func (k ExprKind) String() string {
	switch k {
	case ExprLitInt:
		return "int"
	case ExprLitFloat:
		return "float"
	case ExprLitBool:
		return "bool"
	case ExprLitString:
		return "string"
	case ExprInterpString:
		return "interp-string"
	case ExprPath:
		return "path"
	case ExprCall:
		return "call"
	case ExprUnary:
		return "unary"
	case ExprBinary:
		return "binary"
	case ExprTuple:
		return "tuple"
	case ExprParen:
		return "paren"
	case ExprBlock:
		return "block"
	case ExprIf:
		return "if"
	case ExprFor:
		return "for"
	case ExprRepeat:
		return "repeat"
	case ExprLambda:
		return "lambda"
	default:
		return "error"
	}
}

// StringPart is one component of an interpolated string: either literal text
// or an embedded expression, in source order.
type StringPart struct {
	Lit  string
	Expr ExprID // valid when this part embeds an expression
	Span source.Span
}

// Expr is one expression node. Per-kind fields:
//   - literals:   IntVal / FloatVal / BoolVal / StrVal
//   - interp:     Parts
//   - path:       Path
//   - call:       Callee, Args
//   - unary:      Op, Inner
//   - binary:     Op, Lhs, Rhs
//   - tuple:      Elems
//   - paren:      Inner
//   - block:      Stmts
//   - if:         Cond, Then, Else (optional)
//   - for:        Pat, Iter (in Lhs), Body (in Inner)
//   - repeat:     Body (in Inner), Until (in Cond)
//   - lambda:     Pat, Body (in Inner)
type Expr struct {
	Kind ExprKind
	Span source.Span

	IntVal   int64
	FloatVal float64
	BoolVal  bool
	StrVal   string
	Parts    []StringPart

	Path NameID

	Callee ExprID
	Args   []ExprID

	Op    token.Kind
	Lhs   ExprID
	Rhs   ExprID
	Inner ExprID

	Elems []ExprID
	Stmts []StmtID

	Cond ExprID
	Then ExprID
	Else ExprID

	Pat PatID
}
