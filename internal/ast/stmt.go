package ast

import (
	"quill/internal/source"
)

// StmtKind enumerates statements inside a block.
type StmtKind uint8

const (
	StmtErr StmtKind = iota
	// StmtExpr is an expression statement.
	StmtExpr
	// StmtLet is an immutable binding: let pat = expr;
	StmtLet
	// StmtUse is a resource binding: use pat = expr; or use pat = expr { block }.
	// With a trailing block the binding is scoped to that block; without one
	// it stays visible for the rest of the enclosing block.
	StmtUse
	// StmtReturn returns from the enclosing callable.
	StmtReturn
)

func (k StmtKind) String() string {
	switch k {
	case StmtExpr:
		return "expr"
	case StmtLet:
		return "let"
	case StmtUse:
		return "use"
	case StmtReturn:
		return "return"
	default:
		return "error"
	}
}

// Stmt is one statement. Pat/Init are set for let/use, Block for a scoped
// use, Expr for expression and return statements.
type Stmt struct {
	Kind  StmtKind
	Span  source.Span
	Pat   PatID
	Init  ExprID
	Block ExprID
	Expr  ExprID
}
