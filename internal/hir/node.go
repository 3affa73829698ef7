package hir

import (
	"quill/internal/source"
	"quill/internal/token"
	"quill/internal/types"
)

// ExprKind enumerates HIR expression variants. Parenthesized AST expressions
// never appear here; lowering unwraps them.
type ExprKind uint8

const (
	// ExprErrKind marks a parse-error placeholder. Unresolved names lower
	// to an ExprVar whose Ref is ResErr instead, so call sites survive as
	// calls.
	ExprErrKind ExprKind = iota
	ExprLitInt
	ExprLitDouble
	ExprLitBool
	// ExprString is a string literal as an ordered component sequence. A
	// plain literal has exactly one literal component.
	ExprString
	// ExprVar is a resolved name usage.
	ExprVar
	ExprCall
	ExprUnary
	ExprBinary
	ExprTuple
	ExprBlockWrap
	ExprIf
	ExprFor
	ExprRepeat
	ExprLambda
)

// StringComponent is one piece of an ExprString: literal text or an embedded
// expression, in source order.
type StringComponent struct {
	Lit  string
	Expr *Expr // nil for literal components
}

// Expr is one HIR expression.
type Expr struct {
	ID   NodeID
	Span source.Span
	Type types.TypeID
	Kind ExprKind

	IntVal    int64
	DoubleVal float64
	BoolVal   bool
	Parts     []StringComponent

	Ref VarRef // ExprVar

	Callee *Expr
	Args   []*Expr

	Op  token.Kind
	Lhs *Expr
	Rhs *Expr
	// Inner: unary operand, for/repeat/lambda body wrapper target
	Inner *Expr

	Elems []*Expr

	Block *Block // ExprBlockWrap, for body, repeat body

	Cond *Expr
	Then *Block
	Else *Expr // nil, ExprBlockWrap, or nested ExprIf

	Pat *Pat // for/lambda binder
}

// StmtKind enumerates HIR statements.
type StmtKind uint8

const (
	StmtExprKind StmtKind = iota
	StmtLetKind
	StmtUseKind
	StmtReturnKind
)

// Stmt is one HIR statement.
type Stmt struct {
	ID   NodeID
	Span source.Span
	Kind StmtKind

	Pat  *Pat
	Init *Expr
	// Block is the trailing scope of a 'use' statement, if present.
	Block *Block
	Expr  *Expr
}

// Block is a brace-delimited statement list with a value type.
type Block struct {
	ID    NodeID
	Span  source.Span
	Type  types.TypeID
	Stmts []*Stmt
}

// PatKind enumerates HIR patterns.
type PatKind uint8

const (
	PatErrKind PatKind = iota
	// PatBindKind introduces one local; its node id is what ResLocal
	// references canonicalize to.
	PatBindKind
	PatWildKind
	PatTupleKind
)

// Pat is one HIR pattern. Parenthesized AST patterns are unwrapped.
type Pat struct {
	ID   NodeID
	Span source.Span
	Type types.TypeID
	Kind PatKind

	Name  string
	Elems []*Pat
}
