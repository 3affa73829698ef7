package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// Ident represents an identifier token.
	Ident

	// KwNamespace represents the 'namespace' keyword.
	KwNamespace // namespace
	// KwOpen represents the 'open' keyword.
	KwOpen // open
	// KwExport represents the 'export' keyword.
	KwExport // export
	// KwFunction represents the 'function' keyword.
	KwFunction // function
	// KwNewtype represents the 'newtype' keyword.
	KwNewtype // newtype
	// KwInternal represents the 'internal' modifier keyword.
	KwInternal // internal
	// KwLet represents the 'let' keyword.
	KwLet // let
	// KwUse represents the 'use' keyword.
	KwUse // use
	// KwReturn represents the 'return' keyword.
	KwReturn // return
	// KwIf represents the 'if' keyword.
	KwIf // if
	// KwElse represents the 'else' keyword.
	KwElse // else
	// KwFor represents the 'for' keyword.
	KwFor // for
	// KwIn represents the 'in' keyword.
	KwIn // in
	// KwRepeat represents the 'repeat' keyword.
	KwRepeat // repeat
	// KwUntil represents the 'until' keyword.
	KwUntil // until
	// KwAs represents the 'as' keyword.
	KwAs // as

	// IntLit is an integer literal.
	IntLit
	// FloatLit is a floating-point literal.
	FloatLit
	// BoolLit is 'true' or 'false'.
	BoolLit
	// StringLit is a plain string literal.
	StringLit
	// IStringLit is an interpolated string literal ($"...").
	IStringLit

	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	Assign    // =
	EqEq      // ==
	Bang      // !
	BangEq    // !=
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	AndAnd    // &&
	OrOr      // ||
	Colon     // :
	Semicolon // ;
	Comma     // ,
	Dot       // .
	Arrow     // ->
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	At        // @
)

var kindNames = map[Kind]string{
	Invalid:     "invalid",
	EOF:         "eof",
	Ident:       "identifier",
	KwNamespace: "'namespace'",
	KwOpen:      "'open'",
	KwExport:    "'export'",
	KwFunction:  "'function'",
	KwNewtype:   "'newtype'",
	KwInternal:  "'internal'",
	KwLet:       "'let'",
	KwUse:       "'use'",
	KwReturn:    "'return'",
	KwIf:        "'if'",
	KwElse:      "'else'",
	KwFor:       "'for'",
	KwIn:        "'in'",
	KwRepeat:    "'repeat'",
	KwUntil:     "'until'",
	KwAs:        "'as'",
	IntLit:      "integer literal",
	FloatLit:    "float literal",
	BoolLit:     "boolean literal",
	StringLit:   "string literal",
	IStringLit:  "interpolated string literal",
	Plus:        "'+'",
	Minus:       "'-'",
	Star:        "'*'",
	Slash:       "'/'",
	Percent:     "'%'",
	Assign:      "'='",
	EqEq:        "'=='",
	Bang:        "'!'",
	BangEq:      "'!='",
	Lt:          "'<'",
	LtEq:        "'<='",
	Gt:          "'>'",
	GtEq:        "'>='",
	AndAnd:      "'&&'",
	OrOr:        "'||'",
	Colon:       "':'",
	Semicolon:   "';'",
	Comma:       "','",
	Dot:         "'.'",
	Arrow:       "'->'",
	LParen:      "'('",
	RParen:      "')'",
	LBrace:      "'{'",
	RBrace:      "'}'",
	At:          "'@'",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}
