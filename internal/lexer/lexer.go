package lexer

import (
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/token"
)

// Options configures one lexer instance.
type Options struct {
	Reporter diag.Reporter // may be nil; errors are then dropped but lexing continues
	Features Features
}

// Lexer produces tokens for one contiguous chunk of source text.
type Lexer struct {
	cursor Cursor
	opts   Options
	look   *token.Token // one-token lookahead buffer
}

// New builds a lexer over contents placed at absolute offset base.
func New(contents []byte, base uint32, opts Options) *Lexer {
	return &Lexer{
		cursor: NewCursor(contents, base),
		opts:   opts,
	}
}

// NewForSource builds a lexer for a SourceMap source.
func NewForSource(src *source.Source, opts Options) *Lexer {
	return New(src.Contents, src.Offset, opts)
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() token.Token {
	if lx.look == nil {
		tok := lx.scan()
		lx.look = &tok
	}
	return *lx.look
}

// Next returns the next significant token. After EOF it keeps returning EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	return lx.scan()
}

// EmptySpan is a zero-length span at the current position.
func (lx *Lexer) EmptySpan() source.Span {
	pos := lx.cursor.Pos()
	return source.Span{Start: pos, End: pos}
}

func (lx *Lexer) report(code diag.Code, sp source.Span, msg string) {
	diag.ReportError(lx.opts.Reporter, code, sp, msg)
}
