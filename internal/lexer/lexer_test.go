package lexer

import (
	"testing"

	"quill/internal/diag"
	"quill/internal/token"
)

func tokenize(t *testing.T, src string, feats Features) ([]token.Token, *diag.Bag) {
	t.Helper()
	bag := diag.NewBag(16)
	lx := New([]byte(src), 0, Options{Reporter: diag.BagReporter{Bag: bag}, Features: feats})
	var toks []token.Token
	for {
		tok := lx.Next()
		if tok.Kind == token.EOF {
			break
		}
		toks = append(toks, tok)
	}
	return toks, bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, 0, len(toks))
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestTokenizeDeclaration(t *testing.T) {
	toks, bag := tokenize(t, "namespace Foo { function A() : Unit {} }", DefaultFeatures)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	want := []token.Kind{
		token.KwNamespace, token.Ident, token.LBrace,
		token.KwFunction, token.Ident, token.LParen, token.RParen,
		token.Colon, token.Ident, token.LBrace, token.RBrace, token.RBrace,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("token count: got %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenSpansAreAbsolute(t *testing.T) {
	bag := diag.NewBag(4)
	lx := New([]byte("let x"), 100, Options{Reporter: diag.BagReporter{Bag: bag}})
	tok := lx.Next()
	if tok.Span.Start != 100 || tok.Span.End != 103 {
		t.Fatalf("span: got %v, want 100-103", tok.Span)
	}
	tok = lx.Next()
	if tok.Text != "x" || tok.Span.Start != 104 {
		t.Fatalf("second token: got %q at %v", tok.Text, tok.Span)
	}
}

func TestInterpolatedStringCapturesBraces(t *testing.T) {
	toks, bag := tokenize(t, `$"a {f(1, "s")} b"`, DefaultFeatures)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	if len(toks) != 1 || toks[0].Kind != token.IStringLit {
		t.Fatalf("expected one interpolated string token, got %v", kinds(toks))
	}
	if toks[0].Text != `$"a {f(1, "s")} b"` {
		t.Fatalf("text: got %q", toks[0].Text)
	}
}

func TestInterpolationRequiresFeature(t *testing.T) {
	_, bag := tokenize(t, `$"x"`, 0)
	if bag.Len() != 1 {
		t.Fatalf("expected one diagnostic, got %d", bag.Len())
	}
	if bag.Items()[0].Code != diag.LexInterpolationOff {
		t.Fatalf("code: got %v", bag.Items()[0].Code)
	}
}

func TestCommentsAndOperators(t *testing.T) {
	toks, bag := tokenize(t, "a // comment\n<= ->", DefaultFeatures)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", bag.Len())
	}
	want := []token.Kind{token.Ident, token.LtEq, token.Arrow}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("kinds: got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBadNumberReported(t *testing.T) {
	toks, bag := tokenize(t, "12abc", DefaultFeatures)
	if len(toks) != 1 || toks[0].Kind != token.Invalid {
		t.Fatalf("expected invalid token, got %v", kinds(toks))
	}
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexBadNumber {
		t.Fatalf("expected LexBadNumber, got %v", bag.Items())
	}
}
