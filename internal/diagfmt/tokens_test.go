package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
)

func lexAll(t *testing.T, text string) ([]token.Token, *source.SourceMap) {
	t.Helper()
	sm := source.NewSourceMap([]source.NamedSource{{Name: "main.ql", Text: text}}, "")
	lx := lexer.NewForSource(&sm.Sources()[0], lexer.Options{Features: lexer.DefaultFeatures})
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens, sm
		}
	}
}

func TestFormatTokensPretty(t *testing.T) {
	tokens, sm := lexAll(t, "function Main() {}\n")
	var buf strings.Builder
	FormatTokensPretty(&buf, tokens, sm)
	out := buf.String()
	if !strings.Contains(out, `"Main"`) {
		t.Errorf("missing identifier text:\n%s", out)
	}
	if !strings.Contains(out, "at 1:1-1:9") {
		t.Errorf("missing keyword span:\n%s", out)
	}
	if !strings.Contains(out, "eof") {
		t.Errorf("missing eof entry:\n%s", out)
	}
}

func TestFormatTokensJSON(t *testing.T) {
	tokens, _ := lexAll(t, "let x;")
	var buf strings.Builder
	if err := FormatTokensJSON(&buf, tokens); err != nil {
		t.Fatalf("FormatTokensJSON: %v", err)
	}
	var out []TokenOutput
	if err := json.Unmarshal([]byte(buf.String()), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != len(tokens) {
		t.Fatalf("tokens = %d, want %d", len(out), len(tokens))
	}
	last := out[len(out)-1]
	if last.Kind != "eof" {
		t.Errorf("last kind = %q", last.Kind)
	}
}
