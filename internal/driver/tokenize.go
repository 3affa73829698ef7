package driver

import (
	"os"

	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
)

// TokenizeResult carries the token stream of a single file together with
// the diagnostics produced while lexing it.
type TokenizeResult struct {
	Tokens  []token.Token
	Sources *source.SourceMap
	Bag     *diag.Bag
}

// Tokenize lexes a single quill source file.
func Tokenize(path string, maxDiagnostics int) (*TokenizeResult, error) {
	if maxDiagnostics <= 0 {
		maxDiagnostics = defaultMaxDiagnostics
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sm := source.NewSourceMap([]source.NamedSource{{Name: path, Text: string(contents)}}, "")
	bag := diag.NewBag(maxDiagnostics)

	lx := lexer.NewForSource(&sm.Sources()[0], lexer.Options{
		Reporter: diag.BagReporter{Bag: bag},
		Features: lexer.DefaultFeatures,
	})
	var tokens []token.Token
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			break
		}
	}

	return &TokenizeResult{Tokens: tokens, Sources: sm, Bag: bag}, nil
}
