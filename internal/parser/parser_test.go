package parser

import (
	"strings"
	"testing"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/source"
)

func parseSnippet(t *testing.T, src string) (*ast.Builder, *ast.Package, *diag.Bag, *source.SourceMap) {
	t.Helper()
	m := source.NewSourceMap([]source.NamedSource{{Name: "test.ql", Text: src}}, "")
	b := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(32)
	pkg := ParsePackage(m, b, Options{
		Reporter: diag.BagReporter{Bag: bag},
		Features: lexer.DefaultFeatures,
	})
	return b, pkg, bag, m
}

func TestParseNamespaceWithItems(t *testing.T) {
	b, pkg, bag, _ := parseSnippet(t, `
        namespace Foo.Bar {
            open Std.Math;
            open Std.Arrays as A;
            internal function Helper(x : Int) : Int { x }
            function Main() : Unit { Helper(1); }
            newtype Pair = (Int, Int);
            export Helper as H;
        }
    `)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if len(pkg.Namespaces) != 1 {
		t.Fatalf("expected one namespace, got %d", len(pkg.Namespaces))
	}
	ns := b.Namespaces.Get(uint32(pkg.Namespaces[0]))
	if got := b.NameText(ns.Name); got != "Foo.Bar" {
		t.Fatalf("namespace name: got %q", got)
	}
	if len(ns.Items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(ns.Items))
	}

	kinds := make([]ast.ItemKind, 0, len(ns.Items))
	for _, id := range ns.Items {
		kinds = append(kinds, b.Items.Get(uint32(id)).Kind)
	}
	want := []ast.ItemKind{ast.ItemOpen, ast.ItemOpen, ast.ItemFunction, ast.ItemFunction, ast.ItemNewtype, ast.ItemExport}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("item %d: got %v, want %v", i, kinds[i], want[i])
		}
	}

	helper := b.Items.Get(uint32(ns.Items[2]))
	if !helper.Internal {
		t.Fatalf("Helper must be internal")
	}
	if len(helper.Params) != 1 {
		t.Fatalf("Helper params: got %d", len(helper.Params))
	}
}

func TestParseOpenAlias(t *testing.T) {
	b, pkg, bag, _ := parseSnippet(t, `namespace N { open Std.Arrays as A; }`)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	ns := b.Namespaces.Get(uint32(pkg.Namespaces[0]))
	item := b.Items.Get(uint32(ns.Items[0]))
	if got := b.NameText(item.Path); got != "Std.Arrays" {
		t.Fatalf("open path: got %q", got)
	}
	if got := b.NameText(item.Alias); got != "A" {
		t.Fatalf("open alias: got %q", got)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	b, pkg, bag, _ := parseSnippet(t, `
        namespace N { function F() : Int { 1 + 2 * 3 } }
    `)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	ns := b.Namespaces.Get(uint32(pkg.Namespaces[0]))
	fn := b.Items.Get(uint32(ns.Items[0]))
	block := b.Exprs.Get(uint32(fn.Body))
	stmt := b.Stmts.Get(uint32(block.Stmts[0]))
	add := b.Exprs.Get(uint32(stmt.Expr))
	if add.Kind != ast.ExprBinary {
		t.Fatalf("expected binary, got %v", add.Kind)
	}
	rhs := b.Exprs.Get(uint32(add.Rhs))
	if rhs.Kind != ast.ExprBinary {
		t.Fatalf("'*' must bind tighter than '+', rhs is %v", rhs.Kind)
	}
}

func TestParseInterpolatedString(t *testing.T) {
	src := `namespace N { function F() : String { $"v = {1 + 2}!" } }`
	b, pkg, bag, _ := parseSnippet(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	ns := b.Namespaces.Get(uint32(pkg.Namespaces[0]))
	fn := b.Items.Get(uint32(ns.Items[0]))
	block := b.Exprs.Get(uint32(fn.Body))
	stmt := b.Stmts.Get(uint32(block.Stmts[0]))
	str := b.Exprs.Get(uint32(stmt.Expr))
	if str.Kind != ast.ExprInterpString {
		t.Fatalf("expected interpolated string, got %v", str.Kind)
	}
	if len(str.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(str.Parts))
	}
	if str.Parts[0].Lit != "v = " || str.Parts[2].Lit != "!" {
		t.Fatalf("literal parts: %q / %q", str.Parts[0].Lit, str.Parts[2].Lit)
	}
	embedded := b.Exprs.Get(uint32(str.Parts[1].Expr))
	if embedded.Kind != ast.ExprBinary {
		t.Fatalf("embedded part: got %v", embedded.Kind)
	}
	// embedded span must point at "1 + 2" in the original source
	wantStart := uint32(strings.Index(src, "1 + 2"))
	if embedded.Span.Start != wantStart {
		t.Fatalf("embedded span start: got %d, want %d", embedded.Span.Start, wantStart)
	}
}

func TestParseUseWithTrailingBlock(t *testing.T) {
	b, pkg, bag, _ := parseSnippet(t, `
        namespace N { function F() : Unit { use r = Open(); use s = Open() { s; } } }
    `)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	ns := b.Namespaces.Get(uint32(pkg.Namespaces[0]))
	fn := b.Items.Get(uint32(ns.Items[0]))
	block := b.Exprs.Get(uint32(fn.Body))
	if len(block.Stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(block.Stmts))
	}
	first := b.Stmts.Get(uint32(block.Stmts[0]))
	if first.Kind != ast.StmtUse || first.Block.IsValid() {
		t.Fatalf("first use must have no block")
	}
	second := b.Stmts.Get(uint32(block.Stmts[1]))
	if second.Kind != ast.StmtUse || !second.Block.IsValid() {
		t.Fatalf("second use must carry its block")
	}
}

func TestParseErrorProducesErrItem(t *testing.T) {
	b, pkg, bag, _ := parseSnippet(t, `namespace N { 42 function F() : Unit {} }`)
	if bag.Len() == 0 {
		t.Fatalf("expected diagnostics")
	}
	ns := b.Namespaces.Get(uint32(pkg.Namespaces[0]))
	if len(ns.Items) != 2 {
		t.Fatalf("expected err item plus function, got %d items", len(ns.Items))
	}
	if b.Items.Get(uint32(ns.Items[0])).Kind != ast.ItemErr {
		t.Fatalf("first item must be an error placeholder")
	}
	if b.Items.Get(uint32(ns.Items[1])).Kind != ast.ItemFunction {
		t.Fatalf("parser must recover and parse the function")
	}
}

func TestParseEntryExpression(t *testing.T) {
	m := source.NewSourceMap([]source.NamedSource{
		{Name: "a.ql", Text: "namespace A { function Main() : Unit {} }"},
	}, "A.Main()")
	b := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(8)
	pkg := ParsePackage(m, b, Options{Reporter: diag.BagReporter{Bag: bag}, Features: lexer.DefaultFeatures})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if !pkg.Entry.IsValid() {
		t.Fatalf("expected entry expression")
	}
	entry := b.Exprs.Get(uint32(pkg.Entry))
	if entry.Kind != ast.ExprCall {
		t.Fatalf("entry: got %v", entry.Kind)
	}
}
