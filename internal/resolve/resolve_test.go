package resolve

import (
	"strings"
	"testing"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/hir"
	"quill/internal/lexer"
	"quill/internal/parser"
	"quill/internal/source"
)

func resolveSnippet(t *testing.T, src string) (*ast.Builder, *Result, *diag.Bag) {
	t.Helper()
	return resolveSources(t, []source.NamedSource{{Name: "test.ql", Text: src}}, nil)
}

type extDep struct {
	id      hir.PackageID
	alias   string
	pkg     *hir.Package
	dropped []string
}

func resolveSources(t *testing.T, sources []source.NamedSource, deps []extDep) (*ast.Builder, *Result, *diag.Bag) {
	t.Helper()
	m := source.NewSourceMap(sources, "")
	b := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(64)
	reporter := diag.BagReporter{Bag: bag}
	pkg := parser.ParsePackage(m, b, parser.Options{Reporter: reporter, Features: lexer.DefaultFeatures})

	gtb := NewGlobalTableBuilder(b, reporter)
	units := make(map[hir.PackageID]*hir.Package)
	for _, dep := range deps {
		units[dep.id] = dep.pkg
	}
	lookup := func(id hir.PackageID) *hir.Package { return units[id] }
	for _, dep := range deps {
		gtb.AddExternalPackage(dep.id, dep.alias, "dep", dep.pkg, dep.dropped, lookup)
	}
	gtb.BindLocalPackage(pkg)
	res := gtb.IntoResolver().ResolvePackage(pkg)
	return b, res, bag
}

// nameIDs returns every name node whose final segment reads text.
func nameIDs(b *ast.Builder, text string) []ast.NameID {
	var out []ast.NameID
	for i := uint32(1); i <= b.Names.Len(); i++ {
		n := b.Names.Get(i)
		if b.StringsInterner.MustLookup(n.Final().ID) == text {
			out = append(out, ast.NameID(i))
		}
	}
	return out
}

func wantCode(t *testing.T, bag *diag.Bag, code diag.Code) diag.Diagnostic {
	t.Helper()
	for _, d := range bag.Items() {
		if d.Code == code {
			return d
		}
	}
	t.Fatalf("no %v diagnostic in %v", code, bag.Items())
	return diag.Diagnostic{}
}

func TestBindingCompleteness(t *testing.T) {
	b, res, bag := resolveSnippet(t, `
        namespace App {
            newtype Meters = Double;
            function Scale(x : Double) : Meters { Meters(x) }
            function Run() : Meters { Scale(2.0) }
        }
    `)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	// every identifier occurrence resolved to something
	for i := uint32(1); i <= b.Names.Len(); i++ {
		if _, ok := res.Names[ast.NameID(i)]; !ok {
			n := b.Names.Get(i)
			t.Errorf("name %q at %v has no resolution", n.Text(b.StringsInterner), n.Span)
		}
	}
}

func TestShadowingLocalOverItem(t *testing.T) {
	b, res, bag := resolveSnippet(t, `
        namespace App {
            function Count() : Int { 0 }
            function UseItem() : Int { Count() }
            function UseLocal(Count : Int) : Int { Count }
        }
    `)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	ids := nameIDs(b, "Count")
	// declaration, param binder, and two usages
	var itemUses, localUses int
	for _, id := range ids {
		switch r := res.Names[id]; r.Kind {
		case hir.ResItem:
			itemUses++
		case hir.ResLocal:
			localUses++
			if r.Local != id {
				// the usage must point at the param binder, not itself
				binder := b.Names.Get(uint32(r.Local))
				if b.StringsInterner.MustLookup(binder.Final().ID) != "Count" {
					t.Fatalf("local usage bound to %q", binder.Text(b.StringsInterner))
				}
			}
		}
	}
	if itemUses != 2 { // declaration site + UseItem body
		t.Fatalf("item resolutions: got %d, want 2", itemUses)
	}
	if localUses != 2 { // param binder + UseLocal body
		t.Fatalf("local resolutions: got %d, want 2", localUses)
	}
}

func TestShadowingOwnNamespaceOverOpen(t *testing.T) {
	b, res, bag := resolveSnippet(t, `
        namespace Lib {
            function Size() : Int { 1 }
        }
        namespace App {
            open Lib;
            function Size() : Int { 2 }
            function Run() : Int { Size() }
        }
    `)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	// App.Run's Size() must bind to App.Size, not Lib.Size
	ids := nameIDs(b, "Size")
	usage := ids[len(ids)-1]
	got := res.Names[usage]
	if got.Kind != hir.ResItem {
		t.Fatalf("usage kind: got %v", got.Kind)
	}
	decl := res.Names[ids[1]] // App.Size declaration (ids[0] is Lib.Size)
	if got.Item != decl.Item {
		t.Fatalf("usage bound to %v, want own-namespace item %v", got.Item, decl.Item)
	}
}

func TestAmbiguousOpens(t *testing.T) {
	_, _, bag := resolveSnippet(t, `
        namespace North { function Origin() : Int { 0 } }
        namespace South { function Origin() : Int { 1 } }
        namespace App {
            open North;
            open South;
            function Run() : Int { Origin() }
        }
    `)
	d := wantCode(t, bag, diag.ResAmbiguous)
	if !strings.Contains(d.Message, "North") || !strings.Contains(d.Message, "South") {
		t.Fatalf("message: %q", d.Message)
	}
	if len(d.Notes) != 2 {
		t.Fatalf("notes: got %d, want 2 (one per open)", len(d.Notes))
	}
	if d.Notes[0].Span == d.Notes[1].Span {
		t.Fatalf("notes must point at the two distinct open declarations")
	}
}

func TestPreludeAmbiguity(t *testing.T) {
	_, _, bag := resolveSnippet(t, `
        namespace Std.Core { function Twice(x : Int) : Int { x + x } }
        namespace Std.Math { function Twice(x : Int) : Int { 2 * x } }
        namespace App {
            function Run() : Int { Twice(3) }
        }
    `)
	d := wantCode(t, bag, diag.ResAmbiguousPrelude)
	if !strings.Contains(d.Message, "Std.Core") || !strings.Contains(d.Message, "Std.Math") {
		t.Fatalf("message: %q", d.Message)
	}
}

func TestNotFound(t *testing.T) {
	src := `
        namespace App {
            function Run() : Int { x }
        }
    `
	_, _, bag := resolveSnippet(t, src)
	d := wantCode(t, bag, diag.ResNotFound)
	if d.Message != `name "x" not found` {
		t.Fatalf("message: %q", d.Message)
	}
	// the span covers exactly the bare identifier
	at := uint32(strings.Index(src, "{ x }") + 2)
	if d.Primary.Start != at || d.Primary.End != at+1 {
		t.Fatalf("span: got %v, want %d..%d", d.Primary, at, at+1)
	}
}

func TestDuplicateDeclaration(t *testing.T) {
	_, _, bag := resolveSnippet(t, `
        namespace App {
            function Run() : Int { 1 }
            function Run() : Int { 2 }
        }
    `)
	d := wantCode(t, bag, diag.ResDuplicate)
	if len(d.Notes) != 1 {
		t.Fatalf("expected a note pointing at the first declaration, got %v", d.Notes)
	}
}

func TestPrimShadowedByNewtype(t *testing.T) {
	b, res, bag := resolveSnippet(t, `
        namespace App {
            newtype Int = Double;
            function Run(x : Int) : Bool { true }
        }
    `)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	ids := nameIDs(b, "Int")
	param := res.Names[ids[len(ids)-1]]
	if param.Kind != hir.ResItem {
		t.Fatalf("param type resolved to %v, want the local newtype", param.Kind)
	}
	boolIDs := nameIDs(b, "Bool")
	ret := res.Names[boolIDs[0]]
	if ret.Kind != hir.ResPrim || ret.Prim != hir.PrimBool {
		t.Fatalf("return type resolved to %v, want the Bool primitive", ret)
	}
}

func extPackage() *hir.Package {
	return &hir.Package{
		Items: []*hir.Item{
			{ID: 1, Kind: hir.ItemNamespace, Name: "Geo.Shapes"},
			{ID: 2, Kind: hir.ItemCallable, Parent: 1, Visibility: hir.Public, Name: "Area", Callable: &hir.Callable{}},
			{ID: 3, Kind: hir.ItemCallable, Parent: 1, Visibility: hir.Internal, Name: "Scratch", Callable: &hir.Callable{}},
		},
	}
}

func TestExternalPackageLookup(t *testing.T) {
	b, res, bag := resolveSources(t, []source.NamedSource{{Name: "main.ql", Text: `
        namespace App {
            open Geo.Shapes;
            function Run() : Int { Area() }
        }
    `}}, []extDep{{id: 2, pkg: extPackage()}})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	usage := nameIDs(b, "Area")[0]
	got := res.Names[usage]
	if got.Kind != hir.ResItem || got.Item.Package != 2 || got.Item.Item != 2 {
		t.Fatalf("resolved to %v, want item 2 of package 2", got)
	}
}

func TestInternalItemInvisibleAcrossPackages(t *testing.T) {
	_, _, bag := resolveSources(t, []source.NamedSource{{Name: "main.ql", Text: `
        namespace App {
            open Geo.Shapes;
            function Run() : Int { Scratch() }
        }
    `}}, []extDep{{id: 2, pkg: extPackage()}})
	wantCode(t, bag, diag.ResNotFound)
}

func TestAliasedDependency(t *testing.T) {
	b, res, bag := resolveSources(t, []source.NamedSource{{Name: "main.ql", Text: `
        namespace App {
            function Run() : Int { G.Geo.Shapes.Area() }
        }
    `}}, []extDep{{id: 2, alias: "G", pkg: extPackage()}})
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	usage := nameIDs(b, "Area")[0]
	if got := res.Names[usage]; got.Item.Package != 2 {
		t.Fatalf("resolved to %v, want package 2", got)
	}
}

func TestDroppedNameDiagnostic(t *testing.T) {
	m := source.NewSourceMap([]source.NamedSource{{Name: "main.ql", Text: `
        namespace App {
            function Run() : Int { Gone() }
        }
    `}}, "")
	b := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(64)
	reporter := diag.BagReporter{Bag: bag}
	pkg := parser.ParsePackage(m, b, parser.Options{Reporter: reporter, Features: lexer.DefaultFeatures})

	gtb := NewGlobalTableBuilder(b, reporter)
	gtb.BindLocalPackage(pkg)
	gtb.RecordLocalDropped([]string{"App.Gone"})
	gtb.IntoResolver().ResolvePackage(pkg)

	d := wantCode(t, bag, diag.ResDropped)
	if !strings.Contains(d.Message, "conditional compilation") {
		t.Fatalf("message: %q", d.Message)
	}
}

func TestExportResolvesToOriginal(t *testing.T) {
	b, res, bag := resolveSnippet(t, `
        namespace Impl {
            function Work() : Int { 7 }
        }
        namespace Facade {
            open Impl;
            export Work as Run;
        }
    `)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if len(res.ExportTargets) != 1 {
		t.Fatalf("export targets: got %d, want 1", len(res.ExportTargets))
	}
	workDecl := res.Names[nameIDs(b, "Work")[0]]
	for _, target := range res.ExportTargets {
		if target != workDecl.Item {
			t.Fatalf("export target %v, want the original declaration %v", target, workDecl.Item)
		}
	}
}
