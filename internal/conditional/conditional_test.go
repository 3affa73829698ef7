package conditional

import (
	"testing"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/parser"
	"quill/internal/source"
)

func stripSnippet(t *testing.T, src string, caps Capabilities) (*ast.Builder, *ast.Package, []string, *diag.Bag) {
	t.Helper()
	m := source.NewSourceMap([]source.NamedSource{{Name: "test.ql", Text: src}}, "")
	b := ast.NewBuilder(ast.Hints{}, nil)
	bag := diag.NewBag(16)
	reporter := diag.BagReporter{Bag: bag}
	pkg := parser.ParsePackage(m, b, parser.Options{Reporter: reporter, Features: lexer.DefaultFeatures})
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}
	dropped := Strip(b, pkg, caps, reporter)
	return b, pkg, dropped, bag
}

func TestStripRemovesUnsupportedItems(t *testing.T) {
	b, pkg, dropped, bag := stripSnippet(t, `
        namespace App {
            @target("threads")
            function Spawn() : Unit { () }
            function Run() : Unit { () }
        }
    `, NewCapabilities())
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	ns := b.Namespaces.Get(uint32(pkg.Namespaces[0]))
	if len(ns.Items) != 1 {
		t.Fatalf("items after strip: got %d, want 1", len(ns.Items))
	}
	if got := b.NameText(b.Items.Get(uint32(ns.Items[0])).Name); got != "Run" {
		t.Fatalf("surviving item: got %q", got)
	}
	if len(dropped) != 1 || dropped[0] != "App.Spawn" {
		t.Fatalf("dropped: got %v", dropped)
	}
}

func TestStripKeepsSupportedItems(t *testing.T) {
	b, pkg, dropped, _ := stripSnippet(t, `
        namespace App {
            @target("threads")
            function Spawn() : Unit { () }
        }
    `, NewCapabilities("threads", "atomics"))
	ns := b.Namespaces.Get(uint32(pkg.Namespaces[0]))
	if len(ns.Items) != 1 || len(dropped) != 0 {
		t.Fatalf("items %d dropped %v, want the item kept", len(ns.Items), dropped)
	}
	_ = b
}

func TestStripRemovesGatedNamespace(t *testing.T) {
	b, pkg, dropped, bag := stripSnippet(t, `
        @target("gpu")
        namespace Accel {
            function Kernel() : Unit { () }
            function Warp() : Unit { () }
        }
        namespace App {
            function Run() : Unit { () }
        }
    `, NewCapabilities())
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if len(pkg.Namespaces) != 1 {
		t.Fatalf("namespaces after strip: got %d, want 1", len(pkg.Namespaces))
	}
	ns := b.Namespaces.Get(uint32(pkg.Namespaces[0]))
	if got := b.NameText(ns.Name); got != "App" {
		t.Fatalf("surviving namespace: got %q", got)
	}
	if len(dropped) != 2 || dropped[0] != "Accel.Kernel" || dropped[1] != "Accel.Warp" {
		t.Fatalf("dropped: got %v", dropped)
	}
}

func TestStripKeepsGatedNamespaceWithCapability(t *testing.T) {
	_, pkg, dropped, _ := stripSnippet(t, `
        @target("gpu")
        namespace Accel {
            function Kernel() : Unit { () }
        }
    `, NewCapabilities("gpu"))
	if len(pkg.Namespaces) != 1 || len(dropped) != 0 {
		t.Fatalf("namespaces %d dropped %v, want the namespace kept", len(pkg.Namespaces), dropped)
	}
}

func TestUnknownAttributeWarns(t *testing.T) {
	_, _, dropped, bag := stripSnippet(t, `
        namespace App {
            @inline("always")
            function Run() : Unit { () }
        }
    `, NewCapabilities())
	if len(dropped) != 0 {
		t.Fatalf("dropped: got %v, want none", dropped)
	}
	if bag.Len() != 1 {
		t.Fatalf("diagnostics: got %v, want one warning", bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.TypeUnknownAnnotation || d.Severity != diag.SevWarning {
		t.Fatalf("diagnostic: got %v %v", d.Code, d.Severity)
	}
}
