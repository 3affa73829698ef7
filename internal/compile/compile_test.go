package compile

import (
	"reflect"
	"strings"
	"testing"

	"quill/internal/conditional"
	"quill/internal/diag"
	"quill/internal/hir"
	"quill/internal/source"
)

func newStoreWithCore(t *testing.T) *PackageStore {
	t.Helper()
	store := NewPackageStore()
	core := Core(store, Options{})
	if core.HasErrors() {
		t.Fatalf("core library has errors: %v", core.Errors)
	}
	if core.ID != hir.CorePackageID {
		t.Fatalf("core id: got %d", core.ID)
	}
	return store
}

func compileFiles(t *testing.T, store *PackageStore, deps []Dependency, opts Options, files ...source.NamedSource) *CompileUnit {
	t.Helper()
	return Compile(store, deps, files, opts)
}

func TestStoreOrderingContract(t *testing.T) {
	store := NewPackageStore()
	defer func() {
		if recover() == nil {
			t.Fatal("inserting an out-of-order unit must panic")
		}
	}()
	store.Insert(&CompileUnit{ID: 5})
}

func TestCoreAndStdCompileClean(t *testing.T) {
	store := newStoreWithCore(t)
	std := Std(store, Options{})
	if std.HasErrors() {
		t.Fatalf("std library has errors: %v", std.Errors)
	}
	if std.ID != 2 {
		t.Fatalf("std id: got %d", std.ID)
	}
	if store.Core() == nil || store.Core().Name != "core" {
		t.Fatalf("core lookup failed")
	}
}

func TestMutualRecursionCompilesClean(t *testing.T) {
	store := newStoreWithCore(t)
	unit := compileFiles(t, store, nil, Options{Name: "app"}, source.NamedSource{
		Name: "rec.ql",
		Text: `
            namespace App {
                function Even(n : Int) : Bool { if n == 0 { true } else { Odd(n - 1) } }
                function Odd(n : Int) : Bool { if n == 0 { false } else { Even(n - 1) } }
            }
        `,
	})
	if unit.HasErrors() {
		t.Fatalf("unexpected errors: %v", unit.Errors)
	}
}

func TestPreludeVisibleWithoutOpens(t *testing.T) {
	store := newStoreWithCore(t)
	unit := compileFiles(t, store, nil, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `
            namespace App {
                function Biggest(a : Int, b : Int, c : Int) : Int { Max(Max(a, b), c) }
                function Area(r : Double) : Double { Pi() * Square(r) }
            }
        `,
	})
	if unit.HasErrors() {
		t.Fatalf("unexpected errors: %v", unit.Errors)
	}
}

func TestInternalInvisibleAcrossPackages(t *testing.T) {
	store := newStoreWithCore(t)
	lib := compileFiles(t, store, nil, Options{Name: "lib"}, source.NamedSource{
		Name: "lib.ql",
		Text: `
            namespace Lib {
                internal function Secret() : Int { 42 }
                function Blessed() : Int { Secret() }
            }
        `,
	})
	if lib.HasErrors() {
		t.Fatalf("library errors: %v", lib.Errors)
	}
	app := compileFiles(t, store, []Dependency{{ID: lib.ID}}, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `
            namespace App {
                open Lib;
                function Ok() : Int { Blessed() }
                function Bad() : Int { Secret() }
            }
        `,
	})
	var notFound int
	for _, d := range app.Errors {
		if d.Code == diag.ResNotFound {
			notFound++
		}
	}
	if notFound != 1 {
		t.Fatalf("errors: %v, want exactly one NotFound", app.Errors)
	}
	// the call site still lowers to a call around an error reference
	var bad *hir.Item
	for _, item := range app.Package.Items {
		if item.Name == "Bad" {
			bad = item
		}
	}
	call := bad.Callable.Body.Stmts[0].Expr
	if call.Kind != hir.ExprCall || call.Callee.Ref.Kind != hir.ResErr {
		t.Fatalf("call site lowered to %v / %v", call.Kind, call.Callee.Ref.Kind)
	}
}

func TestReExportChain(t *testing.T) {
	store := newStoreWithCore(t)
	base := compileFiles(t, store, nil, Options{Name: "base"}, source.NamedSource{
		Name: "base.ql",
		Text: `
            namespace Base {
                function Origin() : Int { 0 }
            }
        `,
	})
	mid := compileFiles(t, store, []Dependency{{ID: base.ID}}, Options{Name: "mid"}, source.NamedSource{
		Name: "mid.ql",
		Text: `
            namespace Mid {
                open Base;
                export Origin as Start;
            }
        `,
	})
	if mid.HasErrors() {
		t.Fatalf("mid errors: %v", mid.Errors)
	}
	app := compileFiles(t, store, []Dependency{{ID: mid.ID}}, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `
            namespace App {
                open Mid;
                function Run() : Int { Start() }
            }
        `,
	})
	if app.HasErrors() {
		t.Fatalf("app errors: %v", app.Errors)
	}
	// the reference resolves to Base's original item, not to Mid
	var run *hir.Item
	for _, item := range app.Package.Items {
		if item.Name == "Run" {
			run = item
		}
	}
	ref := run.Callable.Body.Stmts[0].Expr.Ref
	if ref.Kind != hir.ResItem || ref.Item.Package != base.ID {
		t.Fatalf("Start resolved to %v, want an item of package %d", ref, base.ID)
	}
}

func TestExportNeverWidensVisibility(t *testing.T) {
	store := newStoreWithCore(t)
	lib := compileFiles(t, store, nil, Options{Name: "lib"}, source.NamedSource{
		Name: "lib.ql",
		Text: `
            namespace Lib {
                internal function Secret() : Int { 42 }
                export Secret as Leaked;
            }
        `,
	})
	if lib.HasErrors() {
		t.Fatalf("library errors: %v", lib.Errors)
	}
	app := compileFiles(t, store, []Dependency{{ID: lib.ID}}, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `
            namespace App {
                open Lib;
                function Run() : Int { Leaked() }
            }
        `,
	})
	var notFound int
	for _, d := range app.Errors {
		if d.Code == diag.ResNotFound {
			notFound++
		}
	}
	if notFound != 1 {
		t.Fatalf("errors: %v, want the re-export to stay invisible", app.Errors)
	}
}

func TestDroppedNameGetsSpecificDiagnostic(t *testing.T) {
	store := newStoreWithCore(t)
	// core's Fork is gated on the threads capability and was dropped
	unit := compileFiles(t, store, nil, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `
            namespace App {
                function Run() : Unit { Fork() }
            }
        `,
	})
	var found bool
	for _, d := range unit.Errors {
		if d.Code == diag.ResDropped && strings.Contains(d.Message, "conditional compilation") {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors: %v, want a dropped-name diagnostic", unit.Errors)
	}
}

func TestCapabilityKeepsGatedItem(t *testing.T) {
	store := NewPackageStore()
	core := Core(store, Options{Capabilities: conditional.NewCapabilities("threads")})
	if core.HasErrors() {
		t.Fatalf("core errors: %v", core.Errors)
	}
	if len(core.Dropped) != 0 {
		t.Fatalf("dropped: %v, want none with the threads capability", core.Dropped)
	}
	unit := compileFiles(t, store, nil, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `
            namespace App {
                function Run() : Unit { Fork(x -> ()) }
            }
        `,
	})
	if unit.HasErrors() {
		t.Fatalf("unexpected errors: %v", unit.Errors)
	}
}

func TestTwoFileScenario(t *testing.T) {
	store := newStoreWithCore(t)
	unit := compileFiles(t, store, nil, Options{Name: "app"},
		source.NamedSource{Name: "test1.ql", Text: `
            namespace Proj { function A() : Unit { () } }
        `},
		source.NamedSource{Name: "test2.ql", Text: `
            namespace Proj2 { function B() : Unit { C(); } }
        `},
	)
	if len(unit.Errors) != 2 {
		t.Fatalf("errors: %v, want exactly two", unit.Errors)
	}
	for _, d := range unit.Errors {
		src, _, _ := unit.Sources.Resolve(d.Primary)
		if src == nil || src.Name != "test2.ql" {
			t.Fatalf("error %v located in %v, want test2.ql", d, src)
		}
	}
	phases := []diag.Phase{unit.Errors[0].Code.Phase(), unit.Errors[1].Code.Phase()}
	if phases[0] != diag.PhaseResolve || phases[1] != diag.PhaseType {
		t.Fatalf("phases: %v", phases)
	}
}

func TestAliasedDependency(t *testing.T) {
	store := newStoreWithCore(t)
	lib := compileFiles(t, store, nil, Options{Name: "geometry"}, source.NamedSource{
		Name: "geo.ql",
		Text: `
            namespace Shapes {
                function UnitArea() : Double { 1.0 }
            }
        `,
	})
	app := compileFiles(t, store, []Dependency{{ID: lib.ID, Alias: "Geo"}}, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `
            namespace App {
                open Geo.Shapes;
                function Run() : Double { UnitArea() }
            }
        `,
	})
	if app.HasErrors() {
		t.Fatalf("unexpected errors: %v", app.Errors)
	}
}

func TestEntryExpressionCompiles(t *testing.T) {
	store := newStoreWithCore(t)
	unit := compileFiles(t, store, nil, Options{Name: "app", Entry: "App.Answer()"}, source.NamedSource{
		Name: "app.ql",
		Text: `
            namespace App {
                function Answer() : Int { 42 }
            }
        `,
	})
	if unit.HasErrors() {
		t.Fatalf("unexpected errors: %v", unit.Errors)
	}
	if unit.Package.Entry == nil || unit.Package.Entry.Kind != hir.ExprCall {
		t.Fatalf("entry: %+v", unit.Package.Entry)
	}
}

func TestCrossPackageNewtype(t *testing.T) {
	store := newStoreWithCore(t)
	std := Std(store, Options{})
	app := compileFiles(t, store, []Dependency{{ID: std.ID}}, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `
            namespace App {
                open Std.Range;
                function Make() : Bounds { MakeBounds(3, 9) }
            }
        `,
	})
	if app.HasErrors() {
		t.Fatalf("unexpected errors: %v", app.Errors)
	}
}

func TestMalformedNamespaceReported(t *testing.T) {
	store := newStoreWithCore(t)
	unit := compileFiles(t, store, nil, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `namespace { function F() : Int { 1 } }`,
	})
	var found bool
	for _, d := range unit.Errors {
		if d.Code == diag.SynMalformedItem && strings.Contains(d.Message, "namespace has no name") {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors: %v, want a malformed-namespace diagnostic", unit.Errors)
	}
}

func TestCompileIdempotent(t *testing.T) {
	srcs := []source.NamedSource{{Name: "app.ql", Text: `
        namespace App {
            newtype Meters = Double;
            function Scale(x : Double) : Meters { Meters(x) }
            function Run() : Meters { Scale(level) }
        }
    `}}
	run := func() *CompileUnit {
		store := NewPackageStore()
		core := Core(store, Options{})
		if core.HasErrors() {
			t.Fatalf("core errors: %v", core.Errors)
		}
		return Compile(store, nil, srcs, Options{Name: "app"})
	}
	first := run()
	second := run()
	if !first.HasErrors() {
		t.Fatalf("fixture must produce diagnostics, got none")
	}
	if !reflect.DeepEqual(first.Errors, second.Errors) {
		t.Fatalf("error lists differ:\n%v\n%v", first.Errors, second.Errors)
	}
	if len(first.Package.Items) != len(second.Package.Items) {
		t.Fatalf("item counts differ: %d vs %d", len(first.Package.Items), len(second.Package.Items))
	}
	for i := range first.Package.Items {
		a, b := first.Package.Items[i], second.Package.Items[i]
		if a.ID != b.ID || a.Kind != b.Kind || a.Name != b.Name || a.Parent != b.Parent {
			t.Fatalf("item %d differs: %+v vs %+v", i, a, b)
		}
	}
	// node ids and the full lowered structure, Err markers included
	if !reflect.DeepEqual(first.Package, second.Package) {
		t.Fatalf("lowered trees differ")
	}
}

func TestOpenStoreInsertsPlaceholder(t *testing.T) {
	store := newStoreWithCore(t)
	unit := compileFiles(t, store, nil, Options{Name: "app"}, source.NamedSource{
		Name: "app.ql",
		Text: `namespace App { function F() : Int { 1 } }`,
	})
	before := store.Len()
	open := store.Open()
	mut := open.GetOpenMut()
	if mut == nil || mut.ID != hir.PackageID(before+1) {
		t.Fatalf("open unit: %+v, want a placeholder at id %d", mut, before+1)
	}
	if store.Len() != before+1 || store.Get(mut.ID) != mut {
		t.Fatalf("placeholder not inserted into the store")
	}
	// packages compiled earlier are untouched and still reachable
	if open.Get(unit.ID) != unit {
		t.Fatalf("open store lost the compiled unit")
	}
	if open.Get(hir.CorePackageID) != store.Core() {
		t.Fatalf("core lookup through open store failed")
	}
	// in-place edits land in the stored unit
	mut.Name = "scratch"
	if store.Get(mut.ID).Name != "scratch" {
		t.Fatalf("mutation did not reach the stored placeholder")
	}
}

func TestOpenEmptyStore(t *testing.T) {
	store := NewPackageStore()
	mut := store.Open().GetOpenMut()
	if mut == nil || mut.ID != hir.PackageID(1) {
		t.Fatalf("open unit: %+v, want a placeholder at id 1", mut)
	}
}
