// Package resolve implements two-phase name resolution: a global-binding
// pass that hands every namespace and top-level item a fresh local identity,
// followed by a scoped walk that resolves every name usage to a local
// binding or an item.
//
// The two phases live in two deliberately different-capability types:
// GlobalTableBuilder only inserts, Resolver only looks up, and the one-way
// IntoResolver transition keeps binding-after-freeze bugs unrepresentable.
package resolve

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/hir"
	"quill/internal/source"
)

// Prelude is the fixed, ordered list of namespaces implicitly open in every
// source file.
var Prelude = []string{"Std.Core", "Std.Math"}

// Resolutions maps name-bearing AST nodes to their resolution outcome.
// Binder sites resolve to themselves.
type Resolutions map[ast.NameID]hir.Res

// NamespaceTable is one namespace's global scope, kept separately for type
// names and term names so a newtype's constructor can share its type's name.
type NamespaceTable struct {
	Types map[string]hir.ItemID
	Terms map[string]hir.ItemID
}

func newNamespaceTable() *NamespaceTable {
	return &NamespaceTable{
		Types: make(map[string]hir.ItemID),
		Terms: make(map[string]hir.ItemID),
	}
}

// UnitLookup resolves a package id to its lowered tree. The orchestrator
// closes this over its PackageStore so export chains can be followed across
// packages the current compilation does not directly depend on.
type UnitLookup func(hir.PackageID) *hir.Package

// GlobalTableBuilder is the phase-1 accumulator. It only ever inserts;
// lookup starts after IntoResolver.
type GlobalTableBuilder struct {
	builder  *ast.Builder
	reporter diag.Reporter

	names      Resolutions
	namespaces map[string]*NamespaceTable
	nextItem   hir.LocalItemID

	itemIDs  map[ast.ItemID]hir.LocalItemID
	nsItems  map[ast.NamespaceID]hir.LocalItemID
	declared map[string]source.Span // "ns\x00name" -> first declaration span
	dropped  map[string]string      // qualified name -> owning package label
}

// NewGlobalTableBuilder starts an empty phase-1 accumulator.
func NewGlobalTableBuilder(b *ast.Builder, reporter diag.Reporter) *GlobalTableBuilder {
	return &GlobalTableBuilder{
		builder:    b,
		reporter:   reporter,
		names:      make(Resolutions),
		namespaces: make(map[string]*NamespaceTable),
		itemIDs:    make(map[ast.ItemID]hir.LocalItemID),
		nsItems:    make(map[ast.NamespaceID]hir.LocalItemID),
		declared:   make(map[string]source.Span),
		dropped:    make(map[string]string),
	}
}

func (g *GlobalTableBuilder) table(ns string) *NamespaceTable {
	t, ok := g.namespaces[ns]
	if !ok {
		t = newNamespaceTable()
		g.namespaces[ns] = t
	}
	return t
}

func (g *GlobalTableBuilder) freshItem() hir.LocalItemID {
	g.nextItem = g.nextItem.Successor()
	return g.nextItem
}

// BindLocalPackage walks the package being compiled and assigns every
// namespace and top-level item a fresh LocalItemID. Open and export
// declarations and error placeholders bind nothing. Binding never reads name
// usages, which is what lets items reference each other regardless of
// declaration order.
func (g *GlobalTableBuilder) BindLocalPackage(pkg *ast.Package) {
	for _, nsID := range pkg.Namespaces {
		ns := g.builder.Namespaces.Get(uint32(nsID))
		if ns == nil || !ns.Name.IsValid() {
			continue
		}
		nsName := g.builder.NameText(ns.Name)
		nsItem := g.freshItem()
		g.nsItems[nsID] = nsItem
		g.names[ns.Name] = hir.Res{Kind: hir.ResItem, Item: hir.ItemID{Item: nsItem}}
		g.table(nsName)

		for _, itemID := range ns.Items {
			item := g.builder.Items.Get(uint32(itemID))
			if item == nil {
				continue
			}
			switch item.Kind {
			case ast.ItemFunction, ast.ItemNewtype:
				g.bindItem(nsName, itemID, item)
			case ast.ItemOpen, ast.ItemExport, ast.ItemErr:
				// not bindable
			}
		}
	}
}

func (g *GlobalTableBuilder) bindItem(nsName string, itemID ast.ItemID, item *ast.Item) {
	name := g.builder.Name(item.Name)
	if name == nil {
		return
	}
	text := name.Text(g.builder.StringsInterner)
	key := nsName + "\x00" + text
	if first, dup := g.declared[key]; dup {
		diag.ReportErrorNotes(g.reporter, diag.ResDuplicate, name.Span,
			fmt.Sprintf("duplicate declaration of %q in namespace %s", text, nsName),
			[]diag.Note{{Span: first, Msg: "first declared here"}})
		return
	}
	g.declared[key] = name.Span

	id := g.freshItem()
	g.itemIDs[itemID] = id
	ref := hir.ItemID{Item: id}
	g.names[item.Name] = hir.Res{Kind: hir.ResItem, Item: ref}

	t := g.table(nsName)
	t.Terms[text] = ref
	if item.Kind == ast.ItemNewtype {
		// a newtype introduces a constructor term and a type name
		t.Types[text] = ref
	}
}

// AddExternalPackage ingests a previously compiled dependency under the
// given alias ("" for none). Internal items stay invisible; re-exports are
// registered under the original target's ItemID so alias chains of any
// length still resolve to the first declaration. Dropped names are recorded
// so later lookups can explain why a name is unavailable.
func (g *GlobalTableBuilder) AddExternalPackage(id hir.PackageID, alias, label string, pkg *hir.Package, dropped []string, lookup UnitLookup) {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	for _, item := range pkg.Items {
		switch item.Kind {
		case hir.ItemNamespace:
			g.table(prefix + item.Name)
		case hir.ItemCallable, hir.ItemNewtype:
			if item.Visibility == hir.Internal {
				continue
			}
			nsName := prefix + pkg.NamespaceName(item.ID)
			t := g.table(nsName)
			ref := hir.ItemID{Package: id, Item: item.ID}
			t.Terms[item.Name] = ref
			if item.Kind == hir.ItemNewtype {
				t.Types[item.Name] = ref
			}
		}
	}
	for _, ex := range pkg.Exports {
		target := ex.Target.In(id)
		targetItem := g.externalItem(target, lookup)
		if targetItem == nil || targetItem.Visibility == hir.Internal {
			// exports never widen visibility
			continue
		}
		t := g.table(prefix + ex.Namespace)
		t.Terms[ex.Alias] = target
		if targetItem.Kind == hir.ItemNewtype {
			t.Types[ex.Alias] = target
		}
	}
	for _, name := range dropped {
		g.dropped[prefix+name] = label
	}
}

func (g *GlobalTableBuilder) externalItem(id hir.ItemID, lookup UnitLookup) *hir.Item {
	if lookup == nil || !id.Package.IsValid() {
		return nil
	}
	pkg := lookup(id.Package)
	if pkg == nil {
		return nil
	}
	return pkg.Item(id.Item)
}

// RecordLocalDropped records names stripped from the package being compiled,
// so references to them get a targeted diagnostic instead of NotFound.
func (g *GlobalTableBuilder) RecordLocalDropped(names []string) {
	for _, name := range names {
		g.dropped[name] = "this package"
	}
}

// IntoResolver freezes the builder into a lookup-only Resolver. The builder
// must not be used afterwards.
func (g *GlobalTableBuilder) IntoResolver() *Resolver {
	return &Resolver{
		builder:    g.builder,
		reporter:   g.reporter,
		names:      g.names,
		namespaces: g.namespaces,
		itemIDs:    g.itemIDs,
		nsItems:    g.nsItems,
		dropped:    g.dropped,
		prelude:    Prelude,
	}
}
