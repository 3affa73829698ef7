package resolve

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/hir"
	"quill/internal/source"
)

// Space discriminates the two per-namespace global scopes.
type Space uint8

const (
	// TermSpace holds callables and newtype constructors.
	TermSpace Space = iota
	// TypeSpace holds newtype names.
	TypeSpace
)

// openEntry is one explicit open recorded for the current namespace.
type openEntry struct {
	Namespace string
	Span      source.Span
}

// Result is everything phase 2 produces for one package.
type Result struct {
	Names Resolutions
	// ItemIDs maps bindable AST items to the LocalItemIDs phase 1 assigned.
	ItemIDs map[ast.ItemID]hir.LocalItemID
	// NamespaceItems maps AST namespaces to their namespace items.
	NamespaceItems map[ast.NamespaceID]hir.LocalItemID
	// ExportTargets maps export declarations to the original item they
	// re-export.
	ExportTargets map[ast.ItemID]hir.ItemID
}

// Resolver is the frozen, lookup-only form of a GlobalTableBuilder.
type Resolver struct {
	builder    *ast.Builder
	reporter   diag.Reporter
	names      Resolutions
	namespaces map[string]*NamespaceTable
	itemIDs    map[ast.ItemID]hir.LocalItemID
	nsItems    map[ast.NamespaceID]hir.LocalItemID
	dropped    map[string]string
	prelude    []string

	// walk state
	currentNS string
	opens     map[string][]openEntry
	scopes    []map[string]ast.NameID
	exports   map[ast.ItemID]hir.ItemID
}

// GlobalTable returns the namespace table for ns, or nil.
func (r *Resolver) GlobalTable(ns string) *NamespaceTable {
	return r.namespaces[ns]
}

func (r *Resolver) lookupIn(ns, name string, space Space) (hir.ItemID, bool) {
	t, ok := r.namespaces[ns]
	if !ok {
		return hir.ItemID{}, false
	}
	var ref hir.ItemID
	if space == TypeSpace {
		ref, ok = t.Types[name]
	} else {
		ref, ok = t.Terms[name]
	}
	return ref, ok
}

var primNames = map[string]hir.PrimKind{
	"Unit":   hir.PrimUnit,
	"Int":    hir.PrimInt,
	"Double": hir.PrimDouble,
	"Bool":   hir.PrimBool,
	"String": hir.PrimString,
}

// resolvePath resolves one name usage and records the outcome. The layered
// fallback order is load-bearing: locals shadow same-namespace items, which
// shadow explicit opens, which shadow the prelude, which shadows literal
// fully-qualified names.
func (r *Resolver) resolvePath(nameID ast.NameID, space Space) {
	name := r.builder.Name(nameID)
	if name == nil {
		return
	}
	final := r.builder.StringsInterner.MustLookup(name.Final().ID)
	qualifier := name.Qualifier(r.builder.StringsInterner)

	// 1. lexical scopes, innermost first
	if qualifier == "" && space == TermSpace {
		for i := len(r.scopes) - 1; i >= 0; i-- {
			if binder, ok := r.scopes[i][final]; ok {
				r.names[nameID] = hir.Res{Kind: hir.ResLocal, Local: binder}
				return
			}
		}
	}

	// 2. own-namespace items are visible without an open
	if qualifier == "" {
		if ref, ok := r.lookupIn(r.currentNS, final, space); ok {
			r.names[nameID] = hir.Res{Kind: hir.ResItem, Item: ref}
			return
		}
		// builtin primitive type names sit between the own namespace and
		// explicit opens, so a local newtype may shadow them
		if space == TypeSpace {
			if prim, ok := primNames[final]; ok {
				r.names[nameID] = hir.Res{Kind: hir.ResPrim, Prim: prim}
				return
			}
		}
	}

	// 3. explicit opens for this qualifier ("" for unqualified paths)
	type candidate struct {
		ref  hir.ItemID
		open openEntry
	}
	var cands []candidate
	for _, entry := range r.opens[qualifier] {
		if ref, ok := r.lookupIn(entry.Namespace, final, space); ok {
			cands = append(cands, candidate{ref: ref, open: entry})
		}
	}
	if len(cands) == 1 {
		r.names[nameID] = hir.Res{Kind: hir.ResItem, Item: cands[0].ref}
		return
	}
	if len(cands) > 1 {
		first, second := cands[0].open, cands[1].open
		diag.ReportErrorNotes(r.reporter, diag.ResAmbiguous, name.Span,
			fmt.Sprintf("%q could refer to the item in %s or in %s", final, first.Namespace, second.Namespace),
			[]diag.Note{
				{Span: first.Span, Msg: "opened here"},
				{Span: second.Span, Msg: "and here"},
			})
		return
	}

	// 4. prelude namespaces, implicitly open in every file
	if qualifier == "" {
		var hits []string
		var ref hir.ItemID
		for _, ns := range r.prelude {
			if found, ok := r.lookupIn(ns, final, space); ok {
				hits = append(hits, ns)
				ref = found
			}
		}
		if len(hits) == 1 {
			r.names[nameID] = hir.Res{Kind: hir.ResItem, Item: ref}
			return
		}
		if len(hits) > 1 {
			// prelude collisions depend on library content, so this is a
			// recoverable diagnostic rather than an internal invariant
			diag.ReportError(r.reporter, diag.ResAmbiguousPrelude, name.Span,
				fmt.Sprintf("%q is declared in multiple prelude namespaces (%s, %s)", final, hits[0], hits[1]))
			return
		}
	}

	// 5. literal fully-qualified lookup
	if qualifier != "" {
		if ref, ok := r.lookupIn(qualifier, final, space); ok {
			r.names[nameID] = hir.Res{Kind: hir.ResItem, Item: ref}
			return
		}
	}

	// 6. nothing: explain dropped names, otherwise NotFound
	text := name.Text(r.builder.StringsInterner)
	if label, ok := r.findDropped(qualifier, final); ok {
		diag.ReportError(r.reporter, diag.ResDropped, name.Span,
			fmt.Sprintf("%q was removed by conditional compilation in %s", text, label))
		return
	}
	diag.ReportError(r.reporter, diag.ResNotFound, name.Span,
		fmt.Sprintf("name %q not found", text))
}

// findDropped checks every namespace the usage could have reached for a
// conditionally compiled-out name.
func (r *Resolver) findDropped(qualifier, final string) (string, bool) {
	var keys []string
	if qualifier != "" {
		keys = append(keys, qualifier+"."+final)
	} else {
		keys = append(keys, r.currentNS+"."+final)
		for _, entry := range r.opens[""] {
			keys = append(keys, entry.Namespace+"."+final)
		}
		for _, ns := range r.prelude {
			keys = append(keys, ns+"."+final)
		}
	}
	for _, key := range keys {
		if label, ok := r.dropped[key]; ok {
			return label, true
		}
	}
	return "", false
}

// pushScope opens a lexical scope; every push is paired with one popScope.
func (r *Resolver) pushScope() {
	r.scopes = append(r.scopes, make(map[string]ast.NameID))
}

func (r *Resolver) popScope() {
	if len(r.scopes) == 0 {
		panic("resolve: scope stack underflow")
	}
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declareLocal binds a name in the innermost scope. Binder sites resolve to
// themselves.
func (r *Resolver) declareLocal(nameID ast.NameID) {
	name := r.builder.Name(nameID)
	if name == nil || len(r.scopes) == 0 {
		return
	}
	text := r.builder.StringsInterner.MustLookup(name.Final().ID)
	r.scopes[len(r.scopes)-1][text] = nameID
	r.names[nameID] = hir.Res{Kind: hir.ResLocal, Local: nameID}
}
