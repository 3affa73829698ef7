package ast

import (
	"quill/internal/diag"
)

// Validate checks structural well-formedness of a parsed package and reports
// problems as parse-phase diagnostics. It never mutates the package.
func Validate(b *Builder, pkg *Package, r diag.Reporter) {
	for _, nsID := range pkg.Namespaces {
		ns := b.Namespaces.Get(uint32(nsID))
		if ns == nil {
			continue
		}
		if !ns.Name.IsValid() {
			diag.ReportError(r, diag.SynMalformedItem, ns.Span, "namespace has no name")
			continue
		}
		for _, itemID := range ns.Items {
			validateItem(b, itemID, r)
		}
	}
}

func validateItem(b *Builder, itemID ItemID, r diag.Reporter) {
	item := b.Items.Get(uint32(itemID))
	if item == nil {
		return
	}
	switch item.Kind {
	case ItemFunction:
		if !item.Name.IsValid() {
			diag.ReportError(r, diag.SynMalformedItem, item.Span, "function has no name")
		}
		if !item.Body.IsValid() {
			diag.ReportError(r, diag.SynMalformedItem, item.Span, "function has no body")
		}
	case ItemNewtype:
		if !item.Name.IsValid() {
			diag.ReportError(r, diag.SynMalformedItem, item.Span, "newtype has no name")
		}
		if !item.Def.IsValid() {
			diag.ReportError(r, diag.SynMalformedItem, item.Span, "newtype has no definition")
		}
	case ItemOpen, ItemExport:
		if !item.Path.IsValid() {
			diag.ReportError(r, diag.SynMalformedItem, item.Span, "declaration has no path")
		}
	case ItemErr:
		// already reported by the parser
	}
}
