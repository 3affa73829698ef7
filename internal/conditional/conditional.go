// Package conditional strips declarations whose target attribute names a
// capability the current compilation does not provide. Stripping happens
// between parsing and binding, so removed items never enter the global
// tables; their qualified names are reported back so resolution can explain
// later references to them.
package conditional

import (
	"fmt"
	"sort"

	"quill/internal/ast"
	"quill/internal/diag"
)

// TargetAttr is the attribute that gates an item on a capability.
const TargetAttr = "target"

// Capabilities is the set of capability names the compilation target
// provides.
type Capabilities struct {
	caps map[string]struct{}
}

// NewCapabilities builds a capability set from names.
func NewCapabilities(names ...string) Capabilities {
	caps := make(map[string]struct{}, len(names))
	for _, name := range names {
		caps[name] = struct{}{}
	}
	return Capabilities{caps: caps}
}

// Has reports whether the target provides the named capability.
func (c Capabilities) Has(name string) bool {
	_, ok := c.caps[name]
	return ok
}

// Names returns the capability names in sorted order.
func (c Capabilities) Names() []string {
	names := make([]string, 0, len(c.caps))
	for name := range c.caps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Strip removes every item or namespace gated on a capability outside caps,
// editing the package in place. It returns the dotted qualified names of
// the removed declarations. Unknown attributes get a warning and are
// otherwise ignored.
func Strip(b *ast.Builder, pkg *ast.Package, caps Capabilities, reporter diag.Reporter) []string {
	var dropped []string
	keptNS := pkg.Namespaces[:0]
	for _, nsID := range pkg.Namespaces {
		ns := b.Namespaces.Get(uint32(nsID))
		if ns == nil {
			keptNS = append(keptNS, nsID)
			continue
		}
		nsName := b.NameText(ns.Name)
		if !keepAttrs(b, ns.Attrs, caps, reporter) {
			// the whole namespace goes; record every named item in it
			for _, itemID := range ns.Items {
				item := b.Items.Get(uint32(itemID))
				if item == nil {
					continue
				}
				if name := b.NameText(item.Name); name != "" {
					dropped = append(dropped, nsName+"."+name)
				}
			}
			continue
		}
		keptNS = append(keptNS, nsID)
		kept := ns.Items[:0]
		for _, itemID := range ns.Items {
			item := b.Items.Get(uint32(itemID))
			if item == nil {
				continue
			}
			if keepAttrs(b, item.Attrs, caps, reporter) {
				kept = append(kept, itemID)
				continue
			}
			if name := b.NameText(item.Name); name != "" {
				dropped = append(dropped, nsName+"."+name)
			}
		}
		ns.Items = kept
	}
	pkg.Namespaces = keptNS
	return dropped
}

func keepAttrs(b *ast.Builder, attrs []ast.Attr, caps Capabilities, reporter diag.Reporter) bool {
	keep := true
	for _, attr := range attrs {
		name := b.StringsInterner.MustLookup(attr.Name)
		if name != TargetAttr {
			reporter.Report(diag.TypeUnknownAnnotation, diag.SevWarning, attr.Span,
				fmt.Sprintf("unknown attribute @%s", name), nil)
			continue
		}
		if !caps.Has(attr.Arg) {
			keep = false
		}
	}
	return keep
}
