// Package compile orchestrates the per-package pipeline: parse, strip,
// bind, resolve, check, lower, validate. No phase short-circuits; every
// later phase runs against the best partial result available so one call
// returns as many diagnostics as possible.
package compile

import (
	"quill/internal/ast"
	"quill/internal/checker"
	"quill/internal/conditional"
	"quill/internal/diag"
	"quill/internal/hir"
	"quill/internal/lexer"
	"quill/internal/lower"
	"quill/internal/parser"
	"quill/internal/resolve"
	"quill/internal/source"
	"quill/internal/types"
)

// Dependency names a previously compiled package, optionally remapped under
// an alias.
type Dependency struct {
	ID    hir.PackageID
	Alias string
}

// Options configures one compilation.
type Options struct {
	// Name labels the package in diagnostics and dropped-name reports.
	Name string
	// Entry is an optional expression compiled as the package entry point.
	Entry string
	// Capabilities gates conditionally compiled items.
	Capabilities conditional.Capabilities
	// Features selects language features; zero means the defaults.
	Features lexer.Features
	// MaxDiagnostics bounds the error list; zero means the default.
	MaxDiagnostics int
}

const defaultMaxDiagnostics = 1000

// Compile runs the pipeline over sources, inserts the resulting unit into
// the store, and returns it. The core library, if present in the store, is
// always ingested first; deps follow in caller order. Dependencies must
// already be in the store.
func Compile(store *PackageStore, deps []Dependency, sources []source.NamedSource, opts Options) *CompileUnit {
	if opts.MaxDiagnostics == 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}
	if opts.Features == 0 {
		opts.Features = lexer.DefaultFeatures
	}
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.BagReporter{Bag: bag}

	entryName := ""
	if opts.Entry != "" {
		sources = append(sources[:len(sources):len(sources)],
			source.NamedSource{Name: source.EntryName, Text: opts.Entry})
		entryName = source.EntryName
	}
	m := source.NewSourceMap(sources, entryName)

	b := ast.NewBuilder(ast.Hints{}, nil)
	pkg := parser.ParsePackage(m, b, parser.Options{Reporter: reporter, Features: opts.Features})

	dropped := conditional.Strip(b, pkg, opts.Capabilities, reporter)
	ast.Validate(b, pkg, reporter)

	lookup := func(id hir.PackageID) *hir.Package {
		if u := store.Get(id); u != nil {
			return u.Package
		}
		return nil
	}
	gtb := resolve.NewGlobalTableBuilder(b, reporter)
	if core := store.Core(); core != nil {
		gtb.AddExternalPackage(core.ID, "", core.Name, core.Package, core.Dropped, lookup)
	}
	for _, dep := range deps {
		if dep.ID == hir.CorePackageID && dep.Alias == "" {
			continue // already ingested
		}
		u := store.Get(dep.ID)
		if u == nil {
			diag.ReportError(reporter, diag.ProjMissingDep, source.Span{},
				"dependency package is not in the store")
			continue
		}
		gtb.AddExternalPackage(u.ID, dep.Alias, u.Name, u.Package, u.Dropped, lookup)
	}
	gtb.BindLocalPackage(pkg)
	gtb.RecordLocalDropped(dropped)
	res := gtb.IntoResolver().ResolvePackage(pkg)

	tys := types.NewInterner()
	check := checker.Check(pkg, checker.Options{
		Builder:  b,
		Res:      res,
		Types:    tys,
		Reporter: reporter,
		External: externalSigs(store, tys),
	})

	assigner := hir.NewAssigner()
	lowered := lower.New(lower.Options{
		Builder:  b,
		Res:      res,
		Check:    check,
		Assigner: assigner,
	}).Package(pkg)
	hir.Validate(lowered, reporter)

	bag.Sort()
	unit := &CompileUnit{
		ID:       store.NextID(),
		Name:     opts.Name,
		Sources:  m,
		Builder:  b,
		Ast:      pkg,
		Res:      res,
		Types:    tys,
		Check:    check,
		Assigner: assigner,
		Package:  lowered,
		Errors:   bag.Items(),
		Dropped:  dropped,
	}
	store.Insert(unit)
	return unit
}

// externalSigs resolves cross-package item signatures, re-interning each
// dependency's types into the current compilation's interner.
func externalSigs(store *PackageStore, dst *types.Interner) checker.ExternalSigs {
	return func(ref hir.ItemID) (checker.Sig, bool) {
		u := store.Get(ref.Package)
		if u == nil {
			return checker.Sig{}, false
		}
		item := u.Package.Item(ref.Item)
		if item == nil {
			return checker.Sig{}, false
		}
		switch item.Kind {
		case hir.ItemCallable:
			sig := checker.Sig{Kind: hir.ItemCallable, Output: types.UnitTypeID}
			if item.Callable != nil {
				for _, p := range item.Callable.Params {
					sig.Params = append(sig.Params, convertType(u.Types, dst, p.Type, u.ID))
				}
				sig.Output = convertType(u.Types, dst, item.Callable.Output, u.ID)
			}
			sig.Value = dst.Arrow(dst.Tuple(sig.Params), sig.Output)
			return sig, true
		case hir.ItemNewtype:
			under := types.ErrTypeID
			if item.Newtype != nil {
				under = convertType(u.Types, dst, item.Newtype.Underlying, u.ID)
			}
			named := dst.Named(uint32(u.ID), uint32(item.ID), item.Name)
			return checker.Sig{
				Kind:       hir.ItemNewtype,
				Params:     []types.TypeID{under},
				Output:     named,
				Underlying: under,
				Value:      dst.Arrow(under, named),
			}, true
		default:
			return checker.Sig{}, false
		}
	}
}

// convertType re-interns a type from one package's interner into another's.
// Package-relative named types are pinned to their owning package on the
// way through.
func convertType(src, dst *types.Interner, id types.TypeID, owner hir.PackageID) types.TypeID {
	t := src.Get(id)
	switch t.Kind {
	case types.KindUnit:
		return types.UnitTypeID
	case types.KindInt:
		return types.IntTypeID
	case types.KindDouble:
		return types.DoubleTypeID
	case types.KindBool:
		return types.BoolTypeID
	case types.KindString:
		return types.StringTypeID
	case types.KindTuple:
		elems := make([]types.TypeID, 0, len(t.Elems))
		for _, e := range t.Elems {
			elems = append(elems, convertType(src, dst, e, owner))
		}
		return dst.Tuple(elems)
	case types.KindArrow:
		return dst.Arrow(convertType(src, dst, t.Arg, owner), convertType(src, dst, t.Ret, owner))
	case types.KindNamed:
		pkg := t.NamedPackage
		if pkg == uint32(hir.NoPackageID) {
			pkg = uint32(owner)
		}
		return dst.Named(pkg, t.NamedItem, t.NamedName)
	default:
		return types.ErrTypeID
	}
}
