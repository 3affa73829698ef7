package compile

import (
	_ "embed"

	"quill/internal/source"
)

//go:embed corelib/core.ql
var coreSource string

//go:embed corelib/math.ql
var mathSource string

//go:embed corelib/std.ql
var stdSource string

// Core compiles the builtin core library as the store's first unit. The
// prelude namespaces live here, so every later compilation ingests this
// unit implicitly.
func Core(store *PackageStore, opts Options) *CompileUnit {
	if store.Len() != 0 {
		panic("compile: core must be the store's first unit")
	}
	if opts.Name == "" {
		opts.Name = "core"
	}
	opts.Entry = ""
	return Compile(store, nil, []source.NamedSource{
		{Name: "core.ql", Text: coreSource},
		{Name: "math.ql", Text: mathSource},
	}, opts)
}

// Std compiles the standard library against the core already in the store.
func Std(store *PackageStore, opts Options) *CompileUnit {
	if opts.Name == "" {
		opts.Name = "std"
	}
	opts.Entry = ""
	return Compile(store, nil, []source.NamedSource{
		{Name: "std.ql", Text: stdSource},
	}, opts)
}
