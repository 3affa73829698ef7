package compile

import (
	"quill/internal/ast"
	"quill/internal/checker"
	"quill/internal/diag"
	"quill/internal/hir"
	"quill/internal/resolve"
	"quill/internal/source"
	"quill/internal/types"
)

// CompileUnit is one fully compiled package: the lowered HIR plus everything
// a dependent compilation or an incremental caller needs to keep going.
type CompileUnit struct {
	ID   hir.PackageID
	Name string

	// Sources resolves every diagnostic span back to named text.
	Sources *source.SourceMap
	// Builder owns the AST arenas; keeping it lets callers extend the
	// package without renumbering existing nodes.
	Builder *ast.Builder
	Ast     *ast.Package
	Res     *resolve.Result
	Types   *types.Interner
	Check   *checker.Result
	// Assigner continues the HIR id space for incremental relowering.
	Assigner *hir.Assigner
	Package  *hir.Package

	// Errors holds every phase's diagnostics in span order.
	Errors []diag.Diagnostic
	// Dropped lists qualified names removed by conditional compilation;
	// dependent packages report references to them specifically.
	Dropped []string
}

// HasErrors reports whether any phase produced an error.
func (u *CompileUnit) HasErrors() bool {
	for _, d := range u.Errors {
		if d.Severity >= diag.SevError {
			return true
		}
	}
	return false
}
