package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"quill/internal/compile"
	"quill/internal/conditional"
	"quill/internal/diag"
	"quill/internal/observ"
	"quill/internal/project"
	"quill/internal/source"
)

// BuildOptions configures a whole-project build. Zero-valued fields fall
// back to the root manifest's [build] section, then to defaults.
type BuildOptions struct {
	Jobs           int
	MaxDiagnostics int
	// Entry overrides the root manifest's entry expression.
	Entry    string
	Progress ProgressSink
	Timer    *observ.Timer
}

const defaultMaxDiagnostics = 1000

// ProjectResult is one built project.
type ProjectResult struct {
	Name   string
	Dir    string
	Digest project.Digest
	Unit   *compile.CompileUnit
}

// Bag rebags the unit's diagnostics for the formatters.
func (p *ProjectResult) Bag() *diag.Bag {
	bag := diag.NewBag(max(len(p.Unit.Errors), 1))
	for _, d := range p.Unit.Errors {
		bag.Add(d)
	}
	return bag
}

// BuildResult is the outcome of building a project and its dependency
// closure.
type BuildResult struct {
	Store *compile.PackageStore
	// Projects lists the built projects in dependency order, root last.
	Projects []*ProjectResult
	Root     *ProjectResult
	// Meta holds project-level diagnostics: bad manifests, dependency
	// cycles, unreadable files.
	Meta *diag.Bag
}

// HasErrors reports whether any project or the project graph itself has
// errors.
func (r *BuildResult) HasErrors() bool {
	if r.Meta.HasErrors() {
		return true
	}
	for _, p := range r.Projects {
		if p.Unit != nil && p.Unit.HasErrors() {
			return true
		}
	}
	return false
}

// Build compiles the project rooted at rootDir together with its
// dependency closure. Dependencies compile before their dependents; a
// dependency shared by several projects compiles once. Compilation
// problems land in the per-project units and in Meta, not in the returned
// error, which is reserved for outside-world failures.
func Build(ctx context.Context, rootDir string, opts BuildOptions) (*BuildResult, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{Meta: diag.NewBag(defaultMaxDiagnostics)}

	rootManifest, err := project.Load(filepath.Join(abs, project.ManifestName))
	if err != nil {
		result.Meta.Add(diag.NewError(diag.ProjBadManifest, source.Span{}, err.Error()))
		return result, nil
	}
	if opts.Jobs <= 0 {
		opts.Jobs = rootManifest.Build.Jobs
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = rootManifest.Build.MaxDiagnostics
	}
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = defaultMaxDiagnostics
	}

	// The root manifest decides the target capabilities for the whole
	// build, builtins included. Dependency [target] sections are ignored.
	caps := conditional.NewCapabilities(rootManifest.Target.Capabilities...)

	b := &treeBuilder{
		opts:   opts,
		caps:   caps,
		store:  compile.NewPackageStore(),
		meta:   result.Meta,
		byDir:  make(map[string]*ProjectResult),
		onPath: make(map[string]bool),
	}

	builtins := compile.Options{Capabilities: caps, MaxDiagnostics: opts.MaxDiagnostics}
	b.timed("builtins", func() string {
		compile.Core(b.store, builtins)
		compile.Std(b.store, builtins)
		return ""
	})

	result.Root = b.build(ctx, abs, true)
	result.Store = b.store
	result.Projects = b.order
	return result, ctx.Err()
}

type treeBuilder struct {
	opts   BuildOptions
	caps   conditional.Capabilities
	store  *compile.PackageStore
	meta   *diag.Bag
	byDir  map[string]*ProjectResult
	onPath map[string]bool
	order  []*ProjectResult
}

func (b *treeBuilder) timed(name string, fn func() string) {
	if b.opts.Timer == nil {
		fn()
		return
	}
	b.opts.Timer.Measure(name, fn)
}

// build compiles the project at dir, recursing into its dependencies
// first. Returns nil when the project could not be built at all; the
// reason is already in meta.
func (b *treeBuilder) build(ctx context.Context, dir string, isRoot bool) *ProjectResult {
	if r, ok := b.byDir[dir]; ok {
		return r
	}
	if b.onPath[dir] {
		b.meta.Add(diag.NewError(diag.ProjDependencyOrder, source.Span{},
			fmt.Sprintf("dependency cycle through %s", dir)))
		return nil
	}
	b.onPath[dir] = true
	defer delete(b.onPath, dir)

	manifest, err := project.Load(filepath.Join(dir, project.ManifestName))
	if err != nil {
		b.meta.Add(diag.NewError(diag.ProjBadManifest, source.Span{}, err.Error()))
		return nil
	}
	name := manifest.Package.Name

	var deps []compile.Dependency
	var depDigests []project.Digest
	for _, dep := range manifest.DependencyList() {
		child := b.build(ctx, filepath.Clean(filepath.Join(dir, dep.Path)), false)
		if child == nil || child.Unit == nil {
			b.meta.Add(diag.NewError(diag.ProjMissingDep, source.Span{},
				fmt.Sprintf("dependency %q of %s did not build", dep.Alias, name)))
			continue
		}
		deps = append(deps, compile.Dependency{ID: child.Unit.ID, Alias: dep.Alias})
		depDigests = append(depDigests, child.Digest)
	}

	emit(b.opts.Progress, name, StageLoad, StatusWorking, nil, 0)
	loadStart := time.Now()
	sources, err := LoadSources(ctx, dir, b.opts.Jobs, b.meta)
	if err != nil {
		emit(b.opts.Progress, name, StageLoad, StatusError, err, time.Since(loadStart))
		b.meta.Add(diag.NewError(diag.IOLoadFileError, source.Span{}, err.Error()))
		return nil
	}
	emit(b.opts.Progress, name, StageLoad, StatusDone, nil, time.Since(loadStart))

	entry := manifest.Package.Entry
	if isRoot && b.opts.Entry != "" {
		entry = b.opts.Entry
	}
	if !isRoot {
		// Entry expressions belong to the build target, not to libraries.
		entry = ""
	}

	emit(b.opts.Progress, name, StageCompile, StatusWorking, nil, 0)
	compileStart := time.Now()
	var unit *compile.CompileUnit
	b.timed("compile "+name, func() string {
		unit = compile.Compile(b.store, deps, sources, compile.Options{
			Name:           name,
			Entry:          entry,
			Capabilities:   b.caps,
			MaxDiagnostics: b.opts.MaxDiagnostics,
		})
		return fmt.Sprintf("%d diagnostics", len(unit.Errors))
	})
	status := StatusDone
	if unit.HasErrors() {
		status = StatusError
	}
	emit(b.opts.Progress, name, StageCompile, status, nil, time.Since(compileStart))

	r := &ProjectResult{
		Name:   name,
		Dir:    dir,
		Digest: sourcesDigest(name, sources, depDigests),
		Unit:   unit,
	}
	b.byDir[dir] = r
	b.order = append(b.order, r)
	return r
}

// sourcesDigest hashes the package name, every file name and body in
// listing order, then folds in the dependency digests.
func sourcesDigest(name string, sources []source.NamedSource, deps []project.Digest) project.Digest {
	content := project.HashBytes([]byte(name))
	for _, src := range sources {
		content = project.Combine(content,
			project.HashBytes([]byte(src.Name)),
			project.HashBytes([]byte(src.Text)))
	}
	return project.Combine(content, deps...)
}
