package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"quill/internal/diag"
	"quill/internal/project"
	"quill/internal/source"
)

// CheckOptions configures a cached project check.
type CheckOptions struct {
	BuildOptions
	Cache   *DiskCache
	NoCache bool
}

// CheckResult is the outcome of Check. Either Cached holds a replayed
// verdict (FromCache true) or Build holds a fresh build.
type CheckResult struct {
	FromCache bool
	Broken    bool
	Digest    project.Digest
	Cached    []CachedDiagnostic
	Build     *BuildResult
}

// Check verifies the project rooted at rootDir. When the project digest
// matches a cached verdict the diagnostics replay from disk without
// compiling anything; otherwise a full build runs and its verdict is
// stored for next time.
func Check(ctx context.Context, rootDir string, opts CheckOptions) (*CheckResult, error) {
	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	digest, digErr := ProjectDigest(ctx, rootDir, opts.Jobs)

	useCache := opts.Cache != nil && !opts.NoCache && digErr == nil
	if useCache {
		cacheStart := time.Now()
		var verdict CachedVerdict
		if ok, err := opts.Cache.Get(digest, &verdict); err == nil && ok {
			emit(opts.Progress, verdict.Name, StageCache, StatusDone, nil, time.Since(cacheStart))
			return &CheckResult{
				FromCache: true,
				Broken:    verdict.Broken,
				Digest:    digest,
				Cached:    verdict.Diagnostics,
			}, nil
		}
	}

	res, err := Build(ctx, rootDir, opts.BuildOptions)
	if err != nil {
		return nil, err
	}
	out := &CheckResult{
		Broken: res.HasErrors(),
		Digest: digest,
		Build:  res,
	}
	if useCache && res.Root != nil && res.Meta.Len() == 0 {
		verdict := &CachedVerdict{
			Schema:      cacheSchemaVersion,
			Name:        res.Root.Name,
			Digest:      digest,
			Broken:      out.Broken,
			Diagnostics: collectDiagnostics(res, rootDir),
			Dropped:     res.Root.Unit.Dropped,
		}
		_ = opts.Cache.Put(digest, verdict)
	}
	return out, nil
}

// collectDiagnostics flattens every project's diagnostics, rewriting file
// names relative to the root so a replayed verdict points at real paths.
func collectDiagnostics(res *BuildResult, rootDir string) []CachedDiagnostic {
	var out []CachedDiagnostic
	for _, p := range res.Projects {
		flat := flattenDiagnostics(p.Unit.Errors, p.Unit.Sources)
		for _, cd := range flat {
			if cd.File != "" && cd.File != source.EntryName {
				if rel, err := filepath.Rel(rootDir, filepath.Join(p.Dir, cd.File)); err == nil {
					cd.File = rel
				}
			}
			out = append(out, cd)
		}
	}
	return out
}

// ProjectDigest computes the digest of the project closure at rootDir
// without compiling it. Unreadable files, bad manifests, and dependency
// cycles make the digest undefined and return an error.
func ProjectDigest(ctx context.Context, rootDir string, jobs int) (project.Digest, error) {
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return project.Digest{}, err
	}
	w := &digestWalker{
		jobs:   jobs,
		known:  make(map[string]project.Digest),
		onPath: make(map[string]bool),
	}
	return w.walk(ctx, abs)
}

type digestWalker struct {
	jobs   int
	known  map[string]project.Digest
	onPath map[string]bool
}

func (w *digestWalker) walk(ctx context.Context, dir string) (project.Digest, error) {
	if d, ok := w.known[dir]; ok {
		return d, nil
	}
	if w.onPath[dir] {
		return project.Digest{}, fmt.Errorf("dependency cycle through %s", dir)
	}
	w.onPath[dir] = true
	defer delete(w.onPath, dir)

	manifest, err := project.Load(filepath.Join(dir, project.ManifestName))
	if err != nil {
		return project.Digest{}, err
	}
	var depDigests []project.Digest
	for _, dep := range manifest.DependencyList() {
		d, err := w.walk(ctx, filepath.Clean(filepath.Join(dir, dep.Path)))
		if err != nil {
			return project.Digest{}, err
		}
		depDigests = append(depDigests, d)
	}

	bag := diag.NewBag(16)
	sources, err := LoadSources(ctx, dir, w.jobs, bag)
	if err != nil {
		return project.Digest{}, err
	}
	if bag.Len() > 0 {
		return project.Digest{}, fmt.Errorf("unreadable sources under %s", dir)
	}

	d := sourcesDigest(manifest.Package.Name, sources, depDigests)
	w.known[dir] = d
	return d, nil
}
