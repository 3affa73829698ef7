package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"quill/internal/diag"
	"quill/internal/source"
)

// SourceExt is the file extension of quill sources.
const SourceExt = ".ql"

// ListSourceFiles returns the sorted paths of every *.ql file under dir,
// relative to dir.
func ListSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, SourceExt) {
			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				rel = path
			}
			files = append(files, rel)
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// LoadSources reads every *.ql file under dir concurrently. Unreadable
// files become IOLoadFileError diagnostics in the returned bag rather than
// failing the load; the returned sources keep the listing order.
func LoadSources(ctx context.Context, dir string, jobs int, bag *diag.Bag) ([]source.NamedSource, error) {
	files, err := ListSourceFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Per-index slots keep the results ordered without a mutex.
	loaded := make([]source.NamedSource, len(files))
	loadErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, rel := range files {
		i, rel := i, rel
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			contents, readErr := os.ReadFile(filepath.Join(dir, rel))
			if readErr != nil {
				loadErrs[i] = readErr
				return nil
			}
			loaded[i] = source.NamedSource{Name: rel, Text: string(contents)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]source.NamedSource, 0, len(files))
	for i, rel := range files {
		if loadErrs[i] != nil {
			bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{},
				"failed to load "+rel+": "+loadErrs[i].Error()))
			continue
		}
		out = append(out, loaded[i])
	}
	return out, nil
}
