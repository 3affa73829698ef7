package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"quill/internal/diag"
	"quill/internal/project"
	"quill/internal/source"
)

// Bump when CachedVerdict changes shape.
const cacheSchemaVersion uint16 = 1

// DiskCache stores check verdicts keyed by project digest.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedDiagnostic is one diagnostic flattened to resolved positions so it
// can be replayed without the original sources.
type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Message  string
	File     string
	Line     uint32
	Col      uint32
}

// CachedVerdict is the result of checking a project, stored on disk for
// fast re-checks of unchanged trees.
type CachedVerdict struct {
	Schema uint16

	Name   string
	Digest project.Digest

	Broken      bool
	Diagnostics []CachedDiagnostic
	Dropped     []string
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location for app, honouring XDG_CACHE_HOME.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Verdicts live in their own subdirectory so cleanup stays easy.
	return filepath.Join(c.dir, "verdicts", hexKey+".mp")
}

// Put serializes and writes a verdict to the disk cache atomically.
func (c *DiskCache) Put(key project.Digest, verdict *CachedVerdict) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(verdict); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a verdict from the disk cache. A schema mismatch counts as a
// miss so format changes invalidate old entries for free.
func (c *DiskCache) Get(key project.Digest, out *CachedVerdict) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != cacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the whole cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// flattenDiagnostics resolves spans against the source map so the verdict
// stays meaningful after the sources change or disappear.
func flattenDiagnostics(items []diag.Diagnostic, sm *source.SourceMap) []CachedDiagnostic {
	out := make([]CachedDiagnostic, 0, len(items))
	for _, d := range items {
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
		}
		if src, start, _ := sm.Resolve(d.Primary); src != nil {
			cd.File = src.Name
			cd.Line = start.Line
			cd.Col = start.Col
		}
		out = append(out, cd)
	}
	return out
}

// Render formats a cached diagnostic the way the pretty printer heads its
// output: name:line:col: SEVERITY CODE: message.
func (d CachedDiagnostic) Render() string {
	head := ""
	if d.File != "" {
		head = fmt.Sprintf("%s:%d:%d: ", d.File, d.Line, d.Col)
	}
	return fmt.Sprintf("%s%s %s: %s", head,
		diag.Severity(d.Severity).String(), diag.Code(d.Code).String(), d.Message)
}
