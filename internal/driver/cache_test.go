package driver

import (
	"strings"
	"testing"

	"quill/internal/diag"
	"quill/internal/project"
)

func TestDiskCacheRoundTrip(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	key := project.HashBytes([]byte("demo"))
	in := &CachedVerdict{
		Schema: cacheSchemaVersion,
		Name:   "demo",
		Digest: key,
		Broken: true,
		Diagnostics: []CachedDiagnostic{{
			Severity: uint8(diag.SevError),
			Code:     uint16(diag.ResNotFound),
			Message:  `name "oops" not found`,
			File:     "main.ql",
			Line:     3,
			Col:      22,
		}},
		Dropped: []string{"Std.Core.Fork"},
	}
	if err := cache.Put(key, in); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var out CachedVerdict
	ok, err := cache.Get(key, &out)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if out.Name != "demo" || !out.Broken || len(out.Diagnostics) != 1 {
		t.Fatalf("verdict = %+v", out)
	}
	if out.Diagnostics[0] != in.Diagnostics[0] {
		t.Errorf("diagnostic = %+v", out.Diagnostics[0])
	}
	if len(out.Dropped) != 1 || out.Dropped[0] != "Std.Core.Fork" {
		t.Errorf("dropped = %v", out.Dropped)
	}
}

func TestDiskCacheMissOnUnknownKey(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	var out CachedVerdict
	ok, err := cache.Get(project.HashBytes([]byte("absent")), &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected a miss")
	}
}

func TestDiskCacheSchemaMismatchIsMiss(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	key := project.HashBytes([]byte("old"))
	if err := cache.Put(key, &CachedVerdict{Schema: cacheSchemaVersion + 1}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var out CachedVerdict
	ok, err := cache.Get(key, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("a stale schema must read as a miss")
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenDiskCacheAt(dir)
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	key := project.HashBytes([]byte("x"))
	if err := cache.Put(key, &CachedVerdict{Schema: cacheSchemaVersion}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	var out CachedVerdict
	if ok, _ := cache.Get(key, &out); ok {
		t.Fatal("cache should be empty after DropAll")
	}
}

func TestNilDiskCacheIsInert(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put(project.Digest{}, &CachedVerdict{}); err != nil {
		t.Fatalf("Put on nil cache: %v", err)
	}
	var out CachedVerdict
	if ok, err := cache.Get(project.Digest{}, &out); ok || err != nil {
		t.Fatalf("Get on nil cache: ok=%v err=%v", ok, err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll on nil cache: %v", err)
	}
}

func TestCachedDiagnosticRender(t *testing.T) {
	cd := CachedDiagnostic{
		Severity: uint8(diag.SevError),
		Code:     uint16(diag.ResNotFound),
		Message:  `name "oops" not found`,
		File:     "main.ql",
		Line:     3,
		Col:      22,
	}
	got := cd.Render()
	if !strings.HasPrefix(got, "main.ql:3:22: ERROR "+diag.ResNotFound.String()+":") {
		t.Errorf("Render() = %q", got)
	}

	cd.File = ""
	if got := cd.Render(); strings.Contains(got, ":0:0") {
		t.Errorf("fileless render should drop the location: %q", got)
	}
}
