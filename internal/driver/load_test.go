package driver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"quill/internal/diag"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, text := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func TestListSourceFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"zeta.ql":          "",
		"alpha.ql":         "",
		"sub/nested.ql":    "",
		"notes.txt":        "ignored",
		"sub/deep/last.ql": "",
	})
	files, err := ListSourceFiles(dir)
	if err != nil {
		t.Fatalf("ListSourceFiles: %v", err)
	}
	want := []string{"alpha.ql", "sub/deep/last.ql", "sub/nested.ql", "zeta.ql"}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != filepath.FromSlash(want[i]) {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestLoadSourcesKeepsOrderAndText(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.ql": "namespace B {}",
		"a.ql": "namespace A {}",
	})
	bag := diag.NewBag(8)
	sources, err := LoadSources(context.Background(), dir, 4, bag)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", bag.Items())
	}
	if len(sources) != 2 || sources[0].Name != "a.ql" || sources[1].Name != "b.ql" {
		t.Fatalf("sources = %+v", sources)
	}
	if sources[0].Text != "namespace A {}" {
		t.Errorf("text = %q", sources[0].Text)
	}
}

func TestLoadSourcesMissingDir(t *testing.T) {
	bag := diag.NewBag(8)
	_, err := LoadSources(context.Background(), filepath.Join(t.TempDir(), "nope"), 1, bag)
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestLoadSourcesEmptyDir(t *testing.T) {
	bag := diag.NewBag(8)
	sources, err := LoadSources(context.Background(), t.TempDir(), 0, bag)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if len(sources) != 0 || bag.Len() != 0 {
		t.Fatalf("sources = %v, diags = %v", sources, bag.Items())
	}
}
