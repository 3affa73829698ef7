package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestString(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	color.NoColor = true
	Version = "1.2.3"

	GitCommit, BuildDate = "", ""
	if got := String(); got != "quill 1.2.3" {
		t.Errorf("String() = %q", got)
	}

	GitCommit = "abc123"
	if got := String(); got != "quill 1.2.3 (abc123)" {
		t.Errorf("String() = %q", got)
	}

	BuildDate = "2026-08-30"
	if got := String(); got != "quill 1.2.3 (abc123, 2026-08-30)" {
		t.Errorf("String() = %q", got)
	}

	GitCommit = ""
	if got := String(); got != "quill 1.2.3 (2026-08-30)" {
		t.Errorf("String() = %q", got)
	}
}

func TestDefaultVersionSet(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	if !strings.Contains(String(), "quill") {
		t.Errorf("String() = %q, want the binary name", String())
	}
}
