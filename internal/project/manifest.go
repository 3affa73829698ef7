package project

import (
	"fmt"
	"path/filepath"
	"sort"
	"unicode"

	"github.com/BurntSushi/toml"
)

// Manifest is the decoded form of a quill.toml file.
type Manifest struct {
	Package      PackageSection    `toml:"package"`
	Dependencies map[string]string `toml:"dependencies"`
	Target       TargetSection     `toml:"target"`
	Build        BuildSection      `toml:"build"`

	// Dir is the directory the manifest was loaded from. Not part of
	// the file itself; filled in by Load.
	Dir string `toml:"-"`
}

type PackageSection struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Entry   string `toml:"entry"`
}

type TargetSection struct {
	Capabilities []string `toml:"capabilities"`
}

type BuildSection struct {
	MaxDiagnostics int `toml:"max_diagnostics"`
	Jobs           int `toml:"jobs"`
}

// Dependency names an external package the project depends on. Alias is
// the name the sources use in qualified paths; Path points at the
// dependency's project directory, relative to the manifest.
type Dependency struct {
	Alias string
	Path  string
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return &m, nil
}

// Validate checks the manifest invariants that decoding cannot enforce.
func (m *Manifest) Validate() error {
	if m.Package.Name == "" {
		return fmt.Errorf("[package] name is required")
	}
	if !IsValidPackageName(m.Package.Name) {
		return fmt.Errorf("invalid package name %q", m.Package.Name)
	}
	for alias, dep := range m.Dependencies {
		if !isValidIdent(alias) {
			return fmt.Errorf("invalid dependency alias %q", alias)
		}
		if alias == "core" || alias == "std" {
			return fmt.Errorf("dependency alias %q shadows a builtin package", alias)
		}
		if dep == "" {
			return fmt.Errorf("dependency %q has an empty path", alias)
		}
	}
	if m.Build.MaxDiagnostics < 0 {
		return fmt.Errorf("[build] max_diagnostics must not be negative")
	}
	if m.Build.Jobs < 0 {
		return fmt.Errorf("[build] jobs must not be negative")
	}
	return nil
}

// DependencyList returns the dependencies sorted by alias so that
// downstream ordering is deterministic.
func (m *Manifest) DependencyList() []Dependency {
	deps := make([]Dependency, 0, len(m.Dependencies))
	for alias, path := range m.Dependencies {
		deps = append(deps, Dependency{Alias: alias, Path: path})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Alias < deps[j].Alias })
	return deps
}

// IsValidPackageName reports whether name is a dot-separated sequence of
// identifiers, e.g. "Geo" or "Geo.Shapes".
func IsValidPackageName(name string) bool {
	if name == "" {
		return false
	}
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			if !isValidIdent(name[start:i]) {
				return false
			}
			start = i + 1
		}
	}
	return true
}

func isValidIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
