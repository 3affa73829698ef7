package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"quill/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Scaffold a quill project in the current directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return err
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			name = defaultProjectName(dir)
		}
		if !project.IsValidPackageName(name) {
			return fmt.Errorf("invalid project name %q (expected dotted identifiers, e.g. My.App)", name)
		}

		manifestPath := filepath.Join(dir, project.ManifestName)
		if _, err := os.Stat(manifestPath); err == nil {
			return fmt.Errorf("%s already exists in %s", project.ManifestName, dir)
		} else if !os.IsNotExist(err) {
			return err
		}

		if err := writeProjectSkeleton(dir, name); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "initialized %s in %s\n", name, dir)
		return nil
	},
}

// defaultProjectName derives a package name from the directory basename,
// keeping only characters valid in identifiers.
func defaultProjectName(dir string) string {
	base := filepath.Base(dir)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() > 0 {
				b.WriteRune(r)
			}
		}
	}
	if b.Len() == 0 {
		return "App"
	}
	name := b.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

func writeProjectSkeleton(dir, name string) error {
	manifest := fmt.Sprintf(`[package]
name = "%s"
version = "0.1.0"
`, name)
	if err := os.WriteFile(filepath.Join(dir, project.ManifestName), []byte(manifest), 0o644); err != nil {
		return err
	}

	mainSource := fmt.Sprintf(`namespace %s {

function Main() : Unit {
    ()
}

}
`, name)
	return os.WriteFile(filepath.Join(dir, "main.ql"), []byte(mainSource), 0o644)
}
