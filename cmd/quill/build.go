package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/diagfmt"
	"quill/internal/driver"
	"quill/internal/observ"
	"quill/internal/project"
)

// errDiagnosticsReported signals a failed run whose problems were already
// printed as diagnostics, so main should not print the error again.
var errDiagnosticsReported = errors.New("diagnostics reported")

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Build a quill project",
	Long:  "Build compiles the project at path (default: the enclosing project) together with its dependency closure.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().String("entry", "", "entry expression overriding the manifest")
	buildCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
	buildCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
}

func runBuild(cmd *cobra.Command, args []string) error {
	rootDir, err := resolveProjectDir(args)
	if err != nil {
		return err
	}

	opts, err := buildOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	entry, _ := cmd.Flags().GetString("entry")
	opts.Entry = entry

	uiValue, _ := cmd.Flags().GetString("ui")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	var res *driver.BuildResult
	if shouldUseTUI(uiValue, quiet) {
		res, err = runBuildWithUI(cmd.Context(), "building "+rootDir, rootDir, opts)
	} else {
		res, err = driver.Build(cmd.Context(), rootDir, opts)
	}
	if err != nil {
		return err
	}

	printed := reportBuild(cmd, res)
	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings && opts.Timer != nil {
		fmt.Fprint(os.Stderr, opts.Timer.Summary())
	}
	if res.HasErrors() {
		return errDiagnosticsReported
	}
	if !quiet && !printed {
		fmt.Fprintf(cmd.OutOrStdout(), "built %d package(s)\n", len(res.Projects))
	}
	return nil
}

func resolveProjectDir(args []string) (string, error) {
	start := "."
	if len(args) == 1 {
		start = args[0]
	}
	if _, err := os.Stat(start); err != nil {
		return "", err
	}
	root, ok, err := project.FindProjectRoot(start)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no %s found in %s or any parent directory", project.ManifestName, start)
	}
	return root, nil
}

func buildOptionsFromFlags(cmd *cobra.Command) (driver.BuildOptions, error) {
	flags := cmd.Root().PersistentFlags()
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return driver.BuildOptions{}, err
	}
	maxDiagnostics, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return driver.BuildOptions{}, err
	}
	opts := driver.BuildOptions{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}
	if timings, _ := flags.GetBool("timings"); timings {
		opts.Timer = observ.NewTimer()
	}
	return opts, nil
}

func shouldUseTUI(uiValue string, quiet bool) bool {
	if quiet {
		return false
	}
	switch uiValue {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

// reportBuild prints every diagnostic from the build and reports whether
// anything was printed.
func reportBuild(cmd *cobra.Command, res *driver.BuildResult) bool {
	asJSON, _ := cmd.Flags().GetBool("json")

	printed := false
	for _, d := range res.Meta.Items() {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", d.Severity.String(), d.Code.String(), d.Message)
		printed = true
	}
	for _, p := range res.Projects {
		if len(p.Unit.Errors) == 0 {
			continue
		}
		bag := p.Bag()
		if asJSON {
			if err := diagfmt.JSON(cmd.OutOrStdout(), bag, p.Unit.Sources, diagfmt.JSONOpts{
				IncludePositions: true,
				IncludeNotes:     true,
			}); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
		} else {
			diagfmt.Pretty(os.Stderr, bag, p.Unit.Sources, diagfmt.PrettyOpts{
				Color:     useColor(cmd, os.Stderr),
				Context:   2,
				ShowNotes: true,
			})
		}
		printed = true
	}
	return printed
}
