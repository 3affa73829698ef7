package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"quill/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [path]",
	Short: "Check a quill project",
	Long:  "Check compiles the project and reports diagnostics. Verdicts for unchanged trees replay from the disk cache.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().Bool("no-cache", false, "ignore the verdict cache")
	checkCmd.Flags().Bool("clear-cache", false, "drop every cached verdict first")
	checkCmd.Flags().Bool("json", false, "emit diagnostics as JSON")
}

func runCheck(cmd *cobra.Command, args []string) error {
	rootDir, err := resolveProjectDir(args)
	if err != nil {
		return err
	}

	buildOpts, err := buildOptionsFromFlags(cmd)
	if err != nil {
		return err
	}
	noCache, _ := cmd.Flags().GetBool("no-cache")
	clearCache, _ := cmd.Flags().GetBool("clear-cache")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	cache, cacheErr := driver.OpenDiskCache("quill")
	if cacheErr != nil {
		// A broken cache dir degrades to uncached checks.
		cache = nil
	}
	if clearCache {
		if err := cache.DropAll(); err != nil {
			return err
		}
	}

	res, err := driver.Check(cmd.Context(), rootDir, driver.CheckOptions{
		BuildOptions: buildOpts,
		Cache:        cache,
		NoCache:      noCache,
	})
	if err != nil {
		return err
	}

	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings && buildOpts.Timer != nil {
		fmt.Fprint(os.Stderr, buildOpts.Timer.Summary())
	}

	if res.FromCache {
		for _, cd := range res.Cached {
			fmt.Fprintln(os.Stderr, cd.Render())
		}
		if res.Broken {
			return errDiagnosticsReported
		}
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "ok (cached)")
		}
		return nil
	}

	printed := reportBuild(cmd, res.Build)
	if res.Broken {
		return errDiagnosticsReported
	}
	if !quiet && !printed {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
	}
	return nil
}
