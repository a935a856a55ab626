package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wbrown/img2ascii"
)

type buildOpts struct {
	outputDir string
	workers   int
	only      []string
}

func newBuildCmd() *cobra.Command {
	var opts buildOpts

	cmd := &cobra.Command{
		Use:   "build [config.toml]",
		Short: "Build alphabet profiles from a TOML config",
		Long: `Build renders every character of each configured profile, samples it into a
lightness vector, normalizes the vectors per dimension, optionally keeps only
the most distinct characters, and saves the profile as JSON (or zstd
compressed JSON for paths ending in .zst).

A profile that fails, for example because its font cannot be found, is
reported and skipped; the remaining profiles are still built.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "override the config's output directory")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent glyph renders (default: config or GOMAXPROCS)")
	cmd.Flags().StringSliceVar(&opts.only, "only", nil, "build only the named profiles")

	return cmd
}

func runBuild(cmd *cobra.Command, path string, opts buildOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := img2ascii.LoadBuildConfig(path)
	if err != nil {
		return err
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if len(opts.only) > 0 {
		if err := filterProfiles(cfg, opts.only); err != nil {
			return err
		}
	}

	prog := newProgress(logger)
	results, err := img2ascii.BuildAll(ctx, cfg, logger)

	built := 0
	for _, r := range results {
		if r.Err == nil {
			built++
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d chars\t%s\n", r.Name, len(r.Profile.Characters), r.Output)
		}
	}
	prog.done(fmt.Sprintf("Built %d of %d profiles", built, len(cfg.Profiles)))
	return err
}

// filterProfiles keeps only the named profiles of cfg.
func filterProfiles(cfg *img2ascii.BuildConfig, names []string) error {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	kept := cfg.Profiles[:0]
	for _, p := range cfg.Profiles {
		if want[p.Name] {
			kept = append(kept, p)
			delete(want, p.Name)
		}
	}
	for n := range want {
		return fmt.Errorf("no profile named %q in config", n)
	}
	cfg.Profiles = kept
	return nil
}
