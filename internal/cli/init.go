package cli

import (
	"fmt"

	"github.com/brandonbloom/release/internal/config"
	"github.com/brandonbloom/release/internal/gitutil"
	"github.com/brandonbloom/release/internal/project"
	"github.com/brandonbloom/release/internal/release"
	"github.com/spf13/cobra"
)

type initOptions struct {
	force             bool
	integrationBranch string
	markerPath        string
	testRun           string
	prTool            string
}

func newInitCommand(root *rootOptions) *cobra.Command {
	opts := &initOptions{}
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default " + config.FileName + " at the repository root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, root, opts)
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&opts.force, "force", false, "overwrite an existing config")
	flags.StringVar(&opts.integrationBranch, "integration-branch", "", "branch releases are started from")
	flags.StringVar(&opts.markerPath, "marker", "", "file holding the version marker")
	flags.StringVar(&opts.testRun, "test", "", "shell command that must pass before finalizing")
	flags.StringVar(&opts.prTool, "pr-tool", "", "pull request tool: gh, hub, or none")
	return cmd
}

func runInit(cmd *cobra.Command, root *rootOptions, opts *initOptions) error {
	dir, err := root.workDir()
	if err != nil {
		return err
	}
	top, err := gitutil.TopLevel(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("%w: %w", release.ErrRepositoryQuery, err)
	}

	cfg := config.Default()
	if opts.integrationBranch != "" {
		cfg.IntegrationBranch = opts.integrationBranch
	}
	if opts.markerPath != "" {
		cfg.Marker = config.MarkerBlock{Path: opts.markerPath}
	}
	if opts.testRun != "" {
		cfg.Test.Run = opts.testRun
	}
	if opts.prTool != "" {
		cfg.PullRequest.Tool = opts.prTool
	}
	cfg, err = config.Normalize(cfg)
	if err != nil {
		return &usageError{err: err}
	}

	path, err := project.WriteConfig(top, cfg, opts.force)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
