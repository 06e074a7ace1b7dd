package cli

import (
	"fmt"

	"github.com/brandonbloom/release/internal/gitutil"
	"github.com/brandonbloom/release/internal/marker"
	"github.com/brandonbloom/release/internal/project"
	"github.com/brandonbloom/release/internal/pullrequest"
	"github.com/brandonbloom/release/internal/release"
	"github.com/brandonbloom/release/internal/semver"
	"github.com/brandonbloom/release/internal/testgate"
	"github.com/spf13/cobra"
)

func runRelease(cmd *cobra.Command, opts *rootOptions, part semver.Part) error {
	ctx := cmd.Context()
	proj, err := opts.loadProject(ctx)
	if err != nil {
		return err
	}
	log := opts.logger(cmd.ErrOrStderr())
	log.Debug("loaded project", "root", proj.Root, "config", proj.ConfigPath, "defaults", !proj.HasConfig)

	orch, err := newOrchestrator(cmd, proj, opts)
	if err != nil {
		return err
	}
	res, err := orch.Run(ctx, part)
	if err != nil {
		return err
	}
	printResult(cmd, proj, res)
	return nil
}

func newOrchestrator(cmd *cobra.Command, proj *project.Project, opts *rootOptions) (*release.Orchestrator, error) {
	cfg := proj.Config
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	return release.New(
		release.Settings{
			IntegrationBranch: cfg.IntegrationBranch,
			BranchPrefix:      cfg.BranchPrefix,
			BaseBranch:        cfg.PullRequest.Base,
			MarkerName:        cfg.Marker.Path,
		},
		release.WithRepository(&gitutil.Repository{Dir: proj.Root, Remote: cfg.Remote}),
		release.WithMarker(marker.New(proj.MarkerPath(), cfg.Marker.Format, cfg.Marker.Key)),
		release.WithTestGate(&testgate.Shell{
			Script: cfg.Test.Run,
			Dir:    proj.Root,
			Stdin:  cmd.InOrStdin(),
			Stdout: stdout,
			Stderr: stderr,
		}),
		release.WithPullRequestOpener(&pullrequest.Opener{
			Tool:   cfg.PullRequest.Tool,
			Dir:    proj.Root,
			Stdin:  cmd.InOrStdin(),
			Stdout: stdout,
			Stderr: stderr,
		}),
		release.WithOutput(stdout),
		release.WithLogger(opts.logger(stderr)),
		release.WithDryRun(opts.dryRun),
	)
}

func printResult(cmd *cobra.Command, proj *project.Project, res release.Result) {
	if res.DryRun {
		return
	}
	out := cmd.OutOrStdout()
	p := newPalette(out)
	switch res.Phase {
	case release.PhasePreRelease:
		fmt.Fprintf(out, "%s Published %s (%s -> %s)\n", p.ok("✓"), res.Branch, res.Previous, res.Version)
		if res.PullRequestErr != nil {
			errOut := cmd.ErrOrStderr()
			fmt.Fprintln(errOut, newPalette(errOut).warn(fmt.Sprintf("warning: could not open pull request: %v", res.PullRequestErr)))
		}
	case release.PhaseOnReleaseBranch:
		fmt.Fprintf(out, "%s Recorded %s in %s (%s release)\n", p.ok("✓"), res.Version, proj.Config.Marker.Path, res.Part)
		fmt.Fprintf(out, "Commit %s, then merge %s into %s.\n", proj.Config.Marker.Path, res.Branch, proj.Config.PullRequest.Base)
	}
}
