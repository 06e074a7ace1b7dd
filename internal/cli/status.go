package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/brandonbloom/release/internal/gitutil"
	"github.com/brandonbloom/release/internal/marker"
	"github.com/brandonbloom/release/internal/project"
	"github.com/brandonbloom/release/internal/release"
	"github.com/brandonbloom/release/internal/semver"
	"github.com/spf13/cobra"
)

func newStatusCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the release phase and what `release <part>` would do",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := opts.loadProject(cmd.Context())
			if err != nil {
				return err
			}
			report, err := collectStatus(cmd.Context(), proj)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

type statusReport struct {
	Branch     string
	Phase      release.Phase
	Dirty      bool
	MarkerPath string
	Version    semver.Version
	MarkerErr  error
	Prefix     string
}

func collectStatus(ctx context.Context, proj *project.Project) (statusReport, error) {
	branch, err := gitutil.CurrentBranch(ctx, proj.Root)
	if err != nil {
		return statusReport{}, fmt.Errorf("%w: %w", release.ErrRepositoryQuery, err)
	}
	dirty, err := gitutil.Dirty(ctx, proj.Root)
	if err != nil {
		return statusReport{}, fmt.Errorf("%w: %w", release.ErrRepositoryQuery, err)
	}
	cfg := proj.Config
	report := statusReport{
		Branch:     branch,
		Phase:      release.InferPhase(branch, cfg.BranchPrefix),
		Dirty:      dirty,
		MarkerPath: cfg.Marker.Path,
		Prefix:     cfg.BranchPrefix,
	}
	report.Version, report.MarkerErr = marker.New(proj.MarkerPath(), cfg.Marker.Format, cfg.Marker.Key).Read()
	return report, nil
}

func printStatus(w io.Writer, r statusReport) {
	p := newPalette(w)
	tree := p.ok("clean")
	if r.Dirty {
		tree = p.warn("dirty")
	}
	fields := []field{
		{"branch", r.Branch},
		{"phase", r.Phase.String()},
		{"worktree", tree},
	}
	if r.MarkerErr != nil {
		fields = append(fields, field{"version", p.fail(r.MarkerErr.Error())})
		writeFields(w, p, fields)
		return
	}
	fields = append(fields, field{"version", fmt.Sprintf("%s %s", r.Version, p.dim("("+r.MarkerPath+")"))})

	switch r.Phase {
	case release.PhasePreRelease:
		for _, part := range semver.Parts {
			next, _ := semver.Bump(r.Version, part)
			fields = append(fields, field{"next " + part.String(), release.BranchName(r.Prefix, next)})
		}
	case release.PhaseOnReleaseBranch:
		fields = append(fields, field{"candidate", describeCandidate(p, r)})
	}
	writeFields(w, p, fields)
}

func describeCandidate(p palette, r statusReport) string {
	candidate, err := release.VersionFromBranch(r.Prefix, r.Branch)
	if err != nil {
		return p.fail("branch name is not a version")
	}
	part, err := semver.Classify(r.Version, candidate)
	var succession *semver.SuccessionError
	switch {
	case errors.As(err, &succession):
		return fmt.Sprintf("%s %s", candidate, p.fail("(not a direct successor of "+r.Version.String()+")"))
	case err != nil:
		return p.fail(err.Error())
	}
	return fmt.Sprintf("%s (%s release)", candidate, part)
}
