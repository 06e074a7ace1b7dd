package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/brandonbloom/release/internal/gitutil"
	"github.com/brandonbloom/release/internal/project"
	"github.com/brandonbloom/release/internal/release"
	"github.com/brandonbloom/release/internal/semver"
	"github.com/brandonbloom/release/internal/version"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCommand().Execute()
}

type rootOptions struct {
	dryRun  bool
	verbose bool
	dir     string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "release <part>",
		Short: "Cut and finalize git-flow style releases",
		Long: `Run from the integration branch to start a release: the version marker is
bumped by <part> and a release/vX.Y.Z branch is created and published.

Run again from that release branch to finish it: the test script must pass
and the branch version is recorded in the version marker.`,
		Version:       version.String(),
		ValidArgs:     partNames(),
		Args:          partArg,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			part, err := semver.ParsePart(args[0])
			if err != nil {
				return &usageError{err: err}
			}
			return runRelease(cmd, opts, part)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.dryRun, "dry-run", "n", false, "show what would happen without changing anything")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log each step to stderr")
	flags.StringVarP(&opts.dir, "dir", "C", "", "run as if started in `path`")

	cmd.AddCommand(
		newInitCommand(opts),
		newStatusCommand(opts),
		newDoctorCommand(opts),
		newVersionCommand(),
	)

	return cmd
}

func partNames() []string {
	names := make([]string, len(semver.Parts))
	for i, p := range semver.Parts {
		names[i] = p.String()
	}
	return names
}

func partArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usagef("expected exactly one bump part (%s), got %d arguments", strings.Join(partNames(), ", "), len(args))
	}
	if _, err := semver.ParsePart(args[0]); err != nil {
		return &usageError{err: err}
	}
	return nil
}

func (o *rootOptions) workDir() (string, error) {
	if o.dir != "" {
		return o.dir, nil
	}
	return os.Getwd()
}

func (o *rootOptions) loadProject(ctx context.Context) (*project.Project, error) {
	dir, err := o.workDir()
	if err != nil {
		return nil, err
	}
	proj, err := project.Discover(ctx, dir)
	if errors.Is(err, gitutil.ErrNotRepository) || errors.Is(err, exec.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", release.ErrRepositoryQuery, err)
	}
	return proj, err
}

func (o *rootOptions) logger(w io.Writer) *slog.Logger {
	if !o.verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
