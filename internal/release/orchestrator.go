// Package release drives the two-phase release workflow.
//
// Running from the integration branch initiates a release: the version
// marker is bumped in memory and a release/vX.Y.Z branch is created and
// published. Running again from that release branch finalizes it: the test
// gate must pass and the branch version must be the direct successor of the
// marker before the marker is rewritten.
package release

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/brandonbloom/release/internal/semver"
)

// Repository is the slice of version control the workflow needs.
type Repository interface {
	CurrentBranch(ctx context.Context) (string, error)
	Dirty(ctx context.Context) (bool, error)
	// Status is a human-readable report of uncommitted changes.
	Status(ctx context.Context) (string, error)
	CreateAndPublishBranch(ctx context.Context, name string) error
}

// VersionStore holds the project's current version.
type VersionStore interface {
	Read() (semver.Version, error)
	Write(semver.Version) error
}

// Previewer is implemented by stores that can show a pending rewrite.
type Previewer interface {
	Render(semver.Version) (before, after []byte, err error)
}

// TestGate runs the project's test suite.
type TestGate interface {
	Run(ctx context.Context) (bool, error)
}

// PullRequestOpener asks the hosted repository to open a pull request.
type PullRequestOpener interface {
	Open(ctx context.Context, head, base string) error
}

// Settings are the fixed names the workflow is built around.
type Settings struct {
	IntegrationBranch string
	BranchPrefix      string
	// BaseBranch is the pull request target for a release branch.
	BaseBranch string
	// MarkerName labels the version marker in dry-run diffs.
	MarkerName string
}

// Result describes what a run did (or would do, for dry runs).
type Result struct {
	Phase    Phase
	Branch   string
	Previous semver.Version
	Version  semver.Version
	Part     semver.Part
	DryRun   bool
	// PullRequestErr records a failed advisory pull request step.
	PullRequestErr error
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

func WithRepository(repo Repository) Option {
	return func(o *Orchestrator) { o.repo = repo }
}

func WithMarker(store VersionStore) Option {
	return func(o *Orchestrator) { o.marker = store }
}

func WithTestGate(gate TestGate) Option {
	return func(o *Orchestrator) { o.gate = gate }
}

func WithPullRequestOpener(prs PullRequestOpener) Option {
	return func(o *Orchestrator) { o.prs = prs }
}

// WithOutput directs progress messages and diagnostics to w.
func WithOutput(w io.Writer) Option {
	return func(o *Orchestrator) { o.out = w }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithDryRun reports what would happen without creating branches, running
// tests, or writing the marker.
func WithDryRun(dryRun bool) Option {
	return func(o *Orchestrator) { o.dryRun = dryRun }
}

// Orchestrator sequences the release workflow.
type Orchestrator struct {
	settings Settings
	repo     Repository
	marker   VersionStore
	gate     TestGate
	prs      PullRequestOpener
	out      io.Writer
	log      *slog.Logger
	dryRun   bool
}

// New builds an Orchestrator. A repository, marker, and test gate are required.
func New(settings Settings, opts ...Option) (*Orchestrator, error) {
	if settings.IntegrationBranch == "" {
		return nil, errors.New("release: integration branch must be set")
	}
	if settings.BranchPrefix == "" {
		return nil, errors.New("release: branch prefix must be set")
	}
	o := &Orchestrator{
		settings: settings,
		out:      io.Discard,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	switch {
	case o.repo == nil:
		return nil, errors.New("release: repository is required")
	case o.marker == nil:
		return nil, errors.New("release: version marker is required")
	case o.gate == nil:
		return nil, errors.New("release: test gate is required")
	}
	return o, nil
}

// Run detects the phase from the current branch and initiates or finalizes
// a release accordingly.
func (o *Orchestrator) Run(ctx context.Context, part semver.Part) (Result, error) {
	branch, err := o.currentBranch(ctx)
	if err != nil {
		return Result{}, err
	}
	phase := InferPhase(branch, o.settings.BranchPrefix)
	o.log.Debug("detected phase", "branch", branch, "phase", phase.String())
	if phase == PhasePreRelease {
		return o.initiate(ctx, branch, part)
	}
	return o.finalize(ctx, branch, part)
}

// Initiate cuts a release branch for the next part bump of the marker.
func (o *Orchestrator) Initiate(ctx context.Context, part semver.Part) (Result, error) {
	branch, err := o.currentBranch(ctx)
	if err != nil {
		return Result{}, err
	}
	return o.initiate(ctx, branch, part)
}

// Finalize gates the current release branch on the tests and records its
// version in the marker. requested, when set, is compared with the bump the
// branch actually represents.
func (o *Orchestrator) Finalize(ctx context.Context, requested semver.Part) (Result, error) {
	branch, err := o.currentBranch(ctx)
	if err != nil {
		return Result{}, err
	}
	return o.finalize(ctx, branch, requested)
}

func (o *Orchestrator) currentBranch(ctx context.Context) (string, error) {
	branch, err := o.repo.CurrentBranch(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRepositoryQuery, err)
	}
	return branch, nil
}

func (o *Orchestrator) initiate(ctx context.Context, branch string, part semver.Part) (Result, error) {
	want := o.settings.IntegrationBranch
	if branch != want {
		return Result{}, fmt.Errorf("%w: releases can only be initiated from %s (currently on %s); run `git checkout %s` first",
			ErrWrongSourceBranch, want, branch, want)
	}

	dirty, err := o.repo.Dirty(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrRepositoryQuery, err)
	}
	if dirty {
		o.reportStatus(ctx)
		return Result{}, fmt.Errorf("%w; commit or stash them before starting a release", ErrDirtyWorktree)
	}

	previous, err := o.marker.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read version marker: %w", err)
	}
	next, err := semver.Bump(previous, part)
	if err != nil {
		return Result{}, err
	}
	name := BranchName(o.settings.BranchPrefix, next)
	res := Result{
		Phase:    PhasePreRelease,
		Branch:   name,
		Previous: previous,
		Version:  next,
		Part:     part,
		DryRun:   o.dryRun,
	}
	o.log.Debug("initiating release", "previous", previous.String(), "next", next.String(), "branch", name)

	if o.dryRun {
		fmt.Fprintf(o.out, "Would create and publish %s (%s -> %s).\n", name, previous, next)
		return res, nil
	}

	if err := o.repo.CreateAndPublishBranch(ctx, name); err != nil {
		return Result{}, fmt.Errorf("%w %s: %w", ErrBranchCreation, name, err)
	}

	base := o.settings.BaseBranch
	fmt.Fprintf(o.out, "Open a pull request from %s into %s and describe the release there.\n", name, base)
	if o.prs != nil {
		if err := o.prs.Open(ctx, name, base); err != nil {
			o.log.Debug("pull request step failed", "err", err)
			res.PullRequestErr = err
		}
	}
	return res, nil
}

func (o *Orchestrator) reportStatus(ctx context.Context) {
	status, err := o.repo.Status(ctx)
	if err != nil {
		fmt.Fprintf(o.out, "(unable to show git status: %v)\n", err)
		return
	}
	fmt.Fprintln(o.out, "Uncommitted changes:")
	for _, line := range strings.Split(strings.TrimRight(status, "\n"), "\n") {
		fmt.Fprintf(o.out, "  %s\n", line)
	}
}

func (o *Orchestrator) finalize(ctx context.Context, branch string, requested semver.Part) (Result, error) {
	if o.dryRun {
		fmt.Fprintln(o.out, "Would run the release tests.")
	} else {
		passed, err := o.gate.Run(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrTestsFailed, err)
		}
		if !passed {
			return Result{}, fmt.Errorf("%w on %s; fix them and run release again", ErrTestsFailed, branch)
		}
		o.log.Debug("release tests passed", "branch", branch)
	}

	candidate, err := VersionFromBranch(o.settings.BranchPrefix, branch)
	if err != nil {
		return Result{}, err
	}
	previous, err := o.marker.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read version marker: %w", err)
	}
	part, err := semver.Classify(previous, candidate)
	if err != nil {
		return Result{}, fmt.Errorf("cannot finalize %s: %w", branch, err)
	}
	if requested != "" && requested != part {
		fmt.Fprintf(o.out, "warning: %s is a %s release; ignoring requested %s bump\n", branch, part, requested)
	}
	res := Result{
		Phase:    PhaseOnReleaseBranch,
		Branch:   branch,
		Previous: previous,
		Version:  candidate,
		Part:     part,
		DryRun:   o.dryRun,
	}

	if o.dryRun {
		o.previewWrite(candidate)
		return res, nil
	}
	if err := o.marker.Write(candidate); err != nil {
		return Result{}, fmt.Errorf("write version marker: %w", err)
	}
	o.log.Debug("version marker updated", "previous", previous.String(), "version", candidate.String())
	return res, nil
}

func (o *Orchestrator) previewWrite(v semver.Version) {
	preview, ok := o.marker.(Previewer)
	if !ok {
		fmt.Fprintf(o.out, "Would record version %s.\n", v)
		return
	}
	before, after, err := preview.Render(v)
	if err != nil {
		fmt.Fprintf(o.out, "Would record version %s (preview unavailable: %v).\n", v, err)
		return
	}
	name := o.settings.MarkerName
	if name == "" {
		name = "version marker"
	}
	fmt.Fprint(o.out, textdiff.Unified("a/"+name, "b/"+name, string(before), string(after)))
}
