package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/brandonbloom/release/internal/gitutil"
	"github.com/brandonbloom/release/internal/marker"
	"github.com/brandonbloom/release/internal/project"
	"github.com/brandonbloom/release/internal/pullrequest"
	"github.com/brandonbloom/release/internal/testgate"
	"github.com/spf13/cobra"
)

func newDoctorCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose release prerequisites and configuration issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, opts)
		},
	}
}

type doctorContext struct {
	ctx     context.Context
	opts    *rootOptions
	Project *project.Project
}

type doctorCheck struct {
	Name string
	Fn   func(*doctorContext) error
}

func runDoctor(cmd *cobra.Command, opts *rootOptions) error {
	dc := &doctorContext{ctx: cmd.Context(), opts: opts}
	checks := []doctorCheck{
		{Name: "git installed", Fn: requireOnPath("git")},
		{Name: "configuration", Fn: loadDoctorProject},
		{Name: "pull request tool installed", Fn: checkPullRequestTool},
		{Name: "gh authenticated", Fn: checkGhAuth},
		{Name: "integration branch exists", Fn: checkIntegrationBranch},
		{Name: "version marker readable", Fn: checkMarker},
		{Name: "test script configured", Fn: checkTestScript},
	}

	out := cmd.OutOrStdout()
	p := newPalette(out)
	errOut := cmd.ErrOrStderr()
	pe := newPalette(errOut)
	var failures []string
	for _, check := range checks {
		err := check.Fn(dc)
		if errors.Is(err, errSkipCheck) {
			continue
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s %s: %v", pe.fail("✗"), check.Name, err))
			continue
		}
		if opts.verbose {
			fmt.Fprintf(out, "%s %s\n", p.ok("✓"), check.Name)
		}
	}

	if len(failures) > 0 {
		for _, failure := range failures {
			fmt.Fprintln(errOut, failure)
		}
		return fmt.Errorf("%d doctor checks failed", len(failures))
	}

	fmt.Fprintln(out, "ready to release!")
	return nil
}

// errSkipCheck marks a check that does not apply to this configuration.
var errSkipCheck = errors.New("skipped")

func requireOnPath(binary string) func(*doctorContext) error {
	return func(*doctorContext) error {
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("%s not found on PATH", binary)
		}
		return nil
	}
}

func loadDoctorProject(dc *doctorContext) error {
	proj, err := dc.opts.loadProject(dc.ctx)
	if err != nil {
		return err
	}
	dc.Project = proj
	return nil
}

var errNoProject = errors.New("configuration not loaded")

func checkPullRequestTool(dc *doctorContext) error {
	if dc.Project == nil {
		return errNoProject
	}
	tool := dc.Project.Config.PullRequest.Tool
	if tool == pullrequest.ToolNone {
		return errSkipCheck
	}
	return requireOnPath(tool)(dc)
}

func checkGhAuth(dc *doctorContext) error {
	if dc.Project == nil || dc.Project.Config.PullRequest.Tool != pullrequest.ToolGH {
		return errSkipCheck
	}
	cmd := exec.CommandContext(dc.ctx, "gh", "auth", "status")
	cmd.Dir = dc.Project.Root
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return errors.New("not logged in; run `gh auth login`")
	}
	return nil
}

func checkIntegrationBranch(dc *doctorContext) error {
	if dc.Project == nil {
		return errNoProject
	}
	branch := dc.Project.Config.IntegrationBranch
	if !gitutil.BranchExists(dc.ctx, dc.Project.Root, branch) {
		return fmt.Errorf("no local branch named %s", branch)
	}
	return nil
}

func checkMarker(dc *doctorContext) error {
	if dc.Project == nil {
		return errNoProject
	}
	cfg := dc.Project.Config
	_, err := marker.New(dc.Project.MarkerPath(), cfg.Marker.Format, cfg.Marker.Key).Read()
	return err
}

func checkTestScript(dc *doctorContext) error {
	if dc.Project == nil {
		return errNoProject
	}
	if strings.TrimSpace(dc.Project.Config.Test.Run) == "" {
		return testgate.ErrNoTestScript
	}
	return nil
}
