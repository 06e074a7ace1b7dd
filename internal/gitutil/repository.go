package gitutil

import (
	"context"
	"fmt"
)

// Repository runs release operations against the work tree at Dir.
type Repository struct {
	Dir    string
	Remote string
}

func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	return CurrentBranch(ctx, r.Dir)
}

func (r *Repository) Dirty(ctx context.Context) (bool, error) {
	return Dirty(ctx, r.Dir)
}

func (r *Repository) Status(ctx context.Context) (string, error) {
	return StatusReport(ctx, r.Dir)
}

// CreateAndPublishBranch creates name at HEAD, checks it out, and pushes it
// with an upstream so later pushes need no arguments.
func (r *Repository) CreateAndPublishBranch(ctx context.Context, name string) error {
	remote := r.remote()
	if BranchExists(ctx, r.Dir, name) {
		return fmt.Errorf("branch %s already exists locally", name)
	}
	exists, err := RemoteBranchExists(ctx, r.Dir, remote, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("branch %s already exists on %s", name, remote)
	}
	if _, err := Run(ctx, r.Dir, "checkout", "--quiet", "-b", name); err != nil {
		return err
	}
	_, err = Run(ctx, r.Dir, "push", "--quiet", "--set-upstream", remote, name)
	return err
}

func (r *Repository) remote() string {
	if r.Remote == "" {
		return "origin"
	}
	return r.Remote
}
