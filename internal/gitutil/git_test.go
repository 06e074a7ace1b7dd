package gitutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not found on PATH")
	}
}

func git(t *testing.T, dir string, args ...string) {
	t.Helper()
	_, err := Run(context.Background(), dir, args...)
	require.NoError(t, err)
}

// newRepo creates a work tree on develop with one commit and a bare origin.
func newRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)
	base := t.TempDir()
	dir := filepath.Join(base, "work")
	origin := filepath.Join(base, "origin.git")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	git(t, base, "init", "--bare", "--quiet", origin)
	git(t, dir, "init", "--quiet")
	git(t, dir, "config", "user.email", "dev@example.com")
	git(t, dir, "config", "user.name", "Dev")
	git(t, dir, "config", "commit.gpgsign", "false")
	git(t, dir, "checkout", "--quiet", "-b", "develop")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_version.py"), []byte("__version__ = '1.12.2'\n"), 0o644))
	git(t, dir, "add", ".")
	git(t, dir, "commit", "--quiet", "-m", "initial")
	git(t, dir, "remote", "add", "origin", origin)
	return dir
}

func TestCurrentBranchAndDirty(t *testing.T) {
	dir := newRepo(t)
	ctx := context.Background()

	branch, err := CurrentBranch(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, "develop", branch)

	dirty, err := Dirty(ctx, dir)
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("wip\n"), 0o644))
	dirty, err = Dirty(ctx, dir)
	require.NoError(t, err)
	assert.True(t, dirty)

	report, err := StatusReport(ctx, dir)
	require.NoError(t, err)
	assert.Contains(t, report, "## develop")
	assert.Contains(t, report, "?? notes.txt")
}

func TestTopLevel(t *testing.T) {
	dir := newRepo(t)
	sub := filepath.Join(dir, "pkg")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	top, err := TopLevel(context.Background(), sub)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(top)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTopLevelOutsideRepository(t *testing.T) {
	requireGit(t)
	_, err := TopLevel(context.Background(), t.TempDir())
	require.ErrorIs(t, err, ErrNotRepository)
}

func TestCreateAndPublishBranch(t *testing.T) {
	dir := newRepo(t)
	ctx := context.Background()
	repo := &Repository{Dir: dir, Remote: "origin"}

	require.NoError(t, repo.CreateAndPublishBranch(ctx, "release/v1.13.0"))

	branch, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "release/v1.13.0", branch)
	assert.True(t, BranchExists(ctx, dir, "release/v1.13.0"))

	remote, err := RemoteBranchExists(ctx, dir, "origin", "release/v1.13.0")
	require.NoError(t, err)
	assert.True(t, remote)

	upstream, err := Run(ctx, dir, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")
	require.NoError(t, err)
	assert.Equal(t, "origin/release/v1.13.0", upstream)
}

func TestCreateAndPublishBranchRefusesExisting(t *testing.T) {
	dir := newRepo(t)
	ctx := context.Background()
	git(t, dir, "branch", "release/v1.12.3")
	repo := &Repository{Dir: dir}

	err := repo.CreateAndPublishBranch(ctx, "release/v1.12.3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists locally")

	branch, err := repo.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "develop", branch)
}

func TestCreateAndPublishBranchRefusesExistingRemote(t *testing.T) {
	dir := newRepo(t)
	ctx := context.Background()
	git(t, dir, "push", "--quiet", "origin", "develop:release/v2.0.0")
	repo := &Repository{Dir: dir}

	err := repo.CreateAndPublishBranch(ctx, "release/v2.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists on origin")
	assert.False(t, BranchExists(ctx, dir, "release/v2.0.0"))
}
