package release

import "errors"

var (
	// ErrWrongSourceBranch indicates a release was initiated off the integration branch.
	ErrWrongSourceBranch = errors.New("wrong source branch")
	// ErrDirtyWorktree indicates uncommitted changes block initiating a release.
	ErrDirtyWorktree = errors.New("working tree has uncommitted changes")
	// ErrBranchCreation indicates the release branch could not be created or published.
	ErrBranchCreation = errors.New("cannot create release branch")
	// ErrTestsFailed indicates the test gate blocked finalizing a release.
	ErrTestsFailed = errors.New("release tests failed")
	// ErrRepositoryQuery indicates the repository state could not be determined.
	ErrRepositoryQuery = errors.New("cannot query repository state")
)
