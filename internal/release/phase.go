package release

import (
	"fmt"
	"strings"

	"github.com/brandonbloom/release/internal/semver"
)

// Phase is where the repository stands in the release workflow. It is
// inferred from the checked-out branch on every run and never persisted.
type Phase int

const (
	PhasePreRelease Phase = iota
	PhaseOnReleaseBranch
)

func (p Phase) String() string {
	switch p {
	case PhasePreRelease:
		return "pre-release"
	case PhaseOnReleaseBranch:
		return "on release branch"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// InferPhase reports the phase implied by branch.
func InferPhase(branch, prefix string) Phase {
	if prefix != "" && strings.HasPrefix(branch, prefix) {
		return PhaseOnReleaseBranch
	}
	return PhasePreRelease
}

// BranchName is the release branch that stages v.
func BranchName(prefix string, v semver.Version) string {
	return prefix + v.String()
}

// VersionFromBranch recovers the version encoded in a release branch name.
func VersionFromBranch(prefix, branch string) (semver.Version, error) {
	suffix, ok := strings.CutPrefix(branch, prefix)
	if !ok || prefix == "" {
		return semver.Version{}, fmt.Errorf("%w: %q is not a release branch (want %s<major>.<minor>.<patch>)", semver.ErrFormat, branch, prefix)
	}
	v, err := semver.Parse(suffix)
	if err != nil {
		return semver.Version{}, fmt.Errorf("release branch %s: %w", branch, err)
	}
	return v, nil
}
