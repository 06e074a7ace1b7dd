package semver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	prev := Version{1, 12, 2}
	cases := []struct {
		name      string
		candidate Version
		want      Part
		wantErr   bool
	}{
		{name: "patch", candidate: Version{1, 12, 3}, want: Patch},
		{name: "minor", candidate: Version{1, 13, 0}, want: Minor},
		{name: "major", candidate: Version{2, 0, 0}, want: Major},
		{name: "noop", candidate: Version{1, 12, 2}, wantErr: true},
		{name: "two components", candidate: Version{2, 1, 0}, wantErr: true},
		{name: "minor without reset", candidate: Version{1, 13, 2}, wantErr: true},
		{name: "skipped minor", candidate: Version{1, 14, 0}, wantErr: true},
		{name: "decrease", candidate: Version{1, 12, 1}, wantErr: true},
		{name: "double patch", candidate: Version{1, 12, 4}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(prev, tc.candidate)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrNotDirectSuccessor)
				var succErr *SuccessionError
				require.True(t, errors.As(err, &succErr))
				assert.Equal(t, tc.candidate, succErr.Candidate)
				assert.Equal(t, prev, succErr.Previous)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSuccessionErrorMessage(t *testing.T) {
	_, err := Classify(Version{1, 12, 2}, Version{1, 14, 0})
	assert.EqualError(t, err, "1.14.0 is not a direct successor of 1.12.2; expected one of 2.0.0, 1.13.0, 1.12.3")
}

func TestSuccessors(t *testing.T) {
	got := Successors(Version{1, 12, 2})
	assert.Equal(t, []Version{{2, 0, 0}, {1, 13, 0}, {1, 12, 3}}, got)
}
