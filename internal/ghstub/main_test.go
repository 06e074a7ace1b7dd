package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThenList(t *testing.T) {
	t.Setenv("RELEASE_GH_STATE_FILE", filepath.Join(t.TempDir(), "prs"))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"pr", "create", "--base", "master", "--head", "release/v1.13.0"}, &stdout, &stderr), stderr.String())
	assert.Equal(t, "https://github.com/example/project/pull/42", strings.TrimSpace(stdout.String()))

	stdout.Reset()
	assert.Equal(t, 1, run([]string{"pr", "create", "--base", "master", "--head", "release/v1.13.0"}, &stdout, &stderr), "duplicate create")

	stdout.Reset()
	require.Equal(t, 0, run([]string{"pr", "list"}, &stdout, &stderr))
	assert.Equal(t, "#42\trelease/v1.13.0 -> master\tOPEN\n", stdout.String())
}

func TestAuthStatus(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"auth", "status"}, &stdout, &stderr))
	t.Setenv("RELEASE_GH_LOGGED_OUT", "1")
	assert.Equal(t, 1, run([]string{"auth", "status"}, &stdout, &stderr), "logged out")
}

func TestUnknownSubcommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"repo", "view"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "cannot handle: repo view")
}
