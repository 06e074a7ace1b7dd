// Implementation of the `releasecmdtest` harness.
//
// Key behaviors:
//   - Creates `<tmp>/release-transcripts/tmprepo-<id>/{work,origin.git}`.
//   - Seeds work/ on develop with `_version.py`, `.release.toml`, and an
//     executable `pre-push` that exits with $RELEASE_TEST_EXIT (default 0).
//   - Installs the `ghstub` binary found next to this executable as `bin/gh`.
//   - Seeds deterministic git author/commit timestamps for stable transcripts.
//   - Honors `RELEASE_CMDTEST_TIMEOUT` (default 10s) and `RELEASE_CMDTEST_ID`.
package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/brandonbloom/release/internal/config"
)

type tool struct {
	transcriptsRoot string
	ghStubBinary    string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

const defaultTimeout = 10 * time.Second

func newToolFromExecutable() (*tool, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, err
	}
	return &tool{
		transcriptsRoot: filepath.Join(os.TempDir(), "release-transcripts"),
		ghStubBinary:    filepath.Join(filepath.Dir(exe), "ghstub"),
		stdin:           os.Stdin,
		stdout:          os.Stdout,
		stderr:          os.Stderr,
	}, nil
}

func (t *tool) runCLI(ctx context.Context, args []string) int {
	ctx, cancel, timeout := withTimeoutFromEnv(ctx, "RELEASE_CMDTEST_TIMEOUT", defaultTimeout)
	if cancel != nil {
		defer cancel()
	}

	opts, cmdArgs, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(t.stderr, err)
		t.printUsage()
		return 2
	}
	if opts.help {
		t.printUsage()
		return 0
	}

	exitCode, err := t.run(ctx, opts, cmdArgs, timeout)
	if err != nil {
		fmt.Fprintln(t.stderr, err)
		return 1
	}
	return exitCode
}

func (t *tool) printUsage() {
	fmt.Fprint(t.stderr, `Usage: releasecmdtest [options] -- <command> [args...]

Sets up a disposable project with a bare origin, runs the given command
inside it, and cleans up afterward. Intended for transcript integration tests.

Options:
  --branch NAME     Check out a new local branch NAME before running.
  --marker VERSION  Version recorded in _version.py (default 1.12.2).
  --no-config       Do not write .release.toml (defaults apply).
  --keep            Preserve the temp repo for debugging (prints its path).
`)
}

func (t *tool) run(ctx context.Context, opts options, cmdArgs []string, timeout time.Duration) (int, error) {
	if err := os.MkdirAll(t.transcriptsRoot, 0o755); err != nil {
		return 1, err
	}

	tmprepo := filepath.Join(t.transcriptsRoot, tmprepoDirName())
	if err := removeAllUnder(t.transcriptsRoot, tmprepo); err != nil {
		return 1, err
	}
	work := filepath.Join(tmprepo, "work")
	if err := os.MkdirAll(work, 0o755); err != nil {
		return 1, err
	}

	childEnv := deterministicEnv(os.Environ())

	if err := t.seedProject(ctx, tmprepo, opts, childEnv); err != nil {
		return 1, err
	}
	if err := t.installGHStub(tmprepo); err != nil {
		return 1, err
	}

	childEnv = withEnv(childEnv, "RELEASE_GH_STATE_FILE", filepath.Join(tmprepo, ".gh-prs"))
	childEnv = withEnv(childEnv, "PATH", filepath.Join(tmprepo, "bin")+string(os.PathListSeparator)+getEnv(childEnv, "PATH"))

	cmd := exec.CommandContext(ctx, cmdArgs[0], cmdArgs[1:]...)
	cmd.Dir = work
	cmd.Env = withEnv(childEnv, "PWD", work)
	cmd.Stdin = t.stdin
	cmd.Stdout = t.stdout
	cmd.Stderr = t.stderr

	runErr := cmd.Run()
	if runErr != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 124, fmt.Errorf("releasecmdtest: timed out after %s", timeout)
	}
	exitCode := exitStatus(runErr)

	if opts.keepRepo {
		fmt.Fprintf(t.stderr, "temp repo kept at %s\n", tmprepo)
	} else if cleanupErr := removeAllUnder(t.transcriptsRoot, tmprepo); cleanupErr != nil {
		return 1, cleanupErr
	}

	return exitCode, nil
}

const prePushScript = "#!/bin/sh\necho \"running tests\"\nexit \"${RELEASE_TEST_EXIT:-0}\"\n"

func (t *tool) seedProject(ctx context.Context, tmprepo string, opts options, env []string) error {
	work := filepath.Join(tmprepo, "work")
	origin := filepath.Join(tmprepo, "origin.git")

	if err := t.runQuiet(ctx, tmprepo, env, "git", "init", "--bare", origin); err != nil {
		return err
	}
	if err := t.runQuiet(ctx, work, env, "git", "init", "-b", "develop"); err != nil {
		return err
	}
	if err := t.runQuiet(ctx, work, env, "git", "remote", "add", "origin", origin); err != nil {
		return err
	}

	marker := fmt.Sprintf("# Generated by the build.\n__version__ = '%s'\n", opts.markerVersion)
	if err := os.WriteFile(filepath.Join(work, "_version.py"), []byte(marker), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(work, "pre-push"), []byte(prePushScript), 0o755); err != nil {
		return err
	}
	if !opts.noConfig {
		if err := config.Save(filepath.Join(work, config.FileName), config.Default()); err != nil {
			return err
		}
	}
	if err := t.runQuiet(ctx, work, env, "git", "add", "."); err != nil {
		return err
	}
	if err := t.runQuiet(ctx, work, env, "git", "commit", "-m", "init"); err != nil {
		return err
	}
	if err := t.runQuiet(ctx, work, env, "git", "push", "origin", "develop"); err != nil {
		return err
	}
	if opts.branch != "" {
		if err := t.runQuiet(ctx, work, env, "git", "checkout", "-b", opts.branch); err != nil {
			return err
		}
	}
	return nil
}

func (t *tool) installGHStub(tmprepo string) error {
	stub, err := os.ReadFile(t.ghStubBinary)
	if err != nil {
		return err
	}

	binDir := filepath.Join(tmprepo, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(binDir, "gh"), stub, 0o755)
}

func (t *tool) runQuiet(ctx context.Context, dir string, env []string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = withEnv(env, "PWD", dir)

	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			msg = ": " + msg
		}
		return fmt.Errorf("%s %s failed%s: %w", name, strings.Join(args, " "), msg, err)
	}
	return nil
}

func deterministicEnv(base []string) []string {
	env := envMap(base)
	env["GIT_AUTHOR_NAME"] = "release-test"
	env["GIT_AUTHOR_EMAIL"] = "release@example.com"
	env["GIT_COMMITTER_NAME"] = "release-test"
	env["GIT_COMMITTER_EMAIL"] = "release@example.com"
	env["GIT_AUTHOR_DATE"] = "2000-01-01T00:00:00Z"
	env["GIT_COMMITTER_DATE"] = "2000-01-01T00:00:00Z"
	env["GIT_CONFIG_NOSYSTEM"] = "1"
	env["NO_COLOR"] = "1"
	delete(env, "RELEASE_GH_LOGGED_OUT")
	return envSlice(env)
}

func removeAllUnder(root, target string) error {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return err
	}
	if rel == "." {
		return fmt.Errorf("refusing to remove root: %s", root)
	}
	if strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return fmt.Errorf("refusing to remove outside root: %s", target)
	}
	return os.RemoveAll(target)
}

func exitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 127
}

func withTimeoutFromEnv(ctx context.Context, key string, def time.Duration) (context.Context, context.CancelFunc, time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		raw = def.String()
	}
	if raw == "0" || raw == "0s" {
		return ctx, nil, 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		d = def
	}
	next, cancel := context.WithTimeout(ctx, d)
	return next, cancel, d
}

func envMap(env []string) map[string]string {
	out := make(map[string]string, len(env))
	for _, entry := range env {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

func envSlice(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out
}

func withEnv(env []string, key, value string) []string {
	m := envMap(env)
	m[key] = value
	return envSlice(m)
}

func getEnv(env []string, key string) string {
	return envMap(env)[key]
}

func tmprepoDirName() string {
	if id := sanitizeID(os.Getenv("RELEASE_CMDTEST_ID")); id != "" {
		return "tmprepo-" + id
	}
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("tmprepo-%d", os.Getpid())
	}
	return "tmprepo-" + hex.EncodeToString(b[:])
}

func sanitizeID(raw string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, strings.TrimSpace(raw))
	return strings.Trim(safe, "._-")
}
