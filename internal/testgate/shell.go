// Package testgate runs a project's test script and reports pass/fail.
//
// The script is interpreted in-process by mvdan.cc/sh so the same
// `test.run` line behaves identically regardless of the operator's login
// shell.
package testgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrNoTestScript indicates no test script is configured.
var ErrNoTestScript = errors.New("no test script configured; set [test].run in .release.toml")

// Shell runs Script with a POSIX shell interpreter rooted at Dir.
type Shell struct {
	Script string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Env defaults to the current process environment.
	Env []string
}

// Run executes the script. A non-zero exit status reports false with a nil
// error; an error means the script could not be run at all.
func (s *Shell) Run(ctx context.Context) (bool, error) {
	script := strings.TrimSpace(s.Script)
	if script == "" {
		return false, ErrNoTestScript
	}

	file, err := syntax.NewParser().Parse(strings.NewReader(script), "test.run")
	if err != nil {
		return false, fmt.Errorf("parse test script: %w", err)
	}

	env := s.Env
	if env == nil {
		env = os.Environ()
	}
	runner, err := interp.New(
		interp.Dir(s.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(s.Stdin, orDiscard(s.Stdout), orDiscard(s.Stderr)),
	)
	if err != nil {
		return false, fmt.Errorf("prepare test script: %w", err)
	}

	err = runner.Run(ctx, file)
	if err == nil {
		return true, nil
	}
	if _, ok := interp.IsExitStatus(err); ok {
		return false, nil
	}
	return false, fmt.Errorf("run test script: %w", err)
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
