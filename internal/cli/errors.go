package cli

import (
	"errors"
	"fmt"
	"io"
)

// usageError marks mistakes in how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var usage *usageError
	if errors.As(err, &usage) {
		return 2
	}
	return 1
}

// PrintError reports err on w the way the release command always does.
func PrintError(w io.Writer, err error) {
	p := newPalette(w)
	fmt.Fprintln(w, p.fail("release: "+err.Error()))
}
