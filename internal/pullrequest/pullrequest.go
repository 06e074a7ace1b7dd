// Package pullrequest asks the hosted-repository CLI to open a pull request
// for a freshly published release branch.
package pullrequest

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// Supported tools.
const (
	ToolGH   = "gh"
	ToolHub  = "hub"
	ToolNone = "none"
)

// Args returns the command line that opens a pull request from head into
// base, or nil when tool opens nothing.
func Args(tool, head, base string) ([]string, error) {
	switch tool {
	case ToolGH:
		return []string{"gh", "pr", "create", "--base", base, "--head", head}, nil
	case ToolHub:
		return []string{"hub", "pull-request", "-b", base, "-h", head}, nil
	case ToolNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown pull request tool %q", tool)
	}
}

// Opener runs the configured tool interactively so it can prompt for a
// title or open an editor.
type Opener struct {
	Tool   string
	Dir    string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Open runs the tool. Its output is passed through and never parsed.
func (o *Opener) Open(ctx context.Context, head, base string) error {
	args, err := Args(o.Tool, head, base)
	if err != nil || args == nil {
		return err
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = o.Dir
	cmd.Stdin = o.Stdin
	cmd.Stdout = o.Stdout
	cmd.Stderr = o.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", args[0], err)
	}
	return nil
}
