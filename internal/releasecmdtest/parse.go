// Argument parsing for the `releasecmdtest` harness.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/brandonbloom/release/internal/semver"
)

type options struct {
	branch        string
	markerVersion string
	noConfig      bool
	keepRepo      bool
	help          bool
}

func parseArgs(args []string) (options, []string, error) {
	var opts options

	fs := flag.NewFlagSet("releasecmdtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&opts.branch, "branch", "", "")
	fs.StringVar(&opts.markerVersion, "marker", "1.12.2", "")
	fs.BoolVar(&opts.noConfig, "no-config", false, "")
	fs.BoolVar(&opts.keepRepo, "keep", false, "")

	fs.BoolVar(&opts.help, "help", false, "")
	fs.BoolVar(&opts.help, "h", false, "")

	if err := fs.Parse(args); err != nil {
		return options{}, nil, err
	}
	if opts.help {
		return opts, nil, nil
	}

	if strings.ContainsAny(opts.branch, " \t\n") || strings.HasPrefix(opts.branch, "-") {
		return options{}, nil, fmt.Errorf("invalid branch name: %q", opts.branch)
	}
	if _, err := semver.Parse(opts.markerVersion); err != nil {
		return options{}, nil, fmt.Errorf("--marker: %w", err)
	}

	cmd := fs.Args()
	if len(cmd) == 0 {
		return options{}, nil, errors.New("missing command")
	}

	return opts, cmd, nil
}
