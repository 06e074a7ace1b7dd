// ghstub is a hermetic stand-in for the `gh` CLI used by transcript tests.
//
// Supported subcommands:
//   - `gh auth status` (succeeds unless RELEASE_GH_LOGGED_OUT=1)
//   - `gh pr create --base B --head H` (records the pull request)
//   - `gh pr list` (prints recorded pull requests)
//
// State lives in RELEASE_GH_STATE_FILE (default `.gh-prs` in $PWD).
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	state := stateFile()
	if len(args) < 1 {
		fmt.Fprintln(stderr, "gh stub: missing subcommand")
		return 1
	}
	sub, rest := args[0], args[1:]

	switch {
	case sub == "auth" && len(rest) >= 1 && rest[0] == "status":
		if os.Getenv("RELEASE_GH_LOGGED_OUT") == "1" {
			fmt.Fprintln(stderr, "You are not logged into any GitHub hosts. To log in, run: gh auth login")
			return 1
		}
		fmt.Fprintln(stderr, "Logged in to github.com as release-test")
		return 0
	case sub == "pr" && len(rest) >= 1 && rest[0] == "create":
		url, err := createPR(state, rest[1:])
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		fmt.Fprintln(stdout, url)
		return 0
	case sub == "pr" && len(rest) >= 1 && rest[0] == "list":
		prs, err := loadPRs(state)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		for _, pr := range prs {
			fmt.Fprintf(stdout, "#%d\t%s -> %s\tOPEN\n", pr.Number, pr.Head, pr.Base)
		}
		return 0
	}

	fmt.Fprintf(stderr, "gh stub cannot handle: %s %s\n", sub, strings.Join(rest, " "))
	return 1
}

func stateFile() string {
	if v := os.Getenv("RELEASE_GH_STATE_FILE"); v != "" {
		return v
	}
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return filepath.Join(wd, ".gh-prs")
}
