// Pull request records, one per line: number|head|base.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

type prRecord struct {
	Number int
	Head   string
	Base   string
}

func createPR(stateFile string, args []string) (string, error) {
	var head, base string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--head", "-H":
			if i+1 >= len(args) {
				return "", errors.New("gh stub: --head requires a value")
			}
			head = args[i+1]
			i++
		case "--base", "-B":
			if i+1 >= len(args) {
				return "", errors.New("gh stub: --base requires a value")
			}
			base = args[i+1]
			i++
		}
	}
	if head == "" || base == "" {
		return "", errors.New("gh stub: pr create requires --head and --base")
	}

	prs, err := loadPRs(stateFile)
	if err != nil {
		return "", err
	}
	for _, pr := range prs {
		if pr.Head == head {
			return "", fmt.Errorf("a pull request for branch %q into branch %q already exists", head, pr.Base)
		}
	}
	number := 42 + len(prs)
	f, err := os.OpenFile(stateFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%d|%s|%s\n", number, head, base); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://github.com/example/project/pull/%d", number), nil
}

func loadPRs(path string) ([]prRecord, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []prRecord
	for _, line := range strings.Split(string(b), "\n") {
		parts := strings.Split(strings.TrimSpace(line), "|")
		if len(parts) != 3 {
			continue
		}
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		out = append(out, prRecord{Number: n, Head: parts[1], Base: parts[2]})
	}
	return out, nil
}
