package semver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotDirectSuccessor indicates that no single bump leads from one version
// to another.
var ErrNotDirectSuccessor = errors.New("not a direct successor")

// SuccessionError describes a rejected version transition.
type SuccessionError struct {
	Previous  Version
	Candidate Version
}

func (e *SuccessionError) Error() string {
	return fmt.Sprintf("%s is %v of %s; expected one of %s",
		e.Candidate, ErrNotDirectSuccessor, e.Previous, successorList(e.Previous))
}

func (e *SuccessionError) Unwrap() error {
	return ErrNotDirectSuccessor
}

// Classify reports which bump turns previous into candidate.
func Classify(previous, candidate Version) (Part, error) {
	for _, part := range Parts {
		next, err := Bump(previous, part)
		if err != nil {
			return "", err
		}
		if next == candidate {
			return part, nil
		}
	}
	return "", &SuccessionError{Previous: previous, Candidate: candidate}
}

// Successors returns the direct successor of v for each part, in Parts order.
func Successors(v Version) []Version {
	out := make([]Version, 0, len(Parts))
	for _, part := range Parts {
		next, _ := Bump(v, part)
		out = append(out, next)
	}
	return out
}

func successorList(v Version) string {
	next := Successors(v)
	names := make([]string, len(next))
	for i, n := range next {
		names[i] = n.String()
	}
	return strings.Join(names, ", ")
}
