// Package semver parses, formats, and bumps the three component
// "major.minor.patch" versions used for release branches and the version
// marker.
package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrFormat indicates a version string is not "major.minor.patch".
	ErrFormat = errors.New("malformed version")
	// ErrInvalidPart indicates a bump part outside major, minor, and patch.
	ErrInvalidPart = errors.New("invalid bump part")
)

// Part selects which version component a bump increments.
type Part string

const (
	Major Part = "major"
	Minor Part = "minor"
	Patch Part = "patch"
)

// Parts lists the recognized bump parts from most to least significant.
var Parts = []Part{Major, Minor, Patch}

func (p Part) String() string {
	return string(p)
}

// Valid reports whether p is one of the recognized parts.
func (p Part) Valid() bool {
	switch p {
	case Major, Minor, Patch:
		return true
	default:
		return false
	}
}

// ParsePart converts command line input into a Part.
func ParsePart(text string) (Part, error) {
	p := Part(text)
	if !p.Valid() {
		return "", invalidPart(text)
	}
	return p, nil
}

func invalidPart(text string) error {
	return fmt.Errorf("%w %q (expected one of: %s)", ErrInvalidPart, text, partList())
}

func partList() string {
	names := make([]string, len(Parts))
	for i, p := range Parts {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// Version is a three component release version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse reads a "major.minor.patch" string. Every component must be a
// non-empty run of decimal digits without a redundant leading zero, so that
// Parse(v.String()) == v for every version it accepts.
func Parse(text string) (Version, error) {
	fields := strings.Split(text, ".")
	if len(fields) != 3 {
		return Version{}, fmt.Errorf("%w %q: want major.minor.patch", ErrFormat, text)
	}
	var nums [3]int
	for i, field := range fields {
		n, err := parseComponent(field)
		if err != nil {
			return Version{}, fmt.Errorf("%w %q: %v", ErrFormat, text, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func parseComponent(field string) (int, error) {
	if field == "" {
		return 0, errors.New("empty component")
	}
	if !allDigits(field) {
		return 0, fmt.Errorf("component %q is not a decimal number", field)
	}
	if len(field) > 1 && field[0] == '0' {
		return 0, fmt.Errorf("component %q has a leading zero", field)
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("component %q out of range", field)
	}
	return n, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String renders the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump increments the selected component and resets every less significant
// component to zero.
func Bump(v Version, part Part) (Version, error) {
	switch part {
	case Major:
		return Version{Major: v.Major + 1}, nil
	case Minor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case Patch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	default:
		return Version{}, invalidPart(string(part))
	}
}
