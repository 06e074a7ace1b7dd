// Package marker reads and rewrites the version recorded in a project file.
//
// A marker file holds exactly one version assignment. The value is replaced
// in place so the rest of the file, including comments and formatting, is
// left untouched.
package marker

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/brandonbloom/release/internal/semver"
	"github.com/natefinch/atomic"
)

var (
	// ErrMarkerNotFound indicates the file has no assignment for the key.
	ErrMarkerNotFound = errors.New("version marker not found")
	// ErrMarkerAmbiguous indicates the file assigns the key more than once.
	ErrMarkerAmbiguous = errors.New("version marker assigned more than once")
)

// Format selects how the assignment is located inside the file.
type Format string

const (
	// FormatAssign matches a single `key = "x.y.z"` style line.
	FormatAssign Format = "assign"
	// FormatYAML resolves a dotted key path in a YAML document.
	FormatYAML Format = "yaml"
	// FormatJSON resolves a dotted key path in a JSON (or JSONC) document.
	FormatJSON Format = "json"
)

// DetectFormat infers a format from the file extension when none is configured.
func DetectFormat(configured, path string) Format {
	if configured != "" {
		return Format(strings.ToLower(configured))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatAssign
	}
}

// location is the byte span of the version value inside the file.
type location struct {
	start, end int
}

type locator func(data []byte, key string) (location, error)

func locatorFor(format Format) (locator, error) {
	switch format {
	case FormatAssign:
		return locateAssign, nil
	case FormatYAML:
		return locateYAML, nil
	case FormatJSON:
		return locateJSON, nil
	default:
		return nil, fmt.Errorf("unknown marker format %q", format)
	}
}

// File is a version marker stored at Path.
type File struct {
	Path   string
	Format Format
	Key    string
}

// New returns a marker for path, inferring the format when format is empty.
func New(path, format, key string) *File {
	return &File{Path: path, Format: DetectFormat(format, path), Key: key}
}

// Read parses the version currently recorded in the marker.
func (f *File) Read() (semver.Version, error) {
	data, loc, err := f.load()
	if err != nil {
		return semver.Version{}, err
	}
	v, err := semver.Parse(string(data[loc.start:loc.end]))
	if err != nil {
		return semver.Version{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	return v, nil
}

// Render returns the file contents before and after recording v.
func (f *File) Render(v semver.Version) (before, after []byte, err error) {
	data, loc, err := f.load()
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(data))
	buf.Write(data[:loc.start])
	buf.WriteString(v.String())
	buf.Write(data[loc.end:])
	return data, buf.Bytes(), nil
}

// Write records v in the marker, replacing the file atomically.
func (f *File) Write(v semver.Version) error {
	_, after, err := f.Render(v)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(f.Path, bytes.NewReader(after)); err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}
	return nil
}

func (f *File) load() ([]byte, location, error) {
	locate, err := locatorFor(f.Format)
	if err != nil {
		return nil, location{}, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, location{}, err
	}
	loc, err := locate(data, f.Key)
	if err != nil {
		return nil, location{}, fmt.Errorf("%s: %w", f.Path, err)
	}
	return data, loc, nil
}
