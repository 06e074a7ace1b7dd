package marker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brandonbloom/release/internal/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMarker(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRewriteFormats(t *testing.T) {
	cases := []struct {
		name   string
		file   string
		format string
		key    string
		before string
		after  string
	}{
		{
			name:   "python module",
			file:   "_version.py",
			key:    "__version__",
			before: "# generated\n__version__ = '1.12.2'\n",
			after:  "# generated\n__version__ = '1.13.0'\n",
		},
		{
			name:   "go constant",
			file:   "version.go",
			key:    "Version",
			before: "package app\n\nconst Version = \"1.12.2\"\n",
			after:  "package app\n\nconst Version = \"1.13.0\"\n",
		},
		{
			name:   "typed go var",
			file:   "version.go",
			key:    "Version",
			before: "package app\n\nvar Version string = \"1.12.2\" // bumped by release\n",
			after:  "package app\n\nvar Version string = \"1.13.0\" // bumped by release\n",
		},
		{
			name:   "annotated python",
			file:   "_version.py",
			key:    "__version__",
			before: "__version__: str = \"1.12.2\"\n",
			after:  "__version__: str = \"1.13.0\"\n",
		},
		{
			name:   "annotated python final",
			file:   "_version.py",
			key:    "__version__",
			before: "from typing import Final\n\n__version__:typing.Final='1.12.2'\n",
			after:  "from typing import Final\n\n__version__:typing.Final='1.13.0'\n",
		},
		{
			name:   "go short declaration",
			file:   "version.go",
			key:    "version",
			before: "func init() {\n\tversion := \"1.12.2\"\n\t_ = version\n}\n",
			after:  "func init() {\n\tversion := \"1.13.0\"\n\t_ = version\n}\n",
		},
		{
			name:   "shell export",
			file:   "VERSION.sh",
			key:    "VERSION",
			before: "export VERSION=1.12.2\n",
			after:  "export VERSION=1.13.0\n",
		},
		{
			name:   "yaml nested",
			file:   "Chart.yaml",
			key:    "app.version",
			before: "name: demo # chart\napp:\n  version: \"1.12.2\"  # keep me\n  name: x\n",
			after:  "name: demo # chart\napp:\n  version: \"1.13.0\"  # keep me\n  name: x\n",
		},
		{
			name:   "yaml plain",
			file:   "meta.yml",
			key:    "version",
			before: "version: 1.12.2\n",
			after:  "version: 1.13.0\n",
		},
		{
			name:   "json with comments",
			file:   "package.json",
			key:    "version",
			before: "{\n  // the release tool owns this field\n  \"name\": \"demo\",\n  \"version\": \"1.12.2\",\n  \"deps\": {\"version\": \"9.9.9\"},\n}\n",
			after:  "{\n  // the release tool owns this field\n  \"name\": \"demo\",\n  \"version\": \"1.13.0\",\n  \"deps\": {\"version\": \"9.9.9\"},\n}\n",
		},
		{
			name:   "explicit format",
			file:   "VERSION",
			format: "json",
			key:    "release.current",
			before: `{"release": {"current": "1.12.2"}, "list": [1, 2]}`,
			after:  `{"release": {"current": "1.13.0"}, "list": [1, 2]}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeMarker(t, tc.file, tc.before)
			m := New(path, tc.format, tc.key)

			got, err := m.Read()
			require.NoError(t, err)
			assert.Equal(t, semver.Version{Major: 1, Minor: 12, Patch: 2}, got)

			require.NoError(t, m.Write(semver.Version{Major: 1, Minor: 13}))
			assert.Equal(t, tc.after, readFile(t, path))

			again, err := m.Read()
			require.NoError(t, err)
			assert.Equal(t, semver.Version{Major: 1, Minor: 13}, again)
		})
	}
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("", "Chart.yaml"))
	assert.Equal(t, FormatYAML, DetectFormat("", "x.YML"))
	assert.Equal(t, FormatJSON, DetectFormat("", "package.json"))
	assert.Equal(t, FormatAssign, DetectFormat("", "_version.py"))
	assert.Equal(t, FormatAssign, DetectFormat("assign", "package.json"))
}

func TestReadMissingAssignment(t *testing.T) {
	path := writeMarker(t, "_version.py", "name = 'demo'\n")
	_, err := New(path, "", "__version__").Read()
	assert.ErrorIs(t, err, ErrMarkerNotFound)
}

func TestReadAmbiguousAssignment(t *testing.T) {
	cases := []struct {
		file, key, content string
	}{
		{"_version.py", "__version__", "__version__ = '1.0.0'\n__version__ = '2.0.0'\n"},
		{"package.json", "version", `{"version": "1.0.0", "version": "2.0.0"}`},
		{"Chart.yaml", "version", "version: 1.0.0\nversion: 2.0.0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.file, func(t *testing.T) {
			path := writeMarker(t, tc.file, tc.content)
			_, err := New(path, "", tc.key).Read()
			assert.ErrorIs(t, err, ErrMarkerAmbiguous)
		})
	}
}

func TestReadMalformedVersion(t *testing.T) {
	path := writeMarker(t, "_version.py", "__version__ = '1.12'\n")
	_, err := New(path, "", "__version__").Read()
	assert.ErrorIs(t, err, semver.ErrFormat)
}

func TestJSONNonStringValue(t *testing.T) {
	path := writeMarker(t, "package.json", `{"version": 3}`)
	_, err := New(path, "", "version").Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a string")
}

func TestRenderLeavesFileUntouched(t *testing.T) {
	const content = "__version__ = \"0.9.1\"\n"
	path := writeMarker(t, "_version.py", content)

	before, after, err := New(path, "", "__version__").Render(semver.Version{Major: 1})
	require.NoError(t, err)
	assert.Equal(t, content, string(before))
	assert.Equal(t, "__version__ = \"1.0.0\"\n", string(after))
	assert.Equal(t, content, readFile(t, path))
}

func TestReadMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.py"), "", "__version__").Read()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
