// Package version reports the build of the running binary.
package version

import (
	"runtime/debug"
	"strings"
)

// Info is what the Go toolchain stamped into the binary.
type Info struct {
	Version   string
	Revision  string
	Modified  bool
	GoVersion string
}

// Read returns the stamped build info, or a "(devel)" placeholder.
func Read() Info {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return Info{Version: "(devel)"}
	}
	info := Info{Version: bi.Main.Version, GoVersion: bi.GoVersion}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	if info.Version == "" {
		info.Version = "(devel)"
	}
	return info
}

// String is the released module version, or "(devel)" for local and
// pseudo-versioned builds.
func String() string {
	return Read().Release()
}

// Release reduces Version to a tagged release or "(devel)".
func (i Info) Release() string {
	v := i.Version
	if v == "" || v == "(devel)" || strings.Contains(v, "+dirty") || isPseudo(v) {
		return "(devel)"
	}
	return v
}

// isPseudo matches vX.Y.Z-yyyymmddhhmmss-abcdefabcdef and its variants.
func isPseudo(v string) bool {
	v, _, _ = strings.Cut(v, "+")
	parts := strings.Split(v, "-")
	if len(parts) < 3 {
		return false
	}
	stamp, hash := parts[len(parts)-2], parts[len(parts)-1]
	if i := strings.LastIndexByte(stamp, '.'); i >= 0 {
		stamp = stamp[i+1:]
	}
	return len(stamp) == 14 && strings.Trim(stamp, "0123456789") == "" &&
		len(hash) == 12 && strings.Trim(strings.ToLower(hash), "0123456789abcdef") == ""
}
