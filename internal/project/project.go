package project

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/brandonbloom/release/internal/config"
	"github.com/brandonbloom/release/internal/gitutil"
)

// ErrConfigExists indicates `release init` found a config already in place.
var ErrConfigExists = errors.New(config.FileName + " already exists")

// Project is a git repository together with its release configuration.
type Project struct {
	Root       string
	ConfigPath string
	Config     config.Config
	// HasConfig is false when the defaults are in effect.
	HasConfig bool
}

// Discover resolves the repository containing start and loads its config.
func Discover(ctx context.Context, start string) (*Project, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	root, err := gitutil.TopLevel(ctx, abs)
	if err != nil {
		return nil, err
	}
	return Load(root)
}

// Load constructs a Project from a known repository root.
func Load(root string) (*Project, error) {
	path := filepath.Join(root, config.FileName)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return &Project{
		Root:       root,
		ConfigPath: path,
		Config:     cfg,
		HasConfig:  fileExists(path),
	}, nil
}

// MarkerPath is the absolute location of the version marker.
func (p *Project) MarkerPath() string {
	return p.Config.MarkerPath(p.Root)
}

// WriteConfig saves cfg as the project's config. Existing files are only
// replaced when force is set.
func WriteConfig(root string, cfg config.Config, force bool) (string, error) {
	path := filepath.Join(root, config.FileName)
	if !force && fileExists(path) {
		return path, ErrConfigExists
	}
	return path, config.Save(path, cfg)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
