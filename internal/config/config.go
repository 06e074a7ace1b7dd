package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// FileName is the config file looked up at the repository root.
const FileName = ".release.toml"

// Config captures the user editable settings stored in .release.toml.
type Config struct {
	IntegrationBranch string           `toml:"integration_branch"`
	BranchPrefix      string           `toml:"branch_prefix"`
	Remote            string           `toml:"remote"`
	Marker            MarkerBlock      `toml:"marker"`
	Test              TestBlock        `toml:"test"`
	PullRequest       PullRequestBlock `toml:"pull_request"`
}

// MarkerBlock locates the file holding the project's current version.
type MarkerBlock struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
	Key    string `toml:"key"`
}

// TestBlock describes the script that gates finalizing a release.
type TestBlock struct {
	Run string `toml:"run"`
}

// PullRequestBlock governs the advisory pull request step.
type PullRequestBlock struct {
	Tool string `toml:"tool"`
	Base string `toml:"base"`
}

var (
	// ErrMissingIntegrationBranch indicates the config omitted the branch releases are cut from.
	ErrMissingIntegrationBranch = errors.New("config.integration_branch must be set")
	// ErrInvalidPrefix indicates a branch prefix that cannot encode a version.
	ErrInvalidPrefix = errors.New("config.branch_prefix must be non-empty and must not contain whitespace")
	// ErrInvalidPRTool indicates the pull request tool is not recognized.
	ErrInvalidPRTool = errors.New("config.pull_request.tool must be gh, hub, or none")
	// ErrInvalidMarkerFormat indicates the marker format is not recognized.
	ErrInvalidMarkerFormat = errors.New("config.marker.format must be assign, yaml, or json")
	// ErrMissingMarkerPath indicates the config omitted the version marker location.
	ErrMissingMarkerPath = errors.New("config.marker.path must be set")
)

// Default returns the baseline configuration: releases are cut from develop
// onto release/vX.Y.Z branches and merged into master.
func Default() Config {
	cfg := Config{
		Test: TestBlock{Run: "./pre-push"},
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.IntegrationBranch == "" {
		c.IntegrationBranch = "develop"
	}
	if c.BranchPrefix == "" {
		c.BranchPrefix = "release/v"
	}
	if c.Remote == "" {
		c.Remote = "origin"
	}
	c.Marker.applyDefaults()
	c.PullRequest.applyDefaults()
}

func (m *MarkerBlock) applyDefaults() {
	if m.Path == "" {
		m.Path = "_version.py"
	}
	m.Format = strings.ToLower(m.Format)
	if m.Key == "" {
		m.Key = defaultMarkerKey(m.Format, m.Path)
	}
}

func defaultMarkerKey(format, path string) string {
	switch format {
	case "yaml", "json":
		return "version"
	case "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".json":
			return "version"
		}
	}
	return "__version__"
}

func (p *PullRequestBlock) applyDefaults() {
	if p.Tool == "" {
		p.Tool = "gh"
	} else {
		p.Tool = strings.ToLower(p.Tool)
	}
	if p.Base == "" {
		p.Base = "master"
	}
}

// Normalize fills unset fields with defaults and validates the result.
func Normalize(cfg Config) (Config, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures the configuration can guide a release.
func (c Config) Validate() error {
	if c.IntegrationBranch == "" {
		return ErrMissingIntegrationBranch
	}
	if c.BranchPrefix == "" || strings.ContainsAny(c.BranchPrefix, " \t\n") {
		return ErrInvalidPrefix
	}
	if c.Marker.Path == "" {
		return ErrMissingMarkerPath
	}
	switch c.Marker.Format {
	case "", "assign", "yaml", "json":
	default:
		return ErrInvalidMarkerFormat
	}
	switch c.PullRequest.Tool {
	case "gh", "hub", "none":
	default:
		return ErrInvalidPRTool
	}
	return nil
}

// MarkerPath resolves the marker location against the repository root.
func (c Config) MarkerPath(root string) string {
	if filepath.IsAbs(c.Marker.Path) {
		return c.Marker.Path
	}
	return filepath.Join(root, filepath.FromSlash(c.Marker.Path))
}

// Load reads configuration from disk. Missing files return a default config.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return Normalize(cfg)
}

// Save writes configuration to disk, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
