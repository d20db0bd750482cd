package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when an explicitly named config file is missing.
var ErrConfigNotFound = errors.New("config file not found")

// configFileNames is the ordered list of config file names to search for.
var configFileNames = []string{
	".ablfmt.yaml",
	".ablfmt.yml",
	"ablfmt.yaml",
	"ablfmt.yml",
}

// File is the on-disk configuration.
type File struct {
	// EOL forces a line ending; "auto" keeps the one detected per file.
	EOL     string   `yaml:"eol"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	// History is the DSN of the format-run store; empty disables it.
	History  string         `yaml:"history"`
	Jobs     int            `yaml:"jobs"`
	Settings map[string]any `yaml:"settings"`
}

// DefaultFile returns the configuration used when no file is found.
func DefaultFile() *File {
	return &File{
		EOL:      "auto",
		Include:  []string{"**/*.p", "**/*.w", "**/*.i", "**/*.cls"},
		Exclude:  []string{"**/.git/**"},
		Jobs:     4,
		Settings: map[string]any{},
	}
}

// Discover returns the first config file found in dir or any parent
// directory, or "" when there is none.
func Discover(dir string) string {
	for {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Load reads path, or the discovered file when path is empty. Fields missing
// from the YAML keep their defaults.
func Load(path string) (*File, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		path = Discover(wd)
	}
	if path == "" {
		return DefaultFile(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := DefaultFile()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.Settings == nil {
		cfg.Settings = map[string]any{}
	}
	return cfg, nil
}

// Manager builds the setting manager for this file.
func (f *File) Manager() *Manager {
	return New(f.Settings)
}
