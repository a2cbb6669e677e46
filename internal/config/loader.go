package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default project file name.
const DefaultConfigFile = ".codebook.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads a project file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cf, err := ParseConfigFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cf.dir = filepath.Dir(path)
	if cf.Publish.Dir != "" && !filepath.IsAbs(cf.Publish.Dir) {
		cf.Publish.Dir = filepath.Join(cf.dir, cf.Publish.Dir)
	}
	if cf.History.Dir != "" && !filepath.IsAbs(cf.History.Dir) {
		cf.History.Dir = filepath.Join(cf.dir, cf.History.Dir)
	}
	return cf, nil
}

// ParseConfigFile decodes project file contents. Relative paths stay
// relative to the working directory.
func ParseConfigFile(data []byte) (*File, error) {
	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(cf.Jobs))
	for i, j := range cf.Jobs {
		if j.Name == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrUnnamedJob, i+1)
		}
		if seen[j.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateJob, j.Name)
		}
		seen[j.Name] = true
	}
	if err := cf.Defaults.Validate(); err != nil {
		return nil, err
	}
	cf.Publish.expandEnv()

	return &cf, nil
}

// FindConfigFile searches for the project file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .codebook.yaml in the current directory
// 3. Look for .codebook.yaml in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}
