package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/privacygrade/internal/score"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the
// current and home directories.
const DefaultConfigFile = ".privacygrade"

// xdgConfigFile is the file name inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// PenaltyConfig selects the third-party penalty table.
type PenaltyConfig struct {
	// Profile is on-demand or continuous.
	Profile string `yaml:"profile,omitempty"`

	// Tiers replaces the profile with a custom table.
	Tiers []score.PenaltyTier `yaml:"tiers,omitempty"`
}

// File is the structure of the YAML configuration file.
type File struct {
	// Trackers maps a category (analytics, advertising, social,
	// fingerprinting, heatmaps) to extra domains. Other names are filed
	// as heuristic.
	Trackers map[string][]string `yaml:"trackers,omitempty"`

	Penalties PenaltyConfig `yaml:"penalties,omitempty"`

	// Merge is largest or union.
	Merge string `yaml:"merge,omitempty"`

	// RepaintInterval is a duration such as "5s". A nil value keeps the
	// default so that "0s" can disable debouncing.
	RepaintInterval *time.Duration `yaml:"repaint_interval,omitempty"`

	// SettleDelay is how long browse lets a page run.
	SettleDelay *time.Duration `yaml:"settle_delay,omitempty"`

	// Listen is the serve address.
	Listen string `yaml:"listen,omitempty"`
}

// LoadConfigFile reads the YAML configuration at path. A missing file
// returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if f.Trackers == nil {
		f.Trackers = make(map[string][]string)
	}
	return &f, nil
}

// FindConfigFile returns the configuration file to use, or "" when there
// is none. An explicit configPath is used only if it exists. Otherwise it
// looks in order for:
//  1. .privacygrade in the current directory
//  2. config.yaml in XDGConfigDir
//  3. .privacygrade in the home directory
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
