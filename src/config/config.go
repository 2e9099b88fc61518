package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no --config flag is given.
const DefaultConfigFile = ".waxlint.yml"

// CurrentVersion is the latest config schema version.
const CurrentVersion = 1

// Config is the top-level waxlint configuration.
type Config struct {
	Version  int        `yaml:"version" toml:"version"`
	Requires string     `yaml:"requires,omitempty" toml:"requires,omitempty"`
	API      APIConfig  `yaml:"api" toml:"api"`
	Lint     LintConfig `yaml:"lint" toml:"lint"`

	// Path is the file the config was loaded from; empty when defaults
	// were used.
	Path string `yaml:"-" toml:"-"`
}

// Load reads configuration from a YAML or TOML file, chosen by extension.
// If path is empty, it tries the default file.
// Returns sensible defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, err
	}

	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes config data over the defaults. name selects the format:
// ".toml" files are TOML, everything else YAML.
func Parse(data []byte, name string) (*Config, error) {
	cfg := Defaults()
	if isTOML(name) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	return cfg, nil
}

// Encode renders cfg in the format selected by name.
func Encode(cfg *Config, name string) ([]byte, error) {
	if isTOML(name) {
		return toml.Marshal(cfg)
	}
	return yaml.Marshal(cfg)
}

// Defaults returns the configuration used when no file exists.
func Defaults() *Config {
	return &Config{
		Version: CurrentVersion,
		API:     DefaultAPIConfig(),
		Lint:    DefaultLintConfig(),
	}
}

func isTOML(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".toml")
}
