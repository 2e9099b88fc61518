package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// MigrateToLatest takes raw YAML data and migrates it to the current schema version.
// Returns the migrated YAML bytes ready for writing.
//
// Migration chain:
//
//	version 0 (plugin settings: a bare api_key) → 1
//	version 1 → current (no-op, already latest)
func MigrateToLatest(data []byte) ([]byte, error) {
	ver, err := peekVersion(data)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	switch ver {
	case 1:
		return data, nil
	case 0:
		return migrateSettings(data)
	default:
		return nil, fmt.Errorf("migrate: unknown config version %d (latest supported: %d)", ver, CurrentVersion)
	}
}

// migrateSettings converts an editor plugin settings file, which only
// carries an api_key, into a version 1 config.
func migrateSettings(data []byte) ([]byte, error) {
	var legacy struct {
		APIKey string `yaml:"api_key"`
	}
	if err := yaml.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("migrate: reading settings: %w", err)
	}

	cfg := Defaults()
	cfg.API.Key = legacy.APIKey
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return out, nil
}

// peekVersion extracts the version field from raw YAML without full parsing.
// Returns 0 if no version field is present.
func peekVersion(data []byte) (int, error) {
	var probe struct {
		Version int `yaml:"version"`
	}

	if err := yaml.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("reading version: %w", err)
	}

	return probe.Version, nil
}
