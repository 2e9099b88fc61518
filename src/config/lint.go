package config

import "time"

// Level controls how much of the codebase gets scanned.
type Level string

const (
	LevelChanged Level = "changed"
	LevelFull    Level = "full"
)

// LineMode selects how token lines are computed.
type LineMode string

const (
	// LineModeOffset places a token at the line holding its start offset.
	LineModeOffset LineMode = "offset"
	// LineModeIndex feeds the running match index in as the row, which
	// reproduces the editor plugin's placement.
	LineModeIndex LineMode = "index"
)

// LintConfig holds lint-specific configuration.
type LintConfig struct {
	Level        Level    `yaml:"level" toml:"level"`
	CacheDir     string   `yaml:"cache_dir" toml:"cache_dir"`
	CacheTTL     string   `yaml:"cache_ttl" toml:"cache_ttl"`
	TargetBranch string   `yaml:"target_branch" toml:"target_branch"`
	Exclude      []string `yaml:"exclude" toml:"exclude"`
	Extensions   []string `yaml:"extensions" toml:"extensions"`
	SecretsGuard *bool    `yaml:"secrets_guard,omitempty" toml:"secrets_guard,omitempty"`
	Concurrency  int      `yaml:"concurrency" toml:"concurrency"`
	LineMode     LineMode `yaml:"line_mode" toml:"line_mode"`
}

// DefaultLintConfig returns production defaults.
func DefaultLintConfig() LintConfig {
	return LintConfig{
		Level:       LevelChanged,
		CacheTTL:    "24h",
		Exclude:     []string{"node_modules/**", "dist/**", "vendor/**"},
		Extensions:  []string{".html", ".js", ".jsx", ".ts", ".tsx", ".php", ".vue", ".astro", ".svelte"},
		Concurrency: 4,
		LineMode:    LineModeOffset,
	}
}

// SecretsGuardEnabled reports whether markup is scanned for secrets before
// upload. Off unless set.
func (l LintConfig) SecretsGuardEnabled() bool {
	return l.SecretsGuard != nil && *l.SecretsGuard
}

// CacheMaxAge parses CacheTTL. Empty or "0" means no expiry.
func (l LintConfig) CacheMaxAge() (time.Duration, error) {
	if l.CacheTTL == "" || l.CacheTTL == "0" {
		return 0, nil
	}
	return time.ParseDuration(l.CacheTTL)
}
