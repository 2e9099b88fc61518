package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is invalid.
// running is the version of the running binary, checked against Requires;
// non-semver values such as "dev" skip that check.
func Validate(cfg *Config, running string) (warnings []string, err error) {
	var errs []string

	// ── Version ───────────────────────────────────────────────────────────

	if cfg.Version != CurrentVersion {
		errs = append(errs, fmt.Sprintf("version: must be %d, got %d", CurrentVersion, cfg.Version))
	}

	if cfg.Requires != "" {
		constraint, cerr := semver.NewConstraint(cfg.Requires)
		if cerr != nil {
			errs = append(errs, fmt.Sprintf("requires: invalid constraint %q: %v", cfg.Requires, cerr))
		} else if v, verr := semver.NewVersion(running); verr != nil {
			warnings = append(warnings, fmt.Sprintf("requires: cannot check %q against version %q", cfg.Requires, running))
		} else if !constraint.Check(v) {
			errs = append(errs, fmt.Sprintf("requires: waxlint %s does not satisfy %q", v, cfg.Requires))
		}
	}

	// ── API ───────────────────────────────────────────────────────────────

	if cfg.API.Endpoint == "" {
		errs = append(errs, "api.endpoint: required")
	} else if u, perr := url.Parse(cfg.API.Endpoint); perr != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Sprintf("api.endpoint: %q is not an absolute URL", cfg.API.Endpoint))
	} else if u.Scheme != "https" {
		warnings = append(warnings, fmt.Sprintf("api.endpoint: %q is not https; the API key is sent in clear text", cfg.API.Endpoint))
	}

	switch cfg.API.Auth {
	case AuthHeader, AuthQuery:
	default:
		errs = append(errs, fmt.Sprintf("api.auth: unknown mode %q (supported: header, query)", cfg.API.Auth))
	}

	if cfg.API.Auth == AuthQuery && len(cfg.API.Rules) > 0 {
		warnings = append(warnings, "api.rules: ignored when api.auth is query")
	}
	if cfg.API.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("api.timeout: must be non-negative, got %d", cfg.API.Timeout))
	}
	if cfg.API.ResolveKey() == "" {
		warnings = append(warnings, "api.key: no API key configured; requests are sent without credentials")
	}

	// ── Lint ──────────────────────────────────────────────────────────────

	switch cfg.Lint.Level {
	case "", LevelChanged, LevelFull:
	default:
		errs = append(errs, fmt.Sprintf("lint.level: unknown level %q (supported: changed, full)", cfg.Lint.Level))
	}

	switch cfg.Lint.LineMode {
	case "", LineModeOffset, LineModeIndex:
	default:
		errs = append(errs, fmt.Sprintf("lint.line_mode: unknown mode %q (supported: offset, index)", cfg.Lint.LineMode))
	}

	if _, derr := cfg.Lint.CacheMaxAge(); derr != nil {
		errs = append(errs, fmt.Sprintf("lint.cache_ttl: %v", derr))
	}

	if cfg.Lint.Concurrency < 0 {
		errs = append(errs, fmt.Sprintf("lint.concurrency: must be non-negative, got %d", cfg.Lint.Concurrency))
	}

	for i, ext := range cfg.Lint.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("lint.extensions[%d]: %q must start with a dot", i, ext))
		}
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}
