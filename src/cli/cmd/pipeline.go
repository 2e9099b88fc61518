package cmd

import (
	"fmt"
	"os"

	"github.com/sofmeright/waxlint/src/config"
	"github.com/sofmeright/waxlint/src/lint"
	"github.com/sofmeright/waxlint/src/markup"
	"github.com/sofmeright/waxlint/src/waxapi"
)

// newPipeline wires the lint service client, cache and secrets guard from
// the loaded config.
func newPipeline(rootDir string, noCache bool) (*lint.Pipeline, error) {
	maxAge, err := cfg.Lint.CacheMaxAge()
	if err != nil {
		return nil, fmt.Errorf("lint.cache_ttl: %w", err)
	}

	key := cfg.API.ResolveKey()
	if key == "" && verbose {
		fmt.Fprintf(os.Stderr, "api: no key configured (set %s or api.key)\n", cfg.API.KeyEnv)
	}
	client := waxapi.New(cfg.API, key)

	cache := &lint.Cache{
		Dir:     lint.ResolveCacheDir(rootDir, cfg.Lint.CacheDir),
		Enabled: !noCache,
		MaxAge:  maxAge,
	}

	p := &lint.Pipeline{
		Linter:     client,
		Tokenizer:  tokenizer(cfg.Lint.LineMode),
		Extensions: cfg.Lint.Extensions,
		Cache:      cache,
		CacheScope: client.Scope(),
	}
	if cfg.Lint.SecretsGuardEnabled() {
		p.Guard = lint.NewSecretsGuard()
	}
	return p, nil
}

func tokenizer(mode config.LineMode) markup.Tokenizer {
	if mode == config.LineModeIndex {
		return markup.Tokenizer{Locator: markup.IndexLocator}
	}
	return markup.DefaultTokenizer
}
