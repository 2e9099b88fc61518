package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg, Defaults()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".waxlint.yml")
	data := `version: 1
api:
  endpoint: https://wax-prd1-uae.wallyax.com/lint/html
  auth: query
lint:
  level: full
  exclude: ["gen/**"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.API.Auth != AuthQuery || cfg.API.Endpoint != EndpointLint {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.API.Timeout != 30 || cfg.API.KeyEnv != "WAXLINT_API_KEY" {
		t.Errorf("defaults not kept under api: %+v", cfg.API)
	}
	if cfg.Lint.Level != LevelFull || !reflect.DeepEqual(cfg.Lint.Exclude, []string{"gen/**"}) {
		t.Errorf("lint = %+v", cfg.Lint)
	}
	if cfg.Lint.Concurrency != 4 {
		t.Errorf("concurrency = %d, want default 4", cfg.Lint.Concurrency)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waxlint.toml")
	data := `version = 1

[api]
rules = ["alt-text", "label"]
timeout = 5

[lint]
cache_ttl = "1h"
secrets_guard = false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(cfg.API.Rules, []string{"alt-text", "label"}) || cfg.API.Timeout != 5 {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.API.Endpoint != EndpointAudit {
		t.Errorf("endpoint = %q, want default", cfg.API.Endpoint)
	}
	if cfg.Lint.SecretsGuardEnabled() {
		t.Error("secrets guard should be disabled")
	}
	if d, err := cfg.Lint.CacheMaxAge(); err != nil || d != time.Hour {
		t.Errorf("CacheMaxAge = %v, %v", d, err)
	}
}

func TestSecretsGuardEnabled(t *testing.T) {
	on, off := true, false
	tests := []struct {
		name  string
		value *bool
		want  bool
	}{
		{name: "unset", value: nil, want: false},
		{name: "enabled", value: &on, want: true},
		{name: "disabled", value: &off, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLintConfig()
			l.SecretsGuard = tt.value
			if got := l.SecretsGuardEnabled(); got != tt.want {
				t.Errorf("SecretsGuardEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
	if Defaults().Lint.SecretsGuardEnabled() {
		t.Error("secrets guard should be off by default")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".waxlint.yml")
	if err := os.WriteFile(path, []byte("api: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, name := range []string{"c.yml", "c.toml"} {
		cfg := Defaults()
		cfg.API.Rules = []string{"alt-text"}
		data, err := Encode(cfg, name)
		if err != nil {
			t.Fatalf("Encode(%s): %v", name, err)
		}
		back, err := Parse(data, name)
		if err != nil {
			t.Fatalf("Parse(%s): %v", name, err)
		}
		if !reflect.DeepEqual(back.API, cfg.API) || back.Lint.Level != cfg.Lint.Level {
			t.Errorf("%s round trip = %+v", name, back)
		}
	}
}

func TestResolveKey(t *testing.T) {
	t.Setenv("WAX_TEST_KEY", "from-env")

	a := APIConfig{KeyEnv: "WAX_TEST_KEY"}
	if got := a.ResolveKey(); got != "from-env" {
		t.Errorf("ResolveKey = %q", got)
	}
	a.Key = "inline"
	if got := a.ResolveKey(); got != "inline" {
		t.Errorf("ResolveKey = %q", got)
	}
	if got := (APIConfig{}).ResolveKey(); got != "" {
		t.Errorf("ResolveKey = %q, want empty", got)
	}
}

func TestValidate(t *testing.T) {
	t.Setenv("WAXLINT_API_KEY", "k")

	tests := []struct {
		name    string
		mutate  func(*Config)
		running string
		wantErr string
		warn    string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "bad version", mutate: func(c *Config) { c.Version = 2 }, wantErr: "version"},
		{name: "relative endpoint", mutate: func(c *Config) { c.API.Endpoint = "/lint" }, wantErr: "api.endpoint"},
		{name: "http endpoint", mutate: func(c *Config) { c.API.Endpoint = "http://localhost:8080/lint" }, warn: "not https"},
		{name: "unknown auth", mutate: func(c *Config) { c.API.Auth = "basic" }, wantErr: "api.auth"},
		{name: "rules in query mode", mutate: func(c *Config) {
			c.API.Auth = AuthQuery
			c.API.Rules = []string{"x"}
		}, warn: "api.rules"},
		{name: "bad level", mutate: func(c *Config) { c.Lint.Level = "some" }, wantErr: "lint.level"},
		{name: "bad line mode", mutate: func(c *Config) { c.Lint.LineMode = "row" }, wantErr: "lint.line_mode"},
		{name: "bad ttl", mutate: func(c *Config) { c.Lint.CacheTTL = "soon" }, wantErr: "lint.cache_ttl"},
		{name: "bad extension", mutate: func(c *Config) { c.Lint.Extensions = []string{"html"} }, wantErr: "lint.extensions[0]"},
		{name: "requires satisfied", mutate: func(c *Config) { c.Requires = ">= 1.0.0" }, running: "1.2.0"},
		{name: "requires unsatisfied", mutate: func(c *Config) { c.Requires = "< 1.0.0" }, running: "1.2.0", wantErr: "requires"},
		{name: "requires with dev build", mutate: func(c *Config) { c.Requires = ">= 1.0.0" }, running: "dev", warn: "cannot check"},
		{name: "requires invalid", mutate: func(c *Config) { c.Requires = ">>> one" }, running: "1.0.0", wantErr: "invalid constraint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			running := tt.running
			if running == "" {
				running = "1.0.0"
			}

			warnings, err := Validate(cfg, running)
			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantErr)
			}
			if tt.warn != "" && !strings.Contains(strings.Join(warnings, "\n"), tt.warn) {
				t.Errorf("warnings = %v, want containing %q", warnings, tt.warn)
			}
		})
	}
}

func TestValidate_MissingKeyWarns(t *testing.T) {
	t.Setenv("WAXLINT_API_KEY", "")
	warnings, err := Validate(Defaults(), "1.0.0")
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !strings.Contains(strings.Join(warnings, "\n"), "api.key") {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestMigrateToLatest(t *testing.T) {
	out, err := MigrateToLatest([]byte("api_key: abc123\n"))
	if err != nil {
		t.Fatalf("MigrateToLatest: %v", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(out, &cfg); err != nil {
		t.Fatalf("migrated output is not YAML: %v", err)
	}
	if cfg.Version != CurrentVersion || cfg.API.Key != "abc123" || cfg.API.Endpoint != EndpointAudit {
		t.Errorf("migrated = %+v", cfg)
	}

	current := []byte("version: 1\nlint:\n  level: full\n")
	if out, err := MigrateToLatest(current); err != nil || string(out) != string(current) {
		t.Errorf("current version changed: %q, %v", out, err)
	}

	if _, err := MigrateToLatest([]byte("version: 9\n")); err == nil {
		t.Error("expected error for unknown version")
	}
}
