package config

import "os"

// AuthMode selects how the credential reaches the lint service.
type AuthMode string

const (
	// AuthHeader sends the key in the Authorization header and includes the
	// rules list in the request body.
	AuthHeader AuthMode = "header"
	// AuthQuery sends the key as the apikey query parameter and omits rules.
	AuthQuery AuthMode = "query"
)

// Known service endpoints.
const (
	EndpointAudit = "https://base.wallyax.com/audit-lint-html"
	EndpointLint  = "https://wax-prd1-uae.wallyax.com/lint/html"
)

// APIConfig holds the lint service connection settings.
type APIConfig struct {
	Endpoint string   `yaml:"endpoint" toml:"endpoint"`
	Auth     AuthMode `yaml:"auth" toml:"auth"`
	Key      string   `yaml:"key,omitempty" toml:"key,omitempty"`
	KeyEnv   string   `yaml:"key_env" toml:"key_env"`
	Rules    []string `yaml:"rules" toml:"rules"`
	Timeout  int      `yaml:"timeout" toml:"timeout"` // seconds
}

// DefaultAPIConfig returns production defaults.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		Endpoint: EndpointAudit,
		Auth:     AuthHeader,
		KeyEnv:   "WAXLINT_API_KEY",
		Rules:    []string{},
		Timeout:  30,
	}
}

// ResolveKey returns the configured key, or the value of KeyEnv when the
// key is unset. An empty result is passed on as is.
func (a APIConfig) ResolveKey() string {
	if a.Key != "" {
		return a.Key
	}
	if a.KeyEnv != "" {
		return os.Getenv(a.KeyEnv)
	}
	return ""
}
