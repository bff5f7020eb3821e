package clientcli

import (
	"cmp"
	"os"
)

// DefaultEndpoint is the gateway address used when none is configured.
const DefaultEndpoint = "http://localhost:5708"

// Environment variables read by the client.
const (
	EnvEndpoint = "ATTACHLY_ENDPOINT"
	EnvToken    = "ATTACHLY_TOKEN"
	EnvProfile  = "ATTACHLY_PROFILE"
	EnvConfig   = "ATTACHLY_CONFIG"
)

// Config is the resolved connection setting a Client runs with.
type Config struct {
	Endpoint string
	Token    string
}

// WithDefaults returns a copy with DefaultEndpoint filled in.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &cfg
}

// ValidateWithAuth requires a bearer token; the gateway rejects every
// request without one.
func (c *Config) ValidateWithAuth() error {
	if c.Token == "" {
		return ErrTokenRequired
	}
	return nil
}

// ConfigFromProfile copies the connection settings out of p.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{Endpoint: p.Endpoint, Token: p.Token}
}

// ConfigFromEnv reads ATTACHLY_ENDPOINT and ATTACHLY_TOKEN.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint: os.Getenv(EnvEndpoint),
		Token:    os.Getenv(EnvToken),
	}
}

// ProfileFromEnv returns ATTACHLY_PROFILE.
func ProfileFromEnv() string { return os.Getenv(EnvProfile) }

// ConfigPathFromEnv returns ATTACHLY_CONFIG.
func ConfigPathFromEnv() string { return os.Getenv(EnvConfig) }

// MergeConfig layers configs left to right. Empty fields never override.
func MergeConfig(configs ...*Config) *Config {
	merged := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		merged.Endpoint = cmp.Or(cfg.Endpoint, merged.Endpoint)
		merged.Token = cmp.Or(cfg.Token, merged.Token)
	}
	return merged
}

