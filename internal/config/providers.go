package config

import "time"

// defaultProviderTimeout bounds a single model call when providers.yaml
// does not say otherwise. Generation over a long assembled context is
// slow; summarization calls reuse the same client.
const defaultProviderTimeout = 120 * time.Second

// ProvidersConfig is the providers.yaml overlay: one entry per upstream
// endpoint, keyed by the name models.yaml routes against.
type ProvidersConfig struct {
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// ProviderConfig describes one upstream model endpoint. Type selects
// the wire format ("anthropic", anything else is OpenAI-compatible).
type ProviderConfig struct {
	Type          string            `yaml:"type"`
	BaseURL       string            `yaml:"base_url"`
	APIKey        string            `yaml:"api_key"`
	APIVersion    string            `yaml:"api_version,omitempty"`
	MaxConcurrent int               `yaml:"max_concurrent"`
	Timeout       time.Duration     `yaml:"timeout"`
	Headers       map[string]string `yaml:"headers,omitempty"`
}

// ClientTimeout is the configured timeout, or the default when unset.
func (c ProviderConfig) ClientTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultProviderTimeout
}
