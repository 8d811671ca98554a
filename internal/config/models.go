package config

type ModelsConfig struct {
	Models map[string]ModelMapping `yaml:"models"`
}

// ModelMapping routes a logical model name (as referenced by the
// pipeline's per-phase settings) to a provider and its model id.
type ModelMapping struct {
	DisplayName string          `yaml:"display_name"`
	Primary     ProviderRoute   `yaml:"primary"`
	Fallback    []ProviderRoute `yaml:"fallback"`
}

type ProviderRoute struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}
