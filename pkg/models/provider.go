package models

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Supported completion providers. "custom" and "siliconflow" speak the
// OpenAI-compatible wire format against a caller-supplied base URL.
var SupportedProviders = map[string]struct{}{
	"openai":      {},
	"deepseek":    {},
	"anthropic":   {},
	"google":      {},
	"ollama":      {},
	"qwen":        {},
	"siliconflow": {},
	"custom":      {},
}

// ProviderConfig holds the credentials and sampling defaults for one
// configured completion provider. Records are keyed by an opaque uuid in the
// on-disk map.
type ProviderConfig struct {
	Name        string                 `json:"name"`
	Provider    string                 `json:"provider"`
	Model       string                 `json:"model"`
	ApiKey      string                 `json:"api_key"`
	BaseUrl     string                 `json:"base_url"`
	Temperature *float32               `json:"temperature,omitempty"`
	TopP        *float32               `json:"top_p,omitempty"`
	MaxTokens   *int                   `json:"max_tokens,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

const (
	DefaultTemperature = float32(0.7)
	DefaultTopP        = float32(1.0)
	DefaultMaxTokens   = 1024
)

func (p *ProviderConfig) SamplingTemperature() float32 {
	if p == nil || p.Temperature == nil {
		return DefaultTemperature
	}
	return *p.Temperature
}

func (p *ProviderConfig) SamplingTopP() float32 {
	if p == nil || p.TopP == nil {
		return DefaultTopP
	}
	return *p.TopP
}

func (p *ProviderConfig) SamplingMaxTokens() int {
	if p == nil || p.MaxTokens == nil || *p.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return *p.MaxTokens
}

// LoadProviders reads the uuid -> config map from path. A missing file is an
// empty map, not an error.
func LoadProviders(path string) (map[string]*ProviderConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]*ProviderConfig{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var providers map[string]*ProviderConfig
	if err := json.Unmarshal(data, &providers); err != nil {
		return nil, err
	}
	if providers == nil {
		providers = map[string]*ProviderConfig{}
	}
	return providers, nil
}

// SaveProviders writes the full uuid -> config map to path.
func SaveProviders(path string, providers map[string]*ProviderConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(providers, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
