package model

// ProviderConfig configures one text-generation provider.
type ProviderConfig struct {
	Name      string  `yaml:"name" json:"name"`                 // "openai", "anthropic", "ollama"
	Model     string  `yaml:"model" json:"model"`               // provider-specific model name
	APIKey    string  `yaml:"api_key" json:"api_key"`           // for hosted providers
	BaseURL   string  `yaml:"base_url" json:"base_url"`         // custom endpoint (Ollama, proxies)
	TimeoutMs int     `yaml:"timeout_ms" json:"timeout_ms"`     // per-provider deadline, 0 = default
	Weight    float64 `yaml:"weight" json:"weight"`             // base score in winner selection
	RPM       int     `yaml:"rpm" json:"rpm"`                   // client-side requests/minute, 0 = unlimited
	MaxTokens int     `yaml:"max_tokens" json:"max_tokens"`     // response budget
}

// PipelineConfig tunes the analysis stages.
type PipelineConfig struct {
	MaxClaims        int     `yaml:"max_claims" json:"max_claims"`
	SimThreshold     float64 `yaml:"sim_threshold" json:"sim_threshold"`
	ExtractTimeoutMs int     `yaml:"extract_timeout_ms" json:"extract_timeout_ms"`
	RefineTimeoutMs  int     `yaml:"refine_timeout_ms" json:"refine_timeout_ms"`
	ModelVersion     string  `yaml:"model_version" json:"model_version"` // part of the cache key
}

// CacheConfig bounds the response cache.
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds" json:"ttl_seconds"`
	MaxEntries int `yaml:"max_entries" json:"max_entries"`
}

// TelemetryConfig locates the usage ledger.
type TelemetryConfig struct {
	Path string `yaml:"path" json:"path"` // SQLite file, empty disables telemetry
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Config is the full application configuration.
type Config struct {
	Providers []ProviderConfig `yaml:"providers" json:"providers"`
	Pipeline  PipelineConfig   `yaml:"pipeline" json:"pipeline"`
	Cache     CacheConfig      `yaml:"cache" json:"cache"`
	Telemetry TelemetryConfig  `yaml:"telemetry" json:"telemetry"`
	Server    ServerConfig     `yaml:"server" json:"server"`
}

// DefaultConfig returns sensible defaults. A single Ollama provider is
// configured so the pipeline works on a developer machine without keys;
// hosted providers are added via config or environment.
func DefaultConfig() Config {
	return Config{
		Providers: []ProviderConfig{
			{
				Name:      "ollama",
				Model:     "llama3.1",
				TimeoutMs: 8000,
				Weight:    0.5,
				MaxTokens: 1200,
			},
		},
		Pipeline: PipelineConfig{
			MaxClaims:        8,
			SimThreshold:     0.74,
			ExtractTimeoutMs: 4000,
			RefineTimeoutMs:  6000,
			ModelVersion:     "klartext-v1",
		},
		Cache: CacheConfig{
			TTLSeconds: 900,
			MaxEntries: 512,
		},
		Telemetry: TelemetryConfig{
			Path: "",
		},
		Server: ServerConfig{
			Addr: ":8787",
		},
	}
}
