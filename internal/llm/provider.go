package llm

import (
	"context"

	"github.com/buergerwerk/klartext/internal/model"
)

// Provider wraps one external text-generation capability behind a
// uniform call signature: prompt in, raw text out, bounded by the
// caller's context deadline.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a system/user prompt pair and returns the raw
	// completion text. Implementations must honor ctx cancellation.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for one provider call.
type CompletionRequest struct {
	// System is the system prompt framing the task contract
	System string

	// User is the user prompt carrying the actual input text
	User string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature, 0 means provider default
	Temperature float32
}

// CompletionResponse contains one provider's raw output.
type CompletionResponse struct {
	// Text is the unvalidated completion text
	Text string

	// Model is the model that generated the response
	Model string

	// Token accounting, zero when the provider does not report it
	PromptTokens     int
	CompletionTokens int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// TimeoutMs bounds a single API request
	TimeoutMs int

	// MaxTokens for response generation
	MaxTokens int
}

// ConfigFromModel converts a model.ProviderConfig into llm.Config.
func ConfigFromModel(pc model.ProviderConfig) Config {
	return Config{
		Provider:  pc.Name,
		Model:     pc.Model,
		APIKey:    pc.APIKey,
		BaseURL:   pc.BaseURL,
		TimeoutMs: pc.TimeoutMs,
		MaxTokens: pc.MaxTokens,
	}
}
