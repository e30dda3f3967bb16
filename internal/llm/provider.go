package llm

import (
	"context"
)

// Provider is the model inference collaborator. A call suspends until the
// model replies; the rollout engine issues a single outstanding request
// per trajectory at a time. Implementations must be safe for concurrent
// use by independent trajectories.
type Provider interface {
	// Name returns the provider name (e.g., "openai", "mock")
	Name() string

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// CompleteWithTools sends a completion request with tool definitions.
	// The model may choose to call one or more tools in its response.
	CompleteWithTools(ctx context.Context, req CompletionRequest, tools []ToolDef) (*CompletionResponse, error)
}

// ProviderConfig carries the settings needed to construct a provider.
type ProviderConfig struct {
	Name         string `mapstructure:"name" yaml:"name"`
	APIKey       string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL      string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	DefaultModel string `mapstructure:"default_model" yaml:"default_model"`
}
