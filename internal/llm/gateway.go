package llm

import (
	"context"
	"time"

	"claimpilot/internal/model"
)

// Gateway is the inference boundary every pipeline stage depends on. All
// calls run at temperature 0 with thinking disabled so that identical inputs
// yield identical outputs.
type Gateway interface {
	// Name returns the provider name
	Name() string

	// Chat issues a free-text completion and returns the raw response text.
	// An empty response is an error.
	Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// ChatStructured issues a schema-constrained completion. The response is
	// unmarshaled into out, whose type defines the required result shape.
	// Empty or non-conforming responses are errors.
	ChatStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error

	// ChatVision issues a free-text completion over an attached image using
	// the provider's vision model.
	ChatVision(ctx context.Context, systemPrompt, userPrompt string, image Attachment) (string, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// Attachment is an image passed to a vision-capable model.
type Attachment struct {
	Data []byte
	MIME string // e.g. "image/jpeg"
}

// Config holds inference gateway configuration.
type Config struct {
	// Provider name: "openai" or "ollama"
	Provider string

	// Model for text and structured calls
	Model string

	// VisionModel for signature/seal detection; falls back to Model when empty
	VisionModel string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxRetries for failed calls; 0 disables retry entirely
	MaxRetries int

	// RetryBackoff is the initial backoff between retries
	RetryBackoff time.Duration

	// RequestsPerSecond rate-limits outgoing calls; 0 means unlimited
	RequestsPerSecond float64

	// Burst for the rate limiter
	Burst int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:     "ollama",
		Model:        "qwen3:8b",
		VisionModel:  "qwen2.5vl:7b-q4_K_M",
		Timeout:      120,
		MaxRetries:   0,
		RetryBackoff: time.Second,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:          mc.Provider,
		Model:             mc.Model,
		VisionModel:       mc.VisionModel,
		APIKey:            mc.APIKey,
		BaseURL:           mc.BaseURL,
		Timeout:           mc.Timeout,
		MaxRetries:        mc.MaxRetries,
		RetryBackoff:      mc.RetryBackoff,
		RequestsPerSecond: mc.RequestsPerSecond,
		Burst:             mc.Burst,
	}
}
