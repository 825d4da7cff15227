package llm

import (
	"fmt"
	"strings"
)

// NewGateway creates an inference gateway based on configuration, wrapping it
// with rate limiting and bounded retry when those are enabled.
func NewGateway(config Config) (Gateway, error) {
	var gw Gateway
	var err error

	switch strings.ToLower(config.Provider) {
	case "openai":
		gw, err = NewOpenAIGateway(config)

	case "ollama", "":
		gw, err = NewOllamaGateway(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
	if err != nil {
		return nil, err
	}

	if config.RequestsPerSecond > 0 {
		gw = NewLimitedGateway(gw, config.RequestsPerSecond, config.Burst)
	}
	if config.MaxRetries > 0 {
		gw = NewRetryingGateway(gw, config.MaxRetries, config.RetryBackoff)
	}

	return gw, nil
}
