package llm

import (
	"context"
	"fmt"
	"time"
)

// retrySleepFunc is the sleep function used between retries (injectable for tests)
var retrySleepFunc = time.Sleep

// RetryingGateway wraps a Gateway with bounded retry and exponential backoff.
// Only installed when max_retries is configured above zero; by default a
// single failed call fails the whole claim.
type RetryingGateway struct {
	inner      Gateway
	maxRetries int
	backoff    time.Duration
}

// NewRetryingGateway creates a retrying gateway wrapper.
func NewRetryingGateway(inner Gateway, maxRetries int, backoff time.Duration) *RetryingGateway {
	if backoff <= 0 {
		backoff = time.Second
	}
	return &RetryingGateway{
		inner:      inner,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

// Name returns the wrapped provider name
func (g *RetryingGateway) Name() string {
	return g.inner.Name()
}

// IsAvailable delegates to the wrapped gateway
func (g *RetryingGateway) IsAvailable(ctx context.Context) bool {
	return g.inner.IsAvailable(ctx)
}

// Chat delegates with retry.
func (g *RetryingGateway) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var result string
	err := g.retry(ctx, func() error {
		var callErr error
		result, callErr = g.inner.Chat(ctx, systemPrompt, userPrompt)
		return callErr
	})
	return result, err
}

// ChatStructured delegates with retry.
func (g *RetryingGateway) ChatStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	return g.retry(ctx, func() error {
		return g.inner.ChatStructured(ctx, systemPrompt, userPrompt, out)
	})
}

// ChatVision delegates with retry.
func (g *RetryingGateway) ChatVision(ctx context.Context, systemPrompt, userPrompt string, image Attachment) (string, error) {
	var result string
	err := g.retry(ctx, func() error {
		var callErr error
		result, callErr = g.inner.ChatVision(ctx, systemPrompt, userPrompt, image)
		return callErr
	})
	return result, err
}

// retry runs call up to maxRetries+1 times, doubling the backoff after each
// failed attempt.
func (g *RetryingGateway) retry(ctx context.Context, call func() error) error {
	backoff := g.backoff
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			retrySleepFunc(backoff)
			backoff *= 2
		}

		if lastErr = call(); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("after %d attempts: %w", g.maxRetries+1, lastErr)
}
