package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// LimitedGateway wraps a Gateway with a token-bucket rate limiter so batch
// runs don't overrun a local model server.
type LimitedGateway struct {
	inner   Gateway
	limiter *rate.Limiter
}

// NewLimitedGateway creates a rate-limited gateway wrapper.
func NewLimitedGateway(inner Gateway, requestsPerSecond float64, burst int) *LimitedGateway {
	if burst <= 0 {
		burst = 1
	}
	return &LimitedGateway{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Name returns the wrapped provider name
func (g *LimitedGateway) Name() string {
	return g.inner.Name()
}

// IsAvailable delegates without consuming rate budget
func (g *LimitedGateway) IsAvailable(ctx context.Context) bool {
	return g.inner.IsAvailable(ctx)
}

// Chat waits for rate clearance, then delegates.
func (g *LimitedGateway) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return g.inner.Chat(ctx, systemPrompt, userPrompt)
}

// ChatStructured waits for rate clearance, then delegates.
func (g *LimitedGateway) ChatStructured(ctx context.Context, systemPrompt, userPrompt string, out any) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}
	return g.inner.ChatStructured(ctx, systemPrompt, userPrompt, out)
}

// ChatVision waits for rate clearance, then delegates.
func (g *LimitedGateway) ChatVision(ctx context.Context, systemPrompt, userPrompt string, image Attachment) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return g.inner.ChatVision(ctx, systemPrompt, userPrompt, image)
}
