package llm

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// RetryProvider retries temporary failures with exponential backoff. A reply
// that broke the schema is retried once, since sampling again usually fixes
// it. Truncation and unclassified errors are returned at once.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps p. A MaxAttempts below 2 returns p unchanged.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	if cfg.MaxAttempts < 2 {
		return p
	}
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	invalidSeen := false
	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		var e *Error
		if !errors.As(err, &e) || attempt == r.config.MaxAttempts {
			return nil, err
		}
		switch {
		case e.Temporary():
		case e.Kind == KindInvalidOutput && !invalidSeen:
			invalidSeen = true
		default:
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.config.wait(attempt, e.RetryAfter)):
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// wait is the pause after the given failed attempt (1-based): the server's
// Retry-After when present, otherwise InitialWait growing by Multiplier, capped
// at MaxWait, with ±20% jitter.
func (c RetryConfig) wait(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return min(retryAfter, c.MaxWait)
	}
	w := float64(c.InitialWait)
	for range attempt - 1 {
		w *= c.Multiplier
	}
	w = min(w, float64(c.MaxWait))
	w += w * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(w, 0))
}
