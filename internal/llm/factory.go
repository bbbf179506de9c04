package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/lectura/internal/store"
)

// NewProvider builds the provider cfg selects, decorated as
// timeout(retry(logging(provider))) so that every attempt is recorded and
// the deadline covers all of them. The mock provider is returned bare.
// events may be nil.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}

	base, err := newBase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}
	p := WithLogging(base, cfg.Provider, events)
	p = WithRetry(p, cfg.Retry)
	return WithTimeout(p, cfg.Timeout), nil
}

func newBase(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		return NewOpenRouterProvider(cfg.OpenRouter)
	}
	return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
}

// NewProviderFromEnv builds the provider ResolveConfig describes.
func NewProviderFromEnv(ctx context.Context, events store.EventRepo) (Provider, error) {
	return NewProvider(ctx, ResolveConfig(), events)
}
