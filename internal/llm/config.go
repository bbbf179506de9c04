package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects and configures the model behind grading and remediation.
type Config struct {
	// Provider is one of "gemini", "anthropic", "openai", "openrouter" or
	// "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call, retries included. The quiz applies
	// its own, usually shorter, grading deadline on top.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig shapes the backoff of RetryProvider.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig picks the cheapest catalog model of each provider, since a
// grading verdict is a short JSON object.
func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 30 * time.Second,
	}
}

// providerNames lists the providers that need an API key.
var providerNames = []string{"gemini", "anthropic", "openai", "openrouter"}

// fields returns pointers to the settings of the named provider. baseURL is
// nil for providers without an endpoint override. ok is false for unknown
// names.
func (c *Config) fields(provider string) (key, model, baseURL *string, ok bool) {
	switch provider {
	case "anthropic":
		return &c.Anthropic.APIKey, &c.Anthropic.Model, nil, true
	case "openai":
		return &c.OpenAI.APIKey, &c.OpenAI.Model, &c.OpenAI.BaseURL, true
	case "gemini":
		return &c.Gemini.APIKey, &c.Gemini.Model, &c.Gemini.BaseURL, true
	case "openrouter":
		return &c.OpenRouter.APIKey, &c.OpenRouter.Model, &c.OpenRouter.BaseURL, true
	}
	return nil, nil, nil, false
}

func envPrefix(provider string) string {
	return "LECTURA_" + strings.ToUpper(provider) + "_"
}

// ConfigFromEnv reads LECTURA_LLM_PROVIDER, LECTURA_LLM_TIMEOUT and, for
// every provider P, LECTURA_<P>_API_KEY, LECTURA_<P>_MODEL and
// LECTURA_<P>_BASE_URL over the defaults.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if p := os.Getenv("LECTURA_LLM_PROVIDER"); p != "" {
		cfg.Provider = strings.ToLower(p)
	}
	if d, err := time.ParseDuration(os.Getenv("LECTURA_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	for _, name := range providerNames {
		key, model, baseURL, _ := cfg.fields(name)
		prefix := envPrefix(name)
		setFromEnv(key, prefix+"API_KEY")
		setFromEnv(model, prefix+"MODEL")
		if baseURL != nil {
			setFromEnv(baseURL, prefix+"BASE_URL")
		}
	}
	return cfg
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// discoveryKeys are the conventional API key variables, in priority order.
// API_KEY is the name serverless deployments of the exercise use for Gemini.
var discoveryKeys = []struct{ env, provider string }{
	{"GEMINI_API_KEY", "gemini"},
	{"API_KEY", "gemini"},
	{"OPENAI_API_KEY", "openai"},
	{"ANTHROPIC_API_KEY", "anthropic"},
	{"OPENROUTER_API_KEY", "openrouter"},
}

// DiscoverConfig returns a default Config for the first provider whose
// conventional key variable is set, or false if none is.
func DiscoverConfig() (Config, bool) {
	for _, d := range discoveryKeys {
		k := os.Getenv(d.env)
		if k == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = d.provider
		key, _, _, _ := cfg.fields(d.provider)
		*key = k
		return cfg, true
	}
	return Config{}, false
}

// ResolveConfig prefers explicit LECTURA_* configuration and falls back to
// discovery unless a provider was named explicitly.
func ResolveConfig() Config {
	cfg := ConfigFromEnv()
	if cfg.Validate() == nil || os.Getenv("LECTURA_LLM_PROVIDER") != "" {
		return cfg
	}
	if discovered, ok := DiscoverConfig(); ok {
		discovered.Timeout = cfg.Timeout
		return discovered
	}
	return cfg
}

// Validate checks that the selected provider has its API key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	key, _, _, ok := c.fields(c.Provider)
	if !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *key == "" {
		return fmt.Errorf("%sAPI_KEY is required for the %s provider", envPrefix(c.Provider), c.Provider)
	}
	return nil
}
