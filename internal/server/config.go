package server

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhisek/lectura/internal/quiz"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvAddr               = "LECTURA_HTTP_ADDR"
	EnvCORSOrigins        = "LECTURA_CORS_ORIGINS"
	EnvSessionSecret      = "LECTURA_SESSION_SECRET"
	EnvSessionTTL         = "LECTURA_SESSION_TTL"
	EnvGradingTimeout     = "LECTURA_GRADING_TIMEOUT"
	EnvRemediationTimeout = "LECTURA_REMEDIATION_TIMEOUT"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr               string
	CORSOrigins        []string
	SessionSecret      string
	SessionTTL         time.Duration
	GradingTimeout     time.Duration
	RemediationTimeout time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Addr:               ":8080",
		CORSOrigins:        []string{"*"},
		SessionTTL:         2 * time.Hour,
		GradingTimeout:     quiz.DefaultGradingTimeout,
		RemediationTimeout: quiz.DefaultRemediationTimeout,
	}
}

// ConfigFromEnv overlays LECTURA_* variables on DefaultConfig.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	cfg.SessionSecret = os.Getenv(EnvSessionSecret)

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{EnvSessionTTL, &cfg.SessionTTL},
		{EnvGradingTimeout, &cfg.GradingTimeout},
		{EnvRemediationTimeout, &cfg.RemediationTimeout},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed <= 0 {
			return Config{}, fmt.Errorf("%s: invalid duration %q", d.env, v)
		}
		*d.dst = parsed
	}
	return cfg, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
