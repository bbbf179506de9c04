package cmd

import (
	"context"
	"fmt"
	"net/http"

	"github.com/abhisek/lectura/internal/content"
	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/llm"
	"github.com/abhisek/lectura/internal/remediation"
	"github.com/abhisek/lectura/internal/store"
)

// buildGateways returns the grading and remediation gateways. A non-empty
// serverURL points both at a running `lectura serve`; otherwise they call
// the LLM provider configured in the environment.
func buildGateways(ctx context.Context, bank *content.Bank, repo store.EventRepo, serverURL string) (grading.Gateway, remediation.Gateway, error) {
	if serverURL != "" {
		client := &http.Client{}
		return grading.NewHTTPGateway(serverURL, client), remediation.NewHTTPGateway(serverURL, client), nil
	}

	provider, err := llm.NewProviderFromEnv(ctx, repo)
	if err != nil {
		return nil, nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	return grading.New(provider, bank.Story(), grading.DefaultConfig()),
		remediation.New(provider, bank.Story(), remediation.DefaultConfig()),
		nil
}
