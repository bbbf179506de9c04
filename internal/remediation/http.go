package remediation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RemediateRequest is the body of POST /api/remediate.
type RemediateRequest struct {
	Attempts []Attempt `json:"attempts"`
}

// RemediateResponse is the body returned by POST /api/remediate.
type RemediateResponse struct {
	Remediation string `json:"remediation"`
}

// HTTPGateway requests narratives from a remote remediate endpoint.
type HTTPGateway struct {
	endpoint string
	client   *http.Client
}

// NewHTTPGateway targets baseURL + "/api/remediate". A nil client gets a
// default with a 60s timeout.
func NewHTTPGateway(baseURL string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPGateway{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/remediate",
		client:   client,
	}
}

// Generate implements Gateway. Every transport or decoding failure wraps
// ErrUnreachable. A fallback message relayed by the server wraps
// ErrRemoteFailed so callers retry instead of keeping it as a narrative.
func (g *HTTPGateway) Generate(ctx context.Context, req Request) (string, error) {
	attempts := req.Attempts
	if attempts == nil {
		attempts = []Attempt{}
	}
	body, err := json.Marshal(RemediateRequest{Attempts: attempts})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrUnreachable, resp.StatusCode)
	}

	var out RemediateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUnreachable, err)
	}
	switch strings.TrimSpace(out.Remediation) {
	case "":
		return MsgEmpty, nil
	case MsgFailed, MsgServerError:
		// The server answers 200 with its fallback text when generation fails.
		return "", fmt.Errorf("%w: server reported a generation failure", ErrRemoteFailed)
	}
	return out.Remediation, nil
}
