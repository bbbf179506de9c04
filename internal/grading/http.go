package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// HTTPGateway grades answers by calling a remote evaluate endpoint.
type HTTPGateway struct {
	endpoint string
	client   *http.Client
}

// NewHTTPGateway targets baseURL + "/api/evaluate". A nil client gets a
// default with a 30s timeout.
func NewHTTPGateway(baseURL string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPGateway{
		endpoint: strings.TrimRight(baseURL, "/") + "/api/evaluate",
		client:   client,
	}
}

// Grade implements Gateway.
func (g *HTTPGateway) Grade(ctx context.Context, req Request) Result {
	res, err := g.post(ctx, req)
	if err != nil {
		slog.WarnContext(ctx, "remote grading failed", "endpoint", g.endpoint, "err", err)
		return Unavailable()
	}
	return res
}

func (g *HTTPGateway) post(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(EvaluateRequest{
		Question:   &EvaluateQuestion{Text: req.QuestionText, CorrectAnswer: req.ModelAnswer},
		UserAnswer: req.LearnerAnswer,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("evaluate returned HTTP %d", resp.StatusCode)
	}

	var out EvaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("decode response: %w", err)
	}

	verdict, err := ParseVerdict(out.Status)
	if err != nil {
		return Result{}, err
	}
	feedback := strings.TrimSpace(out.Feedback)
	if feedback == "" {
		feedback = MsgMissingFeedback
	}
	res := Result{Verdict: verdict, Feedback: feedback}
	// The server reports its own fallbacks as ordinary wrong verdicts.
	if feedback == MsgUnavailable || feedback == MsgIncompleteInput {
		res.Degraded = true
	}
	return res, nil
}
