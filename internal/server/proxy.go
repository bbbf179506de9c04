package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/abhisek/lectura/internal/grading"
	"github.com/abhisek/lectura/internal/remediation"
)

// POST /api/evaluate  {question, userAnswer} -> {status, feedback}
//
// Grading failures are reported in the body as a wrong verdict with the
// fallback message, never as an HTTP error.
func evaluateHandler(g grading.Gateway, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req grading.EvaluateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("evaluate: bad request body", "error", err)
			writeJSON(w, http.StatusInternalServerError, grading.EvaluateResponse{
				Status:   grading.VerdictWrong.String(),
				Feedback: grading.MsgServerError,
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		res := g.Grade(ctx, req.ToRequest())
		writeJSON(w, http.StatusOK, grading.NewEvaluateResponse(res))
	}
}

// POST /api/remediate  {attempts} -> {remediation}
func remediateHandler(g remediation.Gateway, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req remediation.RemediateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("remediate: bad request body", "error", err)
			writeJSON(w, http.StatusInternalServerError, remediation.RemediateResponse{
				Remediation: remediation.MsgServerError,
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		text, err := g.Generate(ctx, remediation.Request{Attempts: req.Attempts})
		if err != nil {
			slog.Warn("remediate: generation failed", "error", err)
			text = remediation.MsgFailed
		}
		writeJSON(w, http.StatusOK, remediation.RemediateResponse{Remediation: text})
	}
}
