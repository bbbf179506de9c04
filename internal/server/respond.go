package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/abhisek/lectura/internal/quiz"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps quiz errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, quiz.ErrBlankAnswer), errors.Is(err, quiz.ErrIncompleteProfile):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrPending),
		errors.Is(err, quiz.ErrNotResolved),
		errors.Is(err, quiz.ErrResolved),
		errors.Is(err, quiz.ErrWrongPhase),
		errors.Is(err, quiz.ErrFinished),
		errors.Is(err, quiz.ErrNoPending):
		return http.StatusConflict
	case errors.Is(err, quiz.ErrStale), errors.Is(err, quiz.ErrAbandoned):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func writeQuizError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("quiz operation failed", "error", err)
	}
	writeError(w, status, err.Error())
}
