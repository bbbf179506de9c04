package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrorKind classifies provider failures.
type ErrorKind int

const (
	KindUnavailable ErrorKind = iota
	KindRateLimited
	KindInvalidOutput
	KindTruncated
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate limited"
	case KindInvalidOutput:
		return "invalid output"
	case KindTruncated:
		return "output truncated"
	default:
		return "provider unavailable"
	}
}

// Error is the failure every Provider returns for problems on the model side.
type Error struct {
	Kind ErrorKind

	// RetryAfter is the wait the API asked for, if any.
	RetryAfter time.Duration

	// Content holds the rejected reply for KindInvalidOutput and KindTruncated.
	Content json.RawMessage

	Err error
}

func (e *Error) Error() string {
	msg := "llm: " + e.Kind.String()
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Temporary reports whether sending the same request again may succeed.
func (e *Error) Temporary() bool {
	return e.Kind == KindUnavailable || e.Kind == KindRateLimited
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// apiError classifies a failed API call by its HTTP status. Anything but a
// 429 counts as the provider being unavailable. Context errors pass through
// unwrapped so callers see their own deadline.
func apiError(status int, header http.Header, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if status != http.StatusTooManyRequests {
		return &Error{Kind: KindUnavailable, Err: err}
	}
	e := &Error{Kind: KindRateLimited, Err: err}
	if secs, convErr := strconv.Atoi(header.Get("Retry-After")); convErr == nil && secs > 0 {
		e.RetryAfter = time.Duration(secs) * time.Second
	}
	return e
}
