package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse scripts one MockProvider reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	// Stop defaults to StopEnd.
	Stop StopReason
	Err  error
}

// MockProvider replays scripted replies in order and records every request.
// Replies go through the same schema check as the real providers, so a
// scripted reply that breaks the verdict schema fails like a model would.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request
}

// NewMockProvider scripts the given replies.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

// Generate returns the next scripted reply. Once the script runs out every
// call fails with KindUnavailable.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	if len(m.script) == 0 {
		m.mu.Unlock()
		return nil, &Error{Kind: KindUnavailable, Err: errors.New("mock script exhausted")}
	}
	next := m.script[0]
	m.script = m.script[1:]
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	stop := next.Stop
	if stop == "" {
		stop = StopEnd
	}
	return finish(req, string(next.Content), stop, next.Usage, "mock")
}

func (m *MockProvider) ModelID() string { return "mock" }

// Enqueue appends replies to the script.
func (m *MockProvider) Enqueue(replies ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, replies...)
}

// CallCount returns the number of Generate calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
