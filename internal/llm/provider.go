// Package llm talks to the language models that grade answers and write the
// end-of-quiz narrative.
package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider generates one structured reply per request.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the API model identifier requests are sent to.
	ModelID() string
}

// Purpose labels a call in logs and in the recorded LLM events.
type Purpose string

const (
	PurposeGrading     Purpose = "grading"
	PurposeRemediation Purpose = "remediation"
)

// Request describes one single-turn call.
type Request struct {
	Purpose Purpose

	// System holds the grading or remediation instructions.
	System string

	// Reference is the story the learner read. It is the same for every call
	// of a quiz, so providers place it after System where their prompt cache
	// can reuse it.
	Reference string

	Messages []Message

	// Schema, when set, is sent as the provider's structured output format
	// and the reply is validated against it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

func (r Request) purpose() string {
	if r.Purpose == "" {
		return "unknown"
	}
	return string(r.Purpose)
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason is the normalized reason generation ended.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a validated reply.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason StopReason
}

// Usage reports token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int

	// CachedTokens is the part of InputTokens read from the prompt cache.
	CachedTokens int
}

const referenceHeading = "Texte de référence :"

// instructions joins System and Reference for APIs that take a single
// system message.
func instructions(req Request) string {
	if req.Reference == "" {
		return req.System
	}
	return req.System + "\n\n" + referenceBlock(req.Reference)
}

func referenceBlock(story string) string {
	return referenceHeading + "\n---\n" + story + "\n---"
}

// finish turns raw model output into a Response. A reply cut off by the token
// limit is rejected when a schema is expected, since it cannot be valid JSON.
func finish(req Request, raw string, stop StopReason, usage Usage, model string) (*Response, error) {
	content := json.RawMessage(strings.TrimSpace(raw))
	if stop == StopMaxTokens && req.Schema != nil {
		return nil, &Error{Kind: KindTruncated, Content: content}
	}
	if err := req.Schema.Validate(content); err != nil {
		return nil, err
	}
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{Content: content, Usage: usage, Model: model, StopReason: stop}, nil
}
