package grading

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/abhisek/lectura/internal/llm"
)

// Config holds configuration for the LLM grader.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.2,
	}
}

// Grader grades answers with an LLM against a reference story.
type Grader struct {
	provider llm.Provider
	story    string
	cfg      Config
}

// New creates an LLM-backed Gateway. story is sent with every call as the
// reference text.
func New(provider llm.Provider, story string, cfg Config) *Grader {
	return &Grader{provider: provider, story: story, cfg: cfg}
}

// verdictOutput is the raw LLM response.
type verdictOutput struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

// Grade implements Gateway. Incomplete requests are answered without an LLM
// call; any LLM or parsing failure yields Unavailable.
func (g *Grader) Grade(ctx context.Context, req Request) Result {
	if !req.Complete() {
		return Incomplete()
	}

	res, err := g.grade(ctx, req)
	if err != nil {
		slog.WarnContext(ctx, "grading failed", "err", err)
		return Unavailable()
	}
	return res
}

func (g *Grader) grade(ctx context.Context, req Request) (Result, error) {
	userMsg, err := g.buildMessage(req)
	if err != nil {
		return Result{}, fmt.Errorf("build grading prompt: %w", err)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		Purpose:   llm.PurposeGrading,
		System:    gradingSystemPrompt,
		Reference: g.story,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      VerdictSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("LLM grading failed: %w", err)
	}

	var raw verdictOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return Result{}, fmt.Errorf("parse grading response: %w", err)
	}

	verdict, err := ParseVerdict(raw.Status)
	if err != nil {
		return Result{}, err
	}

	feedback := strings.TrimSpace(raw.Feedback)
	if feedback == "" {
		feedback = MsgMissingFeedback
	}
	return Result{Verdict: verdict, Feedback: feedback}, nil
}

const gradingSystemPrompt = `Agis en tant que professeur de français évaluateur pour des élèves de primaire.

Instructions d'évaluation :
1. Tolérance linguistique : ignore strictement les fautes d'orthographe, de grammaire ou de syntaxe tant que le sens est correct.
2. Si la réponse est correcte, marque "CORRECT".
3. Si la réponse est incomplète mais sur la bonne voie, marque "PARTIAL".
4. Si la réponse est fausse ou incompréhensible, marque "WRONG".

Instructions de feedback :
- Le feedback doit être factuel, neutre et pédagogique, en une ou deux phrases.
- Si PARTIAL ou WRONG, explique brièvement pourquoi sans donner la réponse.

Réponds uniquement en JSON : {"status": "CORRECT" | "PARTIAL" | "WRONG", "feedback": "..."}`

var gradingUserTemplate = template.Must(template.New("grading").Parse(`Question : "{{.QuestionText}}"
Réponse attendue : "{{.ModelAnswer}}"
Réponse de l'élève : "{{.LearnerAnswer}}"`))

func (g *Grader) buildMessage(req Request) (string, error) {
	var buf bytes.Buffer
	if err := gradingUserTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
