package remediation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/abhisek/lectura/internal/llm"
)

// Config holds configuration for the LLM generator.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// Generator writes remediation narratives with an LLM.
type Generator struct {
	provider llm.Provider
	story    string
	cfg      Config
}

// New creates an LLM-backed Gateway. story is the reference text the quiz
// was about.
func New(provider llm.Provider, story string, cfg Config) *Generator {
	return &Generator{provider: provider, story: story, cfg: cfg}
}

type narrativeOutput struct {
	Remediation string `json:"remediation"`
}

// Generate implements Gateway. An empty history returns MsgNoAttempts
// without calling the LLM.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if len(req.Attempts) == 0 {
		return MsgNoAttempts, nil
	}

	userMsg, err := g.buildMessage(req)
	if err != nil {
		return "", fmt.Errorf("build remediation prompt: %w", err)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		Purpose:   llm.PurposeRemediation,
		System:    remediationSystemPrompt,
		Reference: g.story,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: userMsg},
		},
		Schema:      NarrativeSchema,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("LLM remediation failed: %w", err)
	}

	var out narrativeOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return "", fmt.Errorf("parse remediation response: %w", err)
	}

	text := strings.TrimSpace(out.Remediation)
	if text == "" {
		return MsgEmpty, nil
	}
	return text, nil
}

const remediationSystemPrompt = `Agis en tant que professeur évaluateur spécialisé dans la remédiation pour la 5ème année.
Ton objectif est de rédiger un bilan constructif adressé directement à l'élève.

Instructions pour la remédiation :
1. Commence par une phrase d'encouragement générale.
2. Crée deux sections en Markdown avec des titres en gras :
   - **Points Forts et Réussites :** mentionne les catégories ou les questions réussies.
   - **Axes d'Amélioration :** identifie la compétence principale à améliorer (lecture littérale, inférence ou évaluation).
3. Pour l'axe d'amélioration, donne un conseil précis sur la méthode à employer (par exemple "Relis la phrase exacte" pour le littéral, ou "Fais attention aux mots de cause et de conséquence" pour l'inférentiel).
4. Le bilan doit être bienveillant et professionnel.

Réponds en JSON : {"remediation": "<bilan en Markdown>"}`

var remediationUserTemplate = template.Must(template.New("remediation").Funcs(template.FuncMap{
	"upper": strings.ToUpper,
}).Parse(`Voici les performances détaillées de l'élève :
---
{{range .Attempts}}- Question (Catégorie {{if .Category}}{{.Category}}{{else}}Inconnue{{end}}) : {{.QuestionText}}
  Statut final : {{upper .Status}}
  Tentatives : {{.Tries}}
  Réponse de l'élève : "{{.LearnerAnswer}}"
{{end}}---`))

func (g *Generator) buildMessage(req Request) (string, error) {
	var buf bytes.Buffer
	if err := remediationUserTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
