package grading

import "github.com/abhisek/lectura/internal/llm"

// VerdictSchema is the reply format of a grading call.
var VerdictSchema = llm.MustSchema(
	"answer-verdict",
	"Verdict and short pedagogical feedback for a reading-comprehension answer",
	map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type":        "string",
				"enum":        []any{"CORRECT", "PARTIAL", "WRONG"},
				"description": "CORRECT if the meaning matches, PARTIAL if incomplete but on the right track, WRONG otherwise",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Short neutral feedback in French that never reveals the expected answer",
			},
		},
		"required":             []any{"status", "feedback"},
		"additionalProperties": false,
	},
)
