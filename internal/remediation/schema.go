package remediation

import "github.com/abhisek/lectura/internal/llm"

// NarrativeSchema is the reply format of a remediation call.
var NarrativeSchema = llm.MustSchema(
	"remediation-narrative",
	"Encouraging end-of-quiz feedback for a primary-school reader",
	map[string]any{
		"type": "object",
		"properties": map[string]any{
			"remediation": map[string]any{
				"type":        "string",
				"description": "The full narrative in French, Markdown with bold section titles",
			},
		},
		"required":             []any{"remediation"},
		"additionalProperties": false,
	},
)
