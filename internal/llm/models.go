package llm

import "strings"

// catalogEntry is a model the configuration can name. Prices are USD list
// prices per million tokens, used by `lectura llm` to estimate spend.
type catalogEntry struct {
	provider string
	alias    string
	id       string
	cost     ModelCost
}

// catalog covers the defaults in DefaultConfig and the aliases users can set.
// Prices as of 2026-02.
var catalog = []catalogEntry{
	{"anthropic", "claude-haiku", "claude-haiku-4-5-20251001", ModelCost{1, 5}},
	{"anthropic", "claude-sonnet", "claude-sonnet-4-20250514", ModelCost{3, 15}},
	{"openai", "", "gpt-4o-mini", ModelCost{0.15, 0.6}},
	{"openai", "", "gpt-4o", ModelCost{2.5, 10}},
	{"gemini", "gemini-flash", "gemini-2.5-flash", ModelCost{0.3, 2.5}},
	{"gemini", "gemini-pro", "gemini-2.5-pro", ModelCost{1.25, 10}},
	{"openrouter", "", "google/gemini-2.5-flash", ModelCost{0.3, 2.5}},
}

// resolveModel maps a configured alias to the provider's model ID. Other
// names pass through so any model ID can be configured directly.
func resolveModel(provider, name string) string {
	for _, e := range catalog {
		if e.provider == provider && e.alias != "" && e.alias == name {
			return e.id
		}
	}
	return name
}

// ModelCost is per-million-token pricing.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// LookupCost prices a model ID as recorded in LLM events. APIs often report
// a dated snapshot ("gpt-4o-mini-2024-07-18"), so a catalog ID followed by a
// dash also matches; the longest such ID wins. Returns nil if unknown.
func LookupCost(modelID string) *ModelCost {
	var best *catalogEntry
	for i := range catalog {
		e := &catalog[i]
		if modelID != e.id && !strings.HasPrefix(modelID, e.id+"-") {
			continue
		}
		if best == nil || len(e.id) > len(best.id) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	c := best.cost
	return &c
}
