package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiConfig(t *testing.T) {
	schema := verdictTestSchema()
	cfg := geminiConfig(Request{
		System:      "Agis en tant que professeur.",
		Reference:   "Il était une fois.",
		Schema:      schema,
		MaxTokens:   512,
		Temperature: 0.2,
	})

	if cfg.MaxOutputTokens != 512 || cfg.Temperature == nil || *cfg.Temperature != float32(0.2) {
		t.Errorf("limits = %d / %v", cfg.MaxOutputTokens, cfg.Temperature)
	}
	if cfg.ResponseMIMEType != "application/json" {
		t.Errorf("mime = %q", cfg.ResponseMIMEType)
	}
	if def, ok := cfg.ResponseJsonSchema.(map[string]any); !ok || def["type"] != "object" {
		t.Errorf("schema = %v", cfg.ResponseJsonSchema)
	}
	sys := cfg.SystemInstruction.Parts[0].Text
	if !strings.HasPrefix(sys, "Agis en tant que professeur.") || !strings.Contains(sys, "Il était une fois.") {
		t.Errorf("system instruction = %q", sys)
	}

	bare := geminiConfig(Request{})
	if bare.Temperature != nil || bare.SystemInstruction != nil || bare.ResponseJsonSchema != nil {
		t.Errorf("empty request produced %+v", bare)
	}
}

func TestGeminiContents(t *testing.T) {
	got := geminiContents([]Message{
		{Role: RoleUser, Content: "Question ?"},
		{Role: RoleAssistant, Content: "Réponse."},
	})
	if len(got) != 2 || got[0].Role != genai.RoleUser || got[1].Role != genai.RoleModel {
		t.Fatalf("contents = %+v", got)
	}
	if got[1].Parts[0].Text != "Réponse." {
		t.Errorf("text = %q", got[1].Parts[0].Text)
	}
}

func TestGeminiProvider_GradingCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": `{"status":"WRONG","feedback":"Relis le début."}`}}},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{
				"promptTokenCount":        900,
				"candidatesTokenCount":    20,
				"totalTokenCount":         920,
				"cachedContentTokenCount": 512,
			},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(t.Context(), GeminiConfig{APIKey: "k", Model: "gemini-flash", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	resp, err := p.Generate(t.Context(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Réponse de l'élève : en Chine"}},
		Schema:   verdictTestSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"status":"WRONG","feedback":"Relis le début."}` {
		t.Errorf("content = %s", resp.Content)
	}
	if resp.Usage.CachedTokens != 512 || resp.Usage.TotalTokens != 920 || resp.Model != "gemini-2.5-flash" {
		t.Errorf("usage = %+v, model = %q", resp.Usage, resp.Model)
	}
}

func TestGeminiProvider_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(t.Context(), GeminiConfig{APIKey: "k", Model: "gemini-flash", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	_, err = p.Generate(t.Context(), Request{Messages: []Message{{Role: RoleUser, Content: "test"}}})
	if kind, ok := KindOf(err); !ok || kind != KindRateLimited {
		t.Fatalf("err = %v, want KindRateLimited", err)
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(t.Context(), GeminiConfig{Model: "gemini-flash"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
