package anyllm

import (
	"strings"
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/hireloop-ai/hireloop/pkg/provider/llm"
)

func TestNewValidation(t *testing.T) {
	if _, err := New("", "model"); err == nil {
		t.Error("expected error for empty providerName")
	}
	if _, err := New("ollama", ""); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestNewUnsupportedProvider(t *testing.T) {
	_, err := New("watson", "model")
	if err == nil || !strings.Contains(err.Error(), "unsupported provider") {
		t.Errorf("err = %v, want unsupported-provider error", err)
	}
}

func TestNewOllama(t *testing.T) {
	// Ollama needs no API key, so construction succeeds without credentials.
	p, err := NewOllama("llama3.1")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if p.model != "llama3.1" {
		t.Errorf("model = %q", p.model)
	}
}

func TestBuildParams(t *testing.T) {
	p := &Provider{model: "gemini-2.5-flash"}

	params := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "You are an interviewer.",
		Messages: []llm.Message{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
		},
		Temperature: 0.3,
		MaxTokens:   128,
	})

	if params.Model != "gemini-2.5-flash" {
		t.Errorf("model = %q", params.Model)
	}
	if len(params.Messages) != 3 {
		t.Fatalf("messages = %d, want system + 2", len(params.Messages))
	}
	if params.Messages[0].Role != anyllmlib.RoleSystem {
		t.Errorf("first role = %q, want system", params.Messages[0].Role)
	}
	if params.Temperature == nil || *params.Temperature != 0.3 {
		t.Errorf("temperature = %v", params.Temperature)
	}
	if params.MaxTokens == nil || *params.MaxTokens != 128 {
		t.Errorf("max tokens = %v", params.MaxTokens)
	}
}

func TestBuildParamsZeroValuesOmitted(t *testing.T) {
	p := &Provider{model: "m"}
	params := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "x"}},
	})
	if params.Temperature != nil || params.MaxTokens != nil {
		t.Errorf("optional params set: temp=%v max=%v", params.Temperature, params.MaxTokens)
	}
	if len(params.Messages) != 1 {
		t.Errorf("messages = %d, want 1 (no system prompt)", len(params.Messages))
	}
}
