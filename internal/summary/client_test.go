package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"transcription-studio/internal/types"
)

// TestSummarizeNotConfigured checks missing endpoint credentials.
func TestSummarizeNotConfigured(t *testing.T) {
	c := NewClient()
	_, err := c.Summarize(context.Background(), "transcript", "short", "", types.GlobalSettings{})
	if !errors.Is(err, types.ErrNotConfigured) {
		t.Fatalf("error = %v, want ErrNotConfigured", err)
	}
}

// TestSummarizeSendsChatRequest checks payload shape and response parsing.
func TestSummarizeSendsChatRequest(t *testing.T) {
	var captured chatRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "A fine summary."}},
			},
		})
	}))
	defer server.Close()

	settings := types.GlobalSettings{
		LLMAPIBase: server.URL + "/v1",
		LLMAPIKey:  "sk-test",
		LLMModel:   "gpt-4o-mini",
	}

	got, err := NewClient().Summarize(context.Background(), "we talked about things", "short", "", settings)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "A fine summary." {
		t.Fatalf("summary = %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if captured.Model != "gpt-4o-mini" {
		t.Fatalf("model = %q", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v", captured.Messages)
	}
	if !strings.Contains(captured.Messages[1].Content, "we talked about things") {
		t.Fatalf("user message missing transcript: %q", captured.Messages[1].Content)
	}
	if !strings.Contains(captured.Messages[1].Content, defaultTemplates["short"]) {
		t.Fatalf("user message missing style prompt: %q", captured.Messages[1].Content)
	}
}

// TestSummarizeStylePromptOverride checks the resolved prompt wins.
func TestSummarizeStylePromptOverride(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer server.Close()

	settings := types.GlobalSettings{LLMAPIBase: server.URL, LLMAPIKey: "k", LLMModel: "m"}
	if _, err := NewClient().Summarize(context.Background(), "text", "short", "Custom instructions.", settings); err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if !strings.HasPrefix(captured.Messages[1].Content, "Custom instructions.") {
		t.Fatalf("override not used: %q", captured.Messages[1].Content)
	}
}

// TestSummarizeUpstreamError checks non-200 responses surface as errors.
func TestSummarizeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	settings := types.GlobalSettings{LLMAPIBase: server.URL, LLMAPIKey: "k", LLMModel: "m"}
	_, err := NewClient().Summarize(context.Background(), "text", "short", "", settings)
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("error = %v, want status 503 mention", err)
	}
}
