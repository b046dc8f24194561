package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"transcription-studio/internal/types"
)

// Client talks to an OpenAI-compatible chat completions endpoint
type Client struct {
	httpClient *http.Client
}

// NewClient creates a summarization client
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Summarize generates summary text for a transcript in the given style.
// stylePrompt overrides the built-in template when non-empty. Returns
// ErrNotConfigured when no endpoint or key is set.
func (c *Client) Summarize(ctx context.Context, transcript, style, stylePrompt string, settings types.GlobalSettings) (string, error) {
	if settings.LLMAPIBase == "" || settings.LLMAPIKey == "" {
		return "", fmt.Errorf("%w: summary requested but LLM API is not configured", types.ErrNotConfigured)
	}

	if stylePrompt == "" {
		stylePrompt = defaultTemplates[NormalizeStyleKey(style)]
	}
	if stylePrompt == "" {
		stylePrompt = "Give a concise summary."
	}

	payload := chatRequest{
		Model:       settings.LLMModel,
		Temperature: 0.2,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You summarize meeting transcripts accurately and avoid inventing facts.",
			},
			{
				Role:    "user",
				Content: stylePrompt + "\n\nTranscript:\n" + transcript,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode summary request: %w", err)
	}

	url := strings.TrimRight(settings.LLMAPIBase, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build summary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+settings.LLMAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read LLM response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM request failed with status %d: %s", resp.StatusCode, truncate(string(data), 300))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse LLM response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("LLM response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
