package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AnthropicBaseURL is the public Anthropic API endpoint.
const AnthropicBaseURL = "https://api.anthropic.com/v1"

// Anthropic implements the Provider interface for the Anthropic Messages API.
type Anthropic struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

var _ Provider = (*Anthropic)(nil)

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(apiKey, model, baseURL string, timeout time.Duration) *Anthropic {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if baseURL == "" {
		baseURL = AnthropicBaseURL
	}
	return &Anthropic{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  newHTTPClient(timeout),
	}
}

func (a *Anthropic) Name() string {
	return fmt.Sprintf("Anthropic (%s)", a.model)
}

func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	type apiMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	// Anthropic doesn't use "system" role in messages; it's a top-level field.
	var system string
	apiMsgs := make([]apiMsg, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = m.Content
			continue
		}
		apiMsgs = append(apiMsgs, apiMsg(m))
	}

	if len(apiMsgs) == 0 {
		return "", fmt.Errorf("anthropic requires at least one user message")
	}

	body := map[string]interface{}{
		"model":       a.model,
		"max_tokens":  4096,
		"messages":    apiMsgs,
		"temperature": req.Temperature,
	}
	if system != "" {
		body["system"] = system
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": "2023-06-01",
	}
	if err := postJSON(ctx, a.client, "anthropic", a.baseURL+"/messages", headers, body, &result); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}

	return text.String(), nil
}
