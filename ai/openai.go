package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Base URLs of the OpenAI-compatible chat completion APIs.
const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	OpenAIBaseURL = "https://api.openai.com/v1"
)

// OpenAI implements Provider for any OpenAI-compatible Chat Completions
// API. Groq serves the same wire format under its own base URL.
type OpenAI struct {
	label   string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

var _ Provider = (*OpenAI)(nil)

// NewOpenAI creates an OpenAI provider. An empty baseURL means the
// public OpenAI endpoint.
func NewOpenAI(apiKey, model, baseURL string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "gpt-4o"
	}
	if baseURL == "" {
		baseURL = OpenAIBaseURL
	}
	return &OpenAI{
		label:   "openai",
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  newHTTPClient(timeout),
	}
}

// NewGroq creates a provider for Groq's hosted models.
func NewGroq(apiKey, model, baseURL string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = "mixtral-8x7b-32768"
	}
	if baseURL == "" {
		baseURL = GroqBaseURL
	}
	p := NewOpenAI(apiKey, model, baseURL, timeout)
	p.label = "groq"
	return p
}

func (o *OpenAI) Name() string {
	switch o.label {
	case "groq":
		return fmt.Sprintf("Groq (%s)", o.model)
	}
	return fmt.Sprintf("OpenAI (%s)", o.model)
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	type chatMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	apiMsgs := make([]chatMsg, 0, len(req.Messages))
	for _, m := range req.Messages {
		apiMsgs = append(apiMsgs, chatMsg(m))
	}

	body := map[string]interface{}{
		"model":       o.model,
		"messages":    apiMsgs,
		"temperature": req.Temperature,
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	if err := postJSON(ctx, o.client, o.label, o.baseURL+"/chat/completions", headers, body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", o.label)
	}

	return result.Choices[0].Message.Content, nil
}
