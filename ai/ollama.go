package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Ollama implements the Provider interface for local Ollama instances.
type Ollama struct {
	host   string
	model  string
	client *http.Client
}

var _ Provider = (*Ollama)(nil)

// NewOllama creates an Ollama provider.
func NewOllama(host, model string, timeout time.Duration) *Ollama {
	if host == "" {
		host = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &Ollama{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: newHTTPClient(timeout),
	}
}

func (o *Ollama) Name() string {
	return fmt.Sprintf("Ollama (%s)", o.model)
}

func (o *Ollama) Complete(ctx context.Context, req Request) (string, error) {
	type chatMsg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	apiMsgs := make([]chatMsg, 0, len(req.Messages))
	for _, m := range req.Messages {
		apiMsgs = append(apiMsgs, chatMsg(m))
	}

	body := map[string]interface{}{
		"model":    o.model,
		"messages": apiMsgs,
		"stream":   false,
		"options": map[string]interface{}{
			"temperature": req.Temperature,
		},
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := postJSON(ctx, o.client, "ollama", o.host+"/api/chat", nil, body, &result); err != nil {
		return "", fmt.Errorf("%w (is Ollama running at %s?)", err, o.host)
	}

	if result.Message.Content == "" {
		return "", fmt.Errorf("ollama returned empty response")
	}

	return result.Message.Content, nil
}
