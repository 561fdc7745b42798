// Package ai defines the interface for language-model providers and the
// HTTP clients that implement it.
//
// Design decisions:
//   - Provider is an interface so the chat chain can swap backends (Groq,
//     OpenAI, Anthropic, Gemini, Ollama) without changing its code.
//   - Providers only complete a prompt. Prompt wording belongs to the
//     chain package, which renders it into a single user message.
//   - All calls accept context for cancellation.
package ai

import (
	"context"
)

// Message roles understood by every provider.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Request is one completion call.
type Request struct {
	Messages    []Message
	Temperature float64
}

// UserPrompt builds a request holding a single user message.
func UserPrompt(prompt string, temperature float64) Request {
	return Request{
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		Temperature: temperature,
	}
}

// Provider is the interface all model backends must implement.
type Provider interface {
	// Complete sends the conversation and returns the model's reply text.
	Complete(ctx context.Context, req Request) (string, error)

	// Name returns the provider name for display.
	Name() string
}
