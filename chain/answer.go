package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/DachengChen/sqlchat/ai"
)

// AnswerInput is everything the answer prompt is built from.
type AnswerInput struct {
	Schema   string
	History  []Message
	Query    string
	Question string
	Response string
}

// AnswerSynthesizer explains a query result in natural language.
type AnswerSynthesizer struct {
	provider    ai.Provider
	temperature float64
}

// NewAnswerSynthesizer creates a synthesizer that queries provider at temperature.
func NewAnswerSynthesizer(provider ai.Provider, temperature float64) *AnswerSynthesizer {
	return &AnswerSynthesizer{provider: provider, temperature: temperature}
}

// Prompt renders the answer prompt. Query and response are inserted verbatim.
func (s *AnswerSynthesizer) Prompt(in AnswerInput) (string, error) {
	return render(answerTemplate, answerPromptData{
		Schema:   in.Schema,
		History:  FormatHistory(in.History),
		Query:    in.Query,
		Question: in.Question,
		Response: in.Response,
	})
}

// Synthesize asks the model for the answer text.
func (s *AnswerSynthesizer) Synthesize(ctx context.Context, in AnswerInput) (string, error) {
	prompt, err := s.Prompt(in)
	if err != nil {
		return "", fmt.Errorf("render answer prompt: %w", err)
	}

	reply, err := s.provider.Complete(ctx, ai.UserPrompt(prompt, s.temperature))
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
