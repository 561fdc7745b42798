package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/DachengChen/sqlchat/ai"
)

// SQLGenerator turns a question into a single SQL statement.
type SQLGenerator struct {
	provider    ai.Provider
	temperature float64
}

// NewSQLGenerator creates a generator that queries provider at temperature.
func NewSQLGenerator(provider ai.Provider, temperature float64) *SQLGenerator {
	return &SQLGenerator{provider: provider, temperature: temperature}
}

// Prompt renders the SQL prompt. Schema and question are inserted verbatim.
func (g *SQLGenerator) Prompt(schema string, history []Message, question string) (string, error) {
	return render(sqlQueryTemplate, sqlPromptData{
		Schema:   schema,
		History:  FormatHistory(history),
		Question: question,
	})
}

// Generate asks the model for the query. The reply is returned with
// surrounding whitespace removed and is otherwise not inspected.
func (g *SQLGenerator) Generate(ctx context.Context, schema string, history []Message, question string) (string, error) {
	prompt, err := g.Prompt(schema, history, question)
	if err != nil {
		return "", fmt.Errorf("render sql prompt: %w", err)
	}

	reply, err := g.provider.Complete(ctx, ai.UserPrompt(prompt, g.temperature))
	if err != nil {
		return "", fmt.Errorf("generate sql: %w", err)
	}
	return strings.TrimSpace(reply), nil
}
