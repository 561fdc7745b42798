package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Placeholder is an offline provider for development and demos. It
// recognizes the two chain prompts and returns canned output: a COUNT
// query for the first table the question names, and an answer that
// restates the query result.
type Placeholder struct {
	delay time.Duration
}

var _ Provider = (*Placeholder)(nil)

func NewPlaceholder() *Placeholder {
	return &Placeholder{delay: 300 * time.Millisecond}
}

func (p *Placeholder) Name() string {
	return "placeholder"
}

var (
	reCreateTable = regexp.MustCompile("(?i)CREATE TABLE\\s+[`\"]?([A-Za-z0-9_]+)")
	reQuestion    = regexp.MustCompile(`(?m)^(?:Question|User question):\s*(.*)$`)
	reSQLResponse = regexp.MustCompile(`(?s)SQL Response:\s*(.*)$`)
)

func (p *Placeholder) Complete(ctx context.Context, req Request) (string, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if len(req.Messages) == 0 {
		return "", fmt.Errorf("placeholder: no messages provided")
	}
	prompt := req.Messages[len(req.Messages)-1].Content

	if m := reSQLResponse.FindStringSubmatch(prompt); m != nil {
		result := strings.TrimSpace(m[1])
		if result == "" {
			return "The query returned no rows.", nil
		}
		return "The query returned: " + result, nil
	}

	return placeholderSQL(prompt), nil
}

// placeholderSQL counts rows of the first schema table the last question
// mentions, matching singular or plural names.
func placeholderSQL(prompt string) string {
	questions := reQuestion.FindAllStringSubmatch(prompt, -1)
	if len(questions) == 0 {
		return "SELECT 1;"
	}
	question := strings.ToLower(questions[len(questions)-1][1])

	for _, m := range reCreateTable.FindAllStringSubmatch(prompt, -1) {
		table := m[1]
		name := strings.ToLower(table)
		if strings.Contains(question, name) || strings.Contains(question, strings.TrimSuffix(name, "s")) {
			return fmt.Sprintf("SELECT COUNT(*) FROM %s;", table)
		}
	}
	return "SELECT 1;"
}
