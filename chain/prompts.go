package chain

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var (
	sqlQueryTemplate = template.Must(template.ParseFS(promptFS, "prompts/sql_query.tmpl"))
	answerTemplate   = template.Must(template.ParseFS(promptFS, "prompts/answer.tmpl"))
)

type sqlPromptData struct {
	Schema   string
	History  string
	Question string
}

type answerPromptData struct {
	Schema   string
	History  string
	Query    string
	Question string
	Response string
}

func render(t *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
