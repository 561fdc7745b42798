package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DachengChen/sqlchat/config"
)

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		t.Fatalf("decode request body: %v", err)
	}
	return body
}

func TestGroqCompleteSendsChatCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer gsk-test" {
			t.Errorf("Authorization = %q", got)
		}
		body := decodeBody(t, r)
		if body["model"] != "mixtral-8x7b-32768" {
			t.Errorf("model = %v", body["model"])
		}
		if body["temperature"] != 0.3 {
			t.Errorf("temperature = %v", body["temperature"])
		}
		msgs := body["messages"].([]any)
		first := msgs[0].(map[string]any)
		if first["role"] != "user" || first["content"] != "prompt text" {
			t.Errorf("messages = %v", msgs)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"SELECT COUNT(*) FROM customers;"}}]}`))
	}))
	defer srv.Close()

	p := NewGroq("gsk-test", "", srv.URL, time.Second)
	got, err := p.Complete(context.Background(), UserPrompt("prompt text", 0.3))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "SELECT COUNT(*) FROM customers;" {
		t.Fatalf("Complete() = %q", got)
	}
	if p.Name() != "Groq (mixtral-8x7b-32768)" {
		t.Fatalf("Name() = %q", p.Name())
	}
}

func TestOpenAICompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, wantErr: "openai API error (401)"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no choices"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantErr: "parse error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAI("k", "", srv.URL, time.Second).Complete(context.Background(), UserPrompt("q", 0))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Complete() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestAnthropicMovesSystemToTopLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-ant" {
			t.Errorf("missing api key header")
		}
		body := decodeBody(t, r)
		if body["system"] != "be brief" {
			t.Errorf("system = %v", body["system"])
		}
		if n := len(body["messages"].([]any)); n != 1 {
			t.Errorf("messages = %d, want 1", n)
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"There are "},{"type":"text","text":"59 customers."}]}`))
	}))
	defer srv.Close()

	req := Request{Messages: []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "how many?"},
	}}
	got, err := NewAnthropic("sk-ant", "", srv.URL, time.Second).Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "There are 59 customers." {
		t.Fatalf("Complete() = %q", got)
	}
}

func TestGeminiMapsAssistantRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "g-key" {
			t.Errorf("key = %q", r.URL.Query().Get("key"))
		}
		body := decodeBody(t, r)
		contents := body["contents"].([]any)
		if role := contents[1].(map[string]any)["role"]; role != "model" {
			t.Errorf("assistant role mapped to %v", role)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	req := Request{Messages: []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
		{Role: RoleUser, Content: "count"},
	}}
	got, err := NewGemini("g-key", "", srv.URL, time.Second).Complete(context.Background(), req)
	if err != nil || got != "ok" {
		t.Fatalf("Complete() = %q, %v", got, err)
	}
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		body := decodeBody(t, r)
		if body["stream"] != false {
			t.Errorf("stream = %v", body["stream"])
		}
		_, _ = w.Write([]byte(`{"message":{"content":"SELECT 1;"}}`))
	}))
	defer srv.Close()

	got, err := NewOllama(srv.URL, "", time.Second).Complete(context.Background(), UserPrompt("q", 0.3))
	if err != nil || got != "SELECT 1;" {
		t.Fatalf("Complete() = %q, %v", got, err)
	}
}

func TestCompleteHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The server notices a client disconnect only after the body is read.
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := NewGroq("k", "", srv.URL, 5*time.Second).Complete(ctx, UserPrompt("q", 0)); err == nil {
		t.Fatal("Complete() error = nil, want deadline error")
	}
}

func TestPlaceholder(t *testing.T) {
	p := &Placeholder{}

	sqlPrompt := "<SCHEMA>CREATE TABLE `customers` (id INT)\nCREATE TABLE orders (id INT)</SCHEMA>\n" +
		"Question: how many orders?\nSQL Query: SELECT COUNT(*) FROM orders;\n" +
		"Question: How many customers are there?\nSQL Query:"
	got, err := p.Complete(context.Background(), UserPrompt(sqlPrompt, 0))
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "SELECT COUNT(*) FROM customers;" {
		t.Fatalf("sql = %q", got)
	}

	answerPrompt := "SQL Query: <SQL>SELECT 1</SQL>\nUser question: q\nSQL Response: total\n59"
	got, _ = p.Complete(context.Background(), UserPrompt(answerPrompt, 0))
	if got != "The query returned: total\n59" {
		t.Fatalf("answer = %q", got)
	}

	got, _ = p.Complete(context.Background(), UserPrompt("User question: q\nSQL Response: ", 0))
	if got != "The query returned no rows." {
		t.Fatalf("empty answer = %q", got)
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*config.AIConfig)
		wantName string
		wantErr  string
	}{
		{name: "groq without key", mutate: func(c *config.AIConfig) {}, wantErr: "GROQ_API_KEY"},
		{name: "groq", mutate: func(c *config.AIConfig) { c.Groq.APIKey = "k" }, wantName: "Groq (mixtral-8x7b-32768)"},
		{name: "anthropic without key", mutate: func(c *config.AIConfig) { c.Provider = config.ProviderAnthropic }, wantErr: "ANTHROPIC_API_KEY"},
		{name: "ollama", mutate: func(c *config.AIConfig) { c.Provider = config.ProviderOllama }, wantName: "Ollama (llama3.2)"},
		{name: "placeholder", mutate: func(c *config.AIConfig) { c.Provider = config.ProviderPlaceholder }, wantName: "placeholder"},
		{name: "unknown", mutate: func(c *config.AIConfig) { c.Provider = "bard" }, wantErr: "unknown AI provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultAIConfig()
			tt.mutate(&cfg)
			p, err := NewProvider(cfg)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("NewProvider() error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if p.Name() != tt.wantName {
				t.Fatalf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}
