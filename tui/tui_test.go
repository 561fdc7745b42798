package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DachengChen/sqlchat/ai"
	"github.com/DachengChen/sqlchat/chain"
	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/db"
)

type scriptedProvider struct {
	replies []string
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Complete(context.Context, ai.Request) (string, error) {
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

type fakeDB struct {
	schema string
	result string
	runErr error
	closed bool
}

func (f *fakeDB) TableInfo(context.Context) (string, error) { return f.schema, nil }

func (f *fakeDB) Run(context.Context, string) (string, error) { return f.result, f.runErr }

func (f *fakeDB) Execute(_ context.Context, query string) (*db.QueryResult, error) {
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &db.QueryResult{
		Columns:  []string{"total"},
		Rows:     [][]string{{"59"}},
		RowCount: 1,
		Status:   "(1 row)",
	}, nil
}

func (f *fakeDB) Dialect() string { return config.DriverSQLite }

func (f *fakeDB) Close() { f.closed = true }

var _ db.Database = (*fakeDB)(nil)

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func keyType(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func newTestChat(t *testing.T, source *fakeDB, replies ...string) *ChatView {
	t.Helper()
	v := NewChatView(source, &scriptedProvider{replies: replies}, 0.3, nil, "sqlite3:test.db")
	v.SetSize(100, 30)
	return v
}

// ask types question, presses Enter and returns the turn command.
func ask(t *testing.T, v *ChatView, question string) tea.Cmd {
	t.Helper()
	for _, r := range question {
		v.Update(keyRunes(string(r)))
	}
	_, cmd := v.Update(keyType(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("Enter returned no command")
	}
	return cmd
}

func TestChatStartsWithGreeting(t *testing.T) {
	v := newTestChat(t, &fakeDB{})
	h := v.History()
	if len(h) != 1 || h[0].Role != chain.RoleAssistant || h[0].Content != chain.Greeting {
		t.Fatalf("History() = %+v, want the greeting only", h)
	}
	if !strings.Contains(v.View(), "assistant") {
		t.Fatal("greeting not rendered")
	}
}

func TestChatTurnAppendsHumanThenAssistant(t *testing.T) {
	source := &fakeDB{schema: "CREATE TABLE customers (id INTEGER)", result: "total\n59"}
	v := newTestChat(t, source, "SELECT COUNT(*) FROM customers;", "There are 59 customers.")

	cmd := ask(t, v, "how many customers?")

	h := v.History()
	if len(h) != 2 || h[1] != chain.Human("how many customers?") {
		t.Fatalf("History() before turn = %+v", h)
	}
	if !v.Busy() {
		t.Fatal("view not busy while the turn runs")
	}

	// Input is locked while busy.
	v.Update(keyRunes("x"))
	if _, again := v.Update(keyType(tea.KeyEnter)); again != nil {
		t.Fatal("second question accepted while busy")
	}

	v.Update(cmd())

	h = v.History()
	if len(h) != 3 {
		t.Fatalf("History() len = %d, want 3", len(h))
	}
	if h[2] != chain.Assistant("There are 59 customers.") {
		t.Fatalf("last message = %+v", h[2])
	}
	if v.Busy() {
		t.Fatal("view still busy after the turn")
	}
	if out := v.View(); !strings.Contains(out, "SELECT COUNT(*) FROM customers;") {
		t.Fatalf("generated SQL not shown:\n%s", out)
	}

	v.ToggleSQL()
	if out := v.View(); strings.Contains(out, "SELECT COUNT(*) FROM customers;") {
		t.Fatal("generated SQL still shown after toggle")
	}
}

func TestChatTurnErrorShowsErrorLine(t *testing.T) {
	source := &fakeDB{runErr: errors.New("no such table: customer")}
	v := newTestChat(t, source, "SELECT COUNT(*) FROM customer;")

	cmd := ask(t, v, "how many customers?")
	v.Update(cmd())

	if got := len(v.History()); got != 2 {
		t.Fatalf("History() len = %d, want 2 (no assistant reply)", got)
	}
	if out := v.View(); !strings.Contains(out, "no such table: customer") {
		t.Fatalf("error not rendered:\n%s", out)
	}
	if v.Busy() {
		t.Fatal("view still busy after a failed turn")
	}
}

func TestNewSessionDropsHistoryAndStaleReplies(t *testing.T) {
	v := newTestChat(t, &fakeDB{result: "total\n59"}, "SELECT 1;", "One.")
	first := v.SessionID()

	cmd := ask(t, v, "one?")
	v.Update(keyType(tea.KeyCtrlL))

	if v.SessionID() == first {
		t.Fatal("Ctrl+L kept the session id")
	}
	if got := len(v.History()); got != 1 {
		t.Fatalf("History() len = %d after new session, want 1", got)
	}

	v.Update(cmd())
	if got := len(v.History()); got != 1 {
		t.Fatalf("reply for the old session was applied: len = %d", got)
	}
}

func TestEscCancelsRunningTurn(t *testing.T) {
	v := newTestChat(t, &fakeDB{result: "total\n59"}, "SELECT 1;", "One.")

	cmd := ask(t, v, "one?")
	v.Update(keyType(tea.KeyEsc))
	if v.Busy() {
		t.Fatal("Esc did not cancel the turn")
	}

	v.Update(cmd())
	if got := len(v.History()); got != 2 {
		t.Fatalf("cancelled turn reply was applied: len = %d", got)
	}
}

func TestColonInputBecomesCommand(t *testing.T) {
	v := newTestChat(t, &fakeDB{})

	cmd := ask(t, v, ":disconnect")
	msg, ok := cmd().(CommandMsg)
	if !ok || msg.Input != "disconnect" {
		t.Fatalf("cmd() = %#v, want CommandMsg{disconnect}", msg)
	}
	if got := len(v.History()); got != 1 {
		t.Fatalf("command reached the history: len = %d", got)
	}
}

func TestRunQueryShowsTableOutsideHistory(t *testing.T) {
	v := newTestChat(t, &fakeDB{})

	cmd := v.RunQuery("SELECT COUNT(*) AS total FROM customers")
	if cmd == nil {
		t.Fatal("RunQuery() returned no command")
	}
	v.Update(cmd())

	out := v.View()
	if !strings.Contains(out, "total") || !strings.Contains(out, "59") {
		t.Fatalf("result table not rendered:\n%s", out)
	}
	if got := len(v.History()); got != 1 {
		t.Fatalf("direct query reached the history: len = %d", got)
	}
}

func TestFormatResultTable(t *testing.T) {
	r := &db.QueryResult{
		Columns: []string{"name", "n"},
		Rows:    [][]string{{"Rock", "1297"}, {strings.Repeat("x", 60), "1"}},
		Status:  "(2 rows)",
	}
	lines := formatResultTable(r)
	if len(lines) != 5 {
		t.Fatalf("len(lines) = %d, want 5", len(lines))
	}
	if !strings.Contains(lines[3], "…") {
		t.Fatalf("long cell not clipped: %q", lines[3])
	}
	if !strings.Contains(lines[4], "(2 rows)") {
		t.Fatalf("status line = %q", lines[4])
	}
}

func newTestStore(t *testing.T) *config.ConnectionStore {
	t.Helper()
	store, err := config.LoadConnectionStore(filepath.Join(t.TempDir(), "connections.json"))
	if err != nil {
		t.Fatalf("LoadConnectionStore() error = %v", err)
	}
	return store
}

func TestAppConnectAndDisconnect(t *testing.T) {
	t.Setenv("SQLCHAT_HOME", t.TempDir())
	cfg := &config.AppConfig{AI: config.DefaultAIConfig()}
	app := NewApp(newTestStore(t), cfg, nil, nil)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	database := &fakeDB{}
	app.Update(ConnectedMsg{
		DB:       database,
		Provider: ai.NewPlaceholder(),
		Cfg:      config.Config{Driver: config.DriverSQLite, Database: "chinook.db"},
	})
	if app.Phase() != PhaseChat {
		t.Fatalf("Phase() = %v, want PhaseChat", app.Phase())
	}
	if out := app.View(); !strings.Contains(out, "sqlite3:chinook.db") {
		t.Fatalf("header missing connection label:\n%s", out)
	}

	app.Update(CommandMsg{Input: "disconnect"})
	if app.Phase() != PhaseConnect {
		t.Fatalf("Phase() = %v after disconnect, want PhaseConnect", app.Phase())
	}
	if !database.closed {
		t.Fatal("database not closed on disconnect")
	}
}

func TestAppUnknownCommand(t *testing.T) {
	cfg := &config.AppConfig{AI: config.DefaultAIConfig()}
	app := NewApp(newTestStore(t), cfg, nil, nil)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app.Update(ConnectedMsg{DB: &fakeDB{}, Provider: ai.NewPlaceholder(), Cfg: config.Config{Driver: config.DriverSQLite}})

	app.Update(CommandMsg{Input: "frobnicate"})
	if !strings.Contains(app.View(), "unknown command: frobnicate") {
		t.Fatal("unknown command not reported")
	}
}

func TestAppRunWithoutQueryShowsUsage(t *testing.T) {
	cfg := &config.AppConfig{AI: config.DefaultAIConfig()}
	app := NewApp(newTestStore(t), cfg, nil, nil)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	app.Update(ConnectedMsg{DB: &fakeDB{}, Provider: ai.NewPlaceholder(), Cfg: config.Config{Driver: config.DriverSQLite}})

	for _, input := range []string{"run", "RUN   "} {
		_, cmd := app.Update(CommandMsg{Input: input})
		if cmd != nil {
			t.Fatalf("Update(%q) returned a command", input)
		}
		view := app.View()
		if !strings.Contains(view, "usage: :run <query>") || strings.Contains(view, "unknown command") {
			t.Fatalf("Update(%q) status not the :run usage", input)
		}
	}
}

type fakeKeys map[string]string

func (f fakeKeys) Set(provider, key string) error {
	f[provider] = key
	return nil
}

func newTestConnectView(t *testing.T, provider string, keys KeyStore) (*ConnectView, *config.AIConfig) {
	t.Helper()
	t.Setenv("SQLCHAT_HOME", t.TempDir())
	cfg := &config.AppConfig{AI: config.DefaultAIConfig()}
	cfg.AI.Provider = provider
	v := NewConnectView(newTestStore(t), cfg, keys)
	saved := new(config.AIConfig)
	v.saveSettings = func(ai config.AIConfig) error {
		*saved = ai
		return nil
	}
	return v, saved
}

func TestConnectViewDriverCycleUpdatesPort(t *testing.T) {
	v, _ := newTestConnectView(t, config.ProviderPlaceholder, nil)
	if v.fields[fieldDriver] != config.DriverMySQL || v.fields[fieldPort] != "3306" {
		t.Fatalf("defaults = %s:%s, want mysql:3306", v.fields[fieldDriver], v.fields[fieldPort])
	}

	v.focusField = fieldDriver
	v.Update(keyType(tea.KeyRight))
	if v.fields[fieldDriver] != config.DriverPostgres || v.fields[fieldPort] != "5432" {
		t.Fatalf("after right = %s:%s, want postgres:5432", v.fields[fieldDriver], v.fields[fieldPort])
	}

	v.Update(keyType(tea.KeyRight))
	if v.fields[fieldDriver] != config.DriverSQLite {
		t.Fatalf("driver = %s, want sqlite3", v.fields[fieldDriver])
	}
	if v.visible(fieldHost) || v.visible(fieldSSHEnabled) {
		t.Fatal("network fields visible for sqlite3")
	}

	// Navigation skips hidden fields.
	v.Update(keyType(tea.KeyDown))
	if v.focusField != fieldDatabase {
		t.Fatalf("focus after down = %d, want database field", v.focusField)
	}
}

func TestConnectViewEditField(t *testing.T) {
	v, _ := newTestConnectView(t, config.ProviderPlaceholder, nil)
	v.focusField = fieldDatabase

	v.Update(keyType(tea.KeyEnter))
	if !v.WantsTextInput() {
		t.Fatal("Enter on a text field did not start editing")
	}
	v.Update(keyType(tea.KeyCtrlU))
	v.Update(keyRunes("Sakila"))
	v.Update(keyType(tea.KeyEnter))

	if v.fields[fieldDatabase] != "Sakila" {
		t.Fatalf("database = %q, want Sakila", v.fields[fieldDatabase])
	}
	if v.editing {
		t.Fatal("still editing after Enter")
	}
}

func TestConnectViewSaveAIStoresKeyInKeychain(t *testing.T) {
	keys := fakeKeys{}
	v, saved := newTestConnectView(t, config.ProviderGroq, keys)
	v.fields[fieldAIAPIKey] = "gsk-test"
	v.block = blockAI
	v.focusField = fieldAISave

	v.Update(keyType(tea.KeyEnter))

	if v.err != nil {
		t.Fatalf("save error = %v", v.err)
	}
	if keys[config.ProviderGroq] != "gsk-test" {
		t.Fatalf("keychain = %v", keys)
	}
	if saved.Provider != config.ProviderGroq {
		t.Fatalf("saved provider = %q", saved.Provider)
	}
}

func TestConnectWithoutKeyReportsError(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	v, _ := newTestConnectView(t, config.ProviderGroq, nil)
	v.fields[fieldAIAPIKey] = ""
	v.focusField = fieldConnect

	_, cmd := v.Update(keyType(tea.KeyEnter))
	if cmd != nil {
		t.Fatal("connect started without an API key")
	}
	if v.err == nil || !strings.Contains(v.err.Error(), "GROQ_API_KEY") {
		t.Fatalf("err = %v, want mention of GROQ_API_KEY", v.err)
	}
}

func TestConnectOpensSQLite(t *testing.T) {
	v, _ := newTestConnectView(t, config.ProviderPlaceholder, nil)
	v.fields[fieldDriver] = config.DriverSQLite
	v.fields[fieldDatabase] = filepath.Join(t.TempDir(), "chat.db")
	v.focusField = fieldConnect

	_, cmd := v.Update(keyType(tea.KeyEnter))
	if cmd == nil {
		t.Fatalf("connect returned no command, err = %v", v.err)
	}
	msg, ok := cmd().(ConnectedMsg)
	if !ok {
		t.Fatalf("cmd() = %#v, want ConnectedMsg", msg)
	}
	defer msg.DB.Close()

	if msg.DB.Dialect() != config.DriverSQLite {
		t.Fatalf("Dialect() = %q", msg.DB.Dialect())
	}
	if msg.Provider.Name() != "placeholder" {
		t.Fatalf("provider = %q", msg.Provider.Name())
	}
}

func TestConnectKeepsLoadedKeyOutOfKeychain(t *testing.T) {
	t.Setenv("SQLCHAT_HOME", t.TempDir())
	cfg := &config.AppConfig{AI: config.DefaultAIConfig()}
	cfg.AI.Provider = config.ProviderGroq
	cfg.AI.Groq.APIKey = "gsk-from-dotenv"

	keys := fakeKeys{}
	v := NewConnectView(newTestStore(t), cfg, keys)
	v.saveSettings = func(config.AIConfig) error { return nil }
	if v.fields[fieldAIAPIKey] != "gsk-from-dotenv" {
		t.Fatalf("key field = %q, want the loaded key", v.fields[fieldAIAPIKey])
	}

	v.fields[fieldDriver] = config.DriverSQLite
	v.fields[fieldDatabase] = filepath.Join(t.TempDir(), "chat.db")
	v.focusField = fieldConnect
	if _, cmd := v.Update(keyType(tea.KeyEnter)); cmd == nil {
		t.Fatalf("connect returned no command, err = %v", v.err)
	}
	if len(keys) != 0 {
		t.Fatalf("keychain = %v, want it untouched", keys)
	}

	// A key typed over the loaded one is stored.
	v.connecting = false
	v.block = blockAI
	v.fields[fieldAIAPIKey] = "gsk-rotated"
	v.focusField = fieldAISave
	v.Update(keyType(tea.KeyEnter))
	if keys[config.ProviderGroq] != "gsk-rotated" {
		t.Fatalf("keychain = %v, want the typed key", keys)
	}
}

func TestChatInputEditing(t *testing.T) {
	v := newTestChat(t, &fakeDB{})

	v.Update(keyRunes("helo"))
	v.Update(keyType(tea.KeyLeft))
	v.Update(keyRunes("l"))
	if got := v.input.Value(); got != "hello" {
		t.Fatalf("input after cursor move = %q, want hello", got)
	}

	// Pasted text that spells a key name is still text.
	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" up"), Paste: true})
	if got := v.input.Value(); got != "hello up" {
		t.Fatalf("input after paste = %q", got)
	}

	v.Update(keyType(tea.KeyCtrlU))
	if got := v.input.Value(); got != "" {
		t.Fatalf("input after Ctrl+U = %q, want empty", got)
	}
}
