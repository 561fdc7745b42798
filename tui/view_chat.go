// view_chat.go is the conversation screen.
//
// Each question is appended to the session history before the chain
// runs; the answer is appended once the turn completes. Turns run in a
// tea.Cmd so the UI stays responsive, and input is locked until the
// current turn finishes or is cancelled.
package tui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/DachengChen/sqlchat/ai"
	"github.com/DachengChen/sqlchat/applog"
	"github.com/DachengChen/sqlchat/chain"
	"github.com/DachengChen/sqlchat/db"
	"github.com/DachengChen/sqlchat/transcript"
)

// chatEntry is one block of the rendered conversation.
type chatEntry struct {
	msg    chain.Message
	query  string // SQL behind an assistant reply or a failed turn
	result *db.QueryResult
	direct bool // ":run" output rather than a chat turn
	err    error
}

// executor is implemented by sources that return structured results.
type executor interface {
	Execute(ctx context.Context, query string) (*db.QueryResult, error)
}

// ChatView runs chain turns against one database.
type ChatView struct {
	source      chain.Source
	provider    ai.Provider
	temperature float64
	transcripts *transcript.Store
	label       string

	history   *chain.History
	pipeline  *chain.Pipeline
	sessionID string
	seq       int // number of the latest submitted turn
	entries   []chatEntry

	viewport *Viewport
	renderer *glamour.TermRenderer
	input    textinput.Model
	busy     bool
	cancel   context.CancelFunc
	showSQL  bool
	width    int
	height   int
}

// NewChatView starts a session against source. transcripts may be nil.
func NewChatView(source chain.Source, provider ai.Provider, temperature float64, transcripts *transcript.Store, label string) *ChatView {
	v := &ChatView{
		source:      source,
		provider:    provider,
		temperature: temperature,
		transcripts: transcripts,
		label:       label,
		viewport:    NewViewport(80, 20),
		input:       newChatInput(),
		showSQL:     true,
	}
	v.NewSession()
	return v
}

// NewSession drops the conversation and starts over from the greeting
// with a fresh session id. A running turn is cancelled.
func (v *ChatView) NewSession() {
	v.Cancel()

	var opts []chain.Option
	if v.transcripts != nil {
		sess := v.transcripts.NewSession(v.label, v.provider.Name())
		v.sessionID = sess.ID
		opts = append(opts, chain.WithRecorder(sess))
	} else {
		v.sessionID = uuid.NewString()
	}
	v.pipeline = chain.NewPipeline(v.source, v.provider, v.temperature, opts...)

	v.history = chain.NewHistory()
	v.entries = v.entries[:0]
	for _, m := range v.history.Messages() {
		v.entries = append(v.entries, chatEntry{msg: m})
	}
	v.input.Reset()
	v.input.Focus()
	v.viewport.End()
	v.refresh()

	applog.Event("chat", "session started", slog.String("session", v.sessionID), slog.String("target", v.label))
}

// Cancel aborts the running turn, if any.
func (v *ChatView) Cancel() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.setBusy(false)
}

// setBusy locks or unlocks the input line.
func (v *ChatView) setBusy(busy bool) {
	v.busy = busy
	if busy {
		v.input.Blur()
	} else {
		v.input.Focus()
	}
}

func newChatInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Ask> "
	ti.PromptStyle = StylePrompt
	ti.Placeholder = "How many customers are from Brazil?"
	ti.Focus()
	return ti
}

// ToggleSQL shows or hides the generated query above each answer.
func (v *ChatView) ToggleSQL() {
	v.showSQL = !v.showSQL
	v.refresh()
}

// History returns the conversation so far.
func (v *ChatView) History() []chain.Message { return v.history.Messages() }

// SessionID returns the id of the current session.
func (v *ChatView) SessionID() string { return v.sessionID }

// Busy reports whether a turn is running.
func (v *ChatView) Busy() bool { return v.busy }

func (v *ChatView) Name() string { return "Chat" }

func (v *ChatView) WantsTextInput() bool { return true }

func (v *ChatView) SetSize(width, height int) {
	v.width = width
	v.height = height
	// prompt line, blank separator, scroll indicator
	v.viewport.SetSize(width-2, height-3)
	v.input.Width = max(width-len(v.input.Prompt)-2, 10)

	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		applog.Error("create markdown renderer", err)
		r = nil
	}
	v.renderer = r
	v.refresh()
}

func (v *ChatView) ShortHelp() []KeyBinding {
	if v.busy {
		return []KeyBinding{
			{Key: "Esc", Desc: "cancel"},
			{Key: "↑/↓", Desc: "scroll"},
		}
	}
	return []KeyBinding{
		{Key: "Enter", Desc: "ask"},
		{Key: "F2", Desc: "toggle SQL"},
		{Key: "Ctrl+L", Desc: "new session"},
		{Key: "↑/↓", Desc: "scroll"},
		{Key: ":disconnect", Desc: "back"},
	}
}

func (v *ChatView) Init() tea.Cmd { return textinput.Blink }

func (v *ChatView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v, v.handleKey(msg)

	case TurnMsg:
		if msg.SessionID != v.sessionID || msg.Seq != v.seq {
			return v, nil
		}
		v.finishTurn(msg)

	case QueryResultMsg:
		if msg.SessionID != v.sessionID || msg.Seq != v.seq || !v.busy {
			return v, nil
		}
		v.setBusy(false)
		v.cancel = nil
		v.entries = append(v.entries, chatEntry{query: msg.Query, result: msg.Result, direct: true, err: msg.Err})
		v.refresh()

	default:
		// cursor blink
		return v, v.updateInput(msg)
	}
	return v, nil
}

func (v *ChatView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyRunes {
		return v.updateInput(msg)
	}
	switch msg.String() {
	case "enter":
		return v.submit()
	case "ctrl+l":
		v.NewSession()
		return nil
	case "f2":
		v.ToggleSQL()
		return nil
	case "esc":
		if v.busy {
			v.Cancel()
			v.entries = append(v.entries, chatEntry{err: context.Canceled})
			v.refresh()
		}
		return nil
	case "up":
		v.viewport.ScrollUp(1)
		return nil
	case "down":
		v.viewport.ScrollDown(1)
		return nil
	case "pgup":
		v.viewport.PageUp()
		return nil
	case "pgdown":
		v.viewport.PageDown()
		return nil
	}

	return v.updateInput(msg)
}

// updateInput hands editing keys, cursor movement and paste to the input
// line. A blurred input ignores them.
func (v *ChatView) updateInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

// submit starts a turn for the current input. Input beginning with ":"
// is handed to the App as a command instead.
func (v *ChatView) submit() tea.Cmd {
	question := strings.TrimSpace(v.input.Value())
	if v.busy || question == "" {
		return nil
	}
	v.input.Reset()

	if strings.HasPrefix(question, ":") {
		cmd := strings.TrimSpace(strings.TrimPrefix(question, ":"))
		return func() tea.Msg { return CommandMsg{Input: cmd} }
	}

	v.history.Append(chain.Human(question))
	v.entries = append(v.entries, chatEntry{msg: chain.Human(question)})
	v.setBusy(true)
	v.seq++
	v.viewport.End()
	v.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	pipeline, sessionID, seq, history := v.pipeline, v.sessionID, v.seq, v.history.Messages()

	return func() tea.Msg {
		defer cancel()
		turn, err := pipeline.Respond(ctx, question, history)
		return TurnMsg{SessionID: sessionID, Seq: seq, Turn: turn, Err: err}
	}
}

// RunQuery executes query directly and shows the result as a table.
// The query and its result stay out of the conversation history.
func (v *ChatView) RunQuery(query string) tea.Cmd {
	ex, ok := v.source.(executor)
	if !ok || v.busy || query == "" {
		return nil
	}
	v.setBusy(true)
	v.seq++
	v.viewport.End()
	v.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	sessionID, seq := v.sessionID, v.seq

	return func() tea.Msg {
		defer cancel()
		res, err := ex.Execute(ctx, query)
		return QueryResultMsg{SessionID: sessionID, Seq: seq, Query: query, Result: res, Err: err}
	}
}

func (v *ChatView) finishTurn(msg TurnMsg) {
	if !v.busy {
		return
	}
	v.setBusy(false)
	v.cancel = nil

	if msg.Err != nil {
		v.entries = append(v.entries, chatEntry{query: msg.Turn.Query, err: msg.Err})
	} else {
		answer := chain.Assistant(msg.Turn.Answer)
		v.history.Append(answer)
		v.entries = append(v.entries, chatEntry{msg: answer, query: msg.Turn.Query})
	}
	v.refresh()
}

// refresh re-renders the conversation into the viewport.
func (v *ChatView) refresh() {
	wrap := lipgloss.NewStyle()
	if v.width > 4 {
		wrap = wrap.Width(v.width - 4)
	}

	var blocks []string
	for _, e := range v.entries {
		var b strings.Builder
		switch {
		case e.direct:
			b.WriteString(StyleQuery.Render("▶ " + e.query))
			b.WriteString("\n")
			if e.err != nil {
				b.WriteString(wrap.Render(StyleError.Render("✗ " + e.err.Error())))
			} else {
				b.WriteString(strings.Join(formatResultTable(e.result), "\n"))
			}
		case e.err != nil:
			b.WriteString(StyleAssistant.Render("AI:"))
			b.WriteString(v.renderQuery(e.query))
			b.WriteString("\n")
			b.WriteString(wrap.Render(StyleError.Render("✗ " + e.err.Error())))
		case e.msg.Role == chain.RoleHuman:
			b.WriteString(StyleHuman.Render("You: "))
			b.WriteString(wrap.Render(e.msg.Content))
		default:
			b.WriteString(StyleAssistant.Render("AI:"))
			b.WriteString(v.renderQuery(e.query))
			b.WriteString("\n")
			b.WriteString(v.markdown(e.msg.Content))
		}
		blocks = append(blocks, b.String())
	}
	if v.busy {
		blocks = append(blocks, StyleDimmed.Render("  ⏳ Thinking..."))
	}

	v.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

func (v *ChatView) renderQuery(query string) string {
	if !v.showSQL || query == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(query, "\n") {
		b.WriteString("\n  ")
		b.WriteString(StyleQuery.Render(line))
	}
	return b.String()
}

func (v *ChatView) markdown(text string) string {
	if v.renderer == nil {
		return text
	}
	out, err := v.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (v *ChatView) View() string {
	prompt := v.input.View()
	if v.busy {
		prompt = StylePrompt.Render("Ask> ") + StyleDimmed.Render("waiting for the answer... (Esc to cancel)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.viewport.Render(), "", prompt)
}
