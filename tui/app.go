// app.go is the top-level Bubble Tea model.
//
// Flow:
//  1. Start with ConnectView (connection + AI settings form)
//  2. On successful connection → switch to the chat view
//  3. ":disconnect" closes the database and returns to the form
//
// Commands are typed into the chat input with a leading ":".
package tui

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DachengChen/sqlchat/applog"
	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/db"
	"github.com/DachengChen/sqlchat/transcript"
)

// Version is shown in the header.
var Version = "dev"

// AppPhase tracks whether we're connecting or chatting.
type AppPhase int

const (
	PhaseConnect AppPhase = iota
	PhaseChat
)

// App is the root Bubble Tea model.
type App struct {
	phase       AppPhase
	connectView *ConnectView
	chatView    *ChatView
	appCfg      *config.AppConfig
	transcripts *transcript.Store

	// Connected state
	db           db.Database
	cfg          config.Config
	connName     string
	providerName string

	width     int
	height    int
	showHelp  bool
	statusMsg string
}

// NewApp creates the application starting with the connection screen.
// keys and transcripts may be nil.
func NewApp(store *config.ConnectionStore, appCfg *config.AppConfig, keys KeyStore, transcripts *transcript.Store) *App {
	return &App{
		phase:       PhaseConnect,
		connectView: NewConnectView(store, appCfg, keys),
		appCfg:      appCfg,
		transcripts: transcripts,
	}
}

// Phase reports the current phase.
func (a *App) Phase() AppPhase { return a.phase }

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return a.connectView.Init()
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case ConnectedMsg:
		a.db = msg.DB
		a.cfg = msg.Cfg
		a.connName = msg.Conn.Name
		a.providerName = msg.Provider.Name()
		a.chatView = NewChatView(msg.DB, msg.Provider, a.appCfg.AI.Temperature, a.transcripts, msg.Cfg.Label())
		a.phase = PhaseChat
		a.statusMsg = ""
		a.resize()
		applog.Event("connect", "connected",
			slog.String("driver", msg.Cfg.Driver),
			slog.String("target", msg.Cfg.Label()),
			slog.String("provider", a.providerName),
		)
		return a, a.chatView.Init()

	case ConnectErrorMsg:
		updated, cmd := a.connectView.Update(msg)
		a.connectView = updated.(*ConnectView)
		return a, cmd

	case CommandMsg:
		return a, a.executeCommand(msg.Input)
	}

	if a.phase == PhaseConnect {
		return a.updateConnect(msg)
	}
	return a.updateChat(msg)
}

// resize hands the content area to the active view.
// Header(1) + Status(1) + Borders(2) = 4 lines of chrome.
func (a *App) resize() {
	contentW := a.width - 2
	contentH := a.height - 4
	if a.phase == PhaseConnect {
		a.connectView.SetSize(contentW, contentH)
		return
	}
	if a.chatView != nil {
		a.chatView.SetSize(contentW, contentH)
	}
}

func (a *App) updateConnect(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		return a, tea.Quit
	}

	updated, cmd := a.connectView.Update(msg)
	a.connectView = updated.(*ConnectView)
	return a, cmd
}

func (a *App) updateChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "f1":
			a.showHelp = !a.showHelp
			return a, nil
		case "esc":
			if a.showHelp {
				a.showHelp = false
				return a, nil
			}
		}
		a.statusMsg = ""
	}

	updated, cmd := a.chatView.Update(msg)
	a.chatView = updated.(*ChatView)
	return a, cmd
}

func (a *App) executeCommand(input string) tea.Cmd {
	input = strings.TrimSpace(input)
	if name, query, _ := strings.Cut(input, " "); strings.EqualFold(name, "run") {
		query = strings.TrimSpace(query)
		if query == "" {
			a.statusMsg = "usage: :run <query>"
			return nil
		}
		if a.chatView == nil {
			return nil
		}
		return a.chatView.RunQuery(query)
	}

	switch strings.ToLower(input) {
	case "q", "quit":
		return tea.Quit
	case "disconnect":
		a.disconnect()
	case "new":
		if a.chatView != nil {
			a.chatView.NewSession()
		}
	case "sql":
		if a.chatView != nil {
			a.chatView.ToggleSQL()
		}
	case "help":
		a.showHelp = true
	default:
		a.statusMsg = "unknown command: " + input
	}
	return nil
}

func (a *App) disconnect() {
	if a.chatView != nil {
		a.chatView.Cancel()
		a.chatView = nil
	}
	a.Close()
	a.phase = PhaseConnect
	a.connectView.connecting = false
	a.statusMsg = ""
	a.showHelp = false
	a.resize()
}

// Close releases the database connection, if any.
func (a *App) Close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
		applog.Event("connect", "disconnected", slog.String("target", a.cfg.Label()))
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "loading..."
	}

	header := a.renderHeader()

	frameHeight := a.height - 4
	if frameHeight < 0 {
		frameHeight = 0
	}
	frame := StyleBorder.
		Width(a.width - 2).
		Height(frameHeight)

	var content string
	switch {
	case a.phase == PhaseConnect:
		content = a.connectView.View()
	case a.showHelp:
		content = a.renderHelp()
	default:
		content = a.chatView.View()
	}

	return header + "\n" + frame.Render(content) + "\n" + a.renderStatusBar()
}

// renderHeader draws logo + version + connection info.
func (a *App) renderHeader() string {
	left := StyleBold.Render("🗄 sqlchat") + StyleDimmed.Render(" "+Version)

	var connInfo string
	if a.phase == PhaseChat {
		label := a.connName
		if label == "" {
			label = "Direct"
		}
		connInfo = StyleSuccess.Render(fmt.Sprintf("  ⚡ %s (%s)", label, a.cfg.Label())) +
			StyleDimmed.Render("  🤖 "+a.providerName)
	}

	content := left + connInfo
	right := StyleDimmed.Render(fmt.Sprintf("%d×%d", a.width, a.height))
	gap := a.width - lipgloss.Width(content) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Render(content + strings.Repeat(" ", gap) + right)
}

func (a *App) renderStatusBar() string {
	if a.statusMsg != "" {
		return StyleStatusBar.Width(a.width).Render(StyleWarning.Render(a.statusMsg))
	}

	var items []KeyBinding
	if a.phase == PhaseConnect {
		items = a.connectView.ShortHelp()
	} else {
		items = append(a.chatView.ShortHelp(),
			KeyBinding{Key: "F1", Desc: "help"},
			KeyBinding{Key: "Ctrl+C", Desc: "quit"},
		)
	}

	parts := make([]string, 0, len(items))
	for _, h := range items {
		parts = append(parts, StyleHelpKey.Render(h.Key)+" "+StyleHelpDesc.Render(h.Desc))
	}
	return StyleStatusBar.Width(a.width).Padding(0, 1).Render(strings.Join(parts, "  │  "))
}

func (a *App) renderHelp() string {
	help := []string{
		StyleTitle.Render("⌨ sqlchat"),
		"Ask a question in plain English. The model writes a SQL query,",
		"it runs against the database, and the model explains the result.",
		"",
		StyleHelpKey.Render("Enter") + "            Ask",
		StyleHelpKey.Render("Esc") + "              Cancel the running question",
		StyleHelpKey.Render("F2") + "               Show/hide generated SQL",
		StyleHelpKey.Render("Ctrl+L") + "           New session (forget the conversation)",
		StyleHelpKey.Render("↑/↓ PgUp/PgDn") + "    Scroll",
		StyleHelpKey.Render("F1") + "               Toggle this help",
		StyleHelpKey.Render("Ctrl+C") + "           Quit",
		"",
		StyleTitle.Render("Commands"),
		StyleHelpKey.Render(":disconnect") + "      Return to connection screen",
		StyleHelpKey.Render(":new") + "             New session",
		StyleHelpKey.Render(":sql") + "             Show/hide generated SQL",
		StyleHelpKey.Render(":run <query>") + "     Run a query yourself (not sent to the model)",
		StyleHelpKey.Render(":quit") + "            Quit",
		"",
		StyleWarning.Render("Generated SQL is executed as-is. Connect with a read-only user."),
		"",
		StyleDimmed.Render("Press F1 or Esc to close"),
	}

	return lipgloss.NewStyle().
		Width(a.width-4).
		Padding(1, 2).
		Render(strings.Join(help, "\n"))
}
