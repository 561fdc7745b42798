// view_connect.go is the connection setup screen with integrated AI
// settings. It has two blocks:
//
//	Block 0: Connection: driver, host, port, credentials, SSH tunnel
//	Block 1: AI Settings: provider, API key, model
//
// TAB switches blocks; arrow keys move within the active block. Fields
// that do not apply to the selected driver or provider are hidden and
// skipped. API keys go to the OS keychain when one is available; the
// rest of the AI settings are written to ~/.sqlchat/config.json.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DachengChen/sqlchat/ai"
	"github.com/DachengChen/sqlchat/applog"
	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/db"
	"github.com/DachengChen/sqlchat/ssh"
)

// connectTimeout bounds SSH dial plus database handshake.
const connectTimeout = 30 * time.Second

// KeyStore persists provider API keys.
type KeyStore interface {
	Set(provider, key string) error
}

// ─── Form fields ────────────────────────────────────────────
const (
	fieldSaved = iota
	fieldName
	fieldDriver
	fieldHost
	fieldPort
	fieldUser
	fieldPassword
	fieldDatabase
	fieldSSLMode
	fieldSSHEnabled
	fieldSSHHost
	fieldSSHPort
	fieldSSHUser
	fieldSSHKey
	fieldConnect
	fieldSave
	fieldDelete
	fieldAIProvider
	fieldAIAPIKey
	fieldAIModel
	fieldAIHost // only for Ollama
	fieldAISave
	fieldCount // sentinel
)

const (
	blockConn = 0
	blockAI   = 1
)

type fieldKind int

const (
	kindText fieldKind = iota
	kindSecret
	kindSelect
	kindToggle
	kindButton
)

type fieldSpec struct {
	label string
	kind  fieldKind
}

var fieldSpecs = [fieldCount]fieldSpec{
	fieldSaved:      {"Saved", kindSelect},
	fieldName:       {"Name", kindText},
	fieldDriver:     {"Driver", kindSelect},
	fieldHost:       {"Host", kindText},
	fieldPort:       {"Port", kindText},
	fieldUser:       {"User", kindText},
	fieldPassword:   {"Password", kindSecret},
	fieldDatabase:   {"Database", kindText},
	fieldSSLMode:    {"SSL Mode", kindSelect},
	fieldSSHEnabled: {"SSH Tunnel", kindToggle},
	fieldSSHHost:    {"SSH Host", kindText},
	fieldSSHPort:    {"SSH Port", kindText},
	fieldSSHUser:    {"SSH User", kindText},
	fieldSSHKey:     {"SSH Key", kindSelect},
	fieldConnect:    {"Connect", kindButton},
	fieldSave:       {"Save", kindButton},
	fieldDelete:     {"Delete", kindButton},
	fieldAIProvider: {"Provider", kindSelect},
	fieldAIAPIKey:   {"API Key", kindSecret},
	fieldAIModel:    {"Model", kindText},
	fieldAIHost:     {"Host", kindText},
	fieldAISave:     {"Save AI", kindButton},
}

var sslModes = []string{"disable", "require", "verify-ca", "verify-full", "prefer"}

var aiProviderDesc = map[string]string{
	config.ProviderGroq:        "Groq (hosted Mixtral / Llama)",
	config.ProviderOpenAI:      "OpenAI",
	config.ProviderAnthropic:   "Anthropic (Claude)",
	config.ProviderGemini:      "Google Gemini",
	config.ProviderOllama:      "Ollama (local)",
	config.ProviderPlaceholder: "Offline demo replies",
}

// ConnectView is the connection + AI setup form.
type ConnectView struct {
	store  *config.ConnectionStore
	appCfg *config.AppConfig
	keys   KeyStore

	// saveSettings persists the non-secret AI settings.
	saveSettings func(config.AIConfig) error
	// knownKeys holds the API key each provider had when the form opened
	// (env, .env, config file or keychain). Only keys that differ are
	// written to the keychain.
	knownKeys map[string]string

	fields     [fieldCount]string
	focusField int
	block      int
	savedIdx   int
	editing    bool
	err        error
	statusMsg  string
	connecting bool
	width      int
	height     int
	sshKeys    []string
}

// NewConnectView builds the form. keys may be nil when no keychain is
// available; keys typed into the form then last for this run only.
func NewConnectView(store *config.ConnectionStore, appCfg *config.AppConfig, keys KeyStore) *ConnectView {
	v := &ConnectView{
		store:        store,
		appCfg:       appCfg,
		keys:         keys,
		saveSettings: config.SaveAISettings,
		focusField:   fieldHost,
		block:        blockConn,
		sshKeys:      ssh.DiscoverKeys(ssh.DefaultKeyDir()),
	}

	v.loadConnection(config.DefaultConnection())
	if len(store.Connections) > 0 {
		v.loadSaved(0)
		v.focusField = fieldSaved
	}
	if v.fields[fieldSSHKey] == "" && len(v.sshKeys) > 0 {
		v.fields[fieldSSHKey] = v.sshKeys[0]
	}

	provider := appCfg.AI.Provider
	if provider == "" {
		provider = config.ProviderGroq
	}
	v.fields[fieldAIProvider] = provider
	v.knownKeys = make(map[string]string)
	for _, p := range ai.SupportedProviders {
		if h := appCfg.AI.Hosted(p); h != nil {
			v.knownKeys[p] = h.APIKey
		}
	}
	v.loadAIFields()

	return v
}

func (v *ConnectView) Name() string { return "Connect" }

func (v *ConnectView) WantsTextInput() bool { return v.editing }

func (v *ConnectView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *ConnectView) ShortHelp() []KeyBinding {
	if v.editing {
		return []KeyBinding{
			{Key: "Enter", Desc: "confirm"},
			{Key: "Esc", Desc: "done"},
			{Key: "Ctrl+U", Desc: "clear"},
		}
	}
	other := "AI"
	if v.block == blockAI {
		other = "Connection"
	}
	return []KeyBinding{
		{Key: "↑/↓", Desc: "navigate"},
		{Key: "←/→", Desc: "choose"},
		{Key: "Tab", Desc: other},
		{Key: "Enter", Desc: "edit/action"},
		{Key: "Ctrl+C", Desc: "quit"},
	}
}

func (v *ConnectView) Init() tea.Cmd { return nil }

func (v *ConnectView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if v.editing {
			v.handleEditing(msg)
			return v, nil
		}
		return v, v.handleNavigation(msg)

	case ConnectErrorMsg:
		v.connecting = false
		v.err = msg.Err
		v.statusMsg = ""
	}
	return v, nil
}

// ─────────────────────────────────────────────────────────────
// Navigation
// ─────────────────────────────────────────────────────────────

func (v *ConnectView) handleNavigation(msg tea.KeyMsg) tea.Cmd {
	if v.connecting {
		return nil
	}
	switch msg.String() {
	case "tab", "shift+tab":
		v.switchBlock()
	case "up", "k":
		v.move(-1)
	case "down", "j":
		v.move(1)
	case "left", "h":
		v.choose(-1)
	case "right", "l":
		v.choose(1)
	case "enter":
		return v.activate()
	case "q":
		return tea.Quit
	}
	return nil
}

func (v *ConnectView) switchBlock() {
	if v.block == blockConn {
		v.block = blockAI
		v.focusField = fieldAIProvider
		return
	}
	v.block = blockConn
	v.focusField = fieldSaved
	if !v.visible(fieldSaved) {
		v.focusField = fieldName
	}
}

func (v *ConnectView) blockRange() (int, int) {
	if v.block == blockAI {
		return fieldAIProvider, fieldAISave
	}
	return fieldSaved, fieldDelete
}

// move steps focus to the next visible field of the block, wrapping.
func (v *ConnectView) move(dir int) {
	first, last := v.blockRange()
	n := last - first + 1
	f := v.focusField
	for i := 0; i < n; i++ {
		f = first + ((f-first+dir)%n+n)%n
		if v.visible(f) {
			v.focusField = f
			return
		}
	}
}

// visible reports whether field f applies to the current driver and
// provider.
func (v *ConnectView) visible(f int) bool {
	driver := v.fields[fieldDriver]
	provider := v.fields[fieldAIProvider]
	networked := config.IsNetworked(driver)

	switch f {
	case fieldSaved, fieldDelete:
		return len(v.store.Connections) > 0
	case fieldHost, fieldPort, fieldUser, fieldPassword, fieldSSHEnabled:
		return networked
	case fieldSSLMode:
		return driver == config.DriverPostgres
	case fieldSSHHost, fieldSSHPort, fieldSSHUser, fieldSSHKey:
		return networked && v.sshEnabled()
	case fieldAIAPIKey:
		return config.KeyEnvVar(provider) != ""
	case fieldAIModel:
		return provider != config.ProviderPlaceholder
	case fieldAIHost:
		return provider == config.ProviderOllama
	}
	return true
}

// choose cycles select fields; on other fields it moves focus.
func (v *ConnectView) choose(dir int) {
	switch v.focusField {
	case fieldSaved:
		if n := len(v.store.Connections); n > 0 {
			v.loadSaved((v.savedIdx + dir + n) % n)
		}
	case fieldDriver:
		v.setDriver(cycle(config.Drivers, v.fields[fieldDriver], dir))
	case fieldSSLMode:
		v.fields[fieldSSLMode] = cycle(sslModes, v.fields[fieldSSLMode], dir)
	case fieldSSHKey:
		if len(v.sshKeys) > 0 {
			v.fields[fieldSSHKey] = cycle(v.sshKeys, v.fields[fieldSSHKey], dir)
		}
	case fieldSSHEnabled:
		v.toggleSSH()
	case fieldAIProvider:
		v.setProvider(cycle(ai.SupportedProviders, v.fields[fieldAIProvider], dir))
	default:
		v.move(dir)
	}
}

// cycle returns the option dir steps away from current, wrapping.
// An unknown current value starts from the first option.
func cycle(options []string, current string, dir int) string {
	if len(options) == 0 {
		return current
	}
	idx := 0
	for i, o := range options {
		if o == current {
			idx = (i + dir + len(options)) % len(options)
			return options[idx]
		}
	}
	return options[idx]
}

func (v *ConnectView) handleEditing(msg tea.KeyMsg) {
	f := v.focusField
	switch msg.String() {
	case "enter", "esc":
		v.editing = false
	case "backspace":
		if r := []rune(v.fields[f]); len(r) > 0 {
			v.fields[f] = string(r[:len(r)-1])
		}
	case "ctrl+u":
		v.fields[f] = ""
	default:
		switch msg.Type {
		case tea.KeyRunes:
			v.fields[f] += string(msg.Runes)
		case tea.KeySpace:
			v.fields[f] += " "
		}
	}
}

func (v *ConnectView) activate() tea.Cmd {
	switch v.focusField {
	case fieldSaved, fieldConnect:
		return v.connect()
	case fieldSave:
		v.saveConnection()
	case fieldDelete:
		v.deleteConnection()
	case fieldAISave:
		if err := v.persistAI(); err != nil {
			v.err = err
			v.statusMsg = ""
		} else {
			v.err = nil
			v.statusMsg = "AI settings saved"
		}
	case fieldSSHKey:
		// Without discovered keys the path is typed by hand.
		if len(v.sshKeys) > 0 {
			v.choose(1)
		} else {
			v.editing = true
		}
	default:
		switch fieldSpecs[v.focusField].kind {
		case kindText, kindSecret:
			v.editing = true
		case kindSelect, kindToggle:
			v.choose(1)
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────
// Connection fields
// ─────────────────────────────────────────────────────────────

func (v *ConnectView) sshEnabled() bool {
	return v.fields[fieldSSHEnabled] == "yes"
}

func (v *ConnectView) toggleSSH() {
	if v.sshEnabled() {
		v.fields[fieldSSHEnabled] = "no"
	} else {
		v.fields[fieldSSHEnabled] = "yes"
	}
}

// setDriver switches driver and replaces the port when it still holds
// the previous driver's default.
func (v *ConnectView) setDriver(driver string) {
	prev := v.fields[fieldDriver]
	v.fields[fieldDriver] = driver
	if port := v.fields[fieldPort]; port == "" || port == portString(config.DefaultPort(prev)) {
		v.fields[fieldPort] = portString(config.DefaultPort(driver))
	}
	v.err = nil
}

func portString(port int) string {
	if port == 0 {
		return ""
	}
	return strconv.Itoa(port)
}

func (v *ConnectView) buildConnection() config.Connection {
	return config.Connection{
		Name:     strings.TrimSpace(v.fields[fieldName]),
		Driver:   v.fields[fieldDriver],
		Host:     v.fields[fieldHost],
		Port:     v.fields[fieldPort],
		User:     v.fields[fieldUser],
		Password: v.fields[fieldPassword],
		Database: v.fields[fieldDatabase],
		SSLMode:  v.fields[fieldSSLMode],
		SSH: config.SSHEntry{
			Enabled: v.sshEnabled(),
			Host:    v.fields[fieldSSHHost],
			Port:    v.fields[fieldSSHPort],
			User:    v.fields[fieldSSHUser],
			KeyPath: v.fields[fieldSSHKey],
		},
	}
}

func (v *ConnectView) loadConnection(c config.Connection) {
	v.fields[fieldName] = c.Name
	v.fields[fieldDriver] = c.Driver
	v.fields[fieldHost] = c.Host
	v.fields[fieldPort] = c.Port
	v.fields[fieldUser] = c.User
	v.fields[fieldPassword] = c.Password
	v.fields[fieldDatabase] = c.Database
	v.fields[fieldSSLMode] = c.SSLMode
	v.fields[fieldSSHEnabled] = "no"
	if c.SSH.Enabled {
		v.fields[fieldSSHEnabled] = "yes"
	}
	v.fields[fieldSSHHost] = c.SSH.Host
	v.fields[fieldSSHPort] = c.SSH.Port
	v.fields[fieldSSHUser] = c.SSH.User
	v.fields[fieldSSHKey] = c.SSH.KeyPath
}

func (v *ConnectView) loadSaved(idx int) {
	if idx < 0 || idx >= len(v.store.Connections) {
		return
	}
	v.loadConnection(v.store.Connections[idx])
	v.savedIdx = idx
}

func (v *ConnectView) saveConnection() {
	name := strings.TrimSpace(v.fields[fieldName])
	if name == "" {
		v.err = errors.New("enter a connection name first")
		return
	}

	v.store.Add(v.buildConnection())
	if err := v.store.Save(); err != nil {
		v.err = err
		return
	}
	for i, c := range v.store.Connections {
		if c.Name == name {
			v.savedIdx = i
			break
		}
	}
	v.err = nil
	v.statusMsg = fmt.Sprintf("Connection '%s' saved", name)
}

func (v *ConnectView) deleteConnection() {
	if len(v.store.Connections) == 0 {
		return
	}
	name := v.store.Connections[v.savedIdx].Name
	v.store.Delete(name)
	if err := v.store.Save(); err != nil {
		v.err = err
		return
	}
	if v.savedIdx >= len(v.store.Connections) {
		v.savedIdx = 0
	}
	if !v.visible(v.focusField) {
		v.focusField = fieldConnect
	}
	v.err = nil
	v.statusMsg = fmt.Sprintf("Connection '%s' deleted", name)
}

// connect saves the AI settings, builds the provider and opens the
// database in the background.
func (v *ConnectView) connect() tea.Cmd {
	conn := v.buildConnection()
	cfg := config.FromConnection(conn)

	if err := v.persistAI(); err != nil {
		applog.Error("save AI settings", err)
	}
	provider, err := ai.NewProvider(v.appCfg.AI)
	if err != nil {
		v.err = err
		v.statusMsg = ""
		return nil
	}

	v.connecting = true
	v.statusMsg = "Connecting to " + cfg.Label() + "..."
	v.err = nil

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		database, err := db.Open(ctx, cfg)
		if err != nil {
			return ConnectErrorMsg{Err: err}
		}
		return ConnectedMsg{DB: database, Provider: provider, Cfg: cfg, Conn: conn}
	}
}

// ─────────────────────────────────────────────────────────────
// AI settings
// ─────────────────────────────────────────────────────────────

func (v *ConnectView) setProvider(provider string) {
	v.applyAIFields()
	v.fields[fieldAIProvider] = provider
	v.loadAIFields()
	v.err = nil
}

// loadAIFields fills the AI block from the config of the selected provider.
func (v *ConnectView) loadAIFields() {
	provider := v.fields[fieldAIProvider]
	v.fields[fieldAIAPIKey] = ""
	if p := v.appCfg.AI.Hosted(provider); p != nil {
		v.fields[fieldAIAPIKey] = p.APIKey
	}
	v.fields[fieldAIModel] = v.appCfg.AI.ModelFor(provider)
	v.fields[fieldAIHost] = v.appCfg.AI.Ollama.Host
}

// applyAIFields writes the AI block back into the config.
func (v *ConnectView) applyAIFields() {
	provider := v.fields[fieldAIProvider]
	v.appCfg.AI.Provider = provider
	if p := v.appCfg.AI.Hosted(provider); p != nil {
		p.APIKey = strings.TrimSpace(v.fields[fieldAIAPIKey])
	}
	if provider != config.ProviderPlaceholder {
		v.appCfg.AI.SetModel(provider, strings.TrimSpace(v.fields[fieldAIModel]))
	}
	if provider == config.ProviderOllama {
		v.appCfg.AI.Ollama.Host = strings.TrimSpace(v.fields[fieldAIHost])
	}
}

// persistAI applies the form, stores a newly typed key in the keychain
// and saves the remaining settings to the config file.
func (v *ConnectView) persistAI() error {
	v.applyAIFields()

	provider := v.fields[fieldAIProvider]
	key := strings.TrimSpace(v.fields[fieldAIAPIKey])
	if key != "" && key != v.knownKeys[provider] && v.keys != nil && v.visible(fieldAIAPIKey) {
		if err := v.keys.Set(provider, key); err != nil {
			return fmt.Errorf("store API key: %w", err)
		}
		v.knownKeys[provider] = key
		applog.Event("config", "api key stored", slog.String("provider", provider))
	}
	return v.saveSettings(v.appCfg.AI)
}

// ─────────────────────────────────────────────────────────────
// Rendering
// ─────────────────────────────────────────────────────────────

func (v *ConnectView) View() string {
	totalWidth := v.width
	if totalWidth < 60 {
		totalWidth = 60
	}
	leftWidth := totalWidth * 6 / 10
	rightWidth := totalWidth - leftWidth
	leftInputW := leftWidth - 24
	rightInputW := rightWidth - 24
	if leftInputW < 10 {
		leftInputW = 10
	}
	if rightInputW < 10 {
		rightInputW = 10
	}

	// Left panel: connection
	var left []string
	if v.visible(fieldSaved) {
		left = append(left, v.blockHeader("Saved", leftWidth-8, blockConn), v.renderSaved(), "")
	}
	left = append(left, v.blockHeader("Connection", leftWidth-8, blockConn))
	for f := fieldName; f <= fieldSSLMode; f++ {
		if v.visible(f) {
			left = append(left, v.renderRow(f, leftInputW))
		}
	}
	if config.IsNetworked(v.fields[fieldDriver]) {
		left = append(left, "", v.blockHeader("SSH Tunnel", leftWidth-8, blockConn))
		for f := fieldSSHEnabled; f <= fieldSSHKey; f++ {
			if v.visible(f) {
				left = append(left, v.renderRow(f, leftInputW))
			}
		}
	}
	buttons := []string{v.renderButton(fieldConnect), v.renderButton(fieldSave)}
	if v.visible(fieldDelete) {
		buttons = append(buttons, v.renderButton(fieldDelete))
	}
	left = append(left, "", strings.Join(buttons, "  "))

	// Right panel: AI settings
	provider := v.fields[fieldAIProvider]
	right := []string{
		v.blockHeader("🤖 AI Settings", rightWidth-8, blockAI),
		v.renderRow(fieldAIProvider, rightInputW),
		StyleDimmed.Render("  " + aiProviderDesc[provider]),
		"",
	}
	for f := fieldAIAPIKey; f <= fieldAIHost; f++ {
		if v.visible(f) {
			right = append(right, v.renderRow(f, rightInputW))
		}
	}
	if env := config.KeyEnvVar(provider); env != "" && v.fields[fieldAIAPIKey] == "" {
		right = append(right, StyleWarning.Render("  set "+env+" or enter a key"))
	}
	right = append(right, "", v.renderButton(fieldAISave))

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		v.panelStyle(blockConn, leftWidth).Render(strings.Join(left, "\n")),
		v.panelStyle(blockAI, rightWidth).Render(strings.Join(right, "\n")),
	)

	content := panels
	if status := v.renderStatus(); status != "" {
		content = lipgloss.JoinVertical(lipgloss.Left, panels, status)
	}

	return lipgloss.NewStyle().
		Width(v.width).
		Height(v.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

func (v *ConnectView) panelStyle(blk, width int) lipgloss.Style {
	s := StyleBorder.Padding(1, 2).Width(width - 2)
	if v.block == blk {
		s = s.BorderForeground(ColorAccent)
	}
	return s
}

func (v *ConnectView) renderStatus() string {
	switch {
	case v.connecting:
		return StyleDimmed.Render("⏳ " + v.statusMsg)
	case v.err != nil:
		return StyleError.Render("✗ " + v.err.Error())
	case v.statusMsg != "":
		return StyleSuccess.Render("✓ " + v.statusMsg)
	}
	return ""
}

// blockHeader renders a section rule, highlighted when blk is active.
func (v *ConnectView) blockHeader(label string, width, blk int) string {
	style := lipgloss.NewStyle().Foreground(ColorDim)
	if v.block == blk {
		style = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	}
	right := width - lipgloss.Width(label) - 6
	if right < 2 {
		right = 2
	}
	return StyleDimmed.Render("──") + " " + style.Render(label) + " " + StyleDimmed.Render(strings.Repeat("─", right))
}

func (v *ConnectView) renderSaved() string {
	var line strings.Builder
	for i, c := range v.store.Connections {
		switch {
		case i == v.savedIdx && v.focusField == fieldSaved:
			line.WriteString(StyleListItemActive.Render(" ► " + c.Name + " "))
		case i == v.savedIdx:
			line.WriteString(lipgloss.NewStyle().Foreground(ColorAccent).Render(" ► " + c.Name + " "))
		default:
			line.WriteString(StyleDimmed.Render("   " + c.Name + " "))
		}
	}
	return line.String()
}

func (v *ConnectView) fieldLabel(f int) string {
	if f == fieldDatabase && !config.IsNetworked(v.fields[fieldDriver]) {
		return "File"
	}
	return fieldSpecs[f].label
}

// renderRow renders one labelled field according to its kind.
func (v *ConnectView) renderRow(f, inputWidth int) string {
	focused := v.focusField == f
	label := lipgloss.NewStyle().Width(16).Foreground(ColorDim).Render(v.fieldLabel(f))
	if focused {
		label = lipgloss.NewStyle().Width(16).Foreground(ColorAccent).Bold(true).Render("▸ " + v.fieldLabel(f))
	}

	value := v.fields[f]
	kind := fieldSpecs[f].kind
	if f == fieldSSHKey && len(v.sshKeys) == 0 {
		kind = kindText
	}

	switch kind {
	case kindSecret:
		value = strings.Repeat("•", len([]rune(value)))
	case kindToggle:
		if value == "yes" {
			return label + " " + lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true).Render("● Enabled")
		}
		return label + " " + StyleDimmed.Render("○ Disabled")
	case kindSelect:
		if f == fieldSSHKey {
			value = filepath.Base(value)
		}
		if focused {
			return label + " " + lipgloss.NewStyle().Foreground(ColorAccent).Render(" ◂ "+value+" ▸ ")
		}
		return label + " " + StyleDimmed.Render(value)
	}

	if !focused {
		return label + " " + StyleDimmed.Render(value)
	}
	if v.editing {
		value += "█"
	}
	return label + " " + lipgloss.NewStyle().Width(inputWidth).Foreground(ColorPrimary).Render(value)
}

func (v *ConnectView) renderButton(f int) string {
	label := fieldSpecs[f].label
	if v.focusField == f {
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Background(ColorAccent).
			Padding(0, 2).
			Render("⏎ " + label)
	}
	return lipgloss.NewStyle().
		Foreground(ColorDim).
		Padding(0, 2).
		Render("  " + label)
}
