package tui

import tea "github.com/charmbracelet/bubbletea"

// View is the interface every TUI screen implements.
// Each view is a self-contained Bubble Tea sub-model.
type View interface {
	// Init returns an initial command.
	Init() tea.Cmd

	// Update handles messages and returns updated view + command.
	Update(msg tea.Msg) (View, tea.Cmd)

	// View renders the view content without the App's chrome.
	View() string

	// Name returns the screen title.
	Name() string

	// ShortHelp returns key bindings for the bottom help bar.
	ShortHelp() []KeyBinding

	// SetSize is called when the terminal is resized.
	SetSize(width, height int)

	// WantsTextInput reports whether printable keys belong to the view
	// rather than to global shortcuts.
	WantsTextInput() bool
}

// KeyBinding describes a keyboard shortcut for the help bar.
type KeyBinding struct {
	Key  string
	Desc string
}
