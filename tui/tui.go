// Package tui is the interactive terminal UI: a connection form
// followed by a chat screen.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/DachengChen/sqlchat/applog"
	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/transcript"
)

// Start loads saved connections and the transcript store and runs the
// TUI until the user quits. keys may be nil.
func Start(ctx context.Context, appCfg *config.AppConfig, keys KeyStore) error {
	store, err := config.NewConnectionStore()
	if err != nil {
		return fmt.Errorf("failed to load connections: %w", err)
	}

	transcripts, err := transcript.OpenConfigured(ctx, appCfg)
	if err != nil {
		// Chat works without an audit trail.
		applog.Error("open transcripts", err)
		transcripts = nil
	}
	if transcripts != nil {
		defer transcripts.Close()
	}

	app := NewApp(store, appCfg, keys, transcripts)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
