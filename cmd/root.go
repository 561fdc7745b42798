// Package cmd contains all Cobra commands for sqlchat.
//
// Running `sqlchat` with no arguments starts the interactive UI with a
// connection setup screen. `sqlchat ask` answers a single question
// without the TUI.
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DachengChen/sqlchat/applog"
	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/secrets"
	"github.com/DachengChen/sqlchat/telemetry"
	"github.com/DachengChen/sqlchat/tui"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	appCfg   *config.AppConfig
	keyStore *secrets.Store
	shutdown telemetry.Shutdown
)

var rootCmd = &cobra.Command{
	Use:   "sqlchat",
	Short: "Ask questions about a SQL database in plain English",
	Long: `sqlchat turns a question into a SQL query, runs it against your
database and explains the result:
  • MySQL, PostgreSQL, SQLite and DuckDB
  • Groq, OpenAI, Anthropic, Gemini or a local Ollama model
  • Optional SSH tunnel for remote servers
  • API keys kept in the OS keychain

Run 'sqlchat' to start the TUI with a connection setup screen.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	// Running with no subcommand launches the TUI.
	RunE: func(cmd *cobra.Command, args []string) error {
		var keys tui.KeyStore
		if keyStore != nil {
			keys = keyStore
		}
		return tui.Start(cmd.Context(), appCfg, keys)
	},
}

// setup loads .env and the config file, fills API keys from the
// keychain and starts logging and telemetry.
func setup(cmd *cobra.Command, args []string) error {
	telemetry.Version = Version
	tui.Version = Version

	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	appCfg = cfg

	keyStore, err = secrets.Open()
	if err != nil {
		keyStore = nil
	} else {
		appCfg.AI.FillMissingKeys(keyStore)
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	logDir := filepath.Join(dir, "logs")
	if err := applog.Init(logDir, appCfg.SlogLevel()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: logging disabled: %v\n", err)
	}

	shutdown, err = telemetry.Init(cmd.Context(), telemetry.Options{
		Enabled: appCfg.Telemetry.Enabled,
		Dir:     logDir,
	})
	if err != nil {
		applog.Error("init telemetry", err)
		shutdown = nil
	}

	applog.Info("start", "version", Version, "command", cmd.Name())
	return nil
}

// teardown flushes telemetry and closes the log. It runs whether or not
// the command failed, so the spans of a failed turn are exported too.
func teardown() {
	if shutdown != nil {
		if err := shutdown(context.Background()); err != nil {
			applog.Error("shutdown telemetry", err)
		}
		shutdown = nil
	}
	applog.Close()
}

// Execute runs the root command. Errors are printed to stderr.
func Execute() error {
	return execute(rootCmd)
}

func execute(root *cobra.Command) error {
	defer teardown()
	err := root.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.Version = Version
}
