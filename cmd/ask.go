package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/DachengChen/sqlchat/ai"
	"github.com/DachengChen/sqlchat/applog"
	"github.com/DachengChen/sqlchat/chain"
	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/db"
	"github.com/DachengChen/sqlchat/transcript"
)

// connFlags holds the connection flags shared by ask and schema.
type connFlags struct {
	name     string
	driver   string
	host     string
	port     string
	user     string
	password string
	database string
	sslMode  string
}

func (f *connFlags) register(cmd *cobra.Command) {
	def := config.DefaultConnection()
	fl := cmd.Flags()
	fl.StringVarP(&f.name, "connection", "c", "", "Use a saved connection profile")
	fl.StringVar(&f.driver, "driver", def.Driver, "Database driver: mysql, postgres, sqlite3, duckdb")
	fl.StringVar(&f.host, "host", def.Host, "Database host")
	fl.StringVar(&f.port, "port", "", "Database port (driver default if empty)")
	fl.StringVar(&f.user, "user", def.User, "Database user")
	fl.StringVar(&f.password, "password", def.Password, "Database password")
	fl.StringVar(&f.database, "database", def.Database, "Database name, or file path for sqlite3/duckdb")
	fl.StringVar(&f.sslMode, "ssl-mode", def.SSLMode, "PostgreSQL sslmode")
}

// resolve returns the connection to open: the saved profile when
// --connection is given, the flags otherwise.
func (f *connFlags) resolve() (config.Connection, error) {
	if f.name != "" {
		store, err := config.NewConnectionStore()
		if err != nil {
			return config.Connection{}, fmt.Errorf("failed to load connections: %w", err)
		}
		conn, ok := store.Get(f.name)
		if !ok {
			return config.Connection{}, fmt.Errorf("no saved connection named %q", f.name)
		}
		return conn, nil
	}
	return config.Connection{
		Driver:   f.driver,
		Host:     f.host,
		Port:     f.port,
		User:     f.user,
		Password: f.password,
		Database: f.database,
		SSLMode:  f.sslMode,
	}, nil
}

var (
	askConn     connFlags
	askProvider string
	askModel    string
	askShowSQL  bool
	askRaw      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question without the TUI",
	Long: `The ask command runs a single question through the chain: the model writes
a SQL query, sqlchat runs it, and the model explains the result.

The generated SQL is executed as-is. Connect with a read-only user.`,
	Example: `  sqlchat ask "How many customers are from Brazil?"
  sqlchat ask --driver sqlite3 --database chinook.db --show-sql "Top 5 artists by tracks"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question is empty")
		}

		conn, err := askConn.resolve()
		if err != nil {
			return err
		}
		cfg := config.FromConnection(conn)

		aiCfg := appCfg.AI
		if askProvider != "" {
			aiCfg.Provider = askProvider
		}
		if askModel != "" {
			aiCfg.SetModel(aiCfg.Provider, askModel)
		}
		provider, err := ai.NewProvider(aiCfg)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		spinner := startProgress("Connecting to " + cfg.Label() + "...")
		database, err := db.Open(ctx, cfg)
		if err != nil {
			spinner.stop()
			return err
		}
		defer database.Close()

		var opts []chain.Option
		transcripts, err := transcript.OpenConfigured(ctx, appCfg)
		if err != nil {
			applog.Error("open transcripts", err)
		} else if transcripts != nil {
			defer transcripts.Close()
			opts = append(opts, chain.WithRecorder(transcripts.NewSession(cfg.Label(), provider.Name())))
		}

		pipeline := chain.NewPipeline(database, provider, aiCfg.Temperature, opts...)
		history := chain.NewHistory()
		history.Append(chain.Human(question))

		spinner.update("Thinking...")
		turn, err := pipeline.Respond(ctx, question, history.Messages())
		spinner.stop()

		if askShowSQL && turn.Query != "" {
			pterm.DefaultBox.
				WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("SQL")).
				WithPadding(1).
				Println(turn.Query)
			pterm.Println()
		}
		if err != nil {
			return err
		}

		if askRaw {
			pterm.Println(turn.Answer)
			return nil
		}
		out, rerr := glamour.Render(turn.Answer, "dark")
		if rerr != nil {
			out = turn.Answer
		}
		pterm.Print(out)
		return nil
	},
}

// progress wraps a pterm spinner. The zero value prints nothing, which is
// what ask falls back to when the spinner cannot start.
type progress struct {
	spinner *pterm.SpinnerPrinter
}

func startProgress(text string) progress {
	s, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(text)
	if err != nil {
		applog.Error("start spinner", err)
		return progress{}
	}
	return progress{spinner: s}
}

func (p progress) update(text string) {
	if p.spinner != nil {
		p.spinner.UpdateText(text)
	}
}

func (p progress) stop() {
	if p.spinner != nil {
		_ = p.spinner.Stop()
	}
}

func init() {
	askConn.register(askCmd)
	askCmd.Flags().StringVar(&askProvider, "provider", "", "AI provider (overrides the config file)")
	askCmd.Flags().StringVar(&askModel, "model", "", "Model for the provider")
	askCmd.Flags().BoolVar(&askShowSQL, "show-sql", false, "Print the generated SQL")
	askCmd.Flags().BoolVar(&askRaw, "raw", false, "Print the answer without markdown rendering")
	rootCmd.AddCommand(askCmd)
}
