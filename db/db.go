// Package db connects to the database being questioned.
//
// Design decisions:
//   - Database is an interface so the chat chain never sees which engine
//     it talks to. Postgres goes through a pgx pool; MySQL, SQLite and
//     DuckDB go through database/sql.
//   - Schema text and query results cross the interface as plain text,
//     the form the model prompts consume.
//   - Queries are executed exactly as given. Nothing is validated,
//     rewritten or wrapped in a transaction.
//   - SSH tunnel integration is handled transparently for networked
//     engines: the tunnel is started first and the driver connects to
//     its local endpoint.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DachengChen/sqlchat/applog"
	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/ssh"
)

// Database is a live connection the chat chain can describe and query.
type Database interface {
	// TableInfo describes every table as CREATE TABLE text followed by
	// sample rows.
	TableInfo(ctx context.Context) (string, error)

	// Run executes query and renders the result as text. A statement
	// that returns no rows renders as "".
	Run(ctx context.Context, query string) (string, error)

	// Execute runs query and returns the structured result.
	Execute(ctx context.Context, query string) (*QueryResult, error)

	// Dialect names the engine ("postgres", "mysql", "sqlite3", "duckdb").
	Dialect() string

	Close()
}

// Open connects to the database described by cfg.
func Open(ctx context.Context, cfg config.Config) (Database, error) {
	var tunnel *ssh.Tunnel
	if cfg.SSH.Enabled && config.IsNetworked(cfg.Driver) {
		t, err := ssh.NewTunnel(cfg.SSH, cfg.Host, cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel: %w", err)
		}
		localAddr, err := t.Start(ctx)
		if err != nil {
			return nil, fmt.Errorf("ssh tunnel start: %w", err)
		}
		tunnel = t

		// Override connection target with local tunnel endpoint
		cfg.Host = localAddr.Host
		cfg.Port = localAddr.Port
	}

	var (
		d   Database
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		d, err = ConnectPostgres(ctx, cfg, tunnel)
	case config.DriverMySQL, config.DriverSQLite, config.DriverDuckDB:
		d, err = OpenSQL(ctx, cfg.Driver, cfg.DSN(), tunnel)
	default:
		err = fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	if err != nil {
		if tunnel != nil {
			tunnel.Stop()
		}
		applog.Error("connect failed", err, slog.String("driver", cfg.Driver), slog.String("target", cfg.Label()))
		return nil, err
	}

	applog.Event("connect", "connected", slog.String("driver", cfg.Driver), slog.String("target", cfg.Label()))
	return d, nil
}
