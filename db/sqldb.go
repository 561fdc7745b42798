package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/ssh"
)

// dialect holds the catalog queries of one database/sql engine.
type dialect struct {
	// listTables returns (name, ddl) for each base table in name order.
	// ddl may be NULL, in which case showCreate is used.
	listTables string
	showCreate func(table string) string
	quote      func(ident string) string
}

var dialects = map[string]dialect{
	config.DriverMySQL: {
		listTables: `SELECT table_name, NULL FROM information_schema.tables
			WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE'
			ORDER BY table_name`,
		showCreate: func(table string) string { return "SHOW CREATE TABLE " + quoteBacktick(table) },
		quote:      quoteBacktick,
	},
	config.DriverSQLite: {
		listTables: `SELECT name, sql FROM sqlite_master
			WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
			ORDER BY name`,
		quote: quoteDouble,
	},
	config.DriverDuckDB: {
		listTables: `SELECT table_name, sql FROM duckdb_tables()
			WHERE NOT internal
			ORDER BY table_name`,
		quote: quoteDouble,
	},
}

// SQLDB is a Database served through database/sql.
type SQLDB struct {
	DB     *sql.DB
	Tunnel *ssh.Tunnel

	driver  string
	dialect dialect
}

var _ Database = (*SQLDB)(nil)

// OpenSQL opens and pings a database/sql connection. The tunnel, if
// any, is stopped on Close.
func OpenSQL(ctx context.Context, driver, dsn string, tunnel *ssh.Tunnel) (*SQLDB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", driver, err)
	}

	d, err := NewSQLDB(db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	d.Tunnel = tunnel
	return d, nil
}

// NewSQLDB wraps an open *sql.DB for driver.
func NewSQLDB(db *sql.DB, driver string) (*SQLDB, error) {
	dl, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	return &SQLDB{DB: db, driver: driver, dialect: dl}, nil
}

func (d *SQLDB) Dialect() string { return d.driver }

// Close closes the pool and SSH tunnel.
func (d *SQLDB) Close() {
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.Tunnel != nil {
		d.Tunnel.Stop()
	}
}

// Run executes query and renders the rows as text.
func (d *SQLDB) Run(ctx context.Context, query string) (string, error) {
	res, err := d.Execute(ctx, query)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// Execute runs an arbitrary SQL statement and returns results.
func (d *SQLDB) Execute(ctx context.Context, query string) (*QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	return d.executeQuery(ctx, query)
}

// TableInfo describes every base table.
func (d *SQLDB) TableInfo(ctx context.Context) (string, error) {
	type entry struct {
		name string
		ddl  sql.NullString
	}

	rows, err := d.DB.QueryContext(ctx, d.dialect.listTables)
	if err != nil {
		return "", fmt.Errorf("list tables: %w", err)
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.name, &e.ddl); err != nil {
			_ = rows.Close()
			return "", fmt.Errorf("list tables: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return "", fmt.Errorf("list tables: %w", err)
	}
	_ = rows.Close()

	tables := make([]TableDescription, 0, len(entries))
	for _, e := range entries {
		ddl := e.ddl.String
		if !e.ddl.Valid && d.dialect.showCreate != nil {
			var name string
			if err := d.DB.QueryRowContext(ctx, d.dialect.showCreate(e.name)).Scan(&name, &ddl); err != nil {
				return "", fmt.Errorf("show create %s: %w", e.name, err)
			}
		}
		sample, err := d.executeQuery(ctx, sampleQuery(d.dialect.quote(e.name)))
		if err != nil {
			return "", fmt.Errorf("sample %s: %w", e.name, err)
		}
		tables = append(tables, TableDescription{Name: e.name, CreateSQL: ddl, Sample: sample})
	}
	return FormatTableInfo(tables), nil
}

func (d *SQLDB) executeQuery(ctx context.Context, query string, args ...any) (*QueryResult, error) {
	rows, err := d.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	result := &QueryResult{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = FormatValue(v)
		}
		result.Rows = append(result.Rows, row)
		result.RowCount++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		result.Status = "OK"
	} else {
		result.Status = rowStatus(result.RowCount)
	}
	return result, nil
}
