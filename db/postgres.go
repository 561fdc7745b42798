package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DachengChen/sqlchat/config"
	"github.com/DachengChen/sqlchat/ssh"
)

// Postgres wraps a pgx connection pool and optional SSH tunnel.
type Postgres struct {
	Pool   *pgxpool.Pool
	Tunnel *ssh.Tunnel
	Schema string // schema whose tables are described, "public" by default
}

var _ Database = (*Postgres)(nil)

// ConnectPostgres opens a pool for cfg. cfg.Host/Port must already point
// at the tunnel endpoint when tunnel is non-nil; the tunnel is stopped
// on Close.
func ConnectPostgres(ctx context.Context, cfg config.Config, tunnel *ssh.Tunnel) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("pgx connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx ping: %w", err)
	}

	return &Postgres{Pool: pool, Tunnel: tunnel, Schema: "public"}, nil
}

func (d *Postgres) Dialect() string { return config.DriverPostgres }

// Close shuts down the pool and SSH tunnel.
func (d *Postgres) Close() {
	if d.Pool != nil {
		d.Pool.Close()
	}
	if d.Tunnel != nil {
		d.Tunnel.Stop()
	}
}

// Run executes query and renders the rows as text.
func (d *Postgres) Run(ctx context.Context, query string) (string, error) {
	res, err := d.Execute(ctx, query)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

// Execute runs an arbitrary SQL statement and returns results.
func (d *Postgres) Execute(ctx context.Context, query string) (*QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty query")
	}
	return d.executeQuery(ctx, query)
}

// ListTables returns the base tables of schema in name order.
func (d *Postgres) ListTables(ctx context.Context, schema string) ([]string, error) {
	if schema == "" {
		schema = "public"
	}
	rows, err := d.Pool.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DescribeTable returns one row per column: name, type, nullable,
// default and "PK" for primary key members.
func (d *Postgres) DescribeTable(ctx context.Context, schema, table string) (*QueryResult, error) {
	if schema == "" {
		schema = "public"
	}
	query := `
		SELECT c.column_name,
		       CASE WHEN c.character_maximum_length IS NOT NULL
		            THEN c.data_type || '(' || c.character_maximum_length || ')'
		            ELSE c.data_type END,
		       c.is_nullable,
		       COALESCE(c.column_default, ''),
		       CASE WHEN pk.column_name IS NOT NULL THEN 'PK' ELSE '' END
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
			  ON tc.constraint_name = kcu.constraint_name
			 AND tc.table_schema = kcu.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
			  AND tc.table_schema = $1 AND tc.table_name = $2
		) pk ON pk.column_name = c.column_name
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position`
	return d.executeQuery(ctx, query, schema, table)
}

// TableForeignKeys returns one row per foreign key column: constraint,
// column, referenced table and referenced column.
func (d *Postgres) TableForeignKeys(ctx context.Context, schema, table string) (*QueryResult, error) {
	if schema == "" {
		schema = "public"
	}
	query := `
		SELECT tc.constraint_name, kcu.column_name,
		       ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON ccu.constraint_name = tc.constraint_name
		 AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY kcu.ordinal_position`
	return d.executeQuery(ctx, query, schema, table)
}

// executeQuery is the internal workhorse for running SQL and collecting results.
func (d *Postgres) executeQuery(ctx context.Context, sql string, args ...any) (*QueryResult, error) {
	rows, err := d.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &QueryResult{}

	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, fd.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
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

	if len(result.Columns) == 0 {
		result.Status = rows.CommandTag().String()
	} else {
		result.Status = rowStatus(result.RowCount)
	}
	return result, nil
}
