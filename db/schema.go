// schema.go builds the schema text the model is given.
//
// Every table is described by its CREATE TABLE statement followed by a
// comment block holding a few sample rows:
//
//	CREATE TABLE customers (
//		...
//	)
//
//	/*
//	3 rows from customers table:
//	customer_id	first_name
//	1	Luís
//	...
//	*/
//
// Tables are separated by a blank line and ordered by name.
package db

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// SampleRows is how many rows of each table are shown.
const SampleRows = 3

// maxSampleValue truncates long sample values.
const maxSampleValue = 100

// TableDescription is the schema text input for one table.
type TableDescription struct {
	Name      string
	CreateSQL string
	Sample    *QueryResult
}

// FormatTableInfo renders tables in name order.
func FormatTableInfo(tables []TableDescription) string {
	sorted := make([]TableDescription, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	parts := make([]string, 0, len(sorted))
	for _, t := range sorted {
		var sb strings.Builder
		sb.WriteString(strings.TrimRight(t.CreateSQL, " \t\r\n"))
		sb.WriteString("\n\n/*\n")
		fmt.Fprintf(&sb, "%d rows from %s table:\n", SampleRows, t.Name)

		var cols []string
		var rows []string
		if t.Sample != nil {
			cols = t.Sample.Columns
			for _, row := range t.Sample.Rows {
				vals := make([]string, len(row))
				for i, v := range row {
					vals[i] = truncateValue(v)
				}
				rows = append(rows, strings.Join(vals, "\t"))
			}
		}
		sb.WriteString(strings.Join(cols, "\t"))
		sb.WriteByte('\n')
		sb.WriteString(strings.Join(rows, "\n"))
		sb.WriteString("\n*/")
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, "\n\n")
}

func truncateValue(v string) string {
	r := []rune(v)
	if len(r) <= maxSampleValue {
		return v
	}
	return string(r[:maxSampleValue])
}

// ColumnInfo describes a single column in a table.
type ColumnInfo struct {
	Name       string
	DataType   string
	IsNullable bool
	Default    string
	IsPK       bool
}

// ForeignKeyInfo describes a foreign key constraint.
type ForeignKeyInfo struct {
	ConstraintName string
	Column         string
	ForeignTable   string
	ForeignColumn  string
}

// TableSchema holds column and key information for a table whose engine
// cannot print its own DDL.
type TableSchema struct {
	Name        string
	Columns     []ColumnInfo
	ForeignKeys []ForeignKeyInfo
}

// CreateTableSQL renders ts as a CREATE TABLE statement.
func (ts *TableSchema) CreateTableSQL() string {
	var lines []string
	var pk []string
	for _, col := range ts.Columns {
		line := "\t" + quoteDouble(col.Name) + " " + col.DataType
		if !col.IsNullable {
			line += " NOT NULL"
		}
		if col.Default != "" {
			line += " DEFAULT " + col.Default
		}
		lines = append(lines, line)
		if col.IsPK {
			pk = append(pk, quoteDouble(col.Name))
		}
	}
	if len(pk) > 0 {
		lines = append(lines, "\tPRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	for _, fk := range ts.ForeignKeys {
		lines = append(lines, fmt.Sprintf("\tFOREIGN KEY(%s) REFERENCES %s (%s)",
			quoteDouble(fk.Column), quoteDouble(fk.ForeignTable), quoteDouble(fk.ForeignColumn)))
	}
	return "CREATE TABLE " + quoteDouble(ts.Name) + " (\n" + strings.Join(lines, ",\n") + "\n)"
}

// FetchTableSchema retrieves columns and foreign keys for a table.
func (d *Postgres) FetchTableSchema(ctx context.Context, schema, table string) (*TableSchema, error) {
	ts := &TableSchema{Name: table}

	colResult, err := d.DescribeTable(ctx, schema, table)
	if err != nil {
		return nil, fmt.Errorf("describe %s: %w", table, err)
	}
	for _, row := range colResult.Rows {
		if len(row) < 5 {
			continue
		}
		ts.Columns = append(ts.Columns, ColumnInfo{
			Name:       row[0],
			DataType:   row[1],
			IsNullable: row[2] == "YES",
			Default:    row[3],
			IsPK:       row[4] == "PK",
		})
	}

	fkResult, err := d.TableForeignKeys(ctx, schema, table)
	if err != nil {
		return nil, fmt.Errorf("foreign keys %s: %w", table, err)
	}
	for _, row := range fkResult.Rows {
		if len(row) < 4 {
			continue
		}
		ts.ForeignKeys = append(ts.ForeignKeys, ForeignKeyInfo{
			ConstraintName: row[0],
			Column:         row[1],
			ForeignTable:   row[2],
			ForeignColumn:  row[3],
		})
	}

	return ts, nil
}

// TableInfo describes every base table of d.Schema.
func (d *Postgres) TableInfo(ctx context.Context) (string, error) {
	names, err := d.ListTables(ctx, d.Schema)
	if err != nil {
		return "", fmt.Errorf("list tables: %w", err)
	}

	tables := make([]TableDescription, 0, len(names))
	for _, name := range names {
		ts, err := d.FetchTableSchema(ctx, d.Schema, name)
		if err != nil {
			return "", err
		}
		sample, err := d.executeQuery(ctx, sampleQuery(quoteDouble(d.Schema)+"."+quoteDouble(name)))
		if err != nil {
			return "", fmt.Errorf("sample %s: %w", name, err)
		}
		tables = append(tables, TableDescription{Name: name, CreateSQL: ts.CreateTableSQL(), Sample: sample})
	}
	return FormatTableInfo(tables), nil
}

func sampleQuery(quotedTable string) string {
	return fmt.Sprintf("SELECT * FROM %s LIMIT %d", quotedTable, SampleRows)
}

func quoteDouble(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteBacktick(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}
