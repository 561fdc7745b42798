package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/DachengChen/sqlchat/config"
)

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}

func newTestSQLDB(t *testing.T, driver string) (*SQLDB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock := newSQLMock(t)
	d, err := NewSQLDB(conn, driver)
	if err != nil {
		t.Fatalf("NewSQLDB() error = %v", err)
	}
	return d, mock
}

func TestRunRendersRows(t *testing.T) {
	d, mock := newTestSQLDB(t, config.DriverMySQL)
	mock.ExpectQuery(`SELECT COUNT\(\*\) AS total FROM customers`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(int64(59)))

	got, err := d.Run(context.Background(), "SELECT COUNT(*) AS total FROM customers;")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "total\n59" {
		t.Fatalf("Run() = %q", got)
	}
	assertSQLMock(t, mock)
}

func TestRunConvertsDriverValues(t *testing.T) {
	d, mock := newTestSQLDB(t, config.DriverMySQL)
	mock.ExpectQuery(`SELECT .* FROM customers`).
		WillReturnRows(sqlmock.NewRows([]string{"first_name", "company", "since"}).
			AddRow([]byte("Luís"), nil, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)).
			AddRow("Leonie", []byte("Kohl"), time.Date(2021, 3, 4, 10, 30, 0, 0, time.UTC)))

	got, err := d.Run(context.Background(), "SELECT first_name, company, since FROM customers")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "first_name | company | since\nLuís | NULL | 2021-03-04\nLeonie | Kohl | 2021-03-04 10:30:00"
	if got != want {
		t.Fatalf("Run() = %q, want %q", got, want)
	}
	assertSQLMock(t, mock)
}

func TestRunFormatsFloatsWithoutExponent(t *testing.T) {
	d, mock := newTestSQLDB(t, config.DriverSQLite)
	mock.ExpectQuery(`SELECT SUM`).
		WillReturnRows(sqlmock.NewRows([]string{"revenue"}).AddRow(2234567.5))

	got, err := d.Run(context.Background(), "SELECT SUM(total) AS revenue FROM invoices")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := "revenue\n2234567.5"; got != want {
		t.Fatalf("Run() = %q, want %q", got, want)
	}
	assertSQLMock(t, mock)
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: 2234567.5, want: "2234567.5"},
		{in: 1e21, want: "1000000000000000000000"},
		{in: 0.1, want: "0.1"},
		{in: float32(3.25), want: "3.25"},
		{in: int64(59), want: "59"},
		{in: nil, want: "NULL"},
		{in: []byte("Rock"), want: "Rock"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Fatalf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRunWithoutRowsIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{name: "select with no match", columns: []string{"id"}},
		{name: "statement without result set", columns: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newTestSQLDB(t, config.DriverSQLite)
			mock.ExpectQuery(`.+`).WillReturnRows(sqlmock.NewRows(tt.columns))

			got, err := d.Run(context.Background(), "UPDATE customers SET company = NULL WHERE 1 = 0")
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if got != "" {
				t.Fatalf("Run() = %q, want empty", got)
			}
			assertSQLMock(t, mock)
		})
	}
}

func TestRunPropagatesDriverError(t *testing.T) {
	d, mock := newTestSQLDB(t, config.DriverMySQL)
	boom := errors.New("Error 1064: You have an error in your SQL syntax")
	mock.ExpectQuery(`SELEC`).WillReturnError(boom)

	if _, err := d.Run(context.Background(), "SELEC 1"); !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	assertSQLMock(t, mock)
}

func TestExecuteRejectsEmptyQuery(t *testing.T) {
	d, mock := newTestSQLDB(t, config.DriverDuckDB)
	if _, err := d.Execute(context.Background(), "  \n"); err == nil {
		t.Fatal("Execute() error = nil for blank query")
	}
	assertSQLMock(t, mock)
}

func TestTableInfoSQLite(t *testing.T) {
	d, mock := newTestSQLDB(t, config.DriverSQLite)
	mock.ExpectQuery(`FROM sqlite_master`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "sql"}).
			AddRow("albums", "CREATE TABLE albums (\n\tid INTEGER PRIMARY KEY,\n\ttitle TEXT\n)").
			AddRow("artists", "CREATE TABLE artists (id INTEGER PRIMARY KEY, name TEXT)"))
	mock.ExpectQuery(`SELECT \* FROM "albums" LIMIT 3`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(int64(1), "For Those About To Rock We Salute You").
			AddRow(int64(2), "Balls to the Wall"))
	mock.ExpectQuery(`SELECT \* FROM "artists" LIMIT 3`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	got, err := d.TableInfo(context.Background())
	if err != nil {
		t.Fatalf("TableInfo() error = %v", err)
	}

	want := "CREATE TABLE albums (\n\tid INTEGER PRIMARY KEY,\n\ttitle TEXT\n)\n\n" +
		"/*\n3 rows from albums table:\nid\ttitle\n1\tFor Those About To Rock We Salute You\n2\tBalls to the Wall\n*/" +
		"\n\n" +
		"CREATE TABLE artists (id INTEGER PRIMARY KEY, name TEXT)\n\n" +
		"/*\n3 rows from artists table:\nid\tname\n\n*/"
	if got != want {
		t.Fatalf("TableInfo() =\n%s\nwant\n%s", got, want)
	}
	assertSQLMock(t, mock)
}

func TestTableInfoMySQLUsesShowCreate(t *testing.T) {
	d, mock := newTestSQLDB(t, config.DriverMySQL)
	mock.ExpectQuery(`FROM information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"table_name", "NULL"}).AddRow("Customer", nil))
	mock.ExpectQuery("SHOW CREATE TABLE `Customer`").
		WillReturnRows(sqlmock.NewRows([]string{"Table", "Create Table"}).
			AddRow("Customer", "CREATE TABLE `Customer` (\n  `CustomerId` int NOT NULL\n) ENGINE=InnoDB"))
	mock.ExpectQuery("SELECT \\* FROM `Customer` LIMIT 3").
		WillReturnRows(sqlmock.NewRows([]string{"CustomerId"}).AddRow([]byte("1")))

	got, err := d.TableInfo(context.Background())
	if err != nil {
		t.Fatalf("TableInfo() error = %v", err)
	}
	if !strings.HasPrefix(got, "CREATE TABLE `Customer`") {
		t.Fatalf("TableInfo() = %q", got)
	}
	if !strings.Contains(got, "3 rows from Customer table:\nCustomerId\n1\n*/") {
		t.Fatalf("TableInfo() missing sample block: %q", got)
	}
	assertSQLMock(t, mock)
}

func TestNewSQLDBRejectsUnknownDriver(t *testing.T) {
	conn, _ := newSQLMock(t)
	if _, err := NewSQLDB(conn, "oracle"); err == nil {
		t.Fatal("NewSQLDB() error = nil for unknown driver")
	}
}

func TestFormatTableInfoSortsAndTruncates(t *testing.T) {
	long := strings.Repeat("x", 150)
	got := FormatTableInfo([]TableDescription{
		{Name: "b", CreateSQL: "CREATE TABLE b (v TEXT)\n", Sample: &QueryResult{Columns: []string{"v"}, Rows: [][]string{{long}}}},
		{Name: "a", CreateSQL: "CREATE TABLE a (id INT)"},
	})

	if !strings.HasPrefix(got, "CREATE TABLE a") {
		t.Fatalf("tables not sorted: %q", got)
	}
	if strings.Contains(got, long) || !strings.Contains(got, strings.Repeat("x", 100)+"\n*/") {
		t.Fatalf("long sample value not truncated to 100 characters")
	}
}

func TestCreateTableSQL(t *testing.T) {
	ts := &TableSchema{
		Name: "invoice",
		Columns: []ColumnInfo{
			{Name: "invoice_id", DataType: "integer", IsPK: true},
			{Name: "customer_id", DataType: "integer"},
			{Name: "total", DataType: "numeric", IsNullable: true, Default: "0"},
		},
		ForeignKeys: []ForeignKeyInfo{{Column: "customer_id", ForeignTable: "customer", ForeignColumn: "customer_id"}},
	}

	want := "CREATE TABLE \"invoice\" (\n" +
		"\t\"invoice_id\" integer NOT NULL,\n" +
		"\t\"customer_id\" integer NOT NULL,\n" +
		"\t\"total\" numeric DEFAULT 0,\n" +
		"\tPRIMARY KEY (\"invoice_id\"),\n" +
		"\tFOREIGN KEY(\"customer_id\") REFERENCES \"customer\" (\"customer_id\")\n" +
		")"
	if got := ts.CreateTableSQL(); got != want {
		t.Fatalf("CreateTableSQL() =\n%s\nwant\n%s", got, want)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), config.Config{Driver: "oracle"}); err == nil {
		t.Fatal("Open() error = nil for unknown driver")
	}
}

func TestOpenSQLiteFile(t *testing.T) {
	path := t.TempDir() + "/chinook.db"
	d, err := Open(context.Background(), config.Config{Driver: config.DriverSQLite, Database: path})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer d.Close()

	ctx := context.Background()
	if _, err := d.Run(ctx, "CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT)"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := d.Run(ctx, "INSERT INTO customers (name) VALUES ('Luís'), ('Leonie')"); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := d.Run(ctx, "SELECT COUNT(*) AS total FROM customers")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got != "total\n2" {
		t.Fatalf("Run() = %q", got)
	}

	info, err := d.TableInfo(ctx)
	if err != nil {
		t.Fatalf("TableInfo() error = %v", err)
	}
	if !strings.Contains(info, "CREATE TABLE customers") || !strings.Contains(info, "1\tLuís") {
		t.Fatalf("TableInfo() = %q", info)
	}
	if d.Dialect() != config.DriverSQLite {
		t.Fatalf("Dialect() = %q", d.Dialect())
	}
}
