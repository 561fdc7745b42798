// Package config defines the application configuration structures.
//
// Separated from cmd to allow other packages (db, ssh, tui) to
// depend on config without importing Cobra.
package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"
	DriverDuckDB   = "duckdb"
)

// Drivers lists the drivers in the order the connect form cycles them.
var Drivers = []string{DriverMySQL, DriverPostgres, DriverSQLite, DriverDuckDB}

// Config holds the settings for one database connection.
type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string // database name, or file path for sqlite3/duckdb
	SSLMode  string

	SSH SSHConfig
}

// SSHConfig holds SSH tunnel settings.
type SSHConfig struct {
	Enabled       bool
	Host          string
	Port          int
	User          string
	KeyPath       string
	KeyPassphrase string
}

// DSN builds the driver-specific connection string. Values are used
// as given; nothing is validated or escaped.
// When an SSH tunnel is active, the caller should override Host/Port
// with the local tunnel endpoint.
func (c Config) DSN() string {
	switch c.Driver {
	case DriverPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return "host=" + c.Host +
			" port=" + strconv.Itoa(c.Port) +
			" user=" + c.User +
			" password=" + c.Password +
			" dbname=" + c.Database +
			" sslmode=" + sslMode
	case DriverSQLite, DriverDuckDB:
		return c.Database
	default:
		return c.User + ":" + c.Password +
			"@tcp(" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) + ")/" + c.Database
	}
}

// Label is a short user@host:port/db description with no password.
func (c Config) Label() string {
	switch c.Driver {
	case DriverSQLite, DriverDuckDB:
		return c.Driver + ":" + c.Database
	}
	return c.User + "@" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port)) + "/" + c.Database
}

// IsNetworked reports whether the driver talks to a server (and so can
// use host, port, credentials and an SSH tunnel).
func IsNetworked(driver string) bool {
	return driver == DriverPostgres || driver == DriverMySQL
}

// DefaultPort returns the conventional port for a networked driver.
func DefaultPort(driver string) int {
	switch driver {
	case DriverPostgres:
		return 5432
	case DriverMySQL:
		return 3306
	}
	return 0
}

// Dir returns the application directory, ~/.sqlchat by default.
// SQLCHAT_HOME overrides it.
func Dir() (string, error) {
	if dir := os.Getenv("SQLCHAT_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".sqlchat"), nil
}

// ensureDir returns Dir after creating it with private permissions.
func ensureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
