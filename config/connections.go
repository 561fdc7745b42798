// connections.go manages saved database connections.
//
// Connections are stored in ~/.sqlchat/connections.json so users
// can quickly reconnect without retyping credentials.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Connection is a named, saveable database connection profile.
type Connection struct {
	Name     string   `json:"name"`
	Driver   string   `json:"driver"`
	Host     string   `json:"host"`
	Port     string   `json:"port"`
	User     string   `json:"user"`
	Password string   `json:"password"`
	Database string   `json:"database"`
	SSLMode  string   `json:"ssl_mode,omitempty"`
	SSH      SSHEntry `json:"ssh,omitempty"`
}

// SSHEntry holds SSH tunnel settings for a saved connection.
type SSHEntry struct {
	Enabled       bool   `json:"enabled,omitempty"`
	Host          string `json:"host,omitempty"`
	Port          string `json:"port,omitempty"`
	User          string `json:"user,omitempty"`
	KeyPath       string `json:"key_path,omitempty"`
	KeyPassphrase string `json:"key_passphrase,omitempty"`
}

// ConnectionStore manages saved connections on disk.
type ConnectionStore struct {
	path        string
	Connections []Connection `json:"connections"`
}

// NewConnectionStore creates a store, loading from ~/.sqlchat/connections.json.
func NewConnectionStore() (*ConnectionStore, error) {
	dir, err := ensureDir()
	if err != nil {
		return nil, err
	}
	return LoadConnectionStore(filepath.Join(dir, "connections.json"))
}

// LoadConnectionStore loads a store from an explicit path. A missing
// file yields an empty store.
func LoadConnectionStore(path string) (*ConnectionStore, error) {
	store := &ConnectionStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("parse connections: %w", err)
	}

	// Profiles written before the driver field existed were Postgres.
	for i := range store.Connections {
		if store.Connections[i].Driver == "" {
			store.Connections[i].Driver = DriverPostgres
		}
	}

	return store, nil
}

// Save writes all connections to disk.
func (s *ConnectionStore) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Add adds or updates a connection by name.
func (s *ConnectionStore) Add(conn Connection) {
	for i, c := range s.Connections {
		if c.Name == conn.Name {
			s.Connections[i] = conn
			return
		}
	}
	s.Connections = append(s.Connections, conn)
}

// Delete removes a connection by name.
func (s *ConnectionStore) Delete(name string) {
	for i, c := range s.Connections {
		if c.Name == name {
			s.Connections = append(s.Connections[:i], s.Connections[i+1:]...)
			return
		}
	}
}

// Get retrieves a connection by name.
func (s *ConnectionStore) Get(name string) (Connection, bool) {
	for _, c := range s.Connections {
		if c.Name == name {
			return c, true
		}
	}
	return Connection{}, false
}

// DefaultConnection returns the example connection the form starts with.
// These are demo values (the Chinook sample database on a local MySQL
// with the stock root/admin login), not a recommendation.
func DefaultConnection() Connection {
	return Connection{
		Name:     "",
		Driver:   DriverMySQL,
		Host:     "localhost",
		Port:     "3306",
		User:     "root",
		Password: "admin",
		Database: "Chinook",
		SSLMode:  "disable",
		SSH: SSHEntry{
			Port: "22",
		},
	}
}

// FromConnection converts a saved (string-typed) profile into a Config.
// Unparseable ports fall back to the driver default.
func FromConnection(conn Connection) Config {
	driver := conn.Driver
	if driver == "" {
		driver = DriverMySQL
	}

	port, err := strconv.Atoi(strings.TrimSpace(conn.Port))
	if err != nil || port <= 0 {
		port = DefaultPort(driver)
	}
	sshPort, err := strconv.Atoi(strings.TrimSpace(conn.SSH.Port))
	if err != nil || sshPort <= 0 {
		sshPort = 22
	}

	return Config{
		Driver:   driver,
		Host:     strings.TrimSpace(conn.Host),
		Port:     port,
		User:     conn.User,
		Password: conn.Password,
		Database: conn.Database,
		SSLMode:  conn.SSLMode,
		SSH: SSHConfig{
			Enabled:       conn.SSH.Enabled,
			Host:          strings.TrimSpace(conn.SSH.Host),
			Port:          sshPort,
			User:          conn.SSH.User,
			KeyPath:       conn.SSH.KeyPath,
			KeyPassphrase: conn.SSH.KeyPassphrase,
		},
	}
}
