package ssh

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipKeyFiles are files in ~/.ssh that are never private keys.
var skipKeyFiles = map[string]bool{
	"known_hosts":     true,
	"known_hosts.old": true,
	"config":          true,
	"authorized_keys": true,
	"environment":     true,
}

// DefaultKeyDir returns ~/.ssh, or "" when the home directory is unknown.
func DefaultKeyDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".ssh")
}

// DiscoverKeys lists the private key files in dir, sorted by path.
// A file counts as a key when its first bytes carry a PEM or OpenSSH
// private key header.
func DiscoverKeys(dir string) []string {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || skipKeyFiles[name] || strings.HasSuffix(name, ".pub") {
			continue
		}
		path := filepath.Join(dir, name)
		if looksLikePrivateKey(path) {
			keys = append(keys, path)
		}
	}
	sort.Strings(keys)
	return keys
}

func looksLikePrivateKey(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, 64)
	n, _ := f.Read(buf)
	header := string(buf[:n])
	return strings.Contains(header, "PRIVATE KEY") || strings.Contains(header, "OPENSSH")
}
