// Package secrets keeps AI provider API keys in the OS keychain.
//
// Keys live under the "sqlchat" service as "ai_key_<provider>". The
// store is consulted only for providers whose key was not supplied by
// the environment, .env or config file.
package secrets

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sqlchat"

// ErrNotFound is returned when no key is stored for a provider.
var ErrNotFound = errors.New("no key stored")

// Store reads and writes provider API keys.
type Store struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// Open opens the OS keyring using native backends only. There is no
// encrypted-file fallback; it would prompt for a passphrase on every run.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		},
		KeychainTrustApplication: true,
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		LibSecretCollectionName:  "login",
	})
	if err != nil {
		return nil, fmt.Errorf("open keychain: %w", err)
	}
	return New(ring), nil
}

// New wraps an already opened keyring.
func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

func itemKey(provider string) string {
	return "ai_key_" + strings.ToLower(strings.TrimSpace(provider))
}

// Get returns the stored key for provider.
func (s *Store) Get(provider string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, err := s.ring.Get(itemKey(provider))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(item.Data), nil
}

// Set stores key for provider, replacing any previous value.
func (s *Store) Set(provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("empty key")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.ring.Set(keyring.Item{
		Key:         itemKey(provider),
		Data:        []byte(key),
		Label:       "sqlchat " + provider + " API key",
		Description: "API key used by sqlchat",
	})
}

// Delete removes the key for provider. Deleting a missing key is not an error.
func (s *Store) Delete(provider string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ring.Remove(itemKey(provider)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}
