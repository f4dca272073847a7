// Package tokenstore persists the session credentials between CLI runs.
// The access token, refresh token and cached user snapshot live under fixed
// keys in the OS keychain; only the session store and the API client touch
// them.
package tokenstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "organico-cli"

	// Fixed storage keys, shared with the web client's contract
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUserData     = "user_data"
)

// ErrNotFound is returned when a key has no stored value
var ErrNotFound = errors.New("not found in token store")

// Store is the persistence interface for session credentials. The keyring
// implementation is the default; tests substitute an in-memory one.
type Store interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
	// Clear removes every session key. It never reports missing keys as
	// errors so logout stays side-effect-only.
	Clear() error
}

// Keys lists every key Clear removes
var Keys = []string{KeyAccessToken, KeyRefreshToken, KeyUserData}

// Keyring is the OS keychain/credential manager backed store
type Keyring struct{}

// NewKeyring returns the default keyring-backed store
func NewKeyring() *Keyring {
	return &Keyring{}
}

func (k *Keyring) Set(key, value string) error {
	if err := keyring.Set(service, key, value); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (k *Keyring) Get(key string) (string, error) {
	value, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, nil
}

func (k *Keyring) Delete(key string) error {
	if err := keyring.Delete(service, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (k *Keyring) Clear() error {
	for _, key := range Keys {
		if err := k.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// Memory is an in-memory store for tests
type Memory struct {
	values map[string]string
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *Memory) Get(key string) (string, error) {
	value, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) Delete(key string) error {
	delete(m.values, key)
	return nil
}

func (m *Memory) Clear() error {
	for _, key := range Keys {
		delete(m.values, key)
	}
	return nil
}
