package session

import (
	"context"
	"sync"
)

// Field names persisted by the session store. The original storefront
// keeps these as flat string pairs in browser-local storage; the Go
// stores mirror that layout so a session can be rebuilt synchronously
// on startup.
const (
	FieldToken    = "token"
	FieldUserID   = "user_id"
	FieldUsername = "username"
	FieldFirmID   = "firm_id"
	FieldFirmName = "firm_name"
)

// fields lists every persisted key, for atomic clears.
var fields = []string{FieldToken, FieldUserID, FieldUsername, FieldFirmID, FieldFirmName}

// Store persists session fields as flat string key/value pairs.
// Get returns the empty string for absent keys; absence is not an
// error. Clear removes every session field atomically.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

// Get returns the value for key, or "" when absent.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

// Set stores value under key.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Clear removes every session field in one step.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.values = make(map[string]string)
	s.mu.Unlock()
	return nil
}
