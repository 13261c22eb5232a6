// Package tokenstore provides implementations of relay.TokenStore, the
// per-user push-delivery token records. Two backends exist: an
// in-memory map for single-process deployments and local mode, and a
// Redis store for deployments that want tokens to survive a restart.
// The backend is selected by configuration.
package tokenstore

import (
	"context"
	"sync"

	"github.com/dana280/heartbeat-app/pkg/relay"
)

// MemoryStore keeps push tokens in a mutex-guarded map. At most one
// token per user, last write wins, no expiry tracked: the FCM token
// itself, not this record, is what expires.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]string)}
}

// Set stores or replaces the token for userID.
func (s *MemoryStore) Set(_ context.Context, userID string, token string) error {
	s.mu.Lock()
	s.tokens[userID] = token
	s.mu.Unlock()
	return nil
}

// Fetch returns the token for userID, or relay.ErrTokenNotFound.
func (s *MemoryStore) Fetch(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[userID]
	if !ok {
		return "", relay.ErrTokenNotFound
	}
	return token, nil
}

// Close satisfies relay.TokenStore.
func (s *MemoryStore) Close() error { return nil }
