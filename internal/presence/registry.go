// Package presence provides the process-wide directory of currently
// reachable users. The registry is shared by every connection's session
// handler and guards each operation with a single mutex; there is no
// transactional guarantee across compound read-then-write sequences.
package presence

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/dana280/heartbeat-app/pkg/relay"
)

// Registry implements relay.Presence. Registration is last-writer-wins:
// a later registration under the same userID silently replaces the
// earlier entry, evicting the old session's reachability without
// closing its transport. This keeps reconnects trivial at the cost of
// no identity verification.
type Registry struct {
	mu      sync.Mutex
	entries map[string]relay.Entry
	logger  zerolog.Logger
}

// NewRegistry creates an empty registry. Each test constructs its own
// instance; nothing in this package is ambient global state.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		entries: make(map[string]relay.Entry),
		logger:  logger.With().Str("component", "PresenceRegistry").Logger(),
	}
}

// Register inserts or replaces the entry for userID.
func (r *Registry) Register(userID string, sender relay.Sender, partnerID string) {
	r.mu.Lock()
	_, replaced := r.entries[userID]
	r.entries[userID] = relay.Entry{Sender: sender, PartnerID: partnerID}
	r.mu.Unlock()

	r.logger.Info().Str("user", userID).Str("partner", partnerID).Bool("replaced", replaced).Msg("User registered")
}

// Lookup returns the entry for userID if one exists.
func (r *Registry) Lookup(userID string) (relay.Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	return entry, ok
}

// SetPartner updates the declared partner of an existing entry. Absent
// entries are left alone.
func (r *Registry) SetPartner(userID string, partnerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok {
		return
	}
	entry.PartnerID = partnerID
	r.entries[userID] = entry
}

// Remove deletes the entry for userID. Used on disconnect.
func (r *Registry) Remove(userID string) {
	r.mu.Lock()
	delete(r.entries, userID)
	r.mu.Unlock()

	r.logger.Info().Str("user", userID).Msg("User removed from registry")
}
