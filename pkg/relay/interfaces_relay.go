package relay

import "context"

// Sender is the send capability of a live session. Writes are
// fire-and-forget: a failed write is logged by the owner and never
// propagated back to the peer that triggered it.
type Sender interface {
	Send(msg Message) error
}

// Presence is the process-wide directory of currently reachable users.
type Presence interface {
	// Register inserts or replaces the entry for userID. There is no
	// uniqueness enforcement: the last caller wins and the displaced
	// entry is evicted without its transport being closed.
	Register(userID string, sender Sender, partnerID string)
	Lookup(userID string) (Entry, bool)
	// SetPartner mutates an existing entry's declared partner. It is a
	// no-op when userID has no entry.
	SetPartner(userID string, partnerID string)
	Remove(userID string)
}

// Entry is the registry value for a registered user. PartnerID is
// self-declared by the user's last register or update_partner message
// and is not confirmed by the partner.
type Entry struct {
	Sender    Sender
	PartnerID string
}

// TokenStore persists push-delivery tokens keyed by user. At most one
// token per user; last write wins. Token expiry is the push backend's
// concern, not the store's.
type TokenStore interface {
	Set(ctx context.Context, userID string, token string) error
	// Fetch returns ErrTokenNotFound when the user has no token.
	Fetch(ctx context.Context, userID string) (string, error)
	Close() error
}

// AccessTokenSource produces a valid bearer token for the push backend.
// Any error means "push unavailable right now" and is never fatal.
type AccessTokenSource interface {
	Token(ctx context.Context) (string, error)
}

// PushNotifier makes a single best-effort push delivery attempt for a
// user who is not currently connected. No retry, no backoff.
type PushNotifier interface {
	Notify(ctx context.Context, pushToken string, fromUserID string) error
}

// ServiceDependencies holds all the external services the relay needs to
// operate. This struct is used for dependency injection.
type ServiceDependencies struct {
	TokenStore   TokenStore
	PushNotifier PushNotifier
}
