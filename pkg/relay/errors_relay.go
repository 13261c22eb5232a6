package relay

import "errors"

// ErrTokenNotFound is returned by TokenStore.Fetch when the user has
// never registered a push token.
var ErrTokenNotFound = errors.New("relay: push token not found")

// ErrPushNotConfigured is returned by an AccessTokenSource that has no
// service identity configured. Callers treat it the same as any other
// token failure: push is unavailable, the real-time path is unaffected.
var ErrPushNotConfigured = errors.New("relay: push credentials not configured")
