// Package fakes provides in-memory test doubles for the service's
// external dependencies. These are used in the local run mode and in
// integration-style tests.
package fakes

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// PushNotifier records every push attempt and succeeds, logging what a
// real dispatch would have sent.
type PushNotifier struct {
	logger zerolog.Logger

	mu    sync.Mutex
	sends []PushSend
}

// PushSend is one recorded Notify call.
type PushSend struct {
	PushToken  string
	FromUserID string
}

func NewPushNotifier(logger zerolog.Logger) *PushNotifier {
	return &PushNotifier{logger: logger.With().Str("component", "FakePushNotifier").Logger()}
}

func (n *PushNotifier) Notify(_ context.Context, pushToken string, fromUserID string) error {
	n.mu.Lock()
	n.sends = append(n.sends, PushSend{PushToken: pushToken, FromUserID: fromUserID})
	n.mu.Unlock()

	n.logger.Info().Str("from", fromUserID).Msg("[FAKES-PUSH] Would send push notification.")
	return nil
}

// Sends returns a copy of all recorded pushes.
func (n *PushNotifier) Sends() []PushSend {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]PushSend, len(n.sends))
	copy(out, n.sends)
	return out
}

// AccessTokenSource hands out a fixed bearer token.
type AccessTokenSource struct {
	BearerToken string
}

func (s *AccessTokenSource) Token(context.Context) (string, error) {
	return s.BearerToken, nil
}
