package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dana280/heartbeat-app/pkg/relay"
)

// DefaultSendEndpoint is the FCM HTTP v1 API base URL. The project path
// is appended per request.
const DefaultSendEndpoint = "https://fcm.googleapis.com"

// Notification strings shown by the client's service worker. The body
// is the original client's localized text.
const (
	notificationTitle = "💕 HeartBeat"
	notificationBody  = "קיבלת פעימת לב!"
)

// Notifier implements relay.PushNotifier against the FCM v1
// messages:send endpoint. It is strictly one-shot: any non-200 response
// or transport error is a failure and the caller converts it into a
// partner_offline reply. No retry, no backoff.
type Notifier struct {
	tokens     relay.AccessTokenSource
	projectID  string
	endpoint   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// fcmMessage is the v1 API request envelope.
type fcmMessage struct {
	Message struct {
		Token        string            `json:"token"`
		Notification fcmNotification   `json:"notification"`
		Data         map[string]string `json:"data"`
		Webpush      fcmWebpush        `json:"webpush"`
	} `json:"message"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmWebpush struct {
	Headers      map[string]string `json:"headers"`
	Notification map[string]any    `json:"notification"`
}

// NewNotifier creates an FCM notifier. endpoint is overridable so tests
// can point it at a local server; empty means the real backend.
func NewNotifier(tokens relay.AccessTokenSource, projectID string, endpoint string, client *http.Client, logger zerolog.Logger) *Notifier {
	if endpoint == "" {
		endpoint = DefaultSendEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Notifier{
		tokens:     tokens,
		projectID:  projectID,
		endpoint:   endpoint,
		httpClient: client,
		logger:     logger.With().Str("component", "PushNotifier").Logger(),
	}
}

// Notify sends a single heartbeat notification to the device identified
// by pushToken. A token-source failure short-circuits without touching
// the network.
func (n *Notifier) Notify(ctx context.Context, pushToken string, fromUserID string) error {
	bearer, err := n.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("push: no access token: %w", err)
	}

	payload := n.buildMessage(pushToken, fromUserID)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("push: failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/v1/projects/%s/messages:send", n.endpoint, n.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("push: failed to build send request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push: send request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		n.logger.Warn().Int("status", resp.StatusCode).Str("from", fromUserID).Msg("Push backend rejected send.")
		return fmt.Errorf("push: backend returned status %d", resp.StatusCode)
	}

	n.logger.Info().Str("from", fromUserID).Msg("Push notification accepted by backend.")
	return nil
}

func (n *Notifier) buildMessage(pushToken string, fromUserID string) fcmMessage {
	var msg fcmMessage
	msg.Message.Token = pushToken
	msg.Message.Notification = fcmNotification{
		Title: notificationTitle,
		Body:  notificationBody,
	}
	msg.Message.Data = map[string]string{
		"from": fromUserID,
		"type": "heartbeat",
	}
	msg.Message.Webpush = fcmWebpush{
		Headers: map[string]string{"Urgency": "high"},
		Notification: map[string]any{
			"icon":               "/icon-192.png",
			"badge":              "/icon-192.png",
			"tag":                "heartbeat-notification",
			"renotify":           true,
			"requireInteraction": true,
		},
	}
	return msg
}
