package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dana280/heartbeat-app/internal/wire"
	"github.com/dana280/heartbeat-app/pkg/relay"
)

const (
	readChunkSize = 4096

	// defaultPushTimeout bounds the offline push attempt (token
	// exchange plus send) so a hung backend cannot leak the goroutine
	// serving that heartbeat.
	defaultPushTimeout = 10 * time.Second
)

// ConnectionManager upgrades incoming requests, runs one goroutine per
// connection, and routes decoded messages between sessions, the
// presence registry, and the push path.
type ConnectionManager struct {
	registry    relay.Presence
	tokens      relay.TokenStore
	notifier    relay.PushNotifier
	pushTimeout time.Duration
	logger      zerolog.Logger
	instanceID  string
}

// NewConnectionManager wires up a connection manager over the shared
// process-wide state. The registry, token store, and notifier are
// injected so tests can construct fresh instances per test.
func NewConnectionManager(
	registry relay.Presence,
	tokens relay.TokenStore,
	notifier relay.PushNotifier,
	logger zerolog.Logger,
) *ConnectionManager {
	instanceID := uuid.NewString()
	return &ConnectionManager{
		registry:    registry,
		tokens:      tokens,
		notifier:    notifier,
		pushTimeout: defaultPushTimeout,
		logger:      logger.With().Str("component", "ConnectionManager").Str("instance", instanceID).Logger(),
		instanceID:  instanceID,
	}
}

// ServeHTTP performs the WebSocket handshake by hand and hands the
// hijacked connection to the session loop.
func (cm *ConnectionManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, reader, err := wire.Upgrade(w, r)
	if err != nil {
		cm.logger.Warn().Err(err).Msg("WebSocket upgrade failed.")
		return
	}

	sess := newSession(conn)
	cm.logger.Info().Str("remote", conn.RemoteAddr().String()).Msg("Client connected.")

	defer func() {
		cm.disconnect(sess)
		_ = conn.Close()
	}()

	// Frame loop. Frames may span reads, and a single read may carry
	// several frames; pending accumulates until a full frame decodes.
	pending := make([]byte, 0, readChunkSize)
	chunk := make([]byte, readChunkSize)
	for {
		frame, n, status := wire.Decode(pending)
		switch status {
		case wire.Incomplete:
			m, err := reader.Read(chunk)
			if err != nil {
				return
			}
			pending = append(pending, chunk[:m]...)
			continue
		case wire.Discard:
			// Unusable bytes: drop them, the connection stays open.
			cm.logger.Debug().Int("bytes", n).Msg("Discarding undecodable input.")
			pending = pending[:0]
			continue
		}

		pending = append(pending[:0], pending[n:]...)

		switch frame.Opcode {
		case wire.OpcodeClose:
			return
		case wire.OpcodePing:
			_ = sess.writeFrame(wire.EncodePong())
		default:
			cm.dispatch(sess, frame.Payload)
		}
	}
}

// dispatch routes one decoded text payload. Malformed JSON is swallowed
// and the frame discarded: a single bad frame must not take down a
// session carrying a live pairing. Unrecognized types are ignored by
// the same permissive policy, so new message types never break old
// servers.
func (cm *ConnectionManager) dispatch(sess *Session, payload []byte) {
	var msg relay.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		cm.logger.Debug().Err(err).Msg("Discarding non-JSON frame.")
		return
	}

	switch msg.Type {
	case relay.TypeRegister:
		cm.handleRegister(sess, msg)
	case relay.TypeRegisterPush:
		cm.handleRegisterPush(sess, msg)
	case relay.TypeHeartbeat:
		cm.handleHeartbeat(sess, msg)
	case relay.TypeUpdatePartner:
		cm.handleUpdatePartner(sess, msg)
	}
}

// handleRegister binds the user id and announces presence. When the
// declared partner is already registered, both sides get a
// partner_online notice.
func (cm *ConnectionManager) handleRegister(sess *Session, msg relay.Message) {
	sess.userID = msg.UserID
	cm.registry.Register(msg.UserID, sess, msg.PartnerID)

	cm.send(sess, relay.Message{Type: relay.TypeRegistered, UserID: msg.UserID})

	if msg.PartnerID == "" {
		return
	}
	if partner, ok := cm.registry.Lookup(msg.PartnerID); ok {
		cm.sendTo(partner.Sender, relay.Message{Type: relay.TypePartnerOnline, PartnerID: msg.UserID})
		cm.send(sess, relay.Message{Type: relay.TypePartnerOnline, PartnerID: msg.PartnerID})
	}
}

// handleRegisterPush records a push-delivery token. No reply either
// way; the client cannot act on a failure.
func (cm *ConnectionManager) handleRegisterPush(sess *Session, msg relay.Message) {
	if msg.UserID == "" || msg.Token == "" {
		return
	}
	if err := cm.tokens.Set(context.Background(), msg.UserID, msg.Token); err != nil {
		cm.logger.Warn().Err(err).Str("user", msg.UserID).Msg("Failed to store push token.")
		return
	}
	cm.logger.Info().Str("user", msg.UserID).Msg("Push token registered.")
}

// handleHeartbeat forwards to a live partner, or falls back to a single
// push attempt when the target is offline but has a registered token.
func (cm *ConnectionManager) handleHeartbeat(sess *Session, msg relay.Message) {
	if msg.To == "" {
		return
	}
	log := cm.logger.With().Str("from", sess.userID).Str("to", msg.To).Logger()

	if target, ok := cm.registry.Lookup(msg.To); ok {
		log.Info().Msg("Heartbeat routed to live partner.")
		cm.sendTo(target.Sender, relay.Message{Type: relay.TypeHeartbeat, From: sess.userID})
		cm.send(sess, relay.Message{Type: relay.TypeDelivered, To: msg.To})
		return
	}

	pushToken, err := cm.tokens.Fetch(context.Background(), msg.To)
	if err != nil {
		log.Info().Msg("Heartbeat target offline, no push token.")
		cm.send(sess, relay.Message{Type: relay.TypePartnerOffline, PartnerID: msg.To})
		return
	}

	// The push attempt is the one genuine suspension point in the
	// router; run it off the frame loop so unrelated messages from
	// this connection keep flowing, and bound it so a hung backend
	// resolves as a failure.
	from := sess.userID
	to := msg.To
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cm.pushTimeout)
		defer cancel()

		if err := cm.notifier.Notify(ctx, pushToken, from); err != nil {
			log.Warn().Err(err).Msg("Push attempt failed.")
			cm.send(sess, relay.Message{Type: relay.TypePartnerOffline, PartnerID: to})
			return
		}
		log.Info().Msg("Heartbeat delivered via push.")
		cm.send(sess, relay.Message{Type: relay.TypeDelivered, To: to, ViaPush: true})
	}()
}

// handleUpdatePartner changes the declared partner of an identified
// session. Sessions that never registered are ignored.
func (cm *ConnectionManager) handleUpdatePartner(sess *Session, msg relay.Message) {
	if sess.userID == "" {
		return
	}
	if _, ok := cm.registry.Lookup(sess.userID); !ok {
		return
	}

	cm.registry.SetPartner(sess.userID, msg.PartnerID)
	if _, ok := cm.registry.Lookup(msg.PartnerID); ok {
		cm.send(sess, relay.Message{Type: relay.TypePartnerOnline, PartnerID: msg.PartnerID})
	}
}

// disconnect runs the terminal state transition: notify the declared
// partner if it is reachable, then drop the registry entry.
func (cm *ConnectionManager) disconnect(sess *Session) {
	if sess.userID == "" {
		cm.logger.Info().Msg("Unidentified client disconnected.")
		return
	}

	if entry, ok := cm.registry.Lookup(sess.userID); ok && entry.PartnerID != "" {
		if partner, ok := cm.registry.Lookup(entry.PartnerID); ok {
			cm.sendTo(partner.Sender, relay.Message{Type: relay.TypePartnerOffline, PartnerID: sess.userID})
		}
	}
	cm.registry.Remove(sess.userID)
	cm.logger.Info().Str("user", sess.userID).Msg("User disconnected.")
}

func (cm *ConnectionManager) send(sess *Session, msg relay.Message) {
	if err := sess.Send(msg); err != nil {
		cm.logger.Debug().Err(err).Str("type", msg.Type).Msg("Reply write failed.")
	}
}

func (cm *ConnectionManager) sendTo(sender relay.Sender, msg relay.Message) {
	if err := sender.Send(msg); err != nil {
		cm.logger.Debug().Err(err).Str("type", msg.Type).Msg("Forward write failed.")
	}
}
