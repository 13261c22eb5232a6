// Package realtime provides components for managing real-time client
// connections: the per-connection session and the connection manager
// that owns the handshake, the frame loop, and message routing.
package realtime

import (
	"encoding/json"
	"net"
	"sync"

	"github.com/dana280/heartbeat-app/internal/wire"
	"github.com/dana280/heartbeat-app/pkg/relay"
)

// Session is one live connection. It moves through three states:
// connected (no userID bound), identified (userID bound by the first
// register message), closed (transport gone). The session is owned by
// its connection's goroutine; the presence registry holds it only as a
// send capability.
type Session struct {
	conn net.Conn

	// writeMu serializes frame writes: partner sessions and async push
	// completions write concurrently with the owning goroutine.
	writeMu sync.Mutex

	// userID is written only by the owning goroutine (register binds
	// it) and read by it; other goroutines never touch it.
	userID string
}

func newSession(conn net.Conn) *Session {
	return &Session{conn: conn}
}

// Send marshals msg and writes it as a single unmasked text frame.
// Writes are fire-and-forget: errors are logged by callers at most and
// never surface to the peer that triggered the send.
func (s *Session) Send(msg relay.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.writeFrame(wire.EncodeText(payload))
}

func (s *Session) writeFrame(frame []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.conn.Write(frame)
	return err
}
