// Package session ties one transport connection to an identity.
package session

import (
	"sync"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/protocol"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// State is a session's position in its lifecycle.
type State int

// Session lifecycle. Closed is terminal; no reconnection resumes a session.
const (
	Connecting State = iota
	AwaitingHandshake
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case AwaitingHandshake:
		return "awaitingHandshake"
	case Active:
		return "active"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// sendBufferSize bounds how far a slow consumer may fall behind before its
// messages are dropped.
const sendBufferSize = 256

// Session is the per-connection state machine. The read pump feeds inbound
// messages to the dispatcher; the write pump drains the send buffer to the
// transport. Separating the two keeps a slow browser from blocking dispatch.
type Session struct {
	uuid     uuid.UUID
	conn     *websocket.Conn
	send     chan protocol.Message
	state    State
	identity int
	closed   bool
	mu       sync.Mutex
}

// New wraps an accepted connection in a Connecting session.
func New(conn *websocket.Conn) *Session {
	return &Session{
		uuid: uuid.New(),
		conn: conn,
		send: make(chan protocol.Message, sendBufferSize),
	}
}

// UUID returns the transport-level session key.
func (s *Session) UUID() uuid.UUID {
	return s.uuid
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState advances the lifecycle. Closed is sticky.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		return
	}
	s.state = state
}

// Identity returns the registry identity assigned to this session, or the
// unassigned sentinel if none has been allocated yet.
func (s *Session) Identity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// SetIdentity records the registry identity assigned to this session.
func (s *Session) SetIdentity(identity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

// Send queues a message for the write pump. It never blocks: a full buffer
// drops the message, per the no-retry broadcast contract.
func (s *Session) Send(msg protocol.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	select {
	case s.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close moves the session to Closed and releases the write pump. Safe to
// call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.state = Closed
	close(s.send)
	_ = s.conn.Close()
}

// ReadPump delivers each inbound frame to onMessage until the transport
// closes, then invokes onClose exactly once. Transport closure is not an
// error; it is the normal terminal transition.
func (s *Session) ReadPump(onMessage func(*Session, []byte), onClose func(*Session)) {
	defer func() {
		s.Close()
		onClose(s)
	}()
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			logger.WithFields(logrus.Fields{
				"session": s.uuid.String(),
				"state":   s.State().String(),
			}).Debug("transport closed")
			return
		}
		onMessage(s, raw)
	}
}

// WritePump drains the send buffer to the transport until Close.
func (s *Session) WritePump() {
	for msg := range s.send {
		raw, err := msg.Encode()
		if err != nil {
			logger.WithField("session", s.uuid.String()).Warn("encode outbound message failed")
			continue
		}
		if err := s.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			return
		}
	}
	_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
