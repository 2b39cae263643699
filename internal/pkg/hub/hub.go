// Package hub fans messages out to every open connection.
package hub

import (
	"sync"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/protocol"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// Conn is the send side of a connection as the hub sees it.
type Conn interface {
	UUID() uuid.UUID
	Send(msg protocol.Message) error
}

// Hub is the set of currently open connections, keyed by session UUID.
type Hub struct {
	conns map[uuid.UUID]Conn
	mu    sync.RWMutex
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{
		conns: make(map[uuid.UUID]Conn),
	}
}

// Add registers an open connection.
func (h *Hub) Add(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn.UUID()] = conn
}

// Remove drops a connection from the set.
func (h *Hub) Remove(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

// Len returns the number of open connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the message to every currently open connection, with no
// per-connection acknowledgment or retry. It iterates a snapshot of the set
// so a connection closing mid-broadcast cannot corrupt the iteration.
func (h *Hub) Broadcast(msg protocol.Message) {
	for _, conn := range h.snapshot() {
		if err := conn.Send(msg); err != nil {
			logger.WithFields(logrus.Fields{
				"session": conn.UUID().String(),
				"type":    msg.Type,
			}).Debug("broadcast send dropped")
		}
	}
}

func (h *Hub) snapshot() []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns := make([]Conn, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	return conns
}
