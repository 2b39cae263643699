package hub

import (
	"sync"
	"testing"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/protocol"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/session"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id     uuid.UUID
	closed bool
	msgs   []protocol.Message
	mu     sync.Mutex
}

func newFakeConn() *fakeConn {
	return &fakeConn{id: uuid.New()}
}

func (f *fakeConn) UUID() uuid.UUID {
	return f.id
}

func (f *fakeConn) Send(msg protocol.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return session.ErrSessionClosed
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeConn) received() []protocol.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]protocol.Message, len(f.msgs))
	copy(out, f.msgs)
	return out
}

func TestBroadcastReachesEveryConnection(t *testing.T) {
	h := New()
	a, b := newFakeConn(), newFakeConn()
	h.Add(a)
	h.Add(b)
	require.Equal(t, 2, h.Len())

	msg := protocol.LivenessProbeMessage()
	h.Broadcast(msg)
	require.Equal(t, []protocol.Message{msg}, a.received())
	require.Equal(t, []protocol.Message{msg}, b.received())
}

func TestRemoveExcludesFromBroadcast(t *testing.T) {
	h := New()
	a, b := newFakeConn(), newFakeConn()
	h.Add(a)
	h.Add(b)
	h.Remove(a.UUID())
	require.Equal(t, 1, h.Len())

	h.Broadcast(protocol.AssignIdentityMessage(1))
	require.Empty(t, a.received())
	require.Len(t, b.received(), 1)
}

func TestBroadcastSurvivesFailingConnection(t *testing.T) {
	h := New()
	a, b := newFakeConn(), newFakeConn()
	a.closed = true
	h.Add(a)
	h.Add(b)

	h.Broadcast(protocol.LivenessProbeMessage())
	require.Len(t, b.received(), 1)
}

func TestBroadcastPreservesSendOrderPerConnection(t *testing.T) {
	h := New()
	a := newFakeConn()
	h.Add(a)

	first := protocol.AssignIdentityMessage(1)
	second := protocol.LivenessProbeMessage()
	h.Broadcast(first)
	h.Broadcast(second)
	require.Equal(t, []protocol.Message{first, second}, a.received())
}
