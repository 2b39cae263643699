package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/protocol"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/registry"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBroadcaster struct {
	mock.Mock
	mu   sync.Mutex
	sent []protocol.Message
}

func (m *mockBroadcaster) Broadcast(msg protocol.Message) {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	m.Called(msg)
}

func (m *mockBroadcaster) messages() []protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]protocol.Message, len(m.sent))
	copy(out, m.sent)
	return out
}

func TestCycleDropsSilentIdentities(t *testing.T) {
	reg := registry.New()
	require.Equal(t, 1, reg.Allocate())
	require.Equal(t, 2, reg.Allocate())
	require.NoError(t, reg.Confirm(1, "#ff0000"))
	require.NoError(t, reg.Confirm(2, "#00ff00"))

	b := &mockBroadcaster{}
	// Identity 1 answers the probe; identity 2 stays silent.
	b.On("Broadcast", protocol.LivenessProbeMessage()).Run(func(mock.Arguments) {
		reg.RecordProvisional(1, "#ff0000")
	}).Return()
	b.On("Broadcast", mock.AnythingOfType("protocol.Message")).Return()

	s, err := NewSweeper(
		WithRegistry(reg),
		WithBroadcaster(b),
		WithInterval(time.Hour),
		WithGrace(20*time.Millisecond),
	)
	require.NoError(t, err)

	s.cycle(context.Background())

	msgs := b.messages()
	require.Len(t, msgs, 2)
	require.Equal(t, protocol.TagLivenessProbe, msgs[0].Type)
	require.Equal(t, protocol.TagUserListUpdate, msgs[1].Type)
	require.Equal(t, "1,#ff0000", msgs[1].Data)

	require.Equal(t, []registry.User{{Identity: 1, Color: "#ff0000"}}, reg.Snapshot())
	// The dropped identity is eligible for reallocation.
	require.Equal(t, 2, reg.Allocate())
}

func TestCycleCommitsEmptySetWhenNobodyAnswers(t *testing.T) {
	reg := registry.New()
	reg.Allocate()

	b := &mockBroadcaster{}
	b.On("Broadcast", mock.AnythingOfType("protocol.Message")).Return()

	s, err := NewSweeper(
		WithRegistry(reg),
		WithBroadcaster(b),
		WithGrace(10*time.Millisecond),
	)
	require.NoError(t, err)

	s.cycle(context.Background())

	require.Equal(t, 0, reg.Len())
	msgs := b.messages()
	require.Equal(t, protocol.TagUserListUpdate, msgs[len(msgs)-1].Type)
	require.Equal(t, "", msgs[len(msgs)-1].Data)
}

func TestTriggerRunsACycle(t *testing.T) {
	reg := registry.New()
	b := &mockBroadcaster{}
	b.On("Broadcast", mock.AnythingOfType("protocol.Message")).Return()

	s, err := NewSweeper(
		WithRegistry(reg),
		WithBroadcaster(b),
		WithInterval(time.Hour),
		WithGrace(5*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	s.Trigger()
	require.Eventually(t, func() bool {
		return len(b.messages()) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestNewSweeperRequiresDependencies(t *testing.T) {
	_, err := NewSweeper()
	require.Error(t, err)
	_, err = NewSweeper(WithRegistry(registry.New()))
	require.Error(t, err)
}
