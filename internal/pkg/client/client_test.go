package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/canvas"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/hub"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/registry"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/server"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/sweeper"

	"github.com/stretchr/testify/require"
)

func startWall(t *testing.T) (*httptest.Server, *canvas.Log) {
	t.Helper()
	reg := registry.New()
	paintLog := canvas.NewLog()
	connections := hub.New()
	sw, err := sweeper.NewSweeper(
		sweeper.WithRegistry(reg),
		sweeper.WithBroadcaster(connections),
		sweeper.WithInterval(time.Hour),
	)
	require.NoError(t, err)
	srv, err := server.NewServer(
		server.WithRegistry(reg),
		server.WithCanvas(paintLog),
		server.WithHub(connections),
		server.WithSweeper(sw),
	)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, paintLog
}

func wallURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func TestClientRegistersAndSyncs(t *testing.T) {
	ts, paintLog := startWall(t)

	c, err := NewClient(
		WithURL(wallURL(ts)),
		WithColor("#ff0000"),
		WithFlushInterval(10*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer func() { _ = c.Close() }()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	require.Eventually(t, func() bool {
		return c.Identity() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		users := c.Users()
		return len(users) == 1 && users[0].Color == "#ff0000"
	}, 2*time.Second, 10*time.Millisecond)

	// A painted cell comes back via the broadcast echo and lands in the
	// local grid and the server log.
	c.Paint(3, 4, "#00ff00")
	require.Eventually(t, func() bool {
		color, ok := c.Cell(3, 4)
		return ok && color == "#00ff00"
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, 1, paintLog.Len())

	cancel()
	require.NoError(t, <-done)
}

func TestClientBatchesPaints(t *testing.T) {
	ts, paintLog := startWall(t)

	c, err := NewClient(
		WithURL(wallURL(ts)),
		WithFlushInterval(50*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Connect(ctx))
	defer func() { _ = c.Close() }()
	go func() { _ = c.Run(ctx) }()

	c.Paint(0, 0, "#111111")
	c.Paint(1, 0, "#222222")
	c.Paint(2, 0, "#333333")

	require.Eventually(t, func() bool {
		return paintLog.Len() == 3
	}, 2*time.Second, 10*time.Millisecond)
	require.Equal(t, []canvas.Op{
		{X: 0, Y: 0, Color: "#111111"},
		{X: 1, Y: 0, Color: "#222222"},
		{X: 2, Y: 0, Color: "#333333"},
	}, paintLog.Replay())
}

func TestPaintAccumulatesUntilFlush(t *testing.T) {
	c, err := NewClient(WithServerAddr("localhost:0"))
	require.NoError(t, err)
	c.Paint(1, 2, "#abcdef")
	c.Paint(3, 4, "#fedcba")
	c.mu.Lock()
	defer c.mu.Unlock()
	require.Equal(t, []canvas.Op{
		{X: 1, Y: 2, Color: "#abcdef"},
		{X: 3, Y: 4, Color: "#fedcba"},
	}, c.pending)
}

func TestRunWithoutConnect(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	require.ErrorIs(t, c.Run(context.Background()), ErrNotConnected)
}

func TestSetColorBeforeRegistration(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	require.ErrorIs(t, c.SetColor("#ffffff"), ErrNotRegistered)
}
