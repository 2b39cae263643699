package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/canvas"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/log"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/protocol"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/registry"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// DefaultFlushInterval is the window over which paint operations are
// accumulated before being sent as one batch. A throughput optimisation
// only; the server accepts batches of any size.
const DefaultFlushInterval = 50 * time.Millisecond

// DefaultColor is used when no color is configured.
const DefaultColor = "#1e90ff"

// Client implements the client side of the wall protocol.
type Client struct {
	url           string
	color         string
	flushInterval time.Duration

	identity int
	grid     map[canvas.Point]string
	users    []registry.User
	pending  []canvas.Op
	mu       sync.Mutex

	conn *websocket.Conn
	wmu  sync.Mutex
}

// Cfg configures a Client.
type Cfg func(*Client) error

// WithServerAddr sets the host:port of the wall server.
func WithServerAddr(addr string) Cfg {
	return func(c *Client) error {
		c.url = fmt.Sprintf("ws://%s/ws", addr)
		return nil
	}
}

// WithURL sets the full websocket URL of the wall server.
func WithURL(url string) Cfg {
	return func(c *Client) error {
		c.url = url
		return nil
	}
}

// WithColor sets the display color confirmed at handshake.
func WithColor(color string) Cfg {
	return func(c *Client) error {
		c.color = color
		return nil
	}
}

// WithFlushInterval sets the paint batching window.
func WithFlushInterval(d time.Duration) Cfg {
	return func(c *Client) error {
		c.flushInterval = d
		return nil
	}
}

// NewClient creates a new Client with the given configuration.
func NewClient(cfgs ...Cfg) (*Client, error) {
	client := &Client{
		color:         DefaultColor,
		flushInterval: DefaultFlushInterval,
		grid:          make(map[canvas.Point]string),
	}
	for _, cfg := range cfgs {
		if err := cfg(client); err != nil {
			return nil, errors.Wrap(err, "apply Client cfg failed")
		}
	}
	return client, nil
}

// Connect establishes the connection to the server.
func (c *Client) Connect(ctx context.Context) error {
	if c.url == "" {
		return errors.New("no server address configured")
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return errors.Wrapf(err, "connect to %s failed", c.url)
	}
	c.conn = conn
	return nil
}

// Paint queues one cell assignment for the next batch flush.
func (c *Client) Paint(x, y int, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, canvas.Op{X: x, Y: y, Color: color})
}

// SetColor announces a new display color for this client's identity.
func (c *Client) SetColor(color string) error {
	c.mu.Lock()
	c.color = color
	identity := c.identity
	c.mu.Unlock()
	if identity == protocol.UnassignedIdentity {
		return ErrNotRegistered
	}
	return c.write(protocol.ColorChangeMessage(identity, color))
}

// Identity returns the identity the server assigned, or the unassigned
// sentinel before registration completes.
func (c *Client) Identity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.identity
}

// Users returns the last broadcast connected-user list.
func (c *Client) Users() []registry.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]registry.User, len(c.users))
	copy(out, c.users)
	return out
}

// Cell returns the local view of one cell and whether it has been painted.
func (c *Client) Cell(x, y int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	color, ok := c.grid[canvas.Point{X: x, Y: y}]
	return color, ok
}

// Close tears down the transport. The server notices via its next sweep.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return errors.Wrap(c.conn.Close(), "close client connection failed")
}

// Run receives server messages and flushes pending paints until the
// context is cancelled or the transport closes.
func (c *Client) Run(ctx context.Context) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	in := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		defer close(in)
		for {
			_, raw, err := c.conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case in <- raw:
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return errors.Wrap(err, "read server message failed")
		case raw := <-in:
			if err := c.handleMessage(raw); err != nil {
				return errors.Wrap(err, "handle message failed")
			}
		case <-ticker.C:
			if err := c.flush(); err != nil {
				return errors.Wrap(err, "flush paint batch failed")
			}
		}
	}
}

// handleMessage updates the client state using the message from the server.
func (c *Client) handleMessage(raw []byte) error {
	in, err := protocol.ParseServer(raw)
	if err != nil {
		return errors.Wrap(err, "parse server message failed")
	}
	switch msg := in.(type) {
	case protocol.AssignIdentity:
		c.mu.Lock()
		c.identity = msg.Identity
		color := c.color
		c.mu.Unlock()
		logger.WithField("identity", msg.Identity).Info("identity assigned")
		return c.write(protocol.HandshakeReplyMessage(msg.Identity, color))
	case protocol.PaintBroadcast:
		c.mu.Lock()
		for _, op := range msg.Ops {
			c.grid[canvas.Point{X: op.X, Y: op.Y}] = op.Color
		}
		c.mu.Unlock()
	case protocol.UserListUpdate:
		c.mu.Lock()
		c.users = msg.Users
		c.mu.Unlock()
	case protocol.LivenessProbe:
		c.mu.Lock()
		identity, color := c.identity, c.color
		c.mu.Unlock()
		return c.write(protocol.LivenessReplyMessage(identity, color))
	case protocol.MalformedInput:
		logger.WithField("description", msg.Description).Warn("server rejected a message")
	}
	return nil
}

// flush sends all pending paints as one batch.
func (c *Client) flush() error {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}
	msg := protocol.PaintMessage(batch)
	logger.WithFields(log.MessageToFields(msg)).Debug("sending paint batch")
	return c.write(msg)
}

// write serializes concurrent senders; the transport allows one writer at a time.
func (c *Client) write(msg protocol.Message) error {
	raw, err := msg.Encode()
	if err != nil {
		return errors.Wrap(err, "encode message failed")
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return errors.Wrap(c.conn.WriteMessage(websocket.TextMessage, raw), "send message failed")
}
