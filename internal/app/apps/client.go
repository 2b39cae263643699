package apps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sb810/pixel-paint-challenge/internal"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/client"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/discovery"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/validate"

	"github.com/pkg/errors"
)

// ClientAppCfg configures a ClientApp.
type ClientAppCfg interface {
	ApplyClientApp(*ClientApp) error
}

// ClientApp is the headless wall client application. Positional arguments
// are consumed as (x, y, color) triples painted after registration.
type ClientApp struct {
	Port          int           `validate:"required,gt=0,lte=65535"`
	Addr          string
	Color         string        `validate:"required"`
	FlushInterval time.Duration `validate:"required,gt=0"`
	Discover      bool
}

// NewClientApp creates a new ClientApp.
func NewClientApp(cfgs ...ClientAppCfg) (*ClientApp, error) {
	app := &ClientApp{
		Addr:          internal.ClientAddr,
		Color:         internal.ClientColor,
		FlushInterval: time.Duration(internal.ClientFlushMS) * time.Millisecond,
		Discover:      internal.ClientDiscover,
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyClientApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ClientApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = internal.Port
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ClientApp failed")
	}
	return app, nil
}

// Run connects to the wall, paints any cells given as arguments, and keeps
// the local view in sync until the context is cancelled.
func (app *ClientApp) Run(ctx context.Context, args []string) error {
	addr := app.Addr
	if app.Discover {
		found, err := discovery.Browse(3 * time.Second)
		if err != nil {
			return errors.Wrap(err, "discover server failed")
		}
		addr = found
	}
	if addr == "" {
		addr = fmt.Sprintf("localhost:%d", app.Port)
	}

	c, err := client.NewClient(
		client.WithServerAddr(addr),
		client.WithColor(app.Color),
		client.WithFlushInterval(app.FlushInterval),
	)
	if err != nil {
		return errors.Wrap(err, "create client failed")
	}
	if err := c.Connect(ctx); err != nil {
		return errors.Wrap(err, "connect client failed")
	}
	defer func() { _ = c.Close() }()

	if len(args)%3 != 0 {
		return errors.New("paint arguments must be (x y color) triples")
	}
	for i := 0; i < len(args); i += 3 {
		x, err := strconv.Atoi(args[i])
		if err != nil || x < 0 {
			return errors.Errorf("parse x coordinate %q failed", args[i])
		}
		y, err := strconv.Atoi(args[i+1])
		if err != nil || y < 0 {
			return errors.Errorf("parse y coordinate %q failed", args[i+1])
		}
		c.Paint(x, y, args[i+2])
	}

	return errors.Wrap(c.Run(ctx), "run client failed")
}
