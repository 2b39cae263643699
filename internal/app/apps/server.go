package apps

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sb810/pixel-paint-challenge/internal"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/canvas"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/discovery"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/hub"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/registry"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/server"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/sweeper"
	"github.com/sb810/pixel-paint-challenge/internal/pkg/validate"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// ServerAppCfg configures a ServerApp.
type ServerAppCfg interface {
	ApplyServerApp(*ServerApp) error
}

// ServerApp is the wall server application.
type ServerApp struct {
	Port          int           `validate:"required,gt=0,lte=65535"`
	CanvasWidth   int           `validate:"required,gt=0"`
	CanvasHeight  int           `validate:"required,gt=0"`
	SweepInterval time.Duration `validate:"required,gt=0"`
	SweepGrace    time.Duration `validate:"required,gt=0"`
	MDNS          bool
}

// NewServerApp creates a new ServerApp.
func NewServerApp(cfgs ...ServerAppCfg) (*ServerApp, error) {
	app := &ServerApp{
		CanvasWidth:   internal.CanvasWidth,
		CanvasHeight:  internal.CanvasHeight,
		SweepInterval: time.Duration(internal.SweepIntervalMS) * time.Millisecond,
		SweepGrace:    time.Duration(internal.SweepGraceMS) * time.Millisecond,
		MDNS:          internal.MDNS,
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyServerApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ServerApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = internal.Port
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ServerApp failed")
	}
	return app, nil
}

// Run serves the wall until the context is cancelled.
func (app *ServerApp) Run(ctx context.Context, _ []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reg := registry.New()
	paintLog := canvas.NewLog()
	connections := hub.New()
	sw, err := sweeper.NewSweeper(
		sweeper.WithRegistry(reg),
		sweeper.WithBroadcaster(connections),
		sweeper.WithInterval(app.SweepInterval),
		sweeper.WithGrace(app.SweepGrace),
	)
	if err != nil {
		return errors.Wrap(err, "create sweeper failed")
	}
	srv, err := server.NewServer(
		server.WithRegistry(reg),
		server.WithCanvas(paintLog),
		server.WithHub(connections),
		server.WithSweeper(sw),
		server.WithCanvasSize(app.CanvasWidth, app.CanvasHeight),
	)
	if err != nil {
		return errors.Wrap(err, "create server failed")
	}

	if app.MDNS {
		adv, err := discovery.Advertise(app.Port)
		if err != nil {
			logger.WithError(err).Warn("LAN advertisement failed")
		} else {
			defer func() { _ = adv.Shutdown() }()
		}
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.Port),
		Handler: srv.Router(),
	}
	errCh := make(chan error, 2)
	go func() {
		if err := sw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- errors.Wrap(err, "run sweeper failed")
		}
	}()
	go func() {
		logger.WithField("port", app.Port).Info("wall server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return errors.Wrap(httpServer.Shutdown(shutdownCtx), "shutdown server failed")
	case err := <-errCh:
		return errors.Wrap(err, "serve failed")
	}
}
