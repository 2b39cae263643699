package cfg

import (
	"github.com/sb810/pixel-paint-challenge/internal"
	"github.com/sb810/pixel-paint-challenge/internal/app/apps"
)

// CanvasCfg is configuration for the canvas dimensions.
type CanvasCfg struct {
	width  int
	height int
}

// NewCanvasCfg creates a new CanvasCfg from the given dimensions.
func NewCanvasCfg(width, height int) *CanvasCfg {
	return &CanvasCfg{
		width:  width,
		height: height,
	}
}

// CanvasFromEnv creates a new CanvasCfg from the current environment.
func CanvasFromEnv() *CanvasCfg {
	return &CanvasCfg{
		width:  internal.CanvasWidth,
		height: internal.CanvasHeight,
	}
}

// ApplyServerApp applies the CanvasCfg to a ServerApp.
func (cfg CanvasCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.CanvasWidth = cfg.width
	app.CanvasHeight = cfg.height
	return nil
}
