// Package export renders a wall snapshot to PDF.
package export

import (
	"fmt"
	"io"

	"github.com/sb810/pixel-paint-challenge/internal/pkg/canvas"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
)

// A4 printable area in mm, with margins.
const (
	pageWidth  = 190.0
	pageHeight = 277.0
	marginX    = 10.0
	marginY    = 10.0
)

// PDF writes the materialized grid as a page of filled cells. Cells outside
// the given dimensions are clipped; the wire protocol does not enforce
// bounds, but a page must pick a size.
func PDF(w io.Writer, grid map[canvas.Point]string, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("canvas dimensions must be positive")
	}
	cell := pageWidth / float64(width)
	if alt := pageHeight / float64(height); alt < cell {
		cell = alt
	}

	p := gofpdf.New("P", "mm", "A4", "")
	p.AddPage()
	p.SetDrawColor(200, 200, 200)
	p.SetLineWidth(0.1)
	p.Rect(marginX, marginY, cell*float64(width), cell*float64(height), "D")

	for pt, color := range grid {
		if pt.X < 0 || pt.Y < 0 || pt.X >= width || pt.Y >= height {
			continue
		}
		r, g, b, err := parseHexColor(color)
		if err != nil {
			continue
		}
		p.SetFillColor(r, g, b)
		p.Rect(marginX+float64(pt.X)*cell, marginY+float64(pt.Y)*cell, cell, cell, "F")
	}
	return errors.Wrap(p.Output(w), "write pdf failed")
}

// parseHexColor decodes "#rgb" and "#rrggbb" forms.
func parseHexColor(s string) (int, int, int, error) {
	var r, g, b int
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return 0, 0, 0, errors.Wrap(err, "scan color failed")
		}
	case 4:
		if _, err := fmt.Sscanf(s, "#%1x%1x%1x", &r, &g, &b); err != nil {
			return 0, 0, 0, errors.Wrap(err, "scan color failed")
		}
		r, g, b = r*17, g*17, b*17
	default:
		return 0, 0, 0, errors.New("unsupported color format")
	}
	return r, g, b, nil
}
