package scatterkit

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"
)

// CanvasBackend rasterises the draw batch in software using fogleman/gg.
// It is the fallback when the GPU backend is unavailable and the path used
// for export-to-image.
type CanvasBackend struct {
	dc     *gg.Context
	width  int
	height int
}

// NewCanvasBackend creates a software raster surface of the given size.
func NewCanvasBackend(width, height int) *CanvasBackend {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &CanvasBackend{dc: gg.NewContext(width, height), width: width, height: height}
}

// Resize replaces the raster surface.
func (b *CanvasBackend) Resize(width, height int) {
	if width == b.width && height == b.height {
		return
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	b.width = width
	b.height = height
	b.dc = gg.NewContext(width, height)
}

// Render clears the canvas to white and draws the batch in order.
func (b *CanvasBackend) Render(marks []Mark) error {
	dc := b.dc
	dc.SetColor(color.White)
	dc.Clear()

	for i := range marks {
		m := &marks[i]
		dc.SetRGBA(m.Color.R, m.Color.G, m.Color.B, m.Color.A*m.Opacity)
		traceShape(dc, m.Shape, m.X, m.Y, m.Size/2)
		dc.Fill()

		if m.Badge > 1 {
			b.drawBadge(m)
		}
	}
	return nil
}

// drawBadge renders the duplicate-stack member count adjacent to the marker.
func (b *CanvasBackend) drawBadge(m *Mark) {
	dc := b.dc
	label := fmt.Sprintf("%d", m.Badge)
	r := m.Size/2 + 2

	bx := m.X + r + 4
	by := m.Y - r

	w, h := dc.MeasureString(label)
	pad := 2.0
	dc.SetRGBA(1, 1, 1, 0.85)
	dc.DrawRoundedRectangle(bx-pad, by-h/2-pad, w+2*pad, h+2*pad, 2)
	dc.Fill()
	dc.SetRGBA(0.15, 0.15, 0.15, 1)
	dc.DrawStringAnchored(label, bx, by, 0, 0.35)
}

// traceShape adds the marker outline for the given shape to the current path.
func traceShape(dc *gg.Context, shape Shape, x, y, r float64) {
	switch shape {
	case ShapeSquare:
		dc.DrawRectangle(x-r, y-r, 2*r, 2*r)
	case ShapeTriangle:
		dc.MoveTo(x, y-r)
		dc.LineTo(x+r*sin120, y+r*0.5)
		dc.LineTo(x-r*sin120, y+r*0.5)
		dc.ClosePath()
	case ShapeDiamond:
		dc.MoveTo(x, y-r)
		dc.LineTo(x+r, y)
		dc.LineTo(x, y+r)
		dc.LineTo(x-r, y)
		dc.ClosePath()
	case ShapeCross:
		t := r * 0.35
		dc.DrawRectangle(x-r, y-t, 2*r, 2*t)
		dc.DrawRectangle(x-t, y-r, 2*t, 2*r)
	case ShapeStar:
		for i := 0; i < 10; i++ {
			rad := r
			if i%2 == 1 {
				rad = r * 0.45
			}
			a := float64(i)*math.Pi/5 - math.Pi/2
			px := x + rad*math.Cos(a)
			py := y + rad*math.Sin(a)
			if i == 0 {
				dc.MoveTo(px, py)
			} else {
				dc.LineTo(px, py)
			}
		}
		dc.ClosePath()
	default:
		dc.DrawCircle(x, y, r)
	}
}

// sin120 is sin(120 degrees), used for equilateral triangle corners.
const sin120 = 0.8660254037844386

// Image returns the rendered frame.
func (b *CanvasBackend) Image() image.Image {
	return b.dc.Image()
}

// EncodePNG writes the rendered frame as PNG. Uses the fast encoder since
// interactive exports favor latency over size.
func (b *CanvasBackend) EncodePNG(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, b.dc.Image()); err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	return nil
}
