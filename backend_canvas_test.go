package scatterkit

import (
	"bytes"
	"image/png"
	"testing"
)

func TestCanvasRenderDrawsMark(t *testing.T) {
	b := NewCanvasBackend(50, 50)
	err := b.Render([]Mark{{
		X: 25, Y: 25, Size: 10,
		Color:   Color{R: 1, A: 1},
		Opacity: 1,
	}})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	r, g, bl, _ := b.Image().At(25, 25).RGBA()
	if r>>8 < 200 || g>>8 > 100 || bl>>8 > 100 {
		t.Errorf("center pixel = (%d, %d, %d), want red", r>>8, g>>8, bl>>8)
	}

	// Background stays white.
	r, g, bl, _ = b.Image().At(2, 2).RGBA()
	if r>>8 < 250 || g>>8 < 250 || bl>>8 < 250 {
		t.Errorf("background pixel = (%d, %d, %d), want white", r>>8, g>>8, bl>>8)
	}
}

func TestCanvasRenderShapesAndBadges(t *testing.T) {
	b := NewCanvasBackend(120, 40)
	marks := make([]Mark, 0, shapeCount)
	for s := 0; s < shapeCount; s++ {
		marks = append(marks, Mark{
			X: float64(10 + s*18), Y: 20, Size: 12,
			Color:   Color{B: 1, A: 1},
			Shape:   Shape(s),
			Opacity: 0.9,
			Badge:   s, // exercises the no-badge path for 0 and 1
		})
	}
	if err := b.Render(marks); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	for s := 0; s < shapeCount; s++ {
		r, _, _, _ := b.Image().At(10+s*18, 20).RGBA()
		if r>>8 > 150 {
			t.Errorf("shape %d center still background-colored", s)
		}
	}
}

func TestCanvasResize(t *testing.T) {
	b := NewCanvasBackend(50, 50)
	b.Resize(80, 60)
	bounds := b.Image().Bounds()
	if bounds.Dx() != 80 || bounds.Dy() != 60 {
		t.Errorf("surface = %dx%d, want 80x60", bounds.Dx(), bounds.Dy())
	}

	b.Resize(0, -1)
	bounds = b.Image().Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		t.Errorf("surface = %dx%d, want clamped to at least 1x1", bounds.Dx(), bounds.Dy())
	}
}

func TestCanvasEncodePNG(t *testing.T) {
	b := NewCanvasBackend(30, 20)
	if err := b.Render(nil); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	var buf bytes.Buffer
	if err := b.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG() error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 20 {
		t.Errorf("decoded size = %dx%d, want 30x20", img.Bounds().Dx(), img.Bounds().Dy())
	}
}
