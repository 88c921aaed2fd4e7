package scatterkit

import (
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"
)

// spriteSize is the rasterised resolution of each shape sprite. Markers are
// drawn by scaling these quads down, so edges stay smooth at typical sizes.
const spriteSize = 64

// GPUBackend draws the batch through ebiten. All marks share a single shape
// atlas, so an entire frame submits as one DrawTriangles32 call plus badge
// text.
type GPUBackend struct {
	atlas  *ebiten.Image
	target *ebiten.Image

	width  int
	height int

	verts []ebiten.Vertex
	inds  []uint32

	// ownTarget is true when target is an internal offscreen the backend
	// allocated, as opposed to a screen set via SetTarget.
	ownTarget bool
}

// newGPUBackend creates the GPU backend. Graphics initialisation failures
// surface as an error so the engine can degrade to the canvas backend.
func newGPUBackend(width, height int) (b *GPUBackend, err error) {
	defer func() {
		if r := recover(); r != nil {
			b = nil
			err = fmt.Errorf("ebiten unavailable: %v", r)
		}
	}()

	b = &GPUBackend{width: width, height: height}
	b.atlas = buildShapeAtlas()
	return b, nil
}

// buildShapeAtlas rasterises the shape set in white into one horizontal
// strip; per-vertex colors tint it at draw time.
func buildShapeAtlas() *ebiten.Image {
	dc := gg.NewContext(spriteSize*shapeCount, spriteSize)
	half := float64(spriteSize) / 2
	for s := 0; s < shapeCount; s++ {
		cx := float64(s)*spriteSize + half
		dc.SetRGBA(1, 1, 1, 1)
		// Inset so scaled-down edges don't clip at the sprite border.
		traceShape(dc, Shape(s), cx, half, half-2)
		dc.Fill()
	}
	return ebiten.NewImageFromImage(dc.Image())
}

// SetTarget directs rendering at the given image (typically the screen
// passed to an ebiten Draw callback) instead of the internal offscreen.
func (b *GPUBackend) SetTarget(img *ebiten.Image) {
	b.target = img
	b.ownTarget = false
}

// Resize adjusts the offscreen dimensions. A target set via SetTarget is
// managed by the caller and left alone.
func (b *GPUBackend) Resize(width, height int) {
	b.width = width
	b.height = height
	if b.ownTarget {
		b.target = nil
		b.ownTarget = false
	}
}

// ensureTarget lazily allocates the internal offscreen.
func (b *GPUBackend) ensureTarget() {
	if b.target != nil {
		return
	}
	w, h := b.width, b.height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	b.target = ebiten.NewImage(w, h)
	b.ownTarget = true
}

// Render clears the target and submits the whole batch as coalesced quads
// with premultiplied per-vertex colors, then overlays badge labels.
func (b *GPUBackend) Render(marks []Mark) error {
	b.ensureTarget()
	b.target.Fill(color.White)

	b.verts = b.verts[:0]
	b.inds = b.inds[:0]

	for i := range marks {
		b.appendMarkQuad(&marks[i])
	}

	if len(b.verts) > 0 {
		var op ebiten.DrawTrianglesOptions
		op.Blend = ebiten.BlendSourceOver
		op.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
		b.target.DrawTriangles32(b.verts, b.inds, b.atlas, &op)
	}

	for i := range marks {
		if marks[i].Badge > 1 {
			b.drawBadge(&marks[i])
		}
	}
	return nil
}

// appendMarkQuad appends 4 vertices and 6 indices for one marker.
func (b *GPUBackend) appendMarkQuad(m *Mark) {
	half := float32(m.Size / 2)
	cx := float32(m.X)
	cy := float32(m.Y)

	sx0 := float32(int(m.Shape) * spriteSize)
	sx1 := sx0 + spriteSize

	a := float32(m.Color.A * m.Opacity)
	cr := float32(m.Color.R) * a
	cg := float32(m.Color.G) * a
	cb := float32(m.Color.B) * a

	base := uint32(len(b.verts))

	dstX := [4]float32{cx - half, cx + half, cx - half, cx + half}
	dstY := [4]float32{cy - half, cy - half, cy + half, cy + half}
	srcX := [4]float32{sx0, sx1, sx0, sx1}
	srcY := [4]float32{0, 0, spriteSize, spriteSize}

	for i := 0; i < 4; i++ {
		b.verts = append(b.verts, ebiten.Vertex{
			DstX:   dstX[i],
			DstY:   dstY[i],
			SrcX:   srcX[i],
			SrcY:   srcY[i],
			ColorR: cr,
			ColorG: cg,
			ColorB: cb,
			ColorA: a,
		})
	}
	b.inds = append(b.inds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// drawBadge renders the duplicate-stack member count next to the marker.
func (b *GPUBackend) drawBadge(m *Mark) {
	label := fmt.Sprintf("%d", m.Badge)
	x := int(m.X + m.Size/2 + 5)
	y := int(m.Y - m.Size/2 + 4)
	text.Draw(b.target, label, basicfont.Face7x13, x, y, color.RGBA{R: 38, G: 38, B: 38, A: 255})
}

// Target returns the image the last frame was rendered into.
func (b *GPUBackend) Target() *ebiten.Image {
	return b.target
}
