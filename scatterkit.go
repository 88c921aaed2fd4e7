package scatterkit

import "image/color"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication occurs at render submission time.
type Color struct {
	R, G, B, A float64
}

// ColorRGBA converts a Color to the standard library's 8-bit RGBA.
func ColorRGBA(c Color) color.RGBA {
	return color.RGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

// Vec2 is a 2D vector used for positions, offsets, and sizes throughout the API.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// normalized returns the rectangle with non-negative width and height,
// flipping edges as needed. Used for brush rectangles dragged in any direction.
func (r Rect) normalized() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// Shape selects the marker symbol drawn for a point.
type Shape uint8

const (
	ShapeCircle   Shape = iota // filled circle (default)
	ShapeSquare                // axis-aligned filled square
	ShapeTriangle              // upward-pointing filled triangle
	ShapeDiamond               // filled diamond (rotated square)
	ShapeCross                 // plus-shaped cross
	ShapeStar                  // five-pointed filled star
)

const shapeCount = 6

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft   MouseButton = iota // primary (left) mouse button
	MouseButtonRight                     // secondary (right) mouse button
	MouseButtonMiddle                    // middle mouse button
)

// KeyModifiers is a bitmask of keyboard modifier keys.
// Values can be combined with bitwise OR (e.g. ModShift | ModCtrl).
type KeyModifiers uint8

const (
	ModShift KeyModifiers = 1 << iota // Shift key
	ModCtrl                           // Control key
	ModAlt                            // Alt / Option key
	ModMeta                           // Meta / Command / Windows key
)

// EventType identifies a kind of semantic event emitted by the engine.
type EventType uint8

const (
	EventHover   EventType = iota // hovered point changed (may carry no point)
	EventClick                    // a point or stack was clicked
	EventBrush                    // a box-select gesture completed
	EventZoom                     // the view transform changed
	EventDataset                  // a new dataset snapshot was applied
)

// SelectionMode chooses what a pointer drag does.
type SelectionMode uint8

const (
	ModePan   SelectionMode = iota // drag pans the view (default)
	ModeBrush                      // drag draws a box-select rectangle
)

// Mark is a single backend-agnostic draw record. The render engine emits a
// slice of Marks per frame; backends consume them in order (painter order).
type Mark struct {
	X, Y    float64 // pixel position (marker center)
	Size    float64 // marker diameter in pixels
	Color   Color
	Shape   Shape
	Opacity float64
	Badge   int // duplicate-stack member count; 0 or 1 means no badge
}
