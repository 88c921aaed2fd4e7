package scatterkit

// AxisScale is a linear mapping from a data-space domain to a pixel-space
// range. It is independent of the view transform, which composes on top.
type AxisScale struct {
	D0, D1 float64 // data domain
	P0, P1 float64 // pixel range
}

// Apply maps a data value to a pixel value.
func (s AxisScale) Apply(v float64) float64 {
	span := s.D1 - s.D0
	if span == 0 {
		return (s.P0 + s.P1) / 2
	}
	return s.P0 + (v-s.D0)/span*(s.P1-s.P0)
}

// Invert maps a pixel value back to a data value.
func (s AxisScale) Invert(p float64) float64 {
	span := s.P1 - s.P0
	if span == 0 {
		return (s.D0 + s.D1) / 2
	}
	return s.D0 + (p-s.P0)/span*(s.D1-s.D0)
}

// ScalePair holds the independent per-axis mappings for a plot.
type ScalePair struct {
	X, Y AxisScale
}

// Apply maps a data-space point to pixel space (before the view transform).
func (s ScalePair) Apply(p Vec2) Vec2 {
	return Vec2{X: s.X.Apply(p.X), Y: s.Y.Apply(p.Y)}
}

// Invert maps a pixel-space point (before the view transform) to data space.
func (s ScalePair) Invert(p Vec2) Vec2 {
	return Vec2{X: s.X.Invert(p.X), Y: s.Y.Invert(p.Y)}
}

// degenerateSpan is the data-unit allowance substituted for a zero-span axis
// so the mapping never divides by zero.
const degenerateSpan = 0.5

// FitScales computes per-axis linear mappings from the padded extent of
// coords to the plot area inside the given viewport and margins. Padding is a
// fraction of each axis span, applied symmetrically. Zero-span axes are
// widened by a fixed allowance. The Y range is flipped so larger data values
// appear higher on screen. Pure and deterministic; recompute on dataset or
// viewport change, never on zoom or pan.
func FitScales(coords []Vec2, width, height float64, m Margin, padding float64) ScalePair {
	minX, minY := 0.0, 0.0
	maxX, maxY := 0.0, 0.0
	if len(coords) > 0 {
		minX, minY = coords[0].X, coords[0].Y
		maxX, maxY = minX, minY
		for _, c := range coords[1:] {
			if c.X < minX {
				minX = c.X
			}
			if c.X > maxX {
				maxX = c.X
			}
			if c.Y < minY {
				minY = c.Y
			}
			if c.Y > maxY {
				maxY = c.Y
			}
		}
	}

	minX, maxX = padSpan(minX, maxX, padding)
	minY, maxY = padSpan(minY, maxY, padding)

	left := m.Left
	right := width - m.Right
	top := m.Top
	bottom := height - m.Bottom
	if right < left {
		right = left
	}
	if bottom < top {
		bottom = top
	}

	return ScalePair{
		X: AxisScale{D0: minX, D1: maxX, P0: left, P1: right},
		Y: AxisScale{D0: minY, D1: maxY, P0: bottom, P1: top},
	}
}

// padSpan widens [lo, hi] by padding*(hi-lo) on each side, substituting a
// fixed allowance when the span is zero.
func padSpan(lo, hi, padding float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		return lo - degenerateSpan, hi + degenerateSpan
	}
	pad := span * padding
	return lo - pad, hi + pad
}
