package scatterkit

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// NeutralGray is the reserved color for points with a missing feature value
// or an index the vocabulary cannot resolve.
var NeutralGray = Color{R: 0.68, G: 0.68, B: 0.68, A: 1}

// OtherGray is the reserved color for values aggregated into the "Other"
// bucket. Deliberately distinct from NeutralGray.
var OtherGray = Color{R: 0.45, G: 0.45, B: 0.45, A: 1}

// basePalette is the tab20 categorical scheme: 10 strong colors followed by
// their light variants.
var basePalette = []Color{
	{0.122, 0.467, 0.706, 1}, // blue
	{1.000, 0.498, 0.055, 1}, // orange
	{0.173, 0.627, 0.173, 1}, // green
	{0.839, 0.153, 0.157, 1}, // red
	{0.580, 0.404, 0.741, 1}, // purple
	{0.549, 0.337, 0.294, 1}, // brown
	{0.890, 0.467, 0.761, 1}, // pink
	{0.498, 0.498, 0.498, 1}, // gray
	{0.737, 0.741, 0.133, 1}, // olive
	{0.090, 0.745, 0.812, 1}, // cyan
	{0.682, 0.780, 0.910, 1}, // light blue
	{1.000, 0.733, 0.471, 1}, // light orange
	{0.596, 0.875, 0.541, 1}, // light green
	{1.000, 0.596, 0.588, 1}, // light red
	{0.773, 0.690, 0.835, 1}, // light purple
	{0.769, 0.612, 0.580, 1}, // light brown
	{0.969, 0.714, 0.824, 1}, // light pink
	{0.780, 0.780, 0.780, 1}, // light gray
	{0.859, 0.859, 0.553, 1}, // light olive
	{0.620, 0.855, 0.898, 1}, // light cyan
}

// goldenAngle spaces generated hues so consecutive entries stay distinct.
const goldenAngle = 137.50776405003785

// makePalette returns n categorical colors: the tab20 set, extended with
// HCL-generated hues once the vocabulary outgrows it. Deterministic for a
// given n.
func makePalette(n int) []Color {
	if n <= len(basePalette) {
		return basePalette[:n:n]
	}
	out := make([]Color, n)
	copy(out, basePalette)
	for i := len(basePalette); i < n; i++ {
		h := math.Mod(float64(i)*goldenAngle, 360)
		c := colorful.Hcl(h, 0.6, 0.55).Clamped()
		out[i] = Color{R: c.R, G: c.G, B: c.B, A: 1}
	}
	return out
}

// styleContext is everything needed to resolve one point's visual style.
// It is rebuilt per frame from engine state; resolution itself is pure.
type styleContext struct {
	annot   *Annotation // nil when no annotation is active
	palette []Color

	hidden map[int]bool // vocabulary indices hidden via the legend
	other  map[int]bool // vocabulary indices aggregated into the Other bucket
	zRank  []int        // vocabulary index -> paint rank; higher paints later

	selected  []bool // per point index
	hoverIdx  int    // point index, or -1
	selActive bool   // any selection present

	useShapes bool
	base      float64
	faded     float64
	selOpac   float64
}

// resolve returns the color, shape, opacity, and paint rank for point i.
// Out-of-vocabulary indices fall back to the neutral treatment rather than
// failing the frame.
func (sc *styleContext) resolve(i int) (Color, Shape, float64, int) {
	col := NeutralGray
	shape := ShapeCircle
	rank := -1

	if sc.annot != nil {
		idx := sc.annot.Indices[i]
		switch {
		case idx < 0 || idx >= len(sc.annot.Values):
			// missing or data/legend desync
		case sc.other[idx]:
			col = OtherGray
			rank = sc.rankOf(idx)
		default:
			col = sc.valueColor(idx)
			if sc.useShapes {
				shape = sc.valueShape(idx)
			}
			rank = sc.rankOf(idx)
		}
	}

	opacity := sc.base
	switch {
	case sc.hoverIdx == i || (sc.selActive && sc.selected[i]):
		opacity = sc.selOpac
	case sc.isHidden(i) || (sc.selActive && !sc.selected[i]):
		opacity = sc.faded
	}

	return col, shape, opacity, rank
}

// isHidden reports whether point i's feature value is hidden via the legend.
func (sc *styleContext) isHidden(i int) bool {
	if sc.annot == nil || len(sc.hidden) == 0 {
		return false
	}
	idx := sc.annot.Indices[i]
	return idx >= 0 && sc.hidden[idx]
}

// valueColor returns the declared color for a vocabulary index, or the
// palette entry when the annotation declares none.
func (sc *styleContext) valueColor(idx int) Color {
	if idx < len(sc.annot.Colors) {
		return sc.annot.Colors[idx]
	}
	if idx < len(sc.palette) {
		return sc.palette[idx]
	}
	return NeutralGray
}

// valueShape returns the declared shape for a vocabulary index, cycling
// through the symbol set when the annotation declares none.
func (sc *styleContext) valueShape(idx int) Shape {
	if idx < len(sc.annot.Shapes) {
		return sc.annot.Shapes[idx]
	}
	return Shape(idx % shapeCount)
}

// rankOf returns the paint rank for a vocabulary index. Values absent from
// the z-order mapping rank lowest and paint first.
func (sc *styleContext) rankOf(idx int) int {
	if idx < len(sc.zRank) {
		return sc.zRank[idx]
	}
	return -1
}
