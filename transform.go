package scatterkit

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Transform is the zoom/pan state applied after the axis scales: a uniform
// scale factor K and a pixel-space translation. Components other than the
// View must treat it as read-only for the duration of a frame.
type Transform struct {
	K, X, Y float64
}

// identity is the untransformed view.
var identity = Transform{K: 1}

// Apply maps a scaled pixel position through the transform.
func (t Transform) Apply(p Vec2) Vec2 {
	return Vec2{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen position back to the scaled pixel position.
func (t Transform) Invert(p Vec2) Vec2 {
	if t.K == 0 {
		return p
	}
	return Vec2{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// navAnim holds active navigation tweens for the view's K, X, and Y.
type navAnim struct {
	tweenK *gween.Tween
	tweenX *gween.Tween
	tweenY *gween.Tween
}

// View owns the current transform and is the only component allowed to
// mutate it. Every mutation clamps K to the configured zoom extent, requests
// exactly one coalesced redraw, and fires a zoom-change event.
type View struct {
	t        Transform
	extent   ZoomExtent
	viewport Rect

	anim *navAnim

	// onChange is invoked after every applied mutation. The engine wires it
	// to its dirty flag and zoom event dispatch.
	onChange func()
}

// newView creates a View at the identity transform.
func newView(extent ZoomExtent, viewport Rect) *View {
	return &View{t: identity, extent: extent, viewport: viewport}
}

// Transform returns the current transform snapshot.
func (v *View) Transform() Transform { return v.t }

// clampK bounds a scale factor to the configured zoom extent.
func (v *View) clampK(k float64) float64 {
	if k < v.extent.Min {
		return v.extent.Min
	}
	if k > v.extent.Max {
		return v.extent.Max
	}
	return k
}

// ScaleBy multiplies the scale factor and adjusts the translation so the
// anchor pixel stays fixed under the new scale. A nil anchor uses the
// viewport center.
func (v *View) ScaleBy(factor float64, anchor *Vec2) {
	a := Vec2{
		X: v.viewport.X + v.viewport.Width/2,
		Y: v.viewport.Y + v.viewport.Height/2,
	}
	if anchor != nil {
		a = *anchor
	}

	k := v.clampK(v.t.K * factor)
	if k == v.t.K {
		return
	}

	// Keep the scaled-space point under the anchor invariant:
	// (a - X) / K == (a - X') / K'
	ratio := k / v.t.K
	v.t.X = a.X - (a.X-v.t.X)*ratio
	v.t.Y = a.Y - (a.Y-v.t.Y)*ratio
	v.t.K = k
	v.changed()
}

// TranslateBy shifts the view by pixel deltas. Translation is unclamped.
func (v *View) TranslateBy(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	v.t.X += dx
	v.t.Y += dy
	v.changed()
}

// SetTransform sets the transform absolutely; K is still clamped to the
// zoom extent. Used for reset-view and programmatic navigation.
func (v *View) SetTransform(k, x, y float64) {
	v.t = Transform{K: v.clampK(k), X: x, Y: y}
	v.changed()
}

// Reset restores the identity transform, which shows the full fitted extent
// since the axis scales already map all points into the plot area.
func (v *View) Reset() {
	v.anim = nil
	v.SetTransform(1, 0, 0)
}

// AnimateTo tweens the view to the given transform over duration seconds.
// Any navigation animation already running is replaced.
func (v *View) AnimateTo(k, x, y float64, duration float32, easeFn ease.TweenFunc) {
	k = v.clampK(k)
	v.anim = &navAnim{
		tweenK: gween.New(float32(v.t.K), float32(k), duration, easeFn),
		tweenX: gween.New(float32(v.t.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(v.t.Y), float32(y), duration, easeFn),
	}
}

// AnimateReset tweens back to the identity transform.
func (v *View) AnimateReset(duration float32, easeFn ease.TweenFunc) {
	v.AnimateTo(1, 0, 0, duration, easeFn)
}

// update advances any navigation animation. Called once per engine tick.
func (v *View) update(dt float32) {
	if v.anim == nil {
		return
	}
	k, doneK := v.anim.tweenK.Update(dt)
	x, doneX := v.anim.tweenX.Update(dt)
	y, doneY := v.anim.tweenY.Update(dt)
	v.t = Transform{K: v.clampK(float64(k)), X: float64(x), Y: float64(y)}
	if doneK && doneX && doneY {
		v.anim = nil
	}
	v.changed()
}

// setViewport updates the viewport rectangle used as the default zoom anchor.
func (v *View) setViewport(r Rect) {
	v.viewport = r
}

func (v *View) changed() {
	if v.onChange != nil {
		v.onChange()
	}
}
