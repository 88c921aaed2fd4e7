package scatterkit

import "math"

// defaultDragDeadZone is the movement in pixels below which a press-release
// still counts as a click.
const defaultDragDeadZone = 4.0

// gesturePhase tracks the pointer state machine.
type gesturePhase uint8

const (
	phaseIdle     gesturePhase = iota
	phasePressed               // button down, movement below the dead zone
	phasePanning               // drag delegated to the view
	phaseBrushing              // drag drawing a box-select rectangle
)

type pointerState struct {
	phase          gesturePhase
	button         MouseButton
	startX, startY float64
	lastX, lastY   float64
}

// PointerDown feeds a button press into the gesture state machine. Whether
// the gesture becomes a click, a pan, or a brush is decided by subsequent
// movement.
func (e *Engine) PointerDown(x, y float64, button MouseButton, mods KeyModifiers) {
	p := &e.pointer
	p.phase = phasePressed
	p.button = button
	p.startX, p.startY = x, y
	p.lastX, p.lastY = x, y
}

// PointerMove feeds pointer movement in. While idle it probes for hover;
// during a press it promotes the gesture to panning or brushing once the
// dead zone is exceeded.
func (e *Engine) PointerMove(x, y float64, mods KeyModifiers) {
	p := &e.pointer

	switch p.phase {
	case phaseIdle:
		idx, ok := e.hitTest(x, y)
		if !ok {
			e.setHover(-1, x, y)
		} else {
			e.setHover(e.stackRep(idx), x, y)
		}

	case phasePressed:
		dx := x - p.startX
		dy := y - p.startY
		if math.Hypot(dx, dy) > defaultDragDeadZone {
			if e.opts.SelectionMode == ModeBrush && p.button == MouseButtonLeft {
				p.phase = phaseBrushing
				e.dirty = true
			} else {
				p.phase = phasePanning
				e.view.TranslateBy(x-p.lastX, y-p.lastY)
			}
		}

	case phasePanning:
		e.view.TranslateBy(x-p.lastX, y-p.lastY)

	case phaseBrushing:
		e.dirty = true
	}

	p.lastX, p.lastY = x, y
}

// PointerUp completes the gesture: a click resolves the topmost point under
// the pointer, a brush reports every point inside the rectangle. The engine
// emits events only; selection policy belongs to the subscriber.
func (e *Engine) PointerUp(x, y float64, mods KeyModifiers) {
	p := &e.pointer
	phase := p.phase
	p.phase = phaseIdle

	switch phase {
	case phasePressed:
		idx, ok := e.hitTest(x, y)
		if !ok {
			return
		}
		ctx := ClickContext{
			X: x, Y: y,
			Button:    p.button,
			Modifiers: mods,
		}
		if si := e.stackOf(idx); si >= 0 {
			s := &e.stacks[si]
			ctx.ID = e.dataset.ID(s.Rep)
			ctx.Members = make([]string, len(s.Members))
			for i, m := range s.Members {
				ctx.Members[i] = e.dataset.ID(m)
			}
		} else {
			ctx.ID = e.dataset.ID(idx)
			ctx.Members = []string{ctx.ID}
		}
		e.fireClick(ctx)

	case phaseBrushing:
		rect := Rect{
			X: p.startX, Y: p.startY,
			Width:  x - p.startX,
			Height: y - p.startY,
		}.normalized()
		e.dirty = true
		e.fireBrush(BrushContext{
			IDs:       e.pointsInRect(rect),
			Rect:      rect,
			Modifiers: mods,
		})
	}
}

// SetSelectionMode switches what a pointer drag does. A brush gesture
// already in progress is unaffected.
func (e *Engine) SetSelectionMode(m SelectionMode) {
	e.opts.SelectionMode = m
}

// SelectionModeActive returns the current drag behavior.
func (e *Engine) SelectionModeActive() SelectionMode {
	return e.opts.SelectionMode
}

// Wheel zooms around the cursor position. Positive deltas zoom in.
func (e *Engine) Wheel(delta, x, y float64) {
	if delta == 0 {
		return
	}
	anchor := Vec2{X: x, Y: y}
	e.view.ScaleBy(math.Pow(1.1, delta), &anchor)
}

// BrushRect returns the in-progress box-select rectangle, if a brush gesture
// is active. Hosts use it to draw the selection overlay.
func (e *Engine) BrushRect() (Rect, bool) {
	p := &e.pointer
	if p.phase != phaseBrushing {
		return Rect{}, false
	}
	return Rect{
		X: p.startX, Y: p.startY,
		Width:  p.lastX - p.startX,
		Height: p.lastY - p.startY,
	}.normalized(), true
}

// --- Hit testing ---

// buildHitGrid buckets this frame's pixel positions for nearest-point
// queries. Cell size at least the full hit radius so a 3x3 neighborhood scan
// covers every candidate.
func (e *Engine) buildHitGrid() {
	e.hitCell = e.opts.HitRadiusPx + e.opts.PointSize/2
	if e.hitCell < 8 {
		e.hitCell = 8
	}
	e.hitGrid = make(map[uint64][]int, len(e.pixels)/2+1)
	for i, p := range e.pixels {
		cx := int64(math.Floor(p.X / e.hitCell))
		cy := int64(math.Floor(p.Y / e.hitCell))
		k := cellKey(cx, cy)
		e.hitGrid[k] = append(e.hitGrid[k], i)
	}
}

// hitTest finds the point nearest to (x, y) within the hit radius. The
// smallest pixel distance wins; exact distance ties break toward the higher
// paint rank, then the later dataset index, matching the draw pass's visual
// winner. Queries are read-only and therefore idempotent between frames.
func (e *Engine) hitTest(x, y float64) (int, bool) {
	if len(e.hitGrid) == 0 {
		return -1, false
	}
	radius := e.opts.HitRadiusPx + e.opts.PointSize/2

	cx := int64(math.Floor(x / e.hitCell))
	cy := int64(math.Floor(y / e.hitCell))

	best := -1
	bestDist := math.Inf(1)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, i := range e.hitGrid[cellKey(cx+dx, cy+dy)] {
				d := math.Hypot(e.pixels[i].X-x, e.pixels[i].Y-y)
				if d > radius {
					continue
				}
				if d < bestDist || (d == bestDist && e.topmost(i, best)) {
					best = i
					bestDist = d
				}
			}
		}
	}
	if best < 0 {
		return -1, false
	}
	return best, true
}

// topmost reports whether point a paints over point b.
func (e *Engine) topmost(a, b int) bool {
	if b < 0 {
		return true
	}
	if e.rank[a] != e.rank[b] {
		return e.rank[a] > e.rank[b]
	}
	return a > b
}

// stackOf returns the slot of the multi-member stack containing point i,
// or -1.
func (e *Engine) stackOf(i int) int {
	if i < 0 || i >= len(e.inStack) {
		return -1
	}
	return e.inStack[i]
}

// stackRep maps a point to its stack's topmost representative; singletons
// map to themselves.
func (e *Engine) stackRep(i int) int {
	if si := e.stackOf(i); si >= 0 {
		return e.stacks[si].Rep
	}
	return i
}

// pointsInRect returns the identifiers of all points whose rendered pixel
// position falls within the rectangle, bounds inclusive, in dataset order.
func (e *Engine) pointsInRect(r Rect) []string {
	var ids []string
	for i, p := range e.pixels {
		if r.Contains(p.X, p.Y) {
			ids = append(ids, e.dataset.ID(i))
		}
	}
	return ids
}
