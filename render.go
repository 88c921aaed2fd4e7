package scatterkit

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
)

// stackCacheSize bounds the number of memoised stack layouts.
const stackCacheSize = 64

// Engine owns the loaded dataset, the view, all legend-driven visual state,
// and the per-frame draw pass. All mutations are synchronous calls from the
// interaction loop; redraw is requested via a dirty flag and performed at
// most once per Update tick, last state wins.
type Engine struct {
	opts Options
	log  *log.Logger

	backend Backend

	view   *View
	scales ScalePair

	dataset    *Dataset
	gen        uint64
	styleEpoch uint64

	proj  int
	annot int // -1 when no annotation is active

	palette    []Color
	hidden     map[int]bool
	otherExpl  map[int]bool // explicit Other-bucket membership from the legend
	other      map[int]bool // effective Other set (explicit + beyond max visible)
	zRank      []int
	maxVisible int // 0 = unlimited

	selection map[string]struct{}
	selected  []bool // per point index, rebuilt on selection/dataset change
	hoverIdx  int

	stackCache *lru.Cache[stackKey, []stack]

	handlers handlerRegistry
	pointer  pointerState

	dirty    bool
	frame    []Mark
	buildBuf []Mark
	pixels   []Vec2
	rank     []int
	order    []int
	stacks   []stack
	inStack  []int // point index -> stack slot, -1 for singletons
	hitGrid  map[uint64][]int
	hitCell  float64

	pendingMu   sync.Mutex
	pendingData *Dataset
	loadGen     atomic.Uint64

	frameHook func() // runs inside the guarded frame build; test seam
}

// New creates an Engine with the given options. The GPU backend is selected
// unless UseCanvas is set; if it cannot initialise, the engine degrades to
// the software canvas backend instead of failing.
func New(opts Options) (*Engine, error) {
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	cache, err := lru.New[stackKey, []stack](stackCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create stack cache: %w", err)
	}

	e := &Engine{
		opts:       opts,
		log:        newLogger(io.Discard, log.InfoLevel),
		annot:      -1,
		hoverIdx:   -1,
		selection:  make(map[string]struct{}),
		stackCache: cache,
		dirty:      true,
	}

	e.view = newView(opts.ZoomExtent, Rect{Width: float64(opts.Width), Height: float64(opts.Height)})
	e.view.onChange = func() {
		e.dirty = true
		e.fireZoom(ZoomContext{Transform: e.view.t})
	}

	if opts.UseCanvas {
		e.backend = NewCanvasBackend(opts.Width, opts.Height)
	} else {
		gpu, err := newGPUBackend(opts.Width, opts.Height)
		if err != nil {
			e.log.Warn("GPU backend unavailable, falling back to canvas", "err", err)
			e.backend = NewCanvasBackend(opts.Width, opts.Height)
		} else {
			e.backend = gpu
		}
	}

	return e, nil
}

// SetLogger replaces the engine's logger. The default discards everything.
func (e *Engine) SetLogger(l *log.Logger) {
	if l != nil {
		e.log = l
	}
}

// View returns the transform controller.
func (e *Engine) View() *View { return e.view }

// Dataset returns the current dataset snapshot, or nil before the first load.
func (e *Engine) Dataset() *Dataset { return e.dataset }

// Backend returns the active rendering backend.
func (e *Engine) Backend() Backend { return e.backend }

// --- State mutations ---

// SetDataset atomically replaces the dataset. Selection entries whose
// identifiers do not survive the reload are dropped; hover state, scales,
// and the active projection/annotation slots are re-resolved against the
// new snapshot.
func (e *Engine) SetDataset(d *Dataset) {
	e.dataset = d
	e.gen++
	e.hoverIdx = -1
	e.proj = 0
	e.annot = -1
	if d != nil && len(d.annots) > 0 {
		e.setAnnotationSlot(0)
	} else {
		e.resetAnnotationState(0)
	}

	for id := range e.selection {
		if d.IndexOf(id) < 0 {
			delete(e.selection, id)
		}
	}
	e.rebuildSelected()
	e.refitScales()
	e.dirty = true
	e.log.Info("dataset applied", "points", d.Len(), "generation", e.gen)
	e.fireDataset(DatasetContext{PointCount: d.Len()})
}

// SetProjection switches the active projection by name.
func (e *Engine) SetProjection(name string) error {
	if e.dataset == nil {
		return fmt.Errorf("no dataset loaded")
	}
	i := e.dataset.projectionIndex(name)
	if i < 0 {
		return fmt.Errorf("unknown projection %q", name)
	}
	if i == e.proj {
		return nil
	}
	e.proj = i
	e.styleEpoch++
	e.refitScales()
	e.dirty = true
	return nil
}

// SetAnnotation switches the active annotation by name. Legend-driven state
// (hidden values, z-order, Other bucket) resets to the new vocabulary.
func (e *Engine) SetAnnotation(name string) error {
	if e.dataset == nil {
		return fmt.Errorf("no dataset loaded")
	}
	i := e.dataset.annotationIndex(name)
	if i < 0 {
		return fmt.Errorf("unknown annotation %q", name)
	}
	e.setAnnotationSlot(i)
	e.dirty = true
	return nil
}

func (e *Engine) setAnnotationSlot(i int) {
	e.annot = i
	e.resetAnnotationState(len(e.dataset.annots[i].Values))
}

func (e *Engine) resetAnnotationState(vocabSize int) {
	e.palette = makePalette(vocabSize)
	e.hidden = make(map[int]bool)
	e.otherExpl = make(map[int]bool)
	e.zRank = make([]int, vocabSize)
	for v := range e.zRank {
		e.zRank[v] = v
	}
	e.maxVisible = 0
	e.rebuildOther()
	e.styleEpoch++
}

// SetHiddenValues replaces the hidden-value set with the named feature
// values. Hidden points keep their feature indices and stay in the dataset;
// they render at the faded opacity on the next frame.
func (e *Engine) SetHiddenValues(values []string) {
	e.hidden = e.vocabSet(values)
	e.dirty = true
}

// SetZOrder installs a legend-driven paint order: values later in the slice
// paint later and win visually where stacks overlap. Values absent from the
// slice paint first.
func (e *Engine) SetZOrder(values []string) {
	if e.annot < 0 {
		return
	}
	an := &e.dataset.annots[e.annot]
	for v := range e.zRank {
		e.zRank[v] = -1
	}
	for pos, name := range values {
		for v, val := range an.Values {
			if val == name {
				e.zRank[v] = pos
			}
		}
	}
	e.styleEpoch++
	e.rebuildOther()
	e.dirty = true
}

// SetOtherBucket declares the feature values aggregated into the "Other"
// bucket. Membership is an input from the legend, not derived here.
func (e *Engine) SetOtherBucket(values []string) {
	e.otherExpl = e.vocabSet(values)
	e.rebuildOther()
	e.styleEpoch++
	e.dirty = true
}

// SetMaxVisibleValues caps how many distinct values keep their own color;
// values ranked beyond the cap join the Other bucket. 0 removes the cap.
func (e *Engine) SetMaxVisibleValues(n int) {
	e.maxVisible = n
	e.rebuildOther()
	e.styleEpoch++
	e.dirty = true
}

// rebuildOther merges explicit Other membership with the max-visible cap.
func (e *Engine) rebuildOther() {
	e.other = make(map[int]bool, len(e.otherExpl))
	for v := range e.otherExpl {
		e.other[v] = true
	}
	if e.maxVisible > 0 {
		for v, r := range e.zRank {
			if r >= e.maxVisible {
				e.other[v] = true
			}
		}
	}
}

// vocabSet resolves feature value names to vocabulary indices of the active
// annotation. Unknown names are ignored.
func (e *Engine) vocabSet(values []string) map[int]bool {
	set := make(map[int]bool, len(values))
	if e.annot < 0 {
		return set
	}
	an := &e.dataset.annots[e.annot]
	for _, name := range values {
		for v, val := range an.Values {
			if val == name {
				set[v] = true
			}
		}
	}
	return set
}

// SetSelection replaces the selection set programmatically. Identifiers not
// present in the dataset are ignored.
func (e *Engine) SetSelection(ids []string) {
	e.selection = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if e.dataset.IndexOf(id) >= 0 {
			e.selection[id] = struct{}{}
		}
	}
	e.rebuildSelected()
	e.dirty = true
}

// ClearSelection empties the selection set.
func (e *Engine) ClearSelection() {
	e.SetSelection(nil)
}

// Selection returns the selected identifiers in dataset order.
func (e *Engine) Selection() []string {
	out := make([]string, 0, len(e.selection))
	for i := 0; i < e.dataset.Len(); i++ {
		if _, ok := e.selection[e.dataset.ID(i)]; ok {
			out = append(out, e.dataset.ID(i))
		}
	}
	return out
}

func (e *Engine) rebuildSelected() {
	n := e.dataset.Len()
	if cap(e.selected) < n {
		e.selected = make([]bool, n)
	}
	e.selected = e.selected[:n]
	for i := range e.selected {
		e.selected[i] = false
	}
	for id := range e.selection {
		if i := e.dataset.IndexOf(id); i >= 0 {
			e.selected[i] = true
		}
	}
}

// setHover updates the hovered point and fires the hover-change event. Only
// a changed identifier emits; repeated probes of the same point are silent.
func (e *Engine) setHover(idx int, x, y float64) {
	if idx == e.hoverIdx {
		return
	}
	e.hoverIdx = idx
	e.dirty = true

	var ctx HoverContext
	if idx >= 0 {
		ctx = HoverContext{ID: e.dataset.ID(idx), X: x, Y: y}
		if e.annot >= 0 {
			ctx.Value = e.dataset.Value(e.annot, idx)
		}
	}
	e.fireHover(ctx)
}

// Resize updates the viewport size. Scales refit to the new plot area; the
// transform is left untouched.
func (e *Engine) Resize(width, height int) {
	if width == e.opts.Width && height == e.opts.Height {
		return
	}
	e.opts.Width = width
	e.opts.Height = height
	e.view.setViewport(Rect{Width: float64(width), Height: float64(height)})
	e.backend.Resize(width, height)
	e.refitScales()
	e.dirty = true
}

// refitScales recomputes the axis scales from the active projection extent.
// Refitting moves every rendered pixel, so memoised stack layouts keyed on
// the old scales must not be reused.
func (e *Engine) refitScales() {
	var coords []Vec2
	if e.dataset != nil && e.proj < len(e.dataset.projs) {
		coords = e.dataset.projs[e.proj].Coords
	}
	e.scales = FitScales(coords, float64(e.opts.Width), float64(e.opts.Height), e.opts.Margin, e.opts.PaddingFrac)
	e.styleEpoch++
}

// --- Coordinate mapping ---

// DataToScreen maps a data-space point through scale and transform to device
// pixels.
func (e *Engine) DataToScreen(p Vec2) Vec2 {
	return e.view.t.Apply(e.scales.Apply(p))
}

// ScreenToData maps a device pixel back to data space.
func (e *Engine) ScreenToData(p Vec2) Vec2 {
	return e.scales.Invert(e.view.t.Invert(p))
}

// --- Frame pass ---

// Update advances one tick of the interaction loop: applies any completed
// async dataset load, advances navigation tweens, and rebuilds the frame if
// any mutation marked it dirty. Multiple mutations within a tick coalesce
// into a single rebuild.
func (e *Engine) Update(dt float64) {
	e.consumePending()
	e.view.update(float32(dt))
	if !e.dirty {
		return
	}
	e.dirty = false
	e.rebuildFrame()
}

// Render submits the current frame to the backend. A backend failure is
// logged, never propagated as a panic.
func (e *Engine) Render() error {
	if err := e.backend.Render(e.frame); err != nil {
		e.log.Error("render failed", "err", err)
		return err
	}
	return nil
}

// Frame returns the current draw batch. Valid until the next rebuild.
func (e *Engine) Frame() []Mark { return e.frame }

// rebuildFrame runs the guarded frame build. A panic during the build is
// logged and leaves the previous valid frame in place.
func (e *Engine) rebuildFrame() {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("frame build failed, keeping previous frame", "panic", r)
		}
	}()
	if e.frameHook != nil {
		e.frameHook()
	}
	e.buildBuf = e.buildFrame(e.buildBuf[:0])
	e.frame, e.buildBuf = e.buildBuf, e.frame
}

// buildFrame produces the draw batch for the current state. It renders
// nothing for an empty dataset or zero-area viewport.
func (e *Engine) buildFrame(marks []Mark) []Mark {
	n := e.dataset.Len()
	if n == 0 || e.opts.Width <= 0 || e.opts.Height <= 0 {
		e.pixels = e.pixels[:0]
		e.order = e.order[:0]
		e.stacks = nil
		e.hitGrid = nil
		return marks
	}

	t := e.view.t // consistent snapshot for the whole frame
	coords := e.dataset.projs[e.proj].Coords

	if cap(e.pixels) < n {
		e.pixels = make([]Vec2, n)
		e.rank = make([]int, n)
		e.order = make([]int, n)
		e.inStack = make([]int, n)
	}
	e.pixels = e.pixels[:n]
	e.rank = e.rank[:n]
	e.order = e.order[:n]
	e.inStack = e.inStack[:n]

	sc := e.styleContext()

	for i := 0; i < n; i++ {
		e.pixels[i] = t.Apply(e.scales.Apply(coords[i]))
		e.order[i] = i
		e.rank[i] = -1
		e.inStack[i] = -1
		if sc.annot != nil {
			idx := sc.annot.Indices[i]
			if idx >= 0 && idx < len(sc.annot.Values) {
				e.rank[i] = sc.rankOf(idx)
			}
		}
	}

	// Paint order: lower ranks first so later categories win visually.
	// Stable by dataset index for deterministic ties.
	sort.SliceStable(e.order, func(a, b int) bool {
		return e.rank[e.order[a]] < e.rank[e.order[b]]
	})

	e.resolveFrameStacks(t)
	e.buildHitGrid()

	viewRect := Rect{
		X: -e.opts.PointSize, Y: -e.opts.PointSize,
		Width:  float64(e.opts.Width) + 2*e.opts.PointSize,
		Height: float64(e.opts.Height) + 2*e.opts.PointSize,
	}
	badges := e.opts.EnableDuplicateStackUI && t.K >= e.opts.StackBadgeMinZoom

	for _, i := range e.order {
		pos := e.pixels[i]
		badge := 0

		if si := e.inStack[i]; si >= 0 {
			s := &e.stacks[si]
			if s.Rep != i {
				continue // stack renders once, at its representative
			}
			pos = e.stackPos(s)
			if badges {
				badge = s.Count()
			}
		}

		if !viewRect.Contains(pos.X, pos.Y) {
			continue
		}

		col, shape, opacity, _ := sc.resolve(i)
		marks = append(marks, Mark{
			X: pos.X, Y: pos.Y,
			Size:    e.opts.PointSize,
			Color:   col,
			Shape:   shape,
			Opacity: opacity,
			Badge:   badge,
		})
	}
	return marks
}

// styleContext snapshots the legend/selection state for one frame.
func (e *Engine) styleContext() styleContext {
	sc := styleContext{
		palette:   e.palette,
		hidden:    e.hidden,
		other:     e.other,
		zRank:     e.zRank,
		selected:  e.selected,
		hoverIdx:  e.hoverIdx,
		selActive: len(e.selection) > 0,
		useShapes: e.opts.UseShapes,
		base:      e.opts.BaseOpacity,
		faded:     e.opts.FadedOpacity,
		selOpac:   e.opts.SelectedOpacity,
	}
	if e.annot >= 0 {
		sc.annot = &e.dataset.annots[e.annot]
	}
	return sc
}

// resolveFrameStacks computes or reuses the duplicate-stack grouping for the
// current transform and fills the point->stack mapping. Grouping is memoised
// per quantised transform; marker positions are always recomputed from the
// current pixel positions.
func (e *Engine) resolveFrameStacks(t Transform) {
	e.stacks = nil
	if !e.opts.EnableDuplicateStackUI {
		return
	}

	qk, qx, qy := quantiseTransform(t)
	key := stackKey{gen: e.gen, epoch: e.styleEpoch, qk: qk, qx: qx, qy: qy}

	stacks, ok := e.stackCache.Get(key)
	if !ok {
		stacks = resolveStacks(e.pixels, e.order, e.opts.StackEpsilonPx)
		e.stackCache.Add(key, stacks)
	}
	e.stacks = stacks

	for si := range e.stacks {
		s := &e.stacks[si]
		if s.Count() < 2 {
			continue
		}
		for _, i := range s.Members {
			e.inStack[i] = si
		}
	}
}

// stackPos returns the averaged member position from this frame's pixels.
func (e *Engine) stackPos(s *stack) Vec2 {
	var sx, sy float64
	for _, i := range s.Members {
		sx += e.pixels[i].X
		sy += e.pixels[i].Y
	}
	n := float64(len(s.Members))
	return Vec2{X: sx / n, Y: sy / n}
}

// --- Export ---

// ExportPNG renders the current frame through the software raster path and
// writes it as PNG. The export never touches the GPU backend, so no pipeline
// fencing is needed before readback.
func (e *Engine) ExportPNG(w io.Writer) error {
	if cb, ok := e.backend.(*CanvasBackend); ok {
		if err := cb.Render(e.frame); err != nil {
			return err
		}
		return cb.EncodePNG(w)
	}
	cb := NewCanvasBackend(e.opts.Width, e.opts.Height)
	if err := cb.Render(e.frame); err != nil {
		return err
	}
	return cb.EncodePNG(w)
}
