package scatterkit

// HoverContext is the payload of a hover-change event. ID is empty when the
// pointer left all points.
type HoverContext struct {
	ID    string
	Value string // active-annotation feature value, "" when missing
	X, Y  float64
}

// ClickContext is the payload of a point-click event. Members lists the full
// duplicate-stack membership when the clicked marker is a stack; it contains
// just ID otherwise. Selection policy belongs to the subscriber.
type ClickContext struct {
	ID        string
	Members   []string
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// BrushContext is the payload of a box-select event.
type BrushContext struct {
	IDs       []string
	Rect      Rect // pixel-space selection rectangle, normalized
	Modifiers KeyModifiers
}

// ZoomContext is the payload of a zoom-change event.
type ZoomContext struct {
	Transform Transform
}

// DatasetContext is the payload of a dataset-change event.
type DatasetContext struct {
	PointCount int
}

type hoverHandler struct {
	id uint32
	fn func(HoverContext)
}

type clickHandler struct {
	id uint32
	fn func(ClickContext)
}

type brushHandler struct {
	id uint32
	fn func(BrushContext)
}

type zoomHandler struct {
	id uint32
	fn func(ZoomContext)
}

type datasetHandler struct {
	id uint32
	fn func(DatasetContext)
}

type handlerRegistry struct {
	hover   []hoverHandler
	click   []clickHandler
	brush   []brushHandler
	zoom    []zoomHandler
	dataset []datasetHandler
	nextID  uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventHover:
		h.reg.hover = removeHandler(h.reg.hover, h.id, func(x hoverHandler) uint32 { return x.id })
	case EventClick:
		h.reg.click = removeHandler(h.reg.click, h.id, func(x clickHandler) uint32 { return x.id })
	case EventBrush:
		h.reg.brush = removeHandler(h.reg.brush, h.id, func(x brushHandler) uint32 { return x.id })
	case EventZoom:
		h.reg.zoom = removeHandler(h.reg.zoom, h.id, func(x zoomHandler) uint32 { return x.id })
	case EventDataset:
		h.reg.dataset = removeHandler(h.reg.dataset, h.id, func(x datasetHandler) uint32 { return x.id })
	}
}

func removeHandler[T any](s []T, id uint32, idOf func(T) uint32) []T {
	for i := range s {
		if idOf(s[i]) == id {
			copy(s[i:], s[i+1:])
			var zero T
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// OnHover registers a callback fired when the hovered point changes.
func (e *Engine) OnHover(fn func(HoverContext)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.hover = append(e.handlers.hover, hoverHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventHover}
}

// OnClick registers a callback fired when a point or stack is clicked.
func (e *Engine) OnClick(fn func(ClickContext)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.click = append(e.handlers.click, clickHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventClick}
}

// OnBrush registers a callback fired when a box-select gesture completes.
func (e *Engine) OnBrush(fn func(BrushContext)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.brush = append(e.handlers.brush, brushHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventBrush}
}

// OnZoom registers a callback fired after every view transform change.
func (e *Engine) OnZoom(fn func(ZoomContext)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.zoom = append(e.handlers.zoom, zoomHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventZoom}
}

// OnDatasetChange registers a callback fired after a dataset snapshot is
// applied.
func (e *Engine) OnDatasetChange(fn func(DatasetContext)) CallbackHandle {
	e.handlers.nextID++
	id := e.handlers.nextID
	e.handlers.dataset = append(e.handlers.dataset, datasetHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &e.handlers, event: EventDataset}
}

// Dispatch iterates a snapshot of the registration list, so a callback that
// removes a handle mid-dispatch cannot shift entries under the loop.

func (e *Engine) fireHover(ctx HoverContext) {
	for _, h := range append([]hoverHandler(nil), e.handlers.hover...) {
		h.fn(ctx)
	}
}

func (e *Engine) fireClick(ctx ClickContext) {
	for _, h := range append([]clickHandler(nil), e.handlers.click...) {
		h.fn(ctx)
	}
}

func (e *Engine) fireBrush(ctx BrushContext) {
	for _, h := range append([]brushHandler(nil), e.handlers.brush...) {
		h.fn(ctx)
	}
}

func (e *Engine) fireZoom(ctx ZoomContext) {
	for _, h := range append([]zoomHandler(nil), e.handlers.zoom...) {
		h.fn(ctx)
	}
}

func (e *Engine) fireDataset(ctx DatasetContext) {
	for _, h := range append([]datasetHandler(nil), e.handlers.dataset...) {
		h.fn(ctx)
	}
}
