package scatterkit

import "testing"

func TestCallbackRemove(t *testing.T) {
	e := newTestEngine(t, nil)

	var first, second int
	h := e.OnHover(func(HoverContext) { first++ })
	e.OnHover(func(HoverContext) { second++ })

	e.fireHover(HoverContext{})
	h.Remove()
	e.fireHover(HoverContext{})

	if first != 1 {
		t.Errorf("removed handler fired %d times, want 1", first)
	}
	if second != 2 {
		t.Errorf("remaining handler fired %d times, want 2", second)
	}

	// Removing twice is harmless.
	h.Remove()
	e.fireHover(HoverContext{})
	if second != 3 {
		t.Errorf("remaining handler fired %d times after double remove, want 3", second)
	}
}

func TestCallbackRemoveDuringDispatch(t *testing.T) {
	e := newTestEngine(t, nil)

	var first, second, third int
	var h CallbackHandle
	h = e.OnHover(func(HoverContext) {
		first++
		h.Remove()
	})
	e.OnHover(func(HoverContext) { second++ })
	e.OnHover(func(HoverContext) { third++ })

	// Self-removal must not skip or re-invoke the handlers after it.
	e.fireHover(HoverContext{})
	if first != 1 || second != 1 || third != 1 {
		t.Fatalf("counts = (%d, %d, %d) after first dispatch, want (1, 1, 1)", first, second, third)
	}

	e.fireHover(HoverContext{})
	if first != 1 || second != 2 || third != 2 {
		t.Errorf("counts = (%d, %d, %d) after second dispatch, want (1, 2, 2)", first, second, third)
	}
}

func TestZoomEventOnEveryTransformChange(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetDataset(testDataset(t, []Vec2{{X: 0, Y: 0}, {X: 10, Y: 10}}, nil, nil))

	var events []ZoomContext
	e.OnZoom(func(ctx ZoomContext) { events = append(events, ctx) })

	e.Wheel(1, 50, 50)
	e.view.TranslateBy(5, 5)
	e.view.Reset()

	if len(events) != 3 {
		t.Fatalf("zoom events = %d, want 3", len(events))
	}
	if !approxEqual(events[0].Transform.K, 1.1, epsilon) {
		t.Errorf("first event K = %f, want 1.1", events[0].Transform.K)
	}
	if events[2].Transform != identity {
		t.Errorf("last event transform = %+v, want identity after reset", events[2].Transform)
	}
}
