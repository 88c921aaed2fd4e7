package scatterkit

import (
	"math/rand"
	"testing"

	"github.com/tanema/gween/ease"
)

func newTestView() *View {
	return newView(ZoomExtent{Min: 0.5, Max: 200}, Rect{Width: 100, Height: 100})
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{K: 3.5, X: -40, Y: 17}
	p := Vec2{X: 12.25, Y: -3.75}
	got := tr.Invert(tr.Apply(p))
	if !approxEqual(got.X, p.X, epsilon) || !approxEqual(got.Y, p.Y, epsilon) {
		t.Errorf("roundtrip = (%f, %f), want (%f, %f)", got.X, got.Y, p.X, p.Y)
	}
}

func TestScaleByAnchorInvariant(t *testing.T) {
	v := newTestView()
	v.SetTransform(2, 13, -8)

	anchor := Vec2{X: 30, Y: 40}
	before := v.t.Invert(anchor)
	v.ScaleBy(3, &anchor)
	after := v.t.Invert(anchor)

	if !approxEqual(after.X, before.X, epsilon) || !approxEqual(after.Y, before.Y, epsilon) {
		t.Errorf("anchor moved: before (%f, %f), after (%f, %f)", before.X, before.Y, after.X, after.Y)
	}
	if !approxEqual(v.t.K, 6, epsilon) {
		t.Errorf("K = %f, want 6", v.t.K)
	}
}

func TestScaleByClampsUnderExtremeSequences(t *testing.T) {
	v := newTestView()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		factor := rng.Float64()*20 + 0.001
		if rng.Intn(2) == 0 {
			factor = 1 / factor
		}
		anchor := Vec2{X: rng.Float64() * 100, Y: rng.Float64() * 100}
		v.ScaleBy(factor, &anchor)
		if v.t.K < v.extent.Min || v.t.K > v.extent.Max {
			t.Fatalf("step %d: K = %f outside [%f, %f]", i, v.t.K, v.extent.Min, v.extent.Max)
		}
	}
}

func TestScaleByNoOpWhenAlreadyClamped(t *testing.T) {
	v := newTestView()
	changes := 0
	v.onChange = func() { changes++ }

	v.SetTransform(200, 0, 0)
	if changes != 1 {
		t.Fatalf("changes after SetTransform = %d, want 1", changes)
	}
	v.ScaleBy(2, nil)
	if changes != 1 {
		t.Errorf("changes after clamped ScaleBy = %d, want 1", changes)
	}
	if v.t.K != 200 {
		t.Errorf("K = %f, want 200", v.t.K)
	}
}

func TestTranslateBy(t *testing.T) {
	v := newTestView()
	v.TranslateBy(5, -3)
	v.TranslateBy(2, 2)
	if !approxEqual(v.t.X, 7, epsilon) || !approxEqual(v.t.Y, -1, epsilon) {
		t.Errorf("translation = (%f, %f), want (7, -1)", v.t.X, v.t.Y)
	}
}

func TestSetTransformClampsK(t *testing.T) {
	v := newTestView()
	v.SetTransform(1000, 3, 4)
	if v.t.K != 200 {
		t.Errorf("K = %f, want clamped to 200", v.t.K)
	}
	v.SetTransform(0.001, 0, 0)
	if v.t.K != 0.5 {
		t.Errorf("K = %f, want clamped to 0.5", v.t.K)
	}
}

func TestResetRestoresIdentity(t *testing.T) {
	v := newTestView()
	v.ScaleBy(8, &Vec2{X: 20, Y: 70})
	v.TranslateBy(-33, 91)
	v.Reset()
	if v.t != identity {
		t.Errorf("transform after Reset = %+v, want identity", v.t)
	}
}

func TestAnimateResetConverges(t *testing.T) {
	v := newTestView()
	v.SetTransform(8, 50, -30)
	v.AnimateReset(0.5, ease.Linear)

	for i := 0; i < 100; i++ {
		v.update(1.0 / 60)
	}
	if !approxEqual(v.t.K, 1, 1e-3) || !approxEqual(v.t.X, 0, 1e-3) || !approxEqual(v.t.Y, 0, 1e-3) {
		t.Errorf("transform after animation = %+v, want identity", v.t)
	}
	if v.anim != nil {
		t.Error("animation still active after completion")
	}
}

func TestAnimateToReplacesRunningAnimation(t *testing.T) {
	v := newTestView()
	v.AnimateTo(10, 0, 0, 1, ease.Linear)
	v.update(1.0 / 60)
	v.AnimateTo(2, 5, 5, 0.1, ease.Linear)

	for i := 0; i < 60; i++ {
		v.update(1.0 / 60)
	}
	if !approxEqual(v.t.K, 2, 1e-3) {
		t.Errorf("K = %f, want 2 from the replacing animation", v.t.K)
	}
}

func TestWheelZoomsAroundCursor(t *testing.T) {
	e := newTestEngine(t, nil)
	e.SetDataset(testDataset(t, []Vec2{{X: 0, Y: 0}, {X: 10, Y: 10}}, nil, nil))

	before := e.ScreenToData(Vec2{X: 30, Y: 60})
	e.Wheel(1, 30, 60)
	after := e.ScreenToData(Vec2{X: 30, Y: 60})

	if !approxEqual(e.view.t.K, 1.1, epsilon) {
		t.Errorf("K = %f, want 1.1", e.view.t.K)
	}
	if !approxEqual(after.X, before.X, 1e-9) || !approxEqual(after.Y, before.Y, 1e-9) {
		t.Errorf("cursor data point moved: before (%f, %f), after (%f, %f)", before.X, before.Y, after.X, after.Y)
	}
}
