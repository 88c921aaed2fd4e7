package scatterkit

import (
	"fmt"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// newTestEngine builds an engine on the software backend with a 100x100
// viewport and no margins, so pixel positions are easy to reason about.
func newTestEngine(t *testing.T, mod func(*Options)) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.UseCanvas = true
	opts.Width = 100
	opts.Height = 100
	opts.Margin = Margin{}
	if mod != nil {
		mod(&opts)
	}
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

// testDataset builds a single-projection dataset with one "family"
// annotation. catIdx may be nil for an annotation-free dataset.
func testDataset(t *testing.T, coords []Vec2, catIdx []int, values []string) *Dataset {
	t.Helper()
	ids := make([]string, len(coords))
	for i := range ids {
		ids[i] = fmt.Sprintf("pt-%d", i)
	}
	var annots []Annotation
	if catIdx != nil {
		annots = []Annotation{{Name: "family", Values: values, Indices: catIdx}}
	}
	d, err := NewDataset(ids, []Projection{{Name: "umap", Coords: coords}}, annots)
	if err != nil {
		t.Fatalf("NewDataset() error: %v", err)
	}
	return d
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
