package scatterkit

import (
	"math"
	"reflect"
	"testing"
)

func TestNewDatasetValidation(t *testing.T) {
	ok := []Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}}

	cases := []struct {
		name   string
		ids    []string
		projs  []Projection
		annots []Annotation
	}{
		{
			name:  "no projections",
			ids:   []string{"a", "b"},
			projs: nil,
		},
		{
			name:  "duplicate identifier",
			ids:   []string{"a", "a"},
			projs: []Projection{{Name: "p", Coords: ok}},
		},
		{
			name:  "coord count mismatch",
			ids:   []string{"a", "b"},
			projs: []Projection{{Name: "p", Coords: ok[:1]}},
		},
		{
			name:  "non-finite coordinate",
			ids:   []string{"a", "b"},
			projs: []Projection{{Name: "p", Coords: []Vec2{{X: math.NaN()}, {X: 1}}}},
		},
		{
			name:   "index count mismatch",
			ids:    []string{"a", "b"},
			projs:  []Projection{{Name: "p", Coords: ok}},
			annots: []Annotation{{Name: "f", Values: []string{"v"}, Indices: []int{0}}},
		},
		{
			name:   "index outside vocabulary",
			ids:    []string{"a", "b"},
			projs:  []Projection{{Name: "p", Coords: ok}},
			annots: []Annotation{{Name: "f", Values: []string{"v"}, Indices: []int{0, 3}}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewDataset(tc.ids, tc.projs, tc.annots); err == nil {
				t.Error("NewDataset() = nil error, want validation failure")
			}
		})
	}
}

func TestNewDatasetAcceptsMissingValues(t *testing.T) {
	d, err := NewDataset([]string{"a", "b"},
		[]Projection{{Name: "p", Coords: []Vec2{{}, {X: 1, Y: 1}}}},
		[]Annotation{{Name: "f", Values: []string{"v"}, Indices: []int{MissingValue, 0}}},
	)
	if err != nil {
		t.Fatalf("NewDataset() error: %v", err)
	}
	if got := d.Value(0, 0); got != "" {
		t.Errorf("Value(0, 0) = %q, want empty for a missing value", got)
	}
	if got := d.Value(0, 1); got != "v" {
		t.Errorf("Value(0, 1) = %q, want v", got)
	}
}

func TestDatasetLookups(t *testing.T) {
	var nilDS *Dataset
	if nilDS.Len() != 0 {
		t.Errorf("nil Len() = %d, want 0", nilDS.Len())
	}
	if nilDS.IndexOf("a") != -1 {
		t.Errorf("nil IndexOf = %d, want -1", nilDS.IndexOf("a"))
	}

	d, err := NewDataset([]string{"a", "b", "c"},
		[]Projection{
			{Name: "umap", Coords: []Vec2{{}, {X: 1}, {X: 2}}},
			{Name: "pca", Coords: []Vec2{{}, {Y: 1}, {Y: 2}}},
		},
		[]Annotation{{Name: "family", Values: []string{"v"}, Indices: []int{0, 0, 0}}},
	)
	if err != nil {
		t.Fatalf("NewDataset() error: %v", err)
	}

	if d.Len() != 3 || d.ID(1) != "b" || d.IndexOf("c") != 2 || d.IndexOf("zz") != -1 {
		t.Errorf("lookup mismatch: Len=%d ID(1)=%q IndexOf(c)=%d", d.Len(), d.ID(1), d.IndexOf("c"))
	}
	if got := d.Projections(); !reflect.DeepEqual(got, []string{"umap", "pca"}) {
		t.Errorf("Projections() = %v", got)
	}
	if got := d.Annotations(); !reflect.DeepEqual(got, []string{"family"}) {
		t.Errorf("Annotations() = %v", got)
	}
}

func TestSetProjectionSwitches(t *testing.T) {
	e := newTestEngine(t, nil)
	d, err := NewDataset([]string{"a", "b"},
		[]Projection{
			{Name: "umap", Coords: []Vec2{{}, {X: 10, Y: 10}}},
			{Name: "pca", Coords: []Vec2{{}, {X: 2, Y: 2}}},
		}, nil)
	if err != nil {
		t.Fatalf("NewDataset() error: %v", err)
	}
	e.SetDataset(d)

	if err := e.SetProjection("nope"); err == nil {
		t.Error("SetProjection(nope) = nil error, want unknown-projection failure")
	}
	if err := e.SetProjection("pca"); err != nil {
		t.Fatalf("SetProjection(pca) error: %v", err)
	}
	// Scales refit to the new extent: the second point lands at the same
	// padded edge in either projection.
	p := e.DataToScreen(Vec2{X: 2, Y: 2})
	if !approxEqual(p.X, 100*2.1/2.2, 1e-6) {
		t.Errorf("projected X = %f, want refit to the pca extent", p.X)
	}
}

func TestSetAnnotationResetsLegendState(t *testing.T) {
	e := newTestEngine(t, nil)
	d, err := NewDataset([]string{"a", "b"},
		[]Projection{{Name: "p", Coords: []Vec2{{}, {X: 1, Y: 1}}}},
		[]Annotation{
			{Name: "family", Values: []string{"x", "y"}, Indices: []int{0, 1}},
			{Name: "organism", Values: []string{"m"}, Indices: []int{0, 0}},
		})
	if err != nil {
		t.Fatalf("NewDataset() error: %v", err)
	}
	e.SetDataset(d)

	e.SetHiddenValues([]string{"x"})
	if len(e.hidden) != 1 {
		t.Fatalf("hidden = %v, want one entry", e.hidden)
	}
	if err := e.SetAnnotation("organism"); err != nil {
		t.Fatalf("SetAnnotation() error: %v", err)
	}
	if len(e.hidden) != 0 {
		t.Errorf("hidden = %v after switching annotation, want reset", e.hidden)
	}
	if err := e.SetAnnotation("nope"); err == nil {
		t.Error("SetAnnotation(nope) = nil error, want unknown-annotation failure")
	}
}
