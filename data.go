package scatterkit

import (
	"fmt"
	"math"
)

// MissingValue is the sentinel feature index for points with no value in an
// annotation dimension.
const MissingValue = -1

// Annotation is a named categorical dimension with a fixed vocabulary of
// values. Indices holds one vocabulary index per dataset point, in dataset
// order; MissingValue marks points without a value.
type Annotation struct {
	Name    string
	Values  []string // ordered vocabulary
	Colors  []Color  // optional declared color per value; resolved from the palette when empty
	Shapes  []Shape  // optional declared shape per value
	Indices []int
}

// Projection is a named precomputed 2D layout, one coordinate pair per
// dataset point in dataset order.
type Projection struct {
	Name   string
	Coords []Vec2
}

// Dataset is an immutable snapshot of points, projections, and annotations.
// It is owned by the Engine for the lifetime of one load and replaced
// wholesale on reload; callers must not mutate it after handing it over.
type Dataset struct {
	ids     []string
	byID    map[string]int
	projs   []Projection
	annots  []Annotation
}

// NewDataset validates and assembles a dataset snapshot. Every projection and
// annotation must cover exactly len(ids) points, identifiers must be unique,
// all coordinates must be finite, and every feature index must resolve into
// its vocabulary or be MissingValue.
func NewDataset(ids []string, projs []Projection, annots []Annotation) (*Dataset, error) {
	if len(projs) == 0 {
		return nil, fmt.Errorf("dataset needs at least one projection")
	}

	byID := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate point identifier %q", id)
		}
		byID[id] = i
	}

	for _, p := range projs {
		if len(p.Coords) != len(ids) {
			return nil, fmt.Errorf("projection %q has %d coords for %d points", p.Name, len(p.Coords), len(ids))
		}
		for i, c := range p.Coords {
			if math.IsNaN(c.X) || math.IsInf(c.X, 0) || math.IsNaN(c.Y) || math.IsInf(c.Y, 0) {
				return nil, fmt.Errorf("projection %q point %s has non-finite coordinates", p.Name, ids[i])
			}
		}
	}

	for _, a := range annots {
		if len(a.Indices) != len(ids) {
			return nil, fmt.Errorf("annotation %q has %d indices for %d points", a.Name, len(a.Indices), len(ids))
		}
		for i, idx := range a.Indices {
			if idx != MissingValue && (idx < 0 || idx >= len(a.Values)) {
				return nil, fmt.Errorf("annotation %q point %s: index %d outside vocabulary of %d", a.Name, ids[i], idx, len(a.Values))
			}
		}
	}

	return &Dataset{ids: ids, byID: byID, projs: projs, annots: annots}, nil
}

// Len returns the number of points in the dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.ids)
}

// ID returns the identifier of the point at index i.
func (d *Dataset) ID(i int) string { return d.ids[i] }

// IndexOf returns the dataset index for an identifier, or -1 if absent.
func (d *Dataset) IndexOf(id string) int {
	if d == nil {
		return -1
	}
	if i, ok := d.byID[id]; ok {
		return i
	}
	return -1
}

// Projections lists the available projection names in declaration order.
func (d *Dataset) Projections() []string {
	names := make([]string, len(d.projs))
	for i, p := range d.projs {
		names[i] = p.Name
	}
	return names
}

// Annotations lists the available annotation names in declaration order.
func (d *Dataset) Annotations() []string {
	names := make([]string, len(d.annots))
	for i, a := range d.annots {
		names[i] = a.Name
	}
	return names
}

// projectionIndex resolves a projection name to its slot, or -1.
func (d *Dataset) projectionIndex(name string) int {
	for i, p := range d.projs {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// annotationIndex resolves an annotation name to its slot, or -1.
func (d *Dataset) annotationIndex(name string) int {
	for i, a := range d.annots {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Value returns the feature value of point i under annotation slot a, or ""
// for missing / out-of-vocabulary indices.
func (d *Dataset) Value(a, i int) string {
	if a < 0 || a >= len(d.annots) {
		return ""
	}
	an := &d.annots[a]
	idx := an.Indices[i]
	if idx < 0 || idx >= len(an.Values) {
		return ""
	}
	return an.Values[idx]
}

// --- Asynchronous loading ---

// LoadDatasetAsync runs load off the interaction loop and applies the result
// on a later Update tick. A newer call supersedes any in-flight load: the
// stale result is discarded unconditionally, whichever finishes first.
// Errors are logged and leave the current dataset untouched.
func (e *Engine) LoadDatasetAsync(load func() (*Dataset, error)) {
	gen := e.loadGen.Add(1)
	go func() {
		d, err := load()

		e.pendingMu.Lock()
		defer e.pendingMu.Unlock()
		if gen != e.loadGen.Load() {
			e.log.Debug("discarding superseded dataset load", "generation", gen)
			return
		}
		if err != nil {
			e.log.Error("dataset load failed", "generation", gen, "err", err)
			return
		}
		e.pendingData = d
	}()
}

// consumePending applies a completed async load, if any. Called from Update
// so the swap happens on the interaction loop.
func (e *Engine) consumePending() {
	e.pendingMu.Lock()
	d := e.pendingData
	e.pendingData = nil
	e.pendingMu.Unlock()

	if d != nil {
		e.SetDataset(d)
	}
}
