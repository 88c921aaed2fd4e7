package scatterkit

import "math"

// stack groups dataset point indices whose rendered pixel positions fall
// within the stack epsilon of a representative. Derived state: recomputed
// whenever the transform or dataset changes, never persisted.
type stack struct {
	// X, Y is the averaged member position, used as the marker position when
	// the stack renders as a single mark.
	X, Y float64
	// Rep is the topmost member (highest paint rank, drawn last).
	Rep int
	// Members holds dataset indices in paint order; the last entry is Rep.
	Members []int
}

// Count returns the number of stacked points.
func (s *stack) Count() int { return len(s.Members) }

// cellKey packs a grid cell coordinate into a map key.
func cellKey(cx, cy int64) uint64 {
	return uint64(uint32(cx))<<32 | uint64(uint32(cy))
}

// resolveStacks groups points by rendered pixel proximity using fixed-radius
// clustering around a representative: walking points from topmost paint rank
// down, each point either joins the nearest existing representative within
// eps or becomes a representative itself. The policy is deterministic and,
// unlike single-link chaining, bounds a stack's spatial extent by eps around
// its representative.
//
// pixels holds transformed pixel positions indexed by dataset index; order is
// the paint order (ascending rank, last drawn on top). Grid bucketing keyed
// by rounded pixel position keeps grouping sub-quadratic for large datasets.
func resolveStacks(pixels []Vec2, order []int, eps float64) []stack {
	if eps <= 0 || len(order) == 0 {
		return nil
	}

	type repEntry struct {
		stackIdx int
		pos      Vec2
	}
	grid := make(map[uint64][]repEntry)
	stacks := make([]stack, 0)

	cell := func(p Vec2) (int64, int64) {
		return int64(math.Floor(p.X / eps)), int64(math.Floor(p.Y / eps))
	}

	// Reverse paint order: topmost points claim representatives first, so a
	// simple click on a stack resolves to the visual winner.
	for oi := len(order) - 1; oi >= 0; oi-- {
		i := order[oi]
		p := pixels[i]
		cx, cy := cell(p)

		best := -1
		bestDist := math.Inf(1)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for _, re := range grid[cellKey(cx+dx, cy+dy)] {
					d := math.Hypot(p.X-re.pos.X, p.Y-re.pos.Y)
					if d <= eps && d < bestDist {
						best = re.stackIdx
						bestDist = d
					}
				}
			}
		}

		if best >= 0 {
			stacks[best].Members = append(stacks[best].Members, i)
			continue
		}
		stacks = append(stacks, stack{Rep: i, Members: []int{i}})
		grid[cellKey(cx, cy)] = append(grid[cellKey(cx, cy)], repEntry{stackIdx: len(stacks) - 1, pos: p})
	}

	// Members were collected top-down; restore paint order and average
	// the member positions.
	for si := range stacks {
		s := &stacks[si]
		reverseInts(s.Members)
		var sx, sy float64
		for _, i := range s.Members {
			sx += pixels[i].X
			sy += pixels[i].Y
		}
		n := float64(len(s.Members))
		s.X = sx / n
		s.Y = sy / n
	}
	return stacks
}

func reverseInts(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// stackKey memoises stack layouts. Pan and zoom within one quantum reuse the
// previous grouping instead of regrouping every pointer event.
type stackKey struct {
	gen        uint64 // dataset generation
	epoch      uint64 // bumped on projection/annotation/z-order/viewport change
	qk, qx, qy int64  // quantised transform
}

// transformQuantum is the pixel granularity at which stack layouts are
// considered equivalent.
const transformQuantum = 2.0

// quantise maps a transform to a cache key component.
func quantiseTransform(t Transform) (int64, int64, int64) {
	return int64(math.Round(t.K * 64)),
		int64(math.Round(t.X / transformQuantum)),
		int64(math.Round(t.Y / transformQuantum))
}
