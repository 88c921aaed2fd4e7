package scatterkit

// Backend consumes the engine's per-frame draw batch. Implementations draw
// marks in slice order (painter order); the engine has already decided
// position, color, shape, opacity, and badge counts, so backends hold no
// rendering policy of their own.
//
// The engine owns its backend exclusively; no other component draws to it.
type Backend interface {
	// Resize adjusts the output surface to the given pixel dimensions.
	Resize(width, height int)
	// Render clears the surface and draws the batch.
	Render(marks []Mark) error
}
