// Package scatterkit is an interactive scatter-plot rendering and
// interaction core for large 2D-projected point sets, such as protein or
// cell embedding coordinates.
//
// The engine holds the loaded dataset, the zoom/pan view, and all
// legend-driven visual state, and turns them into a backend-agnostic draw
// batch once per tick. It handles per-category coloring and shaping,
// duplicate-point stacking with count badges, hover and click hit-testing,
// panning, anchored zooming, and box selection, and emits semantic events
// for a legend or control bar to consume. Data loading, legend UI, and
// persistence live outside this package.
//
// # Quick start
//
//	eng, err := scatterkit.New(scatterkit.DefaultOptions())
//	if err != nil {
//		log.Fatal(err)
//	}
//	eng.SetDataset(dataset)
//	eng.SetAnnotation("family")
//	eng.OnClick(func(ctx scatterkit.ClickContext) {
//		fmt.Println("clicked", ctx.ID)
//	})
//
// Drive the engine from a host loop: feed pointer events in, call
// [Engine.Update] once per tick, then [Engine.Render]. With the GPU backend
// under ebiten:
//
//	func (g *Game) Update() error {
//		feedPointer(g.eng) // PointerDown/Move/Up, Wheel
//		g.eng.Update(1.0 / float64(ebiten.TPS()))
//		return nil
//	}
//
//	func (g *Game) Draw(screen *ebiten.Image) {
//		g.eng.Backend().(*scatterkit.GPUBackend).SetTarget(screen)
//		g.eng.Render()
//	}
//
// # Coordinate spaces
//
// Data-space coordinates pass through two composed mappings: the axis
// scales ([FitScales], recomputed on data or viewport change) and the view
// [Transform] (mutated only through [View] operations). Both the draw pass
// and hit-testing read the same transform snapshot per frame, so the point
// under the pointer is always the point on screen.
package scatterkit
