// Package pkg provides the core libraries for activitylens.
//
// # Overview
//
// Activitylens turns a timestamped activity graph (events, alerts and the
// causal edges between them) into a clustered view that can be scrubbed in
// time and painted cheaply. The pkg directory is organized as:
//
//  1. [view] - graph items, the discrete state word and the derived style word
//  2. [chrono] - the chronological index behind time scrubbing and windows
//  3. [derive] - collapse, strong/weak edge split and clustering
//  4. [layer] - segmentation of a priority-sorted draw list into runs
//  5. [raster] - the scale-aware bitmap cache and style registry
//  6. [pipeline] - recompute passes, painting and PNG rendering
//  7. [graph] - JSON/YAML scene files and derived-graph output
//  8. [render/nodelink] - Graphviz export of the derived graph
//  9. [cache] - artifact caching of rendered frames and exports
//
// # Architecture
//
// One recompute pass:
//
//	scene file
//	     ↓
//	[graph] ToView
//	     ↓
//	[derive] Derive (collapse, strong/weak, clusters)
//	     ↓
//	[pipeline] RefreshStyles (focus from window and selection)
//	     ↓
//	[pipeline] draw list → [layer] SegmentItems
//	     ↓
//	[raster] Prerender misses, then Paint blits in run order
//
// # Quick Start
//
//	s, _ := graph.ReadSceneFile("day1.yaml")
//	g, _ := graph.ToView(s)
//
//	runner, _ := pipeline.NewRunner(nil, nil, nil, nil)
//	defer runner.Close()
//
//	out, _ := runner.RenderPNG(ctx, g, pipeline.Options{Features: []string{"host"}})
//	os.WriteFile("day1.png", out.PNG, 0o644)
//
// [view]: github.com/activitylens/activitylens/pkg/view
// [chrono]: github.com/activitylens/activitylens/pkg/chrono
// [derive]: github.com/activitylens/activitylens/pkg/derive
// [layer]: github.com/activitylens/activitylens/pkg/layer
// [raster]: github.com/activitylens/activitylens/pkg/raster
// [pipeline]: github.com/activitylens/activitylens/pkg/pipeline
// [graph]: github.com/activitylens/activitylens/pkg/graph
// [render/nodelink]: github.com/activitylens/activitylens/pkg/render/nodelink
// [cache]: github.com/activitylens/activitylens/pkg/cache
package pkg
