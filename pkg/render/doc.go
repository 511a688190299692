// Package render groups the static output formats for activity graphs.
//
// The interactive path draws through [pipeline] and the raster cache. The
// [nodelink] subpackage instead hands a derived graph to Graphviz, producing
// DOT source, SVG, or PNG with one subgraph per cluster and weak edges drawn
// dashed. It is meant for reports and debugging, not for redraw loops.
//
//	res, _ := derive.Derive(g, features)
//	dot := nodelink.ToDOT(g, res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [pipeline]: github.com/activitylens/activitylens/pkg/pipeline
// [nodelink]: github.com/activitylens/activitylens/pkg/render/nodelink
package render
