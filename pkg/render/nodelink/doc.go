// Package nodelink renders derived activity graphs as Graphviz node-link
// diagrams.
//
// # Usage
//
//	res, err := derive.Derive(g, []string{"host"})
//	dot := nodelink.ToDOT(g, res, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot)
//
// # Layout
//
// Only nodes and edges that survive collapse are emitted. Each cluster becomes
// a "cluster_N" subgraph labeled with the cluster label, so Graphviz boxes
// its members together. Strong edges are solid; weak edges, which cross
// clusters, are dashed. Alerts are drawn as diamonds, selected nodes with a
// heavy outline, and out-of-focus nodes greyed.
//
// # Options
//
//   - Detailed: adds the timestamp and every feature to node labels.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering,
// so no Graphviz installation is needed.
package nodelink
