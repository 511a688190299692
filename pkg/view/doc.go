// Package view defines the renderable items of an activity-set visualization.
//
// # Overview
//
// Every drawable thing is an [Item]: an identifier, a timestamp, a bit-packed
// [Attrs] word holding discrete interaction state, and a [Style] word derived
// from it. Nodes ([Node]) are events and alerts; edges ([Edge]) are causal
// links between them.
//
// # Attributes and Styles
//
// [Attrs] packs four fields into one uint32:
//
//	bit 0     visibility  (visible, hidden)
//	bits 1-2  selection   (none, single, multi)
//	bits 3-4  focus       (focused, not-focused-1, not-focused-2, not-focused-both)
//	bit 5     collapsed
//
// A [Style] is never assigned directly. Each item carries a [Kind] tag and the
// style is recomputed through [Kind.Style] whenever attributes change, so two
// items of the same kind with equal attributes always share a style word.
//
// # Graph
//
// [Graph] is an arena of nodes and edges addressed by id. Adjacency is stored
// as edge-id lists on each node ([Node.Next], [Node.Prev]) rather than as
// pointers, so the structure has no ownership cycles and can be cloned by
// copying maps.
//
//	g := view.NewGraph()
//	_ = g.AddNode(view.NewNode("a", view.KindEvent, t0, "login"))
//	_ = g.AddNode(view.NewNode("b", view.KindAlert, t1, "lateral move"))
//	_ = g.AddEdge(view.NewEdge("a-b", "a", "b", t1))
//
// Graph is not safe for concurrent use; edits come from a single UI event
// stream.
package view
