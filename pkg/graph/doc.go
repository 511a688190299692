// Package graph provides the scene file format and derived-result
// serialization.
//
// A scene is a small node-link description of an activity set used to drive
// the CLI and tests: nodes with a kind, a time, a label and primitive
// features, causal edges between them, and collapse/selection flags. Scenes
// are read from JSON or YAML and converted to a [view.Graph] with [ToView].
//
// # Scene Format
//
//	features: [host]
//	nodes:
//	  - id: n1
//	    kind: event
//	    time: 2024-05-02T09:00:00Z
//	    label: login
//	    features: {host: ws-1, user: alice}
//	  - id: n2
//	    kind: alert
//	    time: 2024-05-02T09:01:30Z
//	    collapsed: true
//	edges:
//	  - from: n1
//	    to: n2
//
// The top-level features list is the default active clustering-feature list.
// Edge ids default to "from->to" and edge times to the source node's time.
//
// # Common Operations
//
//	s, _ := graph.ReadSceneFile("scene.yaml")  // File → Scene
//	g, _ := graph.ToView(s)                    // Scene → view.Graph
//	data, _ := graph.MarshalScene(s, graph.FormatJSON)
//	derived := graph.FromResult(res)            // derive.Result → JSON-ready
//
// # Errors
//
// Malformed input fails with an INVALID_SCENE coded error naming the
// offending item.
package graph
