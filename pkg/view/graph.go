package view

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidID is returned by [Graph.AddNode] and [Graph.AddEdge] when the
	// id is empty.
	ErrInvalidID = errors.New("item ID must not be empty")

	// ErrDuplicateID is returned when a node or edge with the same id exists.
	ErrDuplicateID = errors.New("duplicate item ID")

	// ErrUnknownSource is returned by [Graph.AddEdge] when the source node
	// does not exist.
	ErrUnknownSource = errors.New("unknown source node")

	// ErrUnknownTarget is returned by [Graph.AddEdge] when the target node
	// does not exist.
	ErrUnknownTarget = errors.New("unknown target node")

	// ErrUnknownItem is returned by attribute setters for ids not in the graph.
	ErrUnknownItem = errors.New("unknown item")
)

// Graph is the authoritative, mutable node/edge arena owned by a view.
//
// The zero value is not usable; use NewGraph.
type Graph struct {
	nodes map[string]*Node
	edges map[string]*Edge
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[string]*Node),
		edges: make(map[string]*Edge),
	}
}

// AddNode inserts n. Any adjacency already present on n is discarded; edges
// register themselves through AddEdge.
func (g *Graph) AddNode(n *Node) error {
	if n == nil || n.ID == "" {
		return ErrInvalidID
	}
	if _, ok := g.nodes[n.ID]; ok {
		return ErrDuplicateID
	}
	n.Next, n.Prev = nil, nil
	g.nodes[n.ID] = n
	return nil
}

// AddEdge inserts e and links it into the adjacency lists of its endpoints.
func (g *Graph) AddEdge(e *Edge) error {
	if e == nil || e.ID == "" {
		return ErrInvalidID
	}
	if _, ok := g.edges[e.ID]; ok {
		return ErrDuplicateID
	}
	src, ok := g.nodes[e.Source]
	if !ok {
		return ErrUnknownSource
	}
	dst, ok := g.nodes[e.Target]
	if !ok {
		return ErrUnknownTarget
	}
	g.edges[e.ID] = e
	src.Next = append(src.Next, e.ID)
	dst.Prev = append(dst.Prev, e.ID)
	return nil
}

// RemoveEdge deletes the edge with the given id and unlinks it from its
// endpoints. Missing ids are ignored.
func (g *Graph) RemoveEdge(id string) {
	e, ok := g.edges[id]
	if !ok {
		return
	}
	delete(g.edges, id)
	if src, ok := g.nodes[e.Source]; ok {
		src.Next = slices.DeleteFunc(src.Next, func(s string) bool { return s == id })
	}
	if dst, ok := g.nodes[e.Target]; ok {
		dst.Prev = slices.DeleteFunc(dst.Prev, func(s string) bool { return s == id })
	}
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (*Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// NodeIDs returns all node ids sorted ascending.
func (g *Graph) NodeIDs() []string { return slices.Sorted(maps.Keys(g.nodes)) }

// EdgeIDs returns all edge ids sorted ascending.
func (g *Graph) EdgeIDs() []string { return slices.Sorted(maps.Keys(g.edges)) }

// Nodes returns all nodes ordered by id.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, id := range g.NodeIDs() {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges ordered by id.
func (g *Graph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, id := range g.EdgeIDs() {
		out = append(out, g.edges[id])
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// SetNodeAttrs replaces a node's attributes, recomputing its style.
func (g *Graph) SetNodeAttrs(id string, a Attrs) error {
	n, ok := g.nodes[id]
	if !ok {
		return ErrUnknownItem
	}
	n.SetAttrs(a)
	return nil
}

// SetEdgeAttrs replaces an edge's attributes, recomputing its style.
func (g *Graph) SetEdgeAttrs(id string, a Attrs) error {
	e, ok := g.edges[id]
	if !ok {
		return ErrUnknownItem
	}
	e.SetAttrs(a)
	return nil
}

// ToggleCollapse flips the collapsed flag of the node or edge with the given
// id and returns the new value.
func (g *Graph) ToggleCollapse(id string) (bool, error) {
	if n, ok := g.nodes[id]; ok {
		a := n.Attrs().WithCollapsed(!n.Attrs().Collapsed())
		n.SetAttrs(a)
		return a.Collapsed(), nil
	}
	if e, ok := g.edges[id]; ok {
		a := e.Attrs().WithCollapsed(!e.Attrs().Collapsed())
		e.SetAttrs(a)
		return a.Collapsed(), nil
	}
	return false, ErrUnknownItem
}
