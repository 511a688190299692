package graph

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/activitylens/activitylens/pkg/errors"
	"github.com/activitylens/activitylens/pkg/view"
)

// =============================================================================
// Scene - Activity Set Description
// =============================================================================

// Scene is the serialized form of an activity set.
type Scene struct {
	// Features is the default active clustering-feature list.
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
	Nodes    []Node   `json:"nodes" yaml:"nodes"`
	Edges    []Edge   `json:"edges" yaml:"edges"`
}

// Node is a serialized event or alert.
type Node struct {
	ID        string         `json:"id" yaml:"id"`
	Kind      string         `json:"kind,omitempty" yaml:"kind,omitempty"` // "event" (default) or "alert"
	Time      time.Time      `json:"time" yaml:"time"`
	Label     string         `json:"label,omitempty" yaml:"label,omitempty"` // defaults to ID
	Features  map[string]any `json:"features,omitempty" yaml:"features,omitempty"`
	Collapsed bool           `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Hidden    bool           `json:"hidden,omitempty" yaml:"hidden,omitempty"`
	Selected  bool           `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a serialized causal edge.
type Edge struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"`
	From      string    `json:"from" yaml:"from"`
	To        string    `json:"to" yaml:"to"`
	Time      time.Time `json:"time,omitzero" yaml:"time,omitempty"`
	Length    float64   `json:"length,omitempty" yaml:"length,omitempty"`
	Collapsed bool      `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
}

// =============================================================================
// Scene ↔ view.Graph Conversion
// =============================================================================

// ToView builds a view graph from a scene. Features are inserted in sorted
// name order so the result does not depend on map iteration.
func ToView(s Scene) (*view.Graph, error) {
	for _, f := range s.Features {
		if err := errors.ValidateName("feature", f); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "active features")
		}
	}

	g := view.NewGraph()
	for _, sn := range s.Nodes {
		n, err := nodeToView(sn)
		if err != nil {
			return nil, err
		}
		if err := g.AddNode(n); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "node %q", sn.ID)
		}
	}

	seen := make(map[string]int)
	for _, se := range s.Edges {
		id := se.ID
		if id == "" {
			id = se.From + "->" + se.To
			if n := seen[id]; n > 0 {
				seen[id]++
				id = fmt.Sprintf("%s#%d", id, n)
			} else {
				seen[id] = 1
			}
		}
		if err := errors.ValidateItemID(id); err != nil {
			return nil, err
		}
		at := se.Time
		if at.IsZero() {
			if src, ok := g.Node(se.From); ok {
				at = src.Time
			}
		}
		e := view.NewEdge(id, se.From, se.To, at)
		e.Length = se.Length
		if se.Collapsed {
			e.SetAttrs(e.Attrs().WithCollapsed(true))
		}
		if err := g.AddEdge(e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "edge %s (%s→%s)", id, se.From, se.To)
		}
	}
	return g, nil
}

func nodeToView(sn Node) (*view.Node, error) {
	if err := errors.ValidateItemID(sn.ID); err != nil {
		return nil, err
	}
	kind, ok := view.ParseKind(sn.Kind)
	if !ok || !kind.IsNode() {
		return nil, errors.New(errors.ErrCodeInvalidScene, "node %q: unknown kind %q", sn.ID, sn.Kind)
	}

	n := view.NewNode(sn.ID, kind, sn.Time, sn.DisplayLabel())
	for _, name := range slices.Sorted(maps.Keys(sn.Features)) {
		if err := errors.ValidateName("feature", name); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "node %q", sn.ID)
		}
		v, err := primitive(sn.Features[name])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "node %q feature %q", sn.ID, name)
		}
		n.Features.Set(name, v)
	}

	a := n.Attrs().WithCollapsed(sn.Collapsed)
	if sn.Hidden {
		a = a.WithVisibility(view.Hidden)
	}
	if sn.Selected {
		a = a.WithSelection(view.SelectSingle)
	}
	n.SetAttrs(a)
	return n, nil
}

// primitive rejects nested values. Decoders yield float64 (JSON) or int
// (YAML) for numbers; view.Features normalizes both.
func primitive(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return v, nil
	}
	return nil, fmt.Errorf("unsupported value of type %T", v)
}

// FromView converts a view graph to a scene. Nodes and edges are sorted by
// id for deterministic output.
func FromView(g *view.Graph, features []string) Scene {
	s := Scene{
		Features: slices.Clone(features),
		Nodes:    make([]Node, 0, g.NodeCount()),
		Edges:    make([]Edge, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		sn := Node{
			ID:        n.ID,
			Time:      n.Time,
			Collapsed: n.Attrs().Collapsed(),
			Hidden:    n.Attrs().Hidden(),
			Selected:  n.Attrs().Selected(),
		}
		if n.Kind() != view.KindEvent {
			sn.Kind = n.Kind().String()
		}
		if n.Label() != n.ID {
			sn.Label = n.Label()
		}
		if n.Features.Len() > 0 {
			sn.Features = make(map[string]any, n.Features.Len())
			for _, f := range n.Features.All() {
				sn.Features[f.Name] = f.Value
			}
		}
		s.Nodes = append(s.Nodes, sn)
	}
	for _, e := range g.Edges() {
		s.Edges = append(s.Edges, Edge{
			ID:        e.ID,
			From:      e.Source,
			To:        e.Target,
			Time:      e.Time,
			Length:    e.Length,
			Collapsed: e.Attrs().Collapsed(),
		})
	}
	return s
}
