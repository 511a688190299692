package pipeline

import (
	"github.com/activitylens/activitylens/pkg/chrono"
	"github.com/activitylens/activitylens/pkg/derive"
	"github.com/activitylens/activitylens/pkg/view"
)

// RefreshStyles sets the focus field of every surviving item. An item is
// NotFocused1 when it lies outside opts.Window and NotFocused2 when its
// cluster holds none of opts.FocusNodes; an edge takes the second reason
// from either endpoint. Setting attrs recomputes each item's style.
func RefreshStyles(g *view.Graph, res *derive.Result, opts Options) {
	inWindow := windowed(g, res, opts.Window)
	focused := focusedClusters(res, opts.FocusNodes)

	nodeFocus := make(map[string]view.Focus, len(res.Nodes))
	for _, id := range res.Nodes {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		f := view.Focused
		if inWindow != nil && !inWindow[&n.Item] {
			f |= view.NotFocused1
		}
		if focused != nil {
			if c, ok := res.ClusterOf(id); !ok || !focused[c.ID.String()] {
				f |= view.NotFocused2
			}
		}
		nodeFocus[id] = f
		n.SetAttrs(n.Attrs().WithFocus(f))
	}

	for _, ids := range [][]string{res.Strong, res.Weak} {
		for _, id := range ids {
			e, ok := g.Edge(id)
			if !ok {
				continue
			}
			f := view.Focused
			if inWindow != nil && !inWindow[&e.Item] {
				f |= view.NotFocused1
			}
			f |= (nodeFocus[e.Source] | nodeFocus[e.Target]) & view.NotFocused2
			e.SetAttrs(e.Attrs().WithFocus(f))
		}
	}
}

// windowed returns the surviving items inside w, or nil when there is no
// window.
func windowed(g *view.Graph, res *derive.Result, w *Window) map[*view.Item]bool {
	if w == nil {
		return nil
	}
	items := make([]*view.Item, 0, len(res.Nodes)+len(res.Strong)+len(res.Weak))
	for _, id := range res.Nodes {
		if n, ok := g.Node(id); ok {
			items = append(items, &n.Item)
		}
	}
	for _, ids := range [][]string{res.Strong, res.Weak} {
		for _, id := range ids {
			if e, ok := g.Edge(id); ok {
				items = append(items, &e.Item)
			}
		}
	}

	hits := chrono.New(items...).Search(w.Start, w.End)
	in := make(map[*view.Item]bool, len(hits))
	for _, it := range hits {
		in[it] = true
	}
	return in
}

// focusedClusters returns the ids of clusters holding one of nodes, or nil
// when nodes is empty.
func focusedClusters(res *derive.Result, nodes []string) map[string]bool {
	if len(nodes) == 0 {
		return nil
	}
	out := make(map[string]bool)
	for _, id := range nodes {
		if c, ok := res.ClusterOf(id); ok {
			out[c.ID.String()] = true
		}
	}
	return out
}
