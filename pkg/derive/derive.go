package derive

import (
	"slices"
	"time"

	"github.com/activitylens/activitylens/pkg/observability"
	"github.com/activitylens/activitylens/pkg/view"
)

// Source is the read-only graph a Deriver consumes. *view.Graph satisfies it.
type Source interface {
	NodeIDs() []string
	EdgeIDs() []string
	Node(id string) (*view.Node, bool)
	Edge(id string) (*view.Edge, bool)
}

// Deriver computes render graphs. The zero value derives with no clustering
// features and the collapsed attribute bit as the collapse predicate.
type Deriver struct {
	// Features is the active clustering-feature list.
	Features []string

	// Collapsed reports whether an item hides its exclusive downstream
	// structure. Nil means Attrs().Collapsed().
	Collapsed func(it *view.Item) bool
}

// Result is the renderable subgraph produced by one derivation.
type Result struct {
	// Nodes holds surviving node ids, sorted.
	Nodes []string
	// Strong and Weak partition the surviving edge ids, each sorted.
	Strong []string
	Weak   []string
	// Clusters partition Nodes.
	Clusters []Cluster
	// Removed and RemovedEdges list what collapse hid, sorted.
	Removed      []string
	RemovedEdges []string

	clusterOf map[string]int
}

// ClusterOf returns the cluster holding the node id.
func (r *Result) ClusterOf(id string) (*Cluster, bool) {
	i, ok := r.clusterOf[id]
	if !ok {
		return nil, false
	}
	return &r.Clusters[i], true
}

// Derive derives g with the given active features and the default collapse
// predicate.
func Derive(g Source, features []string) (*Result, error) {
	d := Deriver{Features: features}
	return d.Derive(g)
}

// Derive computes the render graph of src.
func (d *Deriver) Derive(src Source) (*Result, error) {
	start := time.Now()
	nodeIDs, edgeIDs := src.NodeIDs(), src.EdgeIDs()
	observability.Derive().OnDeriveStart(len(nodeIDs), len(edgeIDs))

	res, err := d.derive(src, nodeIDs, edgeIDs)

	clusters, removed := 0, 0
	if res != nil {
		clusters, removed = len(res.Clusters), len(res.Removed)
	}
	observability.Derive().OnDeriveComplete(clusters, removed, time.Since(start), err)
	return res, err
}

func (d *Deriver) derive(src Source, nodeIDs, edgeIDs []string) (*Result, error) {
	w := newWorking(src, nodeIDs, edgeIDs)

	collapsed := d.Collapsed
	if collapsed == nil {
		collapsed = func(it *view.Item) bool { return it.Attrs().Collapsed() }
	}
	for _, id := range nodeIDs {
		n, ok := w.nodes[id]
		if ok && collapsed(&n.Item) {
			w.removeSequence(id)
		}
	}
	for _, id := range edgeIDs {
		e, ok := w.edges[id]
		if !ok || !collapsed(&e.Item) {
			continue
		}
		w.removeEdge(id)
		if _, ok := w.nodes[e.Target]; ok {
			w.removeSequence(e.Target)
		}
	}

	res := &Result{
		Removed:      w.removedNodes,
		RemovedEdges: w.removedEdges,
	}
	slices.Sort(res.Removed)
	slices.Sort(res.RemovedEdges)

	strong := make(map[string]bool)
	for _, id := range edgeIDs {
		e, ok := w.edges[id]
		if !ok {
			continue
		}
		if w.isStrong(e, d.Features) {
			strong[id] = true
			res.Strong = append(res.Strong, id)
		} else {
			res.Weak = append(res.Weak, id)
		}
	}

	for _, id := range nodeIDs {
		if _, ok := w.nodes[id]; ok {
			res.Nodes = append(res.Nodes, id)
		}
	}

	members, consumed := components(w, res.Nodes, strong)

	var leftover []string
	for _, id := range res.Strong {
		if !consumed[id] {
			leftover = append(leftover, id)
		}
	}
	if len(leftover) > 0 {
		return nil, &UnlinkedGraphError{Edges: leftover}
	}

	res.Clusters = make([]Cluster, len(members))
	res.clusterOf = make(map[string]int, len(res.Nodes))
	for i, m := range members {
		res.Clusters[i] = newCluster(w, m, d.Features)
		for _, id := range m {
			res.clusterOf[id] = i
		}
	}
	return res, nil
}

// working is the cloned node and edge index that collapse prunes. Items are
// shared with the source; only the containers are new.
type working struct {
	src   Source
	nodes map[string]*view.Node
	edges map[string]*view.Edge

	removedNodes []string
	removedEdges []string
}

func newWorking(src Source, nodeIDs, edgeIDs []string) *working {
	w := &working{
		src:   src,
		nodes: make(map[string]*view.Node, len(nodeIDs)),
		edges: make(map[string]*view.Edge, len(edgeIDs)),
	}
	for _, id := range nodeIDs {
		if n, ok := src.Node(id); ok {
			w.nodes[id] = n
		}
	}
	for _, id := range edgeIDs {
		if e, ok := src.Edge(id); ok {
			w.edges[id] = e
		}
	}
	return w
}

func (w *working) removeEdge(id string) {
	if _, ok := w.edges[id]; !ok {
		return
	}
	delete(w.edges, id)
	w.removedEdges = append(w.removedEdges, id)
}

// removeNode drops a node and every edge incident to it.
func (w *working) removeNode(id string) *view.Node {
	n, ok := w.nodes[id]
	if !ok {
		return nil
	}
	delete(w.nodes, id)
	w.removedNodes = append(w.removedNodes, id)
	for _, eid := range n.Next {
		w.removeEdge(eid)
	}
	for _, eid := range n.Prev {
		w.removeEdge(eid)
	}
	return n
}

// removeSequence removes root and, breadth-first, every successor left
// without a live predecessor. A successor that survives one check is checked
// again each time another of its predecessors is removed.
func (w *working) removeSequence(root string) {
	n := w.removeNode(root)
	if n == nil {
		return
	}
	queue := []*view.Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range w.successors(cur) {
			if _, alive := w.nodes[next]; !alive || w.livePredecessors(next) > 0 {
				continue
			}
			queue = append(queue, w.removeNode(next))
		}
	}
}

// successors returns the distinct targets of n's outgoing edges in edge-id
// order. Edges already pruned are still followed: they were cut by this
// removal.
func (w *working) successors(n *view.Node) []string {
	out := slices.Clone(n.Next)
	slices.Sort(out)
	var targets []string
	for _, eid := range out {
		e, ok := w.src.Edge(eid)
		if !ok || e.Target == n.ID || slices.Contains(targets, e.Target) {
			continue
		}
		targets = append(targets, e.Target)
	}
	return targets
}

// livePredecessors counts n's incoming edges that survive, ignoring
// self-loops.
func (w *working) livePredecessors(id string) int {
	n := w.nodes[id]
	count := 0
	for _, eid := range n.Prev {
		e, ok := w.edges[eid]
		if !ok || e.Source == id {
			continue
		}
		if _, alive := w.nodes[e.Source]; alive {
			count++
		}
	}
	return count
}

// isStrong reports whether e's endpoints agree on every feature, comparing
// typed values. An edge with a missing endpoint is classed strong so the
// component search reports it.
func (w *working) isStrong(e *view.Edge, features []string) bool {
	s, okS := w.nodes[e.Source]
	t, okT := w.nodes[e.Target]
	if !okS || !okT {
		return true
	}
	for _, f := range features {
		sv, sok := s.Features.Get(f)
		tv, tok := t.Features.Get(f)
		if sok != tok {
			return false
		}
		if sok && !view.ValueEqual(sv, tv) {
			return false
		}
	}
	return true
}

// components runs a breadth-first search over strong edges in both
// directions, starting from nodes in id order. It returns the member lists in
// visit order and the set of strong edges the search consumed.
func components(w *working, nodes []string, strong map[string]bool) ([][]string, map[string]bool) {
	visited := make(map[string]bool, len(nodes))
	consumed := make(map[string]bool, len(strong))
	var out [][]string

	for _, root := range nodes {
		if visited[root] {
			continue
		}
		visited[root] = true
		members := []string{root}
		for i := 0; i < len(members); i++ {
			n := w.nodes[members[i]]
			for _, eid := range incident(n) {
				if !strong[eid] || consumed[eid] {
					continue
				}
				e := w.edges[eid]
				if e.Source != n.ID && e.Target != n.ID {
					continue
				}
				other := e.Target
				if other == n.ID {
					other = e.Source
				}
				if _, alive := w.nodes[other]; !alive {
					continue
				}
				consumed[eid] = true
				if !visited[other] {
					visited[other] = true
					members = append(members, other)
				}
			}
		}
		out = append(out, members)
	}
	return out, consumed
}

func incident(n *view.Node) []string {
	ids := make([]string, 0, len(n.Next)+len(n.Prev))
	ids = append(ids, n.Next...)
	ids = append(ids, n.Prev...)
	slices.Sort(ids)
	return slices.Compact(ids)
}
