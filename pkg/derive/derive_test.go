package derive

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"
	"testing"
	"time"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	apperrors "github.com/activitylens/activitylens/pkg/errors"
	"github.com/activitylens/activitylens/pkg/view"
)

var t0 = time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)

// build creates a graph from node ids and "id:src>tgt" edge specs.
func build(t *testing.T, nodes []string, edges ...string) *view.Graph {
	t.Helper()
	g := view.NewGraph()
	for i, id := range nodes {
		if err := g.AddNode(view.NewNode(id, view.KindEvent, t0.Add(time.Duration(i)*time.Minute), "node "+id)); err != nil {
			t.Fatal(err)
		}
	}
	for _, spec := range edges {
		id, rest, _ := strings.Cut(spec, ":")
		src, tgt, _ := strings.Cut(rest, ">")
		if err := g.AddEdge(view.NewEdge(id, src, tgt, t0)); err != nil {
			t.Fatalf("edge %s: %v", spec, err)
		}
	}
	return g
}

func collapse(t *testing.T, g *view.Graph, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if _, err := g.ToggleCollapse(id); err != nil {
			t.Fatal(err)
		}
	}
}

func members(r *Result) [][]string {
	var out [][]string
	for _, c := range r.Clusters {
		m := slices.Clone(c.Members)
		slices.Sort(m)
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

func equalSets(a, b [][]string) bool {
	return slices.EqualFunc(a, b, func(x, y []string) bool { return slices.Equal(x, y) })
}

func TestCollapseDiamondKeepsSharedDownstream(t *testing.T) {
	g := build(t, []string{"A", "B", "C", "D"},
		"ab:A>B", "ac:A>C", "bd:B>D", "cd:C>D")
	collapse(t, g, "B")

	r, err := Derive(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"A", "C", "D"}; !slices.Equal(r.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", r.Nodes, want)
	}
	if want := []string{"B"}; !slices.Equal(r.Removed, want) {
		t.Errorf("Removed = %v, want %v", r.Removed, want)
	}
	if want := []string{"ac", "cd"}; !slices.Equal(r.Strong, want) {
		t.Errorf("Strong = %v, want %v", r.Strong, want)
	}
	if want := []string{"ab", "bd"}; !slices.Equal(r.RemovedEdges, want) {
		t.Errorf("RemovedEdges = %v, want %v", r.RemovedEdges, want)
	}
}

func TestCollapseDiamondRoot(t *testing.T) {
	g := build(t, []string{"A", "B", "C", "D", "Z"},
		"ab:A>B", "ac:A>C", "bd:B>D", "cd:C>D", "zc:Z>C")
	collapse(t, g, "A")

	r, err := Derive(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	// C is still reachable from Z, and D from C.
	if want := []string{"C", "D", "Z"}; !slices.Equal(r.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", r.Nodes, want)
	}
	if want := []string{"A", "B"}; !slices.Equal(r.Removed, want) {
		t.Errorf("Removed = %v, want %v", r.Removed, want)
	}
}

func TestCollapseRechecksAfterLaterRemoval(t *testing.T) {
	// B reaches D before C does; D survives the first check through C and
	// must be checked again once C goes.
	g := build(t, []string{"A", "B", "C", "D"},
		"1:A>B", "2:B>D", "3:B>C", "4:C>D")
	collapse(t, g, "A")

	r, err := Derive(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Nodes) != 0 {
		t.Errorf("Nodes = %v, want none", r.Nodes)
	}
	if want := []string{"A", "B", "C", "D"}; !slices.Equal(r.Removed, want) {
		t.Errorf("Removed = %v, want %v", r.Removed, want)
	}
}

func TestCollapseSelfLoopDoesNotKeepNodeAlive(t *testing.T) {
	g := build(t, []string{"A", "B"}, "ab:A>B", "bb:B>B")
	collapse(t, g, "A")

	r, err := Derive(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Nodes) != 0 {
		t.Errorf("Nodes = %v, want none", r.Nodes)
	}
}

func TestCollapseCycleWithLivePredecessor(t *testing.T) {
	// B keeps the live predecessor C, so the cycle B→C→B survives A.
	g := build(t, []string{"A", "B", "C"}, "1:A>B", "2:B>C", "3:C>B")
	collapse(t, g, "A")

	r, err := Derive(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"B", "C"}; !slices.Equal(r.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", r.Nodes, want)
	}
	if want := []string{"A"}; !slices.Equal(r.Removed, want) {
		t.Errorf("Removed = %v, want %v", r.Removed, want)
	}
}

func TestCollapsedEdge(t *testing.T) {
	g := build(t, []string{"A", "B", "C", "D"}, "ab:A>B", "bc:B>C", "ad:A>D", "dc:D>C")
	collapse(t, g, "ab")

	r, err := Derive(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	// B goes unconditionally; C survives through D.
	if want := []string{"A", "C", "D"}; !slices.Equal(r.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", r.Nodes, want)
	}
	if want := []string{"ab", "bc"}; !slices.Equal(r.RemovedEdges, want) {
		t.Errorf("RemovedEdges = %v, want %v", r.RemovedEdges, want)
	}
}

func TestEndToEndChainPlusIsolated(t *testing.T) {
	g := build(t, []string{"A", "B", "C", "D", "E"}, "ab:A>B", "bc:B>C", "cd:C>D")

	r, err := Derive(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := [][]string{{"A", "B", "C", "D"}, {"E"}}; !equalSets(members(r), want) {
		t.Errorf("clusters = %v, want %v", members(r), want)
	}
	if len(r.Weak) != 0 || len(r.Removed) != 0 {
		t.Errorf("Weak = %v, Removed = %v; want none", r.Weak, r.Removed)
	}

	collapse(t, g, "B")
	r, err = Derive(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"A", "E"}; !slices.Equal(r.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", r.Nodes, want)
	}
	if want := []string{"B", "C", "D"}; !slices.Equal(r.Removed, want) {
		t.Errorf("Removed = %v, want %v", r.Removed, want)
	}
	if want := [][]string{{"A"}, {"E"}}; !equalSets(members(r), want) {
		t.Errorf("clusters = %v, want %v", members(r), want)
	}
}

func TestEmptyFeatureListMakesEveryEdgeStrong(t *testing.T) {
	g := build(t, []string{"A", "B", "C"}, "ab:A>B", "bc:B>C", "ca:C>A")
	n, _ := g.Node("A")
	n.Features.Set("host", "ws-1")
	n, _ = g.Node("B")
	n.Features.Set("host", "ws-2")

	r, err := Derive(g, []string{})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Weak) != 0 || len(r.Strong) != 3 {
		t.Errorf("Strong = %v, Weak = %v", r.Strong, r.Weak)
	}
}

func TestFeaturePartition(t *testing.T) {
	g := build(t, []string{"A", "B", "C", "D"}, "ab:A>B", "bc:B>C", "cd:C>D")
	hosts := map[string]any{"A": "ws-1", "B": "ws-1", "C": "ws-2"}
	for id, h := range hosts {
		n, _ := g.Node(id)
		n.Features.Set("host", h)
	}
	// D lacks the feature entirely.

	r, err := Derive(g, []string{"host"})
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"ab"}; !slices.Equal(r.Strong, want) {
		t.Errorf("Strong = %v, want %v", r.Strong, want)
	}
	if want := []string{"bc", "cd"}; !slices.Equal(r.Weak, want) {
		t.Errorf("Weak = %v, want %v", r.Weak, want)
	}
	if want := [][]string{{"A", "B"}, {"C"}, {"D"}}; !equalSets(members(r), want) {
		t.Errorf("clusters = %v, want %v", members(r), want)
	}

	c, ok := r.ClusterOf("B")
	if !ok {
		t.Fatal("ClusterOf(B) missing")
	}
	if c.Label != "host=ws-1" {
		t.Errorf("Label = %q", c.Label)
	}
	if c.LabelHash != view.HashLabel(c.Label) {
		t.Error("LabelHash out of sync with Label")
	}
	d, _ := r.ClusterOf("D")
	if got := d.Features["host"]; got != nil {
		t.Errorf("D aggregated host = %v, want absent", got)
	}
	if d.Label != "host="+view.MissingValue {
		t.Errorf("D label = %q", d.Label)
	}
}

func TestBothMissingAgree(t *testing.T) {
	g := build(t, []string{"A", "B"}, "ab:A>B")
	r, err := Derive(g, []string{"user"})
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(r.Strong, []string{"ab"}) {
		t.Errorf("Strong = %v, want [ab]", r.Strong)
	}
}

func TestClusterFeatureAggregation(t *testing.T) {
	g := build(t, []string{"A", "B", "C"}, "ab:A>B", "bc:B>C")
	vals := []struct {
		id   string
		proc any
	}{{"A", "cmd.exe"}, {"B", "powershell.exe"}}
	for _, v := range vals {
		n, _ := g.Node(v.id)
		n.Features.Set("proc", v.proc)
		n.Features.Set("pid", 4)
	}

	r, err := Derive(g, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Clusters) != 1 {
		t.Fatalf("got %d clusters", len(r.Clusters))
	}
	c := r.Clusters[0]
	if want := []string{"<none>", "cmd.exe", "powershell.exe"}; !slices.Equal(c.Features["proc"], want) {
		t.Errorf("proc = %v, want %v", c.Features["proc"], want)
	}
	if want := []string{"4", "<none>"}; !slices.Equal(c.Features["pid"], want) {
		t.Errorf("pid = %v, want %v", c.Features["pid"], want)
	}
	if want := []string{"pid", "proc"}; !slices.Equal(c.FeatureNames(), want) {
		t.Errorf("FeatureNames = %v", c.FeatureNames())
	}
	if c.Label != "node A" {
		t.Errorf("Label = %q, want first member's label", c.Label)
	}
}

func TestSourceIsNotMutated(t *testing.T) {
	g := build(t, []string{"A", "B", "C"}, "ab:A>B", "bc:B>C")
	collapse(t, g, "A")
	a, _ := g.Node("A")
	styleBefore, attrsBefore := a.Style(), a.Attrs()
	nextBefore := slices.Clone(a.Next)

	if _, err := Derive(g, []string{"host"}); err != nil {
		t.Fatal(err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Errorf("graph size changed: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if a.Style() != styleBefore || a.Attrs() != attrsBefore || !slices.Equal(a.Next, nextBefore) {
		t.Error("derive mutated a source node")
	}
}

func TestClusterIDsAreStable(t *testing.T) {
	g1 := build(t, []string{"A", "B", "C"}, "ab:A>B")
	g2 := build(t, []string{"C", "B", "A"}, "ab:A>B")
	r1, _ := Derive(g1, nil)
	r2, _ := Derive(g2, nil)

	c1, _ := r1.ClusterOf("A")
	c2, _ := r2.ClusterOf("B")
	if c1.ID != c2.ID {
		t.Errorf("IDs differ for equal member sets: %v vs %v", c1.ID, c2.ID)
	}
	o1, _ := r1.ClusterOf("C")
	if o1.ID == c1.ID {
		t.Error("distinct member sets share an id")
	}
}

// fakeSource serves nodes and edges whose adjacency lists can disagree with
// the edge set.
type fakeSource struct {
	nodes map[string]*view.Node
	edges map[string]*view.Edge
}

func (f *fakeSource) NodeIDs() []string {
	var ids []string
	for id := range f.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (f *fakeSource) EdgeIDs() []string {
	var ids []string
	for id := range f.edges {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (f *fakeSource) Node(id string) (*view.Node, bool) {
	n, ok := f.nodes[id]
	return n, ok
}

func (f *fakeSource) Edge(id string) (*view.Edge, bool) {
	e, ok := f.edges[id]
	return e, ok
}

func TestUnlinkedGraph(t *testing.T) {
	tests := []struct {
		name  string
		edges []*view.Edge
		link  bool
		want  []string
	}{
		{"edge missing from adjacency", []*view.Edge{view.NewEdge("e1", "A", "B", t0)}, false, []string{"e1"}},
		{"dangling target", []*view.Edge{view.NewEdge("e2", "A", "ghost", t0)}, true, []string{"e2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{
				nodes: map[string]*view.Node{
					"A": view.NewNode("A", view.KindEvent, t0, "A"),
					"B": view.NewNode("B", view.KindAlert, t0, "B"),
				},
				edges: map[string]*view.Edge{},
			}
			for _, e := range tt.edges {
				src.edges[e.ID] = e
				if tt.link {
					src.nodes[e.Source].Next = append(src.nodes[e.Source].Next, e.ID)
				}
			}

			_, err := Derive(src, nil)
			var ue *UnlinkedGraphError
			if !errors.As(err, &ue) {
				t.Fatalf("err = %v, want *UnlinkedGraphError", err)
			}
			if !slices.Equal(ue.Edges, tt.want) {
				t.Errorf("Edges = %v, want %v", ue.Edges, tt.want)
			}
			if !apperrors.Is(err, apperrors.ErrCodeUnlinkedGraph) {
				t.Errorf("code = %v", apperrors.GetCode(err))
			}
		})
	}
}

func TestUnlinkedGraphErrorMessageTruncates(t *testing.T) {
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("e%d", i)
	}
	msg := (&UnlinkedGraphError{Edges: ids}).Error()
	if !strings.Contains(msg, "12 unlinked") || !strings.Contains(msg, "and 4 more") {
		t.Errorf("message = %q", msg)
	}
}

func TestCustomCollapsePredicate(t *testing.T) {
	g := build(t, []string{"A", "B", "C"}, "ab:A>B", "bc:B>C")
	d := Deriver{Collapsed: func(it *view.Item) bool { return it.ID == "B" }}
	r, err := d.Derive(g)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"A"}; !slices.Equal(r.Nodes, want) {
		t.Errorf("Nodes = %v, want %v", r.Nodes, want)
	}
}

// TestPartitionProperty derives random graphs and checks that clusters
// partition the surviving nodes exactly, agreeing with gonum's connected
// components over the strong edges.
func TestPartitionProperty(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	hosts := []string{"ws-1", "ws-2", "ws-3"}

	for trial := 0; trial < 60; trial++ {
		n := 1 + r.IntN(25)
		g := view.NewGraph()
		for i := 0; i < n; i++ {
			node := view.NewNode(fmt.Sprintf("n%02d", i), view.KindEvent, t0, "")
			if r.IntN(4) > 0 {
				node.Features.Set("host", hosts[r.IntN(len(hosts))])
			}
			_ = g.AddNode(node)
		}
		m := r.IntN(2*n + 1)
		for i := 0; i < m; i++ {
			s, d := r.IntN(n), r.IntN(n)
			if s == d {
				continue
			}
			_ = g.AddEdge(view.NewEdge(fmt.Sprintf("e%03d", i), fmt.Sprintf("n%02d", s), fmt.Sprintf("n%02d", d), t0))
		}
		for _, id := range g.NodeIDs() {
			if r.IntN(8) == 0 {
				collapse(t, g, id)
			}
		}

		res, err := Derive(g, []string{"host"})
		if err != nil {
			t.Fatalf("trial %d: %v", trial, err)
		}

		seen := make(map[string]int)
		for _, c := range res.Clusters {
			for _, m := range c.Members {
				seen[m]++
			}
		}
		if len(seen) != len(res.Nodes) {
			t.Fatalf("trial %d: clusters cover %d nodes, %d survive", trial, len(seen), len(res.Nodes))
		}
		for _, id := range res.Nodes {
			if seen[id] != 1 {
				t.Fatalf("trial %d: node %s in %d clusters", trial, id, seen[id])
			}
		}
		if len(res.Strong)+len(res.Weak)+len(res.RemovedEdges) != g.EdgeCount() {
			t.Fatalf("trial %d: edges not partitioned", trial)
		}

		if want := gonumComponents(g, res); !equalSets(members(res), want) {
			t.Fatalf("trial %d: clusters = %v, gonum = %v", trial, members(res), want)
		}
	}
}

func gonumComponents(g *view.Graph, res *Result) [][]string {
	ug := simple.NewUndirectedGraph()
	index := make(map[string]int64, len(res.Nodes))
	for i, id := range res.Nodes {
		index[id] = int64(i)
		ug.AddNode(simple.Node(i))
	}
	for _, id := range res.Strong {
		e, _ := g.Edge(id)
		ug.SetEdge(ug.NewEdge(simple.Node(index[e.Source]), simple.Node(index[e.Target])))
	}

	var out [][]string
	for _, cc := range topo.ConnectedComponents(ug) {
		var ids []string
		for _, node := range cc {
			ids = append(ids, res.Nodes[node.ID()])
		}
		slices.Sort(ids)
		out = append(out, ids)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// shuffledGraph builds nodes and edges in a random order fixed by seed, then
// collapses the given nodes in a random order too. Times and features do not
// depend on insertion order.
func shuffledGraph(t *testing.T, seed uint64, nodes []string, hosts map[string]string, edges []string, collapsed []string) *view.Graph {
	t.Helper()
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b9))
	nodes, edges, collapsed = slices.Clone(nodes), slices.Clone(edges), slices.Clone(collapsed)
	r.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })
	r.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
	r.Shuffle(len(collapsed), func(i, j int) { collapsed[i], collapsed[j] = collapsed[j], collapsed[i] })

	g := view.NewGraph()
	for _, id := range nodes {
		n := view.NewNode(id, view.KindEvent, t0.Add(time.Duration(id[0]-'A')*time.Minute), "node "+id)
		if h, ok := hosts[id]; ok {
			n.Features.Set("host", h)
		}
		if err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, spec := range edges {
		id, rest, _ := strings.Cut(spec, ":")
		src, tgt, _ := strings.Cut(rest, ">")
		if err := g.AddEdge(view.NewEdge(id, src, tgt, t0)); err != nil {
			t.Fatalf("edge %s: %v", spec, err)
		}
	}
	collapse(t, g, collapsed...)
	return g
}

func TestCollapseIndependentOfInsertionOrder(t *testing.T) {
	tests := []struct {
		name      string
		nodes     []string
		hosts     map[string]string
		edges     []string
		collapsed []string
		removed   []string
	}{
		{
			name:      "Diamond",
			nodes:     []string{"A", "B", "C", "D"},
			edges:     []string{"ab:A>B", "ac:A>C", "bd:B>D", "cd:C>D"},
			collapsed: []string{"B"},
			removed:   []string{"B"},
		},
		{
			name:      "DiamondRoot",
			nodes:     []string{"A", "B", "C", "D"},
			edges:     []string{"ab:A>B", "ac:A>C", "bd:B>D", "cd:C>D"},
			collapsed: []string{"A"},
			removed:   []string{"A", "B", "C", "D"},
		},
		{
			name:  "MultiSeed",
			nodes: []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"},
			hosts: map[string]string{"A": "ws-1", "B": "ws-1", "C": "ws-2", "D": "ws-2", "I": "ws-3", "J": "ws-3"},
			edges: []string{
				"ab:A>B", "ac:A>C", "bd:B>D", "cd:C>D", "de:D>E",
				"ef:E>F", "eg:E>G", "fh:F>H", "gh:G>H", "ij:I>J", "jd:J>D",
			},
			collapsed: []string{"B", "E", "I"},
			removed:   []string{"B", "E", "F", "G", "H", "I", "J"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := Derive(shuffledGraph(t, 0, tt.nodes, tt.hosts, tt.edges, tt.collapsed), []string{"host"})
			if err != nil {
				t.Fatal(err)
			}
			if !slices.Equal(want.Removed, tt.removed) {
				t.Fatalf("Removed = %v, want %v", want.Removed, tt.removed)
			}

			for seed := uint64(1); seed <= 20; seed++ {
				got, err := Derive(shuffledGraph(t, seed, tt.nodes, tt.hosts, tt.edges, tt.collapsed), []string{"host"})
				if err != nil {
					t.Fatalf("seed %d: %v", seed, err)
				}
				if !slices.Equal(got.Removed, want.Removed) || !slices.Equal(got.RemovedEdges, want.RemovedEdges) {
					t.Fatalf("seed %d: removed %v/%v, want %v/%v", seed, got.Removed, got.RemovedEdges, want.Removed, want.RemovedEdges)
				}
				if !slices.Equal(got.Nodes, want.Nodes) || !slices.Equal(got.Strong, want.Strong) || !slices.Equal(got.Weak, want.Weak) {
					t.Fatalf("seed %d: nodes/strong/weak differ", seed)
				}
				if !equalSets(members(got), members(want)) {
					t.Fatalf("seed %d: clusters = %v, want %v", seed, members(got), members(want))
				}
				for _, id := range want.Nodes {
					a, _ := got.ClusterOf(id)
					b, _ := want.ClusterOf(id)
					if a.ID != b.ID {
						t.Errorf("seed %d: cluster id of %s changed", seed, id)
					}
				}
			}
		})
	}
}

func TestFeatureAgreementIsTyped(t *testing.T) {
	tests := []struct {
		name   string
		a, b   any
		strong bool
	}{
		{"SameString", "1", "1", true},
		{"IntVsString", int64(1), "1", false},
		{"BoolVsString", true, "true", false},
		{"IntWidths", int32(7), int64(7), true},
		{"IntVsFloat", int64(2), 2.0, false},
		{"NullVsString", nil, "null", false},
		{"NullVsNull", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, []string{"a", "b"}, "ab:a>b")
			na, _ := g.Node("a")
			nb, _ := g.Node("b")
			na.Features.Set("uid", tt.a)
			nb.Features.Set("uid", tt.b)

			r, err := Derive(g, []string{"uid"})
			if err != nil {
				t.Fatal(err)
			}
			if got := slices.Equal(r.Strong, []string{"ab"}); got != tt.strong {
				t.Errorf("strong = %v, want %v (weak %v)", got, tt.strong, r.Weak)
			}
		})
	}
}
