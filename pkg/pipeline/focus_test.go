package pipeline

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/activitylens/activitylens/pkg/derive"
	"github.com/activitylens/activitylens/pkg/view"
)

// chain builds n nodes linked in a line, with timestamps shuffled so the
// insertion order is not the time order.
func chain(tb testing.TB, n int) (*view.Graph, *derive.Result) {
	tb.Helper()
	r := rand.New(rand.NewPCG(1, uint64(n)))
	offsets := r.Perm(n)

	g := view.NewGraph()
	for i := range n {
		id := "n" + strconv.Itoa(i)
		if err := g.AddNode(view.NewNode(id, view.KindEvent, t0.Add(time.Duration(offsets[i])*time.Second), id)); err != nil {
			tb.Fatal(err)
		}
		if i > 0 {
			prev := "n" + strconv.Itoa(i-1)
			src, _ := g.Node(prev)
			if err := g.AddEdge(view.NewEdge(prev+"-"+id, prev, id, src.Time)); err != nil {
				tb.Fatal(err)
			}
		}
	}
	res, err := derive.Derive(g, nil)
	if err != nil {
		tb.Fatal(err)
	}
	return g, res
}

func TestWindowedMatchesLinearScan(t *testing.T) {
	g, res := chain(t, 3000)
	w := &Window{Start: t0.Add(500 * time.Second), End: t0.Add(1700 * time.Second)}

	in := windowed(g, res, w)
	inside := func(at time.Time) bool { return !at.Before(w.Start) && !at.After(w.End) }

	want := 0
	for _, id := range res.Nodes {
		n, _ := g.Node(id)
		if in[&n.Item] != inside(n.Time) {
			t.Fatalf("node %s at %v: in=%v", id, n.Time, in[&n.Item])
		}
		if inside(n.Time) {
			want++
		}
	}
	for _, id := range slices.Concat(res.Strong, res.Weak) {
		e, _ := g.Edge(id)
		if in[&e.Item] != inside(e.Time) {
			t.Fatalf("edge %s at %v: in=%v", id, e.Time, in[&e.Item])
		}
		if inside(e.Time) {
			want++
		}
	}
	if len(in) != want {
		t.Errorf("windowed size = %d, want %d", len(in), want)
	}
	if windowed(g, res, nil) != nil {
		t.Error("no window should yield nil")
	}
}

func BenchmarkRefreshStylesWindow(b *testing.B) {
	for _, n := range []int{5000, 20000, 50000} {
		g, res := chain(b, n)
		opts := Options{Window: &Window{Start: t0.Add(time.Duration(n/4) * time.Second), End: t0.Add(time.Duration(n/2) * time.Second)}}
		b.Run(fmt.Sprint(n), func(b *testing.B) {
			for b.Loop() {
				RefreshStyles(g, res, opts)
			}
		})
	}
}
