package derive_test

import (
	"fmt"
	"time"

	"github.com/activitylens/activitylens/pkg/derive"
	"github.com/activitylens/activitylens/pkg/view"
)

func Example() {
	at := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	g := view.NewGraph()
	for _, id := range []string{"A", "B", "C", "D", "E"} {
		_ = g.AddNode(view.NewNode(id, view.KindEvent, at, id))
	}
	_ = g.AddEdge(view.NewEdge("ab", "A", "B", at))
	_ = g.AddEdge(view.NewEdge("bc", "B", "C", at))
	_ = g.AddEdge(view.NewEdge("cd", "C", "D", at))

	res, _ := derive.Derive(g, nil)
	for _, c := range res.Clusters {
		fmt.Println(c.Members)
	}

	_, _ = g.ToggleCollapse("B")
	res, _ = derive.Derive(g, nil)
	fmt.Println("nodes:", res.Nodes, "removed:", res.Removed)

	// Output:
	// [A B C D]
	// [E]
	// nodes: [A E] removed: [B C D]
}

func ExampleDeriver_Derive() {
	at := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	g := view.NewGraph()
	for id, host := range map[string]string{"a": "ws-1", "b": "ws-1", "c": "ws-2"} {
		n := view.NewNode(id, view.KindEvent, at, id)
		n.Features.Set("host", host)
		_ = g.AddNode(n)
	}
	_ = g.AddEdge(view.NewEdge("ab", "a", "b", at))
	_ = g.AddEdge(view.NewEdge("bc", "b", "c", at))

	d := derive.Deriver{Features: []string{"host"}}
	res, err := d.Derive(g)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("strong:", res.Strong, "weak:", res.Weak)
	for _, c := range res.Clusters {
		fmt.Println(c.Label, c.Members)
	}

	// Output:
	// strong: [ab] weak: [bc]
	// host=ws-1 [a b]
	// host=ws-2 [c]
}
