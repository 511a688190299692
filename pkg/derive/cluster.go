package derive

import (
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/activitylens/activitylens/pkg/view"
)

// clusterNamespace seeds cluster ids, so equal member sets get equal ids
// across runs and processes.
var clusterNamespace = uuid.MustParse("4b1d5a0e-7c2f-4e8a-9d3b-6a5f0c1e2d47")

// Cluster is a connected component of the strong-edge subgraph. Clusters are
// rebuilt on every derivation and never mutated in place.
type Cluster struct {
	// ID is a name-based UUID of the sorted member ids.
	ID uuid.UUID

	Label     string
	LabelHash uint64

	// Members holds node ids in discovery order.
	Members []string

	// Features maps every feature name seen on a member to its sorted
	// distinct stringified values. Members lacking the feature contribute
	// view.MissingValue.
	Features map[string][]string
}

// Size returns the number of members.
func (c *Cluster) Size() int { return len(c.Members) }

// FeatureNames returns the aggregated feature names in sorted order.
func (c *Cluster) FeatureNames() []string {
	return slices.Sorted(maps.Keys(c.Features))
}

func newCluster(w *working, members []string, active []string) Cluster {
	c := Cluster{
		Members:  members,
		Features: aggregate(w, members),
	}

	sorted := slices.Clone(members)
	slices.Sort(sorted)
	c.ID = uuid.NewSHA1(clusterNamespace, []byte(strings.Join(sorted, "\x00")))

	c.Label = clusterLabel(w, c, active)
	c.LabelHash = view.HashLabel(c.Label)
	return c
}

func aggregate(w *working, members []string) map[string][]string {
	names := make(map[string]bool)
	for _, id := range members {
		for _, n := range w.nodes[id].Features.Names() {
			names[n] = true
		}
	}

	out := make(map[string][]string, len(names))
	for name := range names {
		var vals []string
		for _, id := range members {
			v := view.MissingValue
			if raw, ok := w.nodes[id].Features.Get(name); ok {
				v = view.Stringify(raw)
			}
			vals = append(vals, v)
		}
		slices.Sort(vals)
		out[name] = slices.Compact(vals)
	}
	return out
}

// clusterLabel renders the active features as "name=v1|v2, ..." in active
// order. Without active features the label is the first member's.
func clusterLabel(w *working, c Cluster, active []string) string {
	var parts []string
	for _, f := range active {
		vals, ok := c.Features[f]
		if !ok {
			vals = []string{view.MissingValue}
		}
		parts = append(parts, f+"="+strings.Join(vals, "|"))
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", ")
	}
	first := w.nodes[c.Members[0]]
	if l := first.Label(); l != "" {
		return l
	}
	return first.ID
}
