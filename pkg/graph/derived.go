package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/activitylens/activitylens/pkg/derive"
)

// Derived is the JSON form of a derivation result.
type Derived struct {
	Nodes        []string         `json:"nodes"`
	Strong       []string         `json:"strong"`
	Weak         []string         `json:"weak"`
	Clusters     []DerivedCluster `json:"clusters"`
	Removed      []string         `json:"removed,omitempty"`
	RemovedEdges []string         `json:"removed_edges,omitempty"`
}

// DerivedCluster is the JSON form of one cluster.
type DerivedCluster struct {
	ID       string              `json:"id"`
	Label    string              `json:"label"`
	Members  []string            `json:"members"`
	Features map[string][]string `json:"features,omitempty"`
}

// FromResult converts a derivation result. Nil slices become empty so the
// output always carries every list.
func FromResult(r *derive.Result) Derived {
	d := Derived{
		Nodes:        nonNil(r.Nodes),
		Strong:       nonNil(r.Strong),
		Weak:         nonNil(r.Weak),
		Clusters:     make([]DerivedCluster, 0, len(r.Clusters)),
		Removed:      r.Removed,
		RemovedEdges: r.RemovedEdges,
	}
	for _, c := range r.Clusters {
		d.Clusters = append(d.Clusters, DerivedCluster{
			ID:       c.ID.String(),
			Label:    c.Label,
			Members:  c.Members,
			Features: c.Features,
		})
	}
	return d
}

// WriteDerived encodes a derivation result as indented JSON.
func WriteDerived(r *derive.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromResult(r)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
