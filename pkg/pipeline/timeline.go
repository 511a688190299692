package pipeline

import (
	"image"
	"math"

	"github.com/activitylens/activitylens/pkg/derive"
	"github.com/activitylens/activitylens/pkg/view"
)

// Positions maps node and cluster ids to logical pixel coordinates.
type Positions map[string]image.Point

const (
	timelineMargin = 40
	labelInset     = 12
)

// TimelineLayout places surviving nodes on a width x height canvas: x is
// linear in time between the earliest and latest node, and each cluster gets
// its own horizontal lane in result order. Cluster label positions are keyed
// by cluster id and centered near the top of their lane.
func TimelineLayout(res *derive.Result, g *view.Graph, width, height int) Positions {
	pos := make(Positions, len(res.Nodes)+len(res.Clusters))
	if len(res.Clusters) == 0 {
		return pos
	}

	var first, last int64
	seen := false
	for _, id := range res.Nodes {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		t := n.Time.UnixNano()
		if !seen || t < first {
			first = t
		}
		if !seen || t > last {
			last = t
		}
		seen = true
	}

	left, right := float64(timelineMargin), float64(width-timelineMargin)
	if right < left {
		left, right = 0, float64(width)
	}
	lane := float64(height) / float64(len(res.Clusters))

	for i, c := range res.Clusters {
		y := int(math.Round(lane * (float64(i) + 0.5)))
		pos[c.ID.String()] = image.Pt(width/2, int(math.Round(lane*float64(i)))+labelInset)
		for _, id := range c.Members {
			n, ok := g.Node(id)
			if !ok {
				continue
			}
			x := (left + right) / 2
			if last > first {
				frac := float64(n.Time.UnixNano()-first) / float64(last-first)
				x = left + frac*(right-left)
			}
			pos[id] = image.Pt(int(math.Round(x)), y)
		}
	}
	return pos
}
