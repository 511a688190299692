package pipeline

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/activitylens/activitylens/pkg/cache"
	"github.com/activitylens/activitylens/pkg/derive"
	"github.com/activitylens/activitylens/pkg/errors"
	"github.com/activitylens/activitylens/pkg/layer"
	"github.com/activitylens/activitylens/pkg/observability"
	"github.com/activitylens/activitylens/pkg/raster"
	"github.com/activitylens/activitylens/pkg/view"
)

// Runner owns the raster cache and runs recompute passes against it. It is
// not safe for concurrent use; drive it from one event loop.
type Runner struct {
	Registry  *raster.Registry
	Cache     *raster.Cache
	Artifacts cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
}

// NewRunner creates a runner. A nil registry loads the default styles, a nil
// artifact cache disables artifact caching, and a nil keyer uses
// DefaultKeyer.
func NewRunner(reg *raster.Registry, artifacts cache.Cache, keyer cache.Keyer, logger *log.Logger) (*Runner, error) {
	if reg == nil {
		var err error
		if reg, err = raster.DefaultRegistry(); err != nil {
			return nil, err
		}
	}
	if artifacts == nil {
		artifacts = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Registry:  reg,
		Cache:     raster.NewCache(DefaultScale),
		Artifacts: artifacts,
		Keyer:     keyer,
		Logger:    logger,
	}, nil
}

// Recompute runs one full pass over g: derive, refresh styles, build and sort
// the draw list, segment it, and prewarm the raster cache. g's focus bits are
// updated in place.
func (r *Runner) Recompute(g *view.Graph, opts Options) (*Frame, error) {
	start := time.Now()
	frame, err := r.recompute(g, opts)
	draws, runs := 0, 0
	if frame != nil {
		frame.Stats.Total = time.Since(start)
		draws, runs = frame.Stats.Draws, frame.Stats.Runs
	}
	observability.Pipeline().OnRecompute(draws, runs, time.Since(start), err)
	return frame, err
}

func (r *Runner) recompute(g *view.Graph, opts Options) (*Frame, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Derive
	deriveStart := time.Now()
	d := derive.Deriver{Features: opts.Features}
	res, err := d.Derive(g)
	if err != nil {
		return nil, fmt.Errorf("derive: %w", err)
	}
	frame := &Frame{Graph: g, Result: res}
	frame.Stats.DeriveTime = time.Since(deriveStart)
	frame.Stats.Nodes = len(res.Nodes)
	frame.Stats.Edges = len(res.Strong) + len(res.Weak)
	frame.Stats.Clusters = len(res.Clusters)

	r.Logger.Debug("derived render graph",
		"nodes", frame.Stats.Nodes,
		"clusters", frame.Stats.Clusters,
		"removed", len(res.Removed),
		"duration", frame.Stats.DeriveTime)

	// Stage 2: Refresh styles
	RefreshStyles(g, res, opts)

	// Stage 3: Sort and segment
	draws, reqs := r.buildDraws(g, res, opts.Labels)
	style := func(d Draw) uint32 { return d.Style }
	priority := func(d Draw) int { return d.Priority }
	layer.SortFunc(draws, priority, style, view.PaintMask)
	plan, err := layer.SegmentItems(draws, Depth, priority, style, view.PaintMask)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	frame.Draws = draws
	frame.Plan = plan
	frame.Stats.Draws = len(draws)
	frame.Stats.Runs = len(plan.Runs)

	// Stage 4: Prewarm
	var fresh []raster.Request
	for _, req := range reqs {
		if _, ok := r.Cache.Get(req.Key); !ok {
			fresh = append(fresh, req)
		}
	}
	if err := r.Cache.Prerender(fresh); err != nil {
		return nil, err
	}
	frame.Stats.Prerendered = len(fresh)

	r.Logger.Debug("segmented draw list",
		"draws", frame.Stats.Draws,
		"runs", frame.Stats.Runs,
		"prerendered", frame.Stats.Prerendered)

	return frame, nil
}

// buildDraws lists every visible item with its priority and returns one
// raster request per distinct key.
func (r *Runner) buildDraws(g *view.Graph, res *derive.Result, labels bool) ([]Draw, []raster.Request) {
	var draws []Draw
	var reqs []raster.Request
	requested := make(map[string]bool)
	request := func(key string, f raster.Factory) {
		if !requested[key] {
			requested[key] = true
			reqs = append(reqs, raster.Request{Key: key, Factory: f})
		}
	}

	for _, ids := range []struct {
		ids  []string
		weak bool
	}{{res.Strong, false}, {res.Weak, true}} {
		for _, id := range ids.ids {
			e, ok := g.Edge(id)
			if !ok || e.Style().Hidden() {
				continue
			}
			p := PriorityStrongEdge
			if ids.weak {
				p = PriorityWeakEdge
			}
			draws = append(draws, Draw{Kind: DrawEdge, ID: id, Priority: p, Style: uint32(e.Style()), Weak: ids.weak})
		}
	}

	for _, id := range res.Nodes {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		st := n.Style()
		if st.Hidden() {
			continue
		}
		p := PriorityNode
		if st.Selection() != view.SelectNone {
			p = PrioritySelected
		}
		key := raster.NodeKey(uint32(st), n.LabelHash())
		draws = append(draws, Draw{Kind: DrawNode, ID: id, Priority: p, Style: uint32(st), Key: key})
		request(key, raster.NodeFactory(r.Registry, styleName(st.Kind()), lookOf(st), n.Label()))
	}

	if labels {
		for _, c := range res.Clusters {
			key := raster.TextKey(c.Label)
			draws = append(draws, Draw{Kind: DrawLabel, ID: c.ID.String(), Priority: PriorityLabel, Key: key})
			request(key, raster.TextFactory(r.Registry, raster.StyleCluster, c.Label))
		}
	}
	return draws, reqs
}

// Rescale changes the raster cache scale, regenerating every bitmap.
func (r *Runner) Rescale(k float64) error {
	if k <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", k)
	}
	if k == r.Cache.GetScale() {
		return nil
	}
	start := time.Now()
	err := r.Cache.Scale(k)
	r.Registry.PruneFaces(k)
	r.Logger.Debug("rescaled raster cache", "scale", k, "entries", r.Cache.Len(), "duration", time.Since(start))
	return err
}

// Close releases the registry's font faces and the artifact cache.
func (r *Runner) Close() error {
	err := r.Registry.Close()
	if r.Artifacts != nil {
		if cerr := r.Artifacts.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func styleName(k view.Kind) string {
	if k == view.KindAlert {
		return raster.StyleAlert
	}
	return raster.StyleEvent
}

func lookOf(st view.Style) raster.Look {
	return raster.Look{
		Alpha:    st.Alpha(),
		Selected: st.Selection() != view.SelectNone,
		Badge:    st.Badge(),
	}
}
