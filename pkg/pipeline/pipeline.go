// Package pipeline composes the render core into the "recompute layout" pass.
//
// A single pass runs, in order:
//
//  1. Derive: collapse pruning and clustering ([derive]).
//  2. Refresh styles: focus bits from the time window and cluster focus.
//  3. Build the draw list: edges, nodes and cluster labels at fixed priorities.
//  4. Sort by (priority, style & [view.PaintMask]) and segment ([layer]).
//  5. Prewarm the raster cache for every bitmap the frame needs ([raster]).
//
// The result is a [Frame]. A painter walks Frame.Plan.Runs in order and draws
// each run with one context state change; [Runner.Paint] is such a painter
// for an in-memory RGBA target.
//
// # Scheduling
//
// The core is single-threaded and driven by an event loop. [Scheduler]
// coalesces recompute requests so any number of them between two display
// refreshes produce one pass. [Debouncer] holds back rescale requests until
// zooming has been quiet for a while, because a rescale regenerates every
// cached bitmap.
//
// # Usage
//
//	runner, err := pipeline.NewRunner(nil, cache.NewNullCache(), nil, logger)
//	frame, err := runner.Recompute(g, pipeline.Options{Features: []string{"host"}})
//	pos := pipeline.TimelineLayout(frame.Result, g, 1280, 720)
//	runner.Paint(img, frame, pos)
//
// Or produce a PNG in one call, served from the artifact cache when possible:
//
//	out, err := runner.RenderPNG(ctx, g, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/activitylens/activitylens/pkg/derive"
	"github.com/activitylens/activitylens/pkg/errors"
	"github.com/activitylens/activitylens/pkg/layer"
	"github.com/activitylens/activitylens/pkg/view"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default frame width in logical pixels.
	DefaultWidth = 1280

	// DefaultHeight is the default frame height in logical pixels.
	DefaultHeight = 720

	// DefaultScale is the default device pixel ratio.
	DefaultScale = 1.0

	// DefaultSupersample is the default oversampling factor for PNG output.
	DefaultSupersample = 2

	// MaxSupersample bounds the intermediate canvas size.
	MaxSupersample = 4

	// MaxDimension bounds frame width and height.
	MaxDimension = 16384
)

// Draw priorities, back to front. Depth is the number of levels.
const (
	PriorityWeakEdge = iota
	PriorityStrongEdge
	PriorityNode
	PrioritySelected
	PriorityLabel

	Depth
)

// =============================================================================
// Options
// =============================================================================

// Window is an inclusive time range. Items outside it lose focus.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies in the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Options configures one recompute or render.
type Options struct {
	// Features is the active clustering-feature list.
	Features []string

	// Window, when set, puts items outside it out of focus.
	Window *Window

	// FocusNodes, when non-empty, puts every cluster without one of these
	// nodes out of focus.
	FocusNodes []string

	// Labels adds a text label per cluster.
	Labels bool

	// Frame geometry for RenderPNG.
	Width       int
	Height      int
	Scale       float64
	Supersample int

	// Refresh bypasses the artifact cache.
	Refresh bool

	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks options and fills defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	for _, f := range o.Features {
		if err := errors.ValidateName("feature", f); err != nil {
			return err
		}
	}
	if o.Window != nil && o.Window.End.Before(o.Window.Start) {
		return errors.New(errors.ErrCodeInvalidInput, "time window ends before it starts")
	}

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Supersample == 0 {
		o.Supersample = DefaultSupersample
	}
	if o.Width < 0 || o.Height < 0 || o.Width > MaxDimension || o.Height > MaxDimension {
		return errors.New(errors.ErrCodeInvalidInput, "frame size %dx%d out of range", o.Width, o.Height)
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %g", o.Scale)
	}
	if o.Supersample < 1 || o.Supersample > MaxSupersample {
		return errors.New(errors.ErrCodeInvalidInput, "supersample must be in [1, %d], got %d", MaxSupersample, o.Supersample)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// =============================================================================
// Frame
// =============================================================================

// DrawKind tags a draw item.
type DrawKind uint8

const (
	DrawEdge DrawKind = iota
	DrawNode
	DrawLabel
)

func (k DrawKind) String() string {
	switch k {
	case DrawEdge:
		return "edge"
	case DrawNode:
		return "node"
	case DrawLabel:
		return "label"
	}
	return "unknown"
}

// Draw is one item of the sorted draw list.
type Draw struct {
	Kind     DrawKind
	ID       string // node, edge or cluster id
	Priority int
	Style    uint32
	// Key is the raster cache key; empty for stroked edges.
	Key string
	// Weak marks an edge between clusters.
	Weak bool
}

// Frame is the output of one recompute pass.
type Frame struct {
	// Graph is the graph the frame was computed from.
	Graph  *view.Graph
	Result *derive.Result
	Draws  []Draw
	Plan   layer.Segmentation
	Stats  Stats
}

// Stats contains recompute statistics.
type Stats struct {
	Nodes       int
	Edges       int
	Clusters    int
	Draws       int
	Runs        int
	Prerendered int
	DeriveTime  time.Duration
	Total       time.Duration
}

// Layer returns the draws at priority p.
func (f *Frame) Layer(p int) []Draw {
	start, end, ok := f.Plan.Range(p)
	if !ok {
		return nil
	}
	return f.Draws[start:end]
}

// Keys returns the distinct raster keys the frame paints, in draw order.
func (f *Frame) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, d := range f.Draws {
		if d.Key != "" && !seen[d.Key] {
			seen[d.Key] = true
			keys = append(keys, d.Key)
		}
	}
	return keys
}
