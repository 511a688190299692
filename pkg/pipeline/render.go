package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/activitylens/activitylens/pkg/cache"
	"github.com/activitylens/activitylens/pkg/graph"
	"github.com/activitylens/activitylens/pkg/observability"
	"github.com/activitylens/activitylens/pkg/view"
)

// =============================================================================
// Painting
// =============================================================================

// PaintStats counts the work of one Paint call.
type PaintStats struct {
	Runs    int // runs walked
	Strokes int // edge stroke calls, one per edge run
	Blits   int // cached bitmaps drawn
}

var edgeInk = color.RGBA{R: 0x6b, G: 0x6f, B: 0x7a, A: 0xff}

// Paint draws frame onto dst, walking runs in plan order. Each edge run is
// stroked with one call; nodes and labels are blitted from the raster cache.
// Positions are logical and are multiplied by the cache scale.
func (r *Runner) Paint(dst *image.RGBA, frame *Frame, pos Positions) PaintStats {
	var st PaintStats
	scale := r.Cache.GetScale()
	at := func(id string) (float64, float64, bool) {
		p, ok := pos[id]
		return float64(p.X) * scale, float64(p.Y) * scale, ok
	}

	dc := gg.NewContextForRGBA(dst)
	for _, run := range frame.Plan.Runs {
		st.Runs++
		draws := frame.Draws[run.Start:run.End]
		if draws[0].Kind == DrawEdge {
			if strokeRun(dc, frame.Graph, draws, view.Style(run.Style), scale, at) {
				st.Strokes++
			}
			continue
		}
		for _, d := range draws {
			x, y, ok := at(d.ID)
			if !ok {
				continue
			}
			if r.Cache.Draw(dst, image.Pt(int(math.Round(x)), int(math.Round(y))), d.Key) {
				st.Blits++
			}
		}
	}
	return st
}

func strokeRun(dc *gg.Context, g *view.Graph, draws []Draw, style view.Style, scale float64, at func(string) (float64, float64, bool)) bool {
	paths := 0
	for _, d := range draws {
		e, ok := g.Edge(d.ID)
		if !ok {
			continue
		}
		x0, y0, ok0 := at(e.Source)
		x1, y1, ok1 := at(e.Target)
		if !ok0 || !ok1 {
			continue
		}
		dc.MoveTo(x0, y0)
		dc.LineTo(x1, y1)
		paths++
	}
	if paths == 0 {
		dc.ClearPath()
		return false
	}

	dc.SetColor(color.NRGBA{R: edgeInk.R, G: edgeInk.G, B: edgeInk.B, A: uint8(255 * style.Alpha())})
	w := math.Max(1, scale)
	if style.Selection() != view.SelectNone {
		w *= 2
	}
	dc.SetLineWidth(w)
	if draws[0].Weak {
		dc.SetDash(4*scale, 3*scale)
	}
	dc.Stroke()
	dc.SetDash()
	return true
}

// =============================================================================
// PNG rendering
// =============================================================================

// Render is the output of RenderPNG.
type Render struct {
	PNG      []byte
	Key      string
	CacheHit bool
	// Frame is nil on a cache hit.
	Frame *Frame
}

// RenderPNG recomputes g and paints it onto a white canvas laid out with
// TimelineLayout. The canvas is drawn at Supersample times the output scale
// and reduced with a Catmull-Rom filter. Results are cached in r.Artifacts
// under a key of the scene hash and every option that shapes the frame.
func (r *Runner) RenderPNG(ctx context.Context, g *view.Graph, opts Options) (*Render, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	sceneHash, err := graph.Hash(graph.FromView(g, nil))
	if err != nil {
		return nil, err
	}
	key := r.Keyer.FrameKey(sceneHash, r.frameKeyOpts(opts))

	if !opts.Refresh {
		if data, hit, err := r.Artifacts.Get(ctx, key); err == nil && hit {
			observability.Pipeline().OnArtifact("png", true)
			r.Logger.Debug("frame cache hit", "key", key)
			return &Render{PNG: data, Key: key, CacheHit: true}, nil
		}
	}
	observability.Pipeline().OnArtifact("png", false)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	k := opts.Scale * float64(opts.Supersample)
	if err := r.Rescale(k); err != nil {
		return nil, err
	}
	frame, err := r.Recompute(g, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	canvas := image.NewRGBA(image.Rect(0, 0, scaled(opts.Width, k), scaled(opts.Height, k)))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)

	paint := r.Paint(canvas, frame, TimelineLayout(frame.Result, g, opts.Width, opts.Height))

	out := canvas
	if opts.Supersample > 1 {
		out = image.NewRGBA(image.Rect(0, 0, scaled(opts.Width, opts.Scale), scaled(opts.Height, opts.Scale)))
		xdraw.CatmullRom.Scale(out, out.Bounds(), canvas, canvas.Bounds(), xdraw.Src, nil)
	}

	var buf bytes.Buffer
	if err := gg.NewContextForRGBA(out).EncodePNG(&buf); err != nil {
		return nil, err
	}
	r.Logger.Debug("painted frame",
		"size", out.Bounds().Size(),
		"runs", paint.Runs,
		"strokes", paint.Strokes,
		"blits", paint.Blits,
		"duration", time.Since(start))

	if err := r.Artifacts.Set(ctx, key, buf.Bytes(), cache.TTLFrame); err != nil {
		r.Logger.Warn("cache frame", "error", err)
	}
	return &Render{PNG: buf.Bytes(), Key: key, Frame: frame}, nil
}

func (r *Runner) frameKeyOpts(opts Options) cache.FrameKeyOpts {
	k := cache.FrameKeyOpts{
		Width:       opts.Width,
		Height:      opts.Height,
		Scale:       opts.Scale,
		Supersample: opts.Supersample,
		Features:    opts.Features,
		Selected:    opts.FocusNodes,
		Styles:      r.Registry.Fingerprint(),
		Labels:      opts.Labels,
	}
	if opts.Window != nil {
		k.WindowStart = opts.Window.Start.UnixNano()
		k.WindowEnd = opts.Window.End.UnixNano()
	}
	return k
}

func scaled(n int, k float64) int {
	return max(1, int(math.Round(float64(n)*k)))
}
