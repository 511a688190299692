package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/activitylens/activitylens/pkg/pipeline"
	"github.com/activitylens/activitylens/pkg/view"
)

// renderOpts holds the command-line flags for the render command. Zero
// geometry values keep the config value.
type renderOpts struct {
	sceneFlags
	output      string   // PNG path; empty derives it from the scene path
	width       int      // logical frame width
	height      int      // logical frame height
	scale       float64  // output pixels per logical pixel
	supersample int      // oversampling factor before downsampling
	labels      bool     // draw one label per cluster
	focus       []string // node ids whose clusters stay in focus
	from, to    string   // RFC3339 focus window
	noCache     bool     // disable the artifact cache
	refresh     bool     // re-render even on a cache hit
}

// renderCommand creates the render command, which rasterizes a timeline frame
// of a scene to PNG.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [scene]",
		Short: "Render a timeline frame of a scene to PNG",
		Long: `Render derives the scene, lays clusters out in horizontal lanes along a
time axis, and paints the frame from the raster cache. Items outside the
--from/--to window or outside the clusters of --focus nodes are dimmed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PNG file (default <scene>.png, - for stdout)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "frame width (default from config)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "frame height (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "output scale factor (default from config)")
	cmd.Flags().IntVar(&opts.supersample, "supersample", 0, "supersampling factor, 1-4 (default from config)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "draw cluster labels")
	cmd.Flags().StringSliceVar(&opts.focus, "focus", nil, "keep the clusters of these node ids in focus")
	cmd.Flags().StringVar(&opts.from, "from", "", "focus window start (RFC3339)")
	cmd.Flags().StringVar(&opts.to, "to", "", "focus window end (RFC3339)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached frames")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, ro *renderOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := ro.pipelineOptions(cmd, cfg.Options())
	if err != nil {
		return err
	}
	sc, err := loadScene(ctx, input)
	if err != nil {
		return err
	}
	g := sc.graph
	opts.Features = ro.resolve(cfg, sc)
	opts.Logger = c.Logger

	runner, err := c.newRunner(cfg, ro.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	out, err := renderFrame(ctx, runner, g, opts)
	if err != nil {
		return err
	}

	path := outputPath(ro.output, input, "png")
	if err := writeOutput(path, out.PNG); err != nil {
		return err
	}
	if path == "-" {
		return nil
	}

	printFile(path)
	if out.Frame != nil {
		printStats(out.Frame.Stats.Nodes, out.Frame.Stats.Edges, out.Frame.Stats.Clusters, false)
		printDetail("%d draws in %d runs, %d bitmaps prerendered", out.Frame.Stats.Draws, out.Frame.Stats.Runs, out.Frame.Stats.Prerendered)
	} else {
		printStats(g.NodeCount(), g.EdgeCount(), 0, true)
	}
	return nil
}

func renderFrame(ctx context.Context, runner *pipeline.Runner, g *view.Graph, opts pipeline.Options) (*pipeline.Render, error) {
	spinner := newSpinner(ctx, stderr, "Rendering frame")
	spinner.Start()
	out, err := runner.RenderPNG(ctx, g, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
		} else {
			spinner.StopWithError("Render failed")
		}
		return nil, fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	return out, nil
}

// pipelineOptions overlays the flags the user set onto base.
func (ro *renderOpts) pipelineOptions(cmd *cobra.Command, base pipeline.Options) (pipeline.Options, error) {
	flags := cmd.Flags()
	if flags.Changed("width") {
		base.Width = ro.width
	}
	if flags.Changed("height") {
		base.Height = ro.height
	}
	if flags.Changed("scale") {
		base.Scale = ro.scale
	}
	if flags.Changed("supersample") {
		base.Supersample = ro.supersample
	}
	if flags.Changed("labels") {
		base.Labels = ro.labels
	}
	base.FocusNodes = ro.focus
	base.Refresh = ro.refresh

	w, err := parseWindow(ro.from, ro.to)
	if err != nil {
		return base, err
	}
	base.Window = w
	return base, nil
}
