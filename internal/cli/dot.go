package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/activitylens/activitylens/pkg/cache"
	"github.com/activitylens/activitylens/pkg/derive"
	"github.com/activitylens/activitylens/pkg/errors"
	"github.com/activitylens/activitylens/pkg/graph"
	"github.com/activitylens/activitylens/pkg/observability"
	"github.com/activitylens/activitylens/pkg/render/nodelink"
	"github.com/activitylens/activitylens/pkg/view"
)

// Export formats of the dot command.
const (
	formatDOT = "dot"
	formatSVG = "svg"
	formatPNG = "png"
)

// dotOpts holds the command-line flags for the dot command.
type dotOpts struct {
	sceneFlags
	output   string // output path; empty derives it from the scene path
	format   string // dot, svg or png
	detailed bool   // include times and features in node labels
	noCache  bool   // disable the artifact cache
}

// dotCommand creates the dot command, which exports the derived graph as a
// Graphviz node-link diagram with one subgraph per cluster.
func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOpts{format: formatSVG}

	cmd := &cobra.Command{
		Use:   "dot [scene]",
		Short: "Export the derived graph as DOT, SVG or PNG",
		Long: `Dot derives the scene and writes a Graphviz node-link diagram. Clusters
become subgraphs; weak edges are dashed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateExportFormat(opts.format); err != nil {
				return err
			}
			return c.runDot(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default <scene>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show times and features in node labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

func validateExportFormat(f string) error {
	switch f {
	case formatDOT, formatSVG, formatPNG:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'dot', 'svg', or 'png')", f)
}

func (c *CLI) runDot(ctx context.Context, input string, opts *dotOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sc, err := loadScene(ctx, input)
	if err != nil {
		return err
	}
	g := sc.graph

	artifacts, err := newCache(cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	features := opts.resolve(cfg, sc)
	data, hit, err := exportGraph(ctx, artifacts, artifactKeyer(), g, features, opts)
	if err != nil {
		return err
	}

	path := outputPath(opts.output, input, opts.format)
	if err := writeOutput(path, data); err != nil {
		return err
	}
	if path != "-" {
		printFile(path)
		printStats(g.NodeCount(), g.EdgeCount(), 0, hit)
	}
	return nil
}

// exportGraph returns the export bytes for g, reading and filling the
// artifact cache. The bool reports a cache hit.
func exportGraph(ctx context.Context, artifacts cache.Cache, keyer cache.Keyer, g *view.Graph, features []string, opts *dotOpts) ([]byte, bool, error) {
	logger := loggerFromContext(ctx)

	sceneHash, err := graph.Hash(graph.FromView(g, nil))
	if err != nil {
		return nil, false, err
	}
	key := keyer.ExportKey(sceneHash, cache.ExportKeyOpts{
		Format:   opts.format,
		Features: features,
		Detailed: opts.detailed,
	})
	if data, ok, err := artifacts.Get(ctx, key); err == nil && ok {
		observability.Pipeline().OnArtifact(opts.format, true)
		logger.Debug("export cache hit", "key", key)
		return data, true, nil
	}
	observability.Pipeline().OnArtifact(opts.format, false)

	res, err := derive.Derive(g, features)
	if err != nil {
		return nil, false, err
	}
	dot := nodelink.ToDOT(g, res, nodelink.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case formatDOT:
		data = []byte(dot)
	case formatSVG:
		logger.Info("Rendering node-link SVG")
		data, err = nodelink.RenderSVG(ctx, dot)
	case formatPNG:
		logger.Info("Rendering node-link PNG")
		data, err = nodelink.RenderPNG(ctx, dot)
	default:
		err = fmt.Errorf("unknown format: %s", opts.format)
	}
	if err != nil {
		return nil, false, err
	}

	if err := artifacts.Set(ctx, key, data, cache.TTLExport); err != nil {
		logger.Warn("cache export", "error", err)
	}
	return data, false, nil
}
