package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/activitylens/activitylens/internal/config"
	"github.com/activitylens/activitylens/pkg/errors"
	"github.com/activitylens/activitylens/pkg/graph"
	"github.com/activitylens/activitylens/pkg/pipeline"
	"github.com/activitylens/activitylens/pkg/view"
)

// sceneFlags holds the input flags shared by every scene command.
type sceneFlags struct {
	features []string // active clustering features; nil means the config default
}

func (f *sceneFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.features, "features", "F", nil, "active clustering features (comma-separated, default from config)")
}

// resolve picks the active features: the flag when given, then the scene's
// own list, then the config.
func (f *sceneFlags) resolve(cfg *config.Config, sc *scene) []string {
	switch {
	case f.features != nil:
		return f.features
	case len(sc.features) > 0:
		return sc.features
	default:
		return cfg.Cluster.Features
	}
}

// scene is a loaded scene file.
type scene struct {
	graph    *view.Graph
	features []string
}

// loadScene reads a JSON or YAML scene file into a view graph.
func loadScene(ctx context.Context, path string) (*scene, error) {
	prog := startProgress(ctx)

	s, err := graph.ReadSceneFile(path)
	if err != nil {
		return nil, err
	}
	g, err := graph.ToView(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	prog.done("Loaded scene", "file", filepath.Base(path), "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return &scene{graph: g, features: s.Features}, nil
}

// parseWindow turns the --from and --to flags into a time window. Both empty
// means no window; one alone is an error.
func parseWindow(from, to string) (*pipeline.Window, error) {
	if from == "" && to == "" {
		return nil, nil
	}
	if from == "" || to == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "--from and --to must be given together")
	}
	start, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--from")
	}
	end, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "--to")
	}
	return &pipeline.Window{Start: start, End: end}, nil
}

// outputPath returns output, or input with its extension replaced by ext.
func outputPath(output, input, ext string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + ext
}

// openOutput opens path for writing. An empty path or "-" writes to stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// writeOutput writes data to path via openOutput.
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
