package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/activitylens/activitylens/pkg/derive"
	"github.com/activitylens/activitylens/pkg/graph"
)

// maxListedMembers caps the member column of the cluster table.
const maxListedMembers = 4

// deriveOpts holds the command-line flags for the derive command.
type deriveOpts struct {
	sceneFlags
	json   bool   // write the derived graph as JSON instead of a table
	output string // JSON output path; empty means stdout
}

// deriveCommand creates the derive command, which prints the clusters and
// edge split of a scene.
func (c *CLI) deriveCommand() *cobra.Command {
	var opts deriveOpts

	cmd := &cobra.Command{
		Use:   "derive [scene]",
		Short: "Derive clusters and strong/weak edges from a scene",
		Long: `Derive applies collapse, splits edges into strong and weak by the active
clustering features, and groups nodes into clusters along strong edges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDerive(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "write the derived graph as JSON")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "JSON output file (implies --json)")

	return cmd
}

func (c *CLI) runDerive(ctx context.Context, input string, opts *deriveOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sc, err := loadScene(ctx, input)
	if err != nil {
		return err
	}

	features := opts.resolve(cfg, sc)
	prog := startProgress(ctx)
	res, err := derive.Derive(sc.graph, features)
	if err != nil {
		return err
	}
	prog.done("Derived scene", "clusters", len(res.Clusters), "features", strings.Join(features, ","))

	if opts.json || opts.output != "" {
		var buf bytes.Buffer
		if err := graph.WriteDerived(res, &buf); err != nil {
			return err
		}
		if err := writeOutput(opts.output, buf.Bytes()); err != nil {
			return err
		}
		if opts.output != "" {
			printFile(opts.output)
		}
		return nil
	}

	fmt.Fprintln(stdout, clusterTable(res))
	printStats(len(res.Nodes), len(res.Strong)+len(res.Weak), len(res.Clusters), false)
	if len(res.Removed) > 0 {
		printDetail("%d nodes and %d edges hidden by collapse", len(res.Removed), len(res.RemovedEdges))
	}
	return nil
}

// clusterTable renders one row per cluster: label, size, the first members
// and the aggregated features.
func clusterTable(res *derive.Result) string {
	rows := make([][]string, 0, len(res.Clusters))
	for i, cl := range res.Clusters {
		members := cl.Members
		more := ""
		if len(members) > maxListedMembers {
			more = fmt.Sprintf(" +%d", len(members)-maxListedMembers)
			members = members[:maxListedMembers]
		}
		var feats []string
		for _, name := range cl.FeatureNames() {
			feats = append(feats, name+"="+strings.Join(cl.Features[name], "|"))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			cl.Label,
			fmt.Sprintf("%d", cl.Size()),
			strings.Join(members, ", ") + more,
			strings.Join(feats, " "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Cluster", "Size", "Members", "Features").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 2:
				return lipgloss.NewStyle().Foreground(colorWhite).Align(lipgloss.Right)
			default:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
		}).
		Render()
}
