package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/activitylens/activitylens/pkg/chrono"
	"github.com/activitylens/activitylens/pkg/derive"
	"github.com/activitylens/activitylens/pkg/view"
)

const (
	defaultSpan = time.Hour
	minSpan     = time.Second
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// timelineOpts holds the command-line flags for the timeline command.
type timelineOpts struct {
	sceneFlags
	span time.Duration // trailing window shown before the cursor
	at   string        // initial cursor (RFC3339); empty means the first item
	list bool          // print the window once instead of starting the TUI
}

// timelineCommand creates the timeline command, an interactive scrubber over
// the surviving nodes of a scene.
func (c *CLI) timelineCommand() *cobra.Command {
	opts := timelineOpts{span: defaultSpan}

	cmd := &cobra.Command{
		Use:   "timeline [scene]",
		Short: "Scrub through a scene in time",
		Long: `Timeline steps through the distinct instants of a derived scene. The
cursor moves with ←/→ to the previous or next instant, and the table lists
every node inside the trailing window that ends at the cursor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTimeline(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().DurationVar(&opts.span, "span", opts.span, "trailing window width")
	cmd.Flags().StringVar(&opts.at, "at", "", "initial cursor time (RFC3339)")
	cmd.Flags().BoolVar(&opts.list, "list", false, "print the window at the cursor and exit")

	return cmd
}

func (c *CLI) runTimeline(ctx context.Context, input string, opts *timelineOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	sc, err := loadScene(ctx, input)
	if err != nil {
		return err
	}
	res, err := derive.Derive(sc.graph, opts.resolve(cfg, sc))
	if err != nil {
		return err
	}

	m := NewScrubberModel(sc.graph, res, opts.span)
	if m.Index.Len() == 0 {
		printInfo("Scene has no visible nodes")
		return nil
	}
	if opts.at != "" {
		t, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		m.Cursor = t
	}

	if opts.list {
		fmt.Fprintln(stdout, m.View())
		return nil
	}
	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// ScrubberModel - Interactive time scrubbing
// =============================================================================

// ScrubberModel is the bubbletea model for the timeline scrubber.
type ScrubberModel struct {
	Index  *chrono.Index[*view.Item]
	Graph  *view.Graph
	Result *derive.Result
	Cursor time.Time
	Span   time.Duration
	Height int
}

// NewScrubberModel indexes the surviving nodes of res and puts the cursor on
// the earliest one.
func NewScrubberModel(g *view.Graph, res *derive.Result, span time.Duration) ScrubberModel {
	items := make([]*view.Item, 0, len(res.Nodes))
	for _, id := range res.Nodes {
		if n, ok := g.Node(id); ok {
			items = append(items, &n.Item)
		}
	}
	idx := chrono.New(items...)
	m := ScrubberModel{
		Index:  idx,
		Graph:  g,
		Result: res,
		Span:   max(span, minSpan),
		Height: 15,
	}
	if first, ok := idx.First(); ok {
		m.Cursor = first.Time
	}
	return m
}

func (m ScrubberModel) Init() tea.Cmd {
	return nil
}

func (m ScrubberModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if t, ok := m.Index.PrevTimeStep(m.Cursor); ok {
				m.Cursor = t
			}
		case "right", "l":
			if t, ok := m.Index.NextTimeStep(m.Cursor); ok {
				m.Cursor = t
			}
		case "home", "g":
			if it, ok := m.Index.First(); ok {
				m.Cursor = it.Time
			}
		case "end", "G":
			if it, ok := m.Index.Last(); ok {
				m.Cursor = it.Time
			}
		case "+", "=":
			m.Span *= 2
		case "-":
			m.Span = max(m.Span/2, minSpan)
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

// Window returns the nodes inside the trailing window ending at the cursor.
func (m ScrubberModel) Window() []*view.Item {
	return m.Index.Search(m.Cursor.Add(-m.Span), m.Cursor)
}

func (m ScrubberModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Timeline"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ step  home/end jump  +/- span  q quit"))
	b.WriteString("\n\n")

	b.WriteString(listSelectedStyle.Render(m.Cursor.Format(time.RFC3339)))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  window %s", m.Span)))
	b.WriteString("\n")

	items := m.Window()
	if len(items) > m.Height {
		items = items[len(items)-m.Height:]
	}

	rows := make([][]string, 0, len(items))
	for _, it := range items {
		cluster := "-"
		if cl, ok := m.Result.ClusterOf(it.ID); ok {
			cluster = cl.Label
		}
		label := it.ID
		if n, ok := m.Graph.Node(it.ID); ok {
			label = n.Label()
		}
		rows = append(rows, []string{it.Time.Format(time.TimeOnly), it.ID, it.Kind().String(), label, cluster})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Time", "Node", "Kind", "Label", "Cluster").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(items) && items[row].Time.Equal(m.Cursor) {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	seen := len(m.Index.Search(m.firstTime(), m.Cursor))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", seen, m.Index.Len())))

	return b.String()
}

func (m ScrubberModel) firstTime() time.Time {
	if it, ok := m.Index.First(); ok {
		return it.Time
	}
	return time.Time{}
}
