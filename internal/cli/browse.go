package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/record"
)

// browseCommand creates the browse command, an interactive graph walker.
func (c *CLI) browseCommand() *cobra.Command {
	var start string

	cmd := &cobra.Command{
		Use:   "browse [graph.json]",
		Short: "Walk a graph interactively",
		Long: `Walk a graph interactively.

Shows one node at a time with its edges. Follow an edge with enter to move to
the node on its far side; backspace returns to the previous node and tab
switches between outgoing, incoming and all edges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(args[0], start)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "node to start at (default: first node)")

	return cmd
}

func (c *CLI) runBrowse(path, start string) error {
	g, err := c.loadGraph(path)
	if err != nil {
		return err
	}
	start, err = startNode(g, start)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewBrowseModel(g, start), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// startNode checks that start exists, or picks the first node when start is
// empty.
func startNode(g *record.Graph, start string) (string, error) {
	if start != "" {
		if _, err := g.Node(start); err != nil {
			return "", err
		}
		return start, nil
	}
	for id := range g.NodeIDs() {
		return id, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "graph has no nodes to browse")
}
