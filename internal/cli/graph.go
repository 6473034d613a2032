package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"maps"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/graph"
	"github.com/matzehuels/typegraph/pkg/observability"
	"github.com/matzehuels/typegraph/pkg/record"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// =============================================================================
// init
// =============================================================================

// initCommand creates the init command, which writes an empty graph document.
func (c *CLI) initCommand() *cobra.Command {
	var (
		schemaPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init [graph.json]",
		Short: "Create an empty graph document bound to a schema",
		Long: `Create an empty graph document bound to a schema.

The schema is a TOML rule table (see 'typegraph schema check'). It is stored
inside the document, so every later command validates against the same rules.

Examples:
  typegraph init org.json --schema org.toml
  typegraph init org.json --schema org-v2.toml --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInit(args[0], schemaPath, force)
		},
	}

	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "TOML schema file (required)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing document")
	_ = cmd.MarkFlagRequired("schema")

	return cmd
}

func (c *CLI) runInit(path, schemaPath string, force bool) error {
	rules, err := schema.LoadFile(schemaPath)
	if err != nil {
		return err
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errs.New(errs.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	g := record.New(rules, graph.WithLogger(c.Logger))
	if err := c.saveGraph(g, path); err != nil {
		return err
	}

	printSuccess("Created graph")
	printFile(path)
	printDetail("Schema: %s (%d node types, %d edge rules)", rules.Name, len(rules.Nodes), len(rules.Edges))
	printNewline()
	printNextStep("Add a node", fmt.Sprintf("%s node add %s --id <id> --type <type>", appName, path))
	return nil
}

// =============================================================================
// check
// =============================================================================

// checkCommand creates the check command, which replays a document through
// its schema and prints per-type statistics.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [graph.json]",
		Short: "Validate a graph document and summarize it",
		Long: `Validate a graph document and summarize it.

Every node and edge is replayed through the document's schema, so a document
that was edited by hand is rejected exactly like an invalid mutation would be.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0])
		},
	}
}

func (c *CLI) runCheck(ctx context.Context, path string) error {
	prog := newProgress(loggerFromContext(ctx))
	g, err := c.loadGraph(path)
	if err != nil {
		printError("Invalid graph")
		return err
	}
	if err := g.Validate(); err != nil {
		printError("Corrupt graph")
		return err
	}
	prog.done("Checked " + path)

	stats := record.Summarize(g)

	printSuccess("Graph is valid")
	printStats(stats.Nodes, stats.Edges)
	printNewline()

	var rows [][]string
	var verdicts []graph.Verdict
	for _, t := range stats.SortedNodeTypes() {
		v := g.Schema().AllowNode(t)
		rows = append(rows, []string{"node", t, strconv.Itoa(stats.NodeTypes[t]), v.String()})
		verdicts = append(verdicts, v)
	}
	for _, t := range stats.SortedEdgeTypes() {
		rows = append(rows, []string{"edge", t, strconv.Itoa(stats.EdgeTypes[t]), ""})
		verdicts = append(verdicts, graph.Allowed)
	}
	if len(rows) > 0 {
		printTable([]string{"Kind", "Type", "Count", "Status"}, rows, func(row, col int) lipgloss.Style {
			if col == 3 {
				return verdictStyle(verdicts[row])
			}
			return lipgloss.NewStyle()
		})
	}

	if n := countDiscouraged(g); n > 0 {
		printWarning("%d elements use discouraged types", n)
	}
	return nil
}

// countDiscouraged counts the nodes and edges the schema currently marks as
// discouraged.
func countDiscouraged(g *record.Graph) int {
	s := g.Schema()
	n := 0
	for node := range g.Nodes() {
		if s.AllowNode(node.Type) == graph.Discouraged {
			n++
		}
	}
	for id := range g.EdgeIDs() {
		ref, err := g.Ref(id)
		if err != nil {
			continue
		}
		source, _ := g.NodeType(ref.Source)
		target, _ := g.NodeType(ref.Target)
		if s.AllowEdge(1, ref.Weight.Type, source, target) == graph.Discouraged {
			n++
		}
	}
	return n
}

func verdictStyle(v graph.Verdict) lipgloss.Style {
	switch v {
	case graph.Allowed:
		return StyleSuccess
	case graph.Discouraged:
		return StyleWarning
	default:
		return lipgloss.NewStyle().Foreground(colorRed)
	}
}

// =============================================================================
// node
// =============================================================================

// nodeCommand creates the node command group.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Add, remove or inspect nodes",
	}

	cmd.AddCommand(c.nodeAddCommand())
	cmd.AddCommand(c.nodeRemoveCommand())
	cmd.AddCommand(c.nodeShowCommand())

	return cmd
}

func (c *CLI) nodeAddCommand() *cobra.Command {
	var (
		n     record.Node
		props []string
	)

	cmd := &cobra.Command{
		Use:   "add [graph.json]",
		Short: "Add a node, or replace the node with the same ID",
		Long: `Add a node, or replace the node with the same ID.

Replacing a node with one of a different type re-checks every incident edge
against the new type; the document is left untouched if any check fails.

Examples:
  typegraph node add org.json --id alice --type Person
  typegraph node add org.json --id alice --type Person --prop age=41 --prop 'title="CTO"'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseProps(props)
			if err != nil {
				return err
			}
			n.Props = p
			return c.runNodeAdd(cmd.Context(), args[0], n)
		},
	}

	cmd.Flags().StringVar(&n.ID, "id", "", "node ID")
	cmd.Flags().StringVarP(&n.Type, "type", "t", "", "node type")
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "property as key=value (repeatable)")

	return cmd
}

func (c *CLI) runNodeAdd(ctx context.Context, path string, n record.Node) error {
	return c.editGraph(ctx, path, observability.OpAddNode, n.ID, func(g *record.Graph) error {
		_, replaced := g.LookupNode(n.ID)
		if _, err := g.AddNode(n); err != nil {
			return err
		}
		if replaced {
			printSuccess("Replaced node %s", StyleHighlight.Render(n.ID))
		} else {
			printSuccess("Added node %s", StyleHighlight.Render(n.ID))
		}
		return nil
	})
}

func (c *CLI) nodeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [graph.json] [id]",
		Aliases: []string{"remove"},
		Short:   "Remove a node and every edge touching it",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNodeRemove(cmd.Context(), args[0], args[1])
		},
	}
}

func (c *CLI) runNodeRemove(ctx context.Context, path, id string) error {
	return c.editGraph(ctx, path, observability.OpRemoveNode, id, func(g *record.Graph) error {
		before := g.EdgeCount()
		if _, err := g.RemoveNode(id); err != nil {
			return err
		}
		printSuccess("Removed node %s", StyleHighlight.Render(id))
		if dropped := before - g.EdgeCount(); dropped > 0 {
			printDetail("Removed %d incident edges", dropped)
		}
		return nil
	})
}

func (c *CLI) nodeShowCommand() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "show [graph.json] [id]",
		Short: "Show a node and its edges",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNodeShow(args[0], args[1], direction)
		},
	}

	cmd.Flags().StringVarP(&direction, "direction", "d", "both", "edges to list: out, in, both")

	return cmd
}

func (c *CLI) runNodeShow(path, id, direction string) error {
	g, err := c.loadGraph(path)
	if err != nil {
		return err
	}
	n, err := g.Node(id)
	if err != nil {
		return err
	}

	printKeyValue("ID", n.ID)
	printKeyValue("Type", n.Type)
	for _, k := range sortedKeys(n.Props) {
		printKeyValue(k, fmt.Sprint(n.Props[k]))
	}
	printNewline()

	refs, err := edgesOf(g, id, direction)
	if err != nil {
		return err
	}
	var rows [][]string
	for r := range refs {
		arrow := "→"
		if r.Direction == graph.Backward {
			arrow = "←"
		}
		rows = append(rows, []string{r.ID, r.Weight.Type, arrow, r.Outer()})
	}
	if len(rows) == 0 {
		printDetail("No edges")
		return nil
	}
	printTable([]string{"Edge", "Type", "", "Neighbor"}, rows, nil)
	return nil
}

// =============================================================================
// edge
// =============================================================================

// edgeCommand creates the edge command group.
func (c *CLI) edgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edge",
		Short: "Add or remove edges",
	}

	cmd.AddCommand(c.edgeAddCommand())
	cmd.AddCommand(c.edgeRemoveCommand())

	return cmd
}

func (c *CLI) edgeAddCommand() *cobra.Command {
	var (
		e              record.Edge
		source, target string
		props          []string
	)

	cmd := &cobra.Command{
		Use:   "add [graph.json]",
		Short: "Add an edge, or replace the edge with the same ID",
		Long: `Add an edge, or replace the edge with the same ID.

The edge is checked against the schema using the number of edges of the same
type already running from the source to nodes of the target's type.

Examples:
  typegraph edge add org.json --id e1 --type leads --from alice --to platform`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseProps(props)
			if err != nil {
				return err
			}
			e.Props = p
			return c.runEdgeAdd(cmd.Context(), args[0], source, target, e)
		},
	}

	cmd.Flags().StringVar(&e.ID, "id", "", "edge ID")
	cmd.Flags().StringVarP(&e.Type, "type", "t", "", "edge type")
	cmd.Flags().StringVar(&source, "from", "", "source node ID")
	cmd.Flags().StringVar(&target, "to", "", "target node ID")
	cmd.Flags().StringArrayVarP(&props, "prop", "p", nil, "property as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (c *CLI) runEdgeAdd(ctx context.Context, path, source, target string, e record.Edge) error {
	return c.editGraph(ctx, path, observability.OpAddEdge, e.ID, func(g *record.Graph) error {
		if _, err := g.AddEdge(source, target, e); err != nil {
			return err
		}
		printSuccess("Added edge %s %s", StyleHighlight.Render(e.ID),
			StyleDim.Render(fmt.Sprintf("(%s %s %s)", source, iconArrow, target)))
		return nil
	})
}

func (c *CLI) edgeRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [graph.json] [id]",
		Aliases: []string{"remove"},
		Short:   "Remove an edge",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdgeRemove(cmd.Context(), args[0], args[1])
		},
	}
}

func (c *CLI) runEdgeRemove(ctx context.Context, path, id string) error {
	return c.editGraph(ctx, path, observability.OpRemoveEdge, id, func(g *record.Graph) error {
		if _, err := g.RemoveEdge(id); err != nil {
			return err
		}
		printSuccess("Removed edge %s", StyleHighlight.Render(id))
		return nil
	})
}

// =============================================================================
// Helpers
// =============================================================================

// editGraph loads path, applies fn and writes the document back. The file is
// only rewritten when fn succeeds. The mutation is reported to the
// observability hooks either way.
func (c *CLI) editGraph(ctx context.Context, path, op, id string, fn func(g *record.Graph) error) error {
	g, err := c.loadGraph(path)
	if err != nil {
		return err
	}

	start := time.Now()
	err = fn(g)
	observability.Mutation().OnMutation(ctx, op, id, time.Since(start), err)
	if err != nil {
		return err
	}

	if err := c.saveGraph(g, path); err != nil {
		return err
	}
	printStats(g.NodeCount(), g.EdgeCount())
	return nil
}

// edgesOf returns the references of node id in the given direction.
func edgesOf(g *record.Graph, id, direction string) (iter.Seq[record.Ref], error) {
	switch direction {
	case "", "both":
		return g.Adjacent(id)
	case "out":
		return g.Outgoing(id)
	case "in":
		return g.Incoming(id)
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "direction must be out, in or both, got %q", direction)
	}
}

func sortedKeys(p record.Props) []string {
	return slices.Sorted(maps.Keys(p))
}
