package cli

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/record"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// schemaCommand creates the schema command group.
func (c *CLI) schemaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect schema rule tables",
	}

	cmd.AddCommand(c.schemaCheckCommand())
	cmd.AddCommand(c.schemaShowCommand())

	return cmd
}

func (c *CLI) schemaCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [rules.toml]",
		Short: "Validate a TOML rule table and print its rules",
		Long: `Validate a TOML rule table and print its rules.

A rule table lists the allowed node types and the edge rules. Edge rules are
matched in order; the first rule whose type, source and target match decides.
"*" matches any type. A rule with max = N rejects the (N+1)th edge of that type
from one source to targets of one type.

  name = "org"

  [nodes.Person]
  [nodes.Team]

  [[edges]]
  type   = "leads"
  source = "Person"
  target = "Team"
  max    = 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := schema.LoadFile(args[0])
			if err != nil {
				printError("Invalid schema")
				return err
			}
			printSuccess("Schema %s is valid", StyleHighlight.Render(rules.Name))
			printRules(rules)
			return nil
		},
	}
}

func (c *CLI) schemaShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [graph.json]",
		Short: "Print the rule table stored in a graph document as TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := c.loadGraph(args[0])
			if err != nil {
				return err
			}
			rules := record.Rules(g)
			if rules == nil {
				return errs.New(errs.ErrCodeUnsupported, "%s does not use a rule table", args[0])
			}
			return rules.WriteTOML(stdout)
		},
	}
}

// printRules prints the node and edge rules of r as two tables.
func printRules(r *schema.Rules) {
	printKeyValue("Nodes", "default "+r.DefaultNode.String())
	printKeyValue("Edges", "default "+r.DefaultEdge.String())
	printNewline()

	types := r.NodeTypes()
	if len(types) > 0 {
		rows := make([][]string, len(types))
		for i, t := range types {
			rows[i] = []string{t, r.Nodes[t].Status.String()}
		}
		printTable([]string{"Node type", "Status"}, rows, func(row, col int) lipgloss.Style {
			if col == 1 {
				return verdictStyle(r.Nodes[types[row]].Status)
			}
			return lipgloss.NewStyle()
		})
	}

	if len(r.Edges) > 0 {
		rows := make([][]string, len(r.Edges))
		for i, e := range r.Edges {
			limit := "∞"
			if e.Max > 0 {
				limit = strconv.Itoa(e.Max)
			}
			rows[i] = []string{strconv.Itoa(i + 1), e.Type, e.Source, e.Target, limit, e.Status.String()}
		}
		printTable([]string{"#", "Edge type", "Source", "Target", "Max", "Status"}, rows, func(row, col int) lipgloss.Style {
			if col == 5 {
				return verdictStyle(r.Edges[row].Status)
			}
			return lipgloss.NewStyle()
		})
	}
}
