package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/record"
	"github.com/matzehuels/typegraph/pkg/render/dot"
)

const (
	formatSVG = "svg"
	formatPNG = "png"
	formatDOT = "dot"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path; its extension picks the format
	format   string // explicit format, overrides the extension
	detailed bool   // include properties in node labels
	label    string // diagram title
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a graph document as a diagram",
		Long: `Render a graph document as a node-link diagram.

The output format is taken from --format, or else from the extension of
--output: .svg, .png or .dot. Without --output the diagram is written next to
the input as <input>.svg.

Nodes and edges whose types the schema marks as discouraged are drawn dashed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.svg)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, png, dot")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show properties in node labels")
	cmd.Flags().StringVar(&opts.label, "label", "", "diagram title")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	output, format, err := resolveOutput(input, opts.output, opts.format)
	if err != nil {
		return err
	}

	g, err := c.loadGraph(input)
	if err != nil {
		return err
	}

	prog := newProgress(loggerFromContext(ctx))
	data, err := renderGraph(ctx, g, format, opts)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	prog.done("Rendered " + output)

	printSuccess("Rendered %s", format)
	printFile(output)
	printStats(g.NodeCount(), g.EdgeCount())
	return nil
}

func renderGraph(ctx context.Context, g *record.Graph, format string, opts renderOpts) ([]byte, error) {
	src := dot.ToDOT(g, dot.Options{Detailed: opts.detailed, Label: opts.label})
	switch format {
	case formatDOT:
		return []byte(src), nil
	case formatSVG:
		return dot.RenderSVG(ctx, src)
	case formatPNG:
		return dot.RenderPNG(ctx, src)
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unknown format %q", format)
}

// resolveOutput picks the output path and format from the flags. An explicit
// format wins over the output extension.
func resolveOutput(input, output, format string) (string, string, error) {
	format = strings.ToLower(format)
	if format == "" && output != "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	if format == "" {
		format = formatSVG
	}
	switch format {
	case formatSVG, formatPNG, formatDOT:
	default:
		return "", "", errs.New(errs.ErrCodeInvalidInput, "unsupported format %q (want svg, png or dot)", format)
	}
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	}
	return output, format, nil
}
