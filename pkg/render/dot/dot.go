package dot

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/typegraph/pkg/graph"
	"github.com/matzehuels/typegraph/pkg/record"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed includes the node type and properties in node labels.
	// When false, nodes show their ID and type only.
	Detailed bool
	// Label is drawn as the graph title when non-empty.
	Label string
}

// ToDOT converts a record graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Nodes appear in insertion order. Each edge is drawn once, labeled with its
// type. Nodes and edges whose type the schema currently marks as discouraged
// are drawn dashed.
func ToDOT(g *record.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=11, fontcolor=\"#555555\"];\n")
	if opts.Label != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Label)
	}
	buf.WriteString("\n")

	s := g.Schema()
	for n := range g.Nodes() {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if s.AllowNode(n.Type) == graph.Discouraged {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for id := range g.NodeIDs() {
		out, err := g.Outgoing(id)
		if err != nil {
			continue
		}
		for r := range out {
			attrs := []string{fmt.Sprintf("label=%q", r.Weight.Type), fmt.Sprintf("id=%q", r.ID)}
			if discouraged(g, r) {
				attrs = append(attrs, "style=dashed")
			}
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", r.Source, r.Target, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func discouraged(g *record.Graph, r record.Ref) bool {
	src, err := g.Node(r.Source)
	if err != nil {
		return false
	}
	dst, err := g.Node(r.Target)
	if err != nil {
		return false
	}
	// The edge's own multiplicity is unknown here; 1 asks about the type triple.
	return g.Schema().AllowEdge(1, r.Weight.Type, src.Type, dst.Type) == graph.Discouraged
}

func fmtLabel(n record.Node, detailed bool) string {
	if !detailed {
		return n.ID + "\n" + n.Type
	}

	parts := []string{"type: " + n.Type}
	for _, k := range slices.Sorted(maps.Keys(n.Props)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Props[k]))
	}
	return n.ID + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the diagram scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
