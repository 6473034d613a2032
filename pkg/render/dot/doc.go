// Package dot renders record graphs as node-link diagrams.
//
// [ToDOT] produces Graphviz DOT text. [RenderSVG] and [RenderPNG] lay it out
// with the embedded Graphviz from github.com/goccy/go-graphviz, so no system
// installation is required.
//
//	src := dot.ToDOT(g, dot.Options{Detailed: true})
//	svg, err := dot.RenderSVG(ctx, src)
package dot
