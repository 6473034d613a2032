package record

import (
	"maps"
	"slices"
)

// Stats summarizes a record graph by type.
type Stats struct {
	Nodes     int
	Edges     int
	NodeTypes map[string]int
	EdgeTypes map[string]int
}

// Summarize counts the nodes and edges of g per type.
func Summarize(g *Graph) Stats {
	s := Stats{
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
		NodeTypes: make(map[string]int),
		EdgeTypes: make(map[string]int),
	}
	for n := range g.Nodes() {
		s.NodeTypes[n.Type]++
	}
	for e := range g.Edges() {
		s.EdgeTypes[e.Type]++
	}
	return s
}

// SortedNodeTypes returns the node types present in the summary, sorted.
func (s Stats) SortedNodeTypes() []string { return slices.Sorted(maps.Keys(s.NodeTypes)) }

// SortedEdgeTypes returns the edge types present in the summary, sorted.
func (s Stats) SortedEdgeTypes() []string { return slices.Sorted(maps.Keys(s.EdgeTypes)) }
