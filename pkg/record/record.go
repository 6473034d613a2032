// Package record provides the string-keyed node and edge payloads used by
// the typegraph CLI and server, together with codec helpers bound to
// [schema.Rules].
//
// [schema.Rules]: github.com/matzehuels/typegraph/pkg/schema.Rules
package record

import (
	"io"

	"github.com/matzehuels/typegraph/pkg/graph"
	gio "github.com/matzehuels/typegraph/pkg/io"
	"github.com/matzehuels/typegraph/pkg/schema"
)

// Props stores arbitrary key-value pairs attached to a node or edge.
type Props map[string]any

// Node is a typed vertex. An empty ID or Type fails the graph's identity or
// type lookup.
type Node struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Props Props  `json:"props,omitempty"`
}

// Identity returns the node ID.
func (n Node) Identity() (string, bool) { return n.ID, n.ID != "" }

// TypeTag returns the node type.
func (n Node) TypeTag() (string, bool) { return n.Type, n.Type != "" }

// Edge is a typed, directed link. Its endpoints are given to
// [graph.Graph.AddEdge], not stored on the payload.
type Edge struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Props Props  `json:"props,omitempty"`
}

// Identity returns the edge ID.
func (e Edge) Identity() (string, bool) { return e.ID, e.ID != "" }

// TypeTag returns the edge type.
func (e Edge) TypeTag() (string, bool) { return e.Type, e.Type != "" }

// Graph is a typed graph of records.
type Graph = graph.Graph[string, string, Node, Edge]

// Ref is a direction-aware edge reference from a record graph.
type Ref = graph.EdgeRef[string, Edge]

// New creates an empty record graph validated by rules.
func New(rules *schema.Rules, opts ...graph.Option) *Graph {
	return graph.New[string, string, Node, Edge](rules, opts...)
}

// Rules returns the rule table g was created with, or nil if g uses another
// schema implementation.
func Rules(g *Graph) *schema.Rules {
	r, _ := g.Schema().(*schema.Rules)
	return r
}

// ReadJSON decodes a record graph document whose schema is a rule table.
func ReadJSON(r io.Reader, opts ...graph.Option) (*Graph, error) {
	return gio.ReadJSON[string, string, Node, Edge](r, schema.DecodeJSON, opts...)
}

// Unmarshal decodes a record graph document from data.
func Unmarshal(data []byte, opts ...graph.Option) (*Graph, error) {
	return gio.Unmarshal[string, string, Node, Edge](data, schema.DecodeJSON, opts...)
}

// ImportJSON reads a record graph document from path.
func ImportJSON(path string, opts ...graph.Option) (*Graph, error) {
	return gio.ImportJSON[string, string, Node, Edge](path, schema.DecodeJSON, opts...)
}

// WriteJSON writes g as an indented JSON document.
func WriteJSON(g *Graph, w io.Writer) error { return gio.WriteJSON(g, w) }

// Marshal returns the JSON document for g.
func Marshal(g *Graph) ([]byte, error) { return gio.Marshal(g) }

// ExportJSON writes g to path.
func ExportJSON(g *Graph, path string) error { return gio.ExportJSON(g, path) }
