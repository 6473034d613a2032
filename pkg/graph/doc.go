// Package graph provides an in-memory typed multigraph whose mutations are
// validated against a pluggable schema.
//
// # Overview
//
// Nodes and edges carry caller-defined payloads ("weights"). Every weight
// implements [Weight]: it knows its own identity and its type tag. The graph
// never stores types separately - a node's type is whatever its current
// weight reports, so replacing a weight can change the node's type.
//
// A [Schema] decides which types may be inserted. It is consulted
// synchronously on every insertion or replacement:
//
//   - [Schema.AllowNode] for the node's type
//   - [Schema.AllowEdge] for the edge's type, its endpoint types and the
//     multiplicity the edge would have once inserted
//
// The multiplicity is the number of edges leaving the same source with the
// same edge type whose target has the same type, counting the candidate. A
// schema that allows at most one "manages" edge from a Person to a Team
// rejects the call when the count reaches two.
//
// # Basic Usage
//
//	g := graph.New[string, string, Item, Link](schema)
//	a, _ := g.AddNode(Item{ID: "n1", Kind: "A"})
//	b, _ := g.AddNode(Item{ID: "n2", Kind: "B"})
//	if _, err := g.AddEdge(a, b, Link{ID: "e1", Kind: "L"}); err != nil {
//	    // INVALID_EDGE_TYPE, MISSING_NODE_ID, ...
//	}
//
// Query with [Graph.Node], [Graph.Outgoing], [Graph.Incoming] and
// [Graph.Adjacent]. Traversals yield [EdgeRef] values; [EdgeRef.Outer]
// returns the neighbor regardless of direction, so walking code does not
// need to care whether an edge was reached forwards or backwards.
//
// # Schema Gates
//
// Schema checks happen at insertion time only. Removing an edge never
// re-checks what remains, so a schema bounds what may be added, not what may
// stay. The one place where existing edges are re-examined is a node type
// change: [Graph.AddNode] re-checks every incident edge under the new type and
// refuses the change if any would be rejected. The check completes before
// anything is written, so a failed call leaves the graph untouched.
//
// Verdicts are tri-state. [Discouraged] lets the mutation through and logs a
// warning via the logger installed with [WithLogger].
//
// # Errors
//
// All failures are *errors.Error values from
// github.com/matzehuels/typegraph/pkg/errors carrying one of the codes
// MISSING_IDENTITY, MISSING_TYPE, MISSING_NODE_ID, MISSING_EDGE_ID,
// INVALID_NODE_TYPE or INVALID_EDGE_TYPE.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Callers must serialize
// mutations externally. Concurrent readers are safe only while no writer is
// active, because traversal sequences read the live adjacency lists.
//
// # Related Packages
//
// The [io] package serializes graphs to JSON and rebuilds them by replaying
// the same validated mutations. The [schema] package provides a rule-table
// schema that can be loaded from TOML.
//
// [io]: github.com/matzehuels/typegraph/pkg/io
// [schema]: github.com/matzehuels/typegraph/pkg/schema
package graph
