// Package io provides JSON import and export for typed graphs.
//
// # Overview
//
// A graph document carries everything needed to rebuild the graph: the
// schema, the node weights and the edges with their endpoints. Decoding never
// writes the graph's internals directly. It replays the same validated
// mutations a caller would issue, so a document cannot smuggle in anything
// its own schema forbids.
//
// # JSON Format
//
//	{
//	  "schema": {"name": "org", "default_edge": "disallowed", ...},
//	  "nodes": [
//	    {"id": "n1", "type": "A"},
//	    {"id": "n2", "type": "B"}
//	  ],
//	  "edges": [
//	    {"weight": {"id": "e1", "type": "L"}, "source": "n1", "target": "n2"}
//	  ]
//	}
//
// Node and edge weights are encoded with their own JSON form. The schema is
// encoded with the JSON form of whatever value the graph was created with;
// readers supply a [SchemaDecoder] that turns it back into a schema.
//
// Nodes are written in insertion order. Edges are written by walking each
// node's outgoing list, which lists every edge exactly once.
//
// # Import
//
//	g, err := io.ImportJSON[string, string, record.Node, record.Edge]("org.json", decode)
//
// All three top-level keys are required, as are "weight", "source" and
// "target" on every edge (MISSING_FIELD otherwise). Nodes are replayed before
// edges, in document order. A replay failure keeps the mutation's error code
// and adds the position of the offending entry.
//
// # Export
//
// Use [ExportJSON] to write a graph to a file, [WriteJSON] to write to any
// io.Writer, or [Marshal] for a byte slice. Output is indented with two
// spaces.
//
// # Concurrency
//
// Export reads the graph without locking; callers must not mutate it
// concurrently. Imported graphs are independent of their source.
package io
