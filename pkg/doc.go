// Package pkg provides the core libraries for Typegraph, a store for directed
// graphs whose node and edge types are checked by a schema.
//
// # Overview
//
// Every mutation of a Typegraph graph asks its schema first. A schema answers
// with a [graph.Verdict]: allowed, discouraged (accepted with a warning) or
// disallowed (rejected, graph unchanged). Edge checks also see how many edges
// of the same type already run from the source to targets of the same type,
// so rules like "a person leads at most one team" can be expressed.
//
// The pkg directory is organized into these areas:
//
//  1. [graph] - The generic typed graph and its schema interface
//  2. [schema] - TOML/JSON rule tables implementing the schema interface
//  3. [record] - The concrete string-keyed graph used by the CLI and server
//  4. [io] - The JSON document format and its validating decoder
//  5. [snapshot] - Snapshot stores (file, Redis, MongoDB, memory)
//  6. [render/dot] - Graphviz node-link diagrams
//  7. [observability] - Hooks for mutations, snapshots and HTTP requests
//
// # Architecture
//
// The typical data flow through Typegraph:
//
//	Rule table (TOML)
//	         ↓
//	    [schema] package (parse + validate rules)
//	         ↓
//	    [record] / [graph] packages (checked mutations + traversals)
//	         ↓
//	    [io] package (JSON document, replayed through the schema on load)
//	         ↓
//	    [snapshot] stores / [render/dot] diagrams
//
// # Quick Start
//
// Build a small graph against a rule table:
//
//	rules, _ := schema.Parse([]byte(`
//	name = "org"
//	default_node = "disallowed"
//	default_edge = "disallowed"
//
//	[nodes.Person]
//	[nodes.Team]
//
//	[[edges]]
//	type = "leads"
//	source = "Person"
//	target = "Team"
//	max = 1
//	`))
//
//	g := record.New(rules)
//	g.AddNode(record.Node{ID: "ada", Type: "Person"})
//	g.AddNode(record.Node{ID: "core", Type: "Team"})
//	g.AddEdge("ada", "core", record.Edge{ID: "e1", Type: "leads"})
//
//	refs, _ := g.Outgoing("ada")
//	for r := range refs {
//	    fmt.Println(r.Weight.Type, r.Outer()) // leads core
//	}
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/graph/...     # Specific package
//	go test -run Example ./...  # Examples only
//
// The Redis and MongoDB snapshot tests connect to TYPEGRAPH_TEST_REDIS_ADDR and
// TYPEGRAPH_TEST_MONGO_URI and are skipped when those are unset.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/typegraph/pkg/graph
// [schema]: https://pkg.go.dev/github.com/matzehuels/typegraph/pkg/schema
// [record]: https://pkg.go.dev/github.com/matzehuels/typegraph/pkg/record
// [io]: https://pkg.go.dev/github.com/matzehuels/typegraph/pkg/io
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/typegraph/pkg/snapshot
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/typegraph/pkg/render/dot
// [observability]: https://pkg.go.dev/github.com/matzehuels/typegraph/pkg/observability
// [graph.Verdict]: https://pkg.go.dev/github.com/matzehuels/typegraph/pkg/graph#Verdict
package pkg
