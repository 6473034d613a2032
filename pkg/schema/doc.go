// Package schema provides ready-made [graph.Schema] implementations.
//
// [Rules] is a declarative rule table that is usually loaded from a TOML file:
//
//	name = "org"
//	default_node = "disallowed"
//	default_edge = "disallowed"
//
//	[nodes.Person]
//	[nodes.Team]
//	[nodes.Contractor]
//	status = "discouraged"
//
//	[[edges]]
//	type = "member_of"
//	source = "Person"
//	target = "Team"
//
//	[[edges]]
//	type = "leads"
//	source = "Person"
//	target = "Team"
//	max = 1
//
// Edge rules are matched in order and the first match wins. Any of type,
// source and target may be "*" to match every value. A rule with max > 0
// rejects the edge once the multiplicity exceeds max.
//
// [Bool] adapts two boolean predicates, and [Permissive] allows everything.
//
// [graph.Schema]: github.com/matzehuels/typegraph/pkg/graph.Schema
package schema
