package graph

import (
	"cmp"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/typegraph/pkg/errors"
)

// Weight is the capability every node and edge payload must provide.
//
// Identity returns the id the payload is stored under; TypeTag returns the
// type the schema is consulted with. Returning false from either makes the
// mutation fail with MISSING_IDENTITY or MISSING_TYPE.
type Weight[ID, T comparable] interface {
	Identity() (ID, bool)
	TypeTag() (T, bool)
}

// Schema decides which node and edge types may be inserted.
//
// AllowEdge receives the multiplicity the edge would have once inserted:
// the number of edges leaving the same source with the same edge type whose
// targets share the target's type, counting the candidate itself.
type Schema[T comparable] interface {
	AllowNode(nodeType T) Verdict
	AllowEdge(count int, edgeType, sourceType, targetType T) Verdict
}

type nodeRecord[ID comparable, N any] struct {
	weight N
	out    []ID // outgoing edge IDs in insertion order
	in     []ID // incoming edge IDs in insertion order
	seq    uint64
}

type edgeRecord[ID comparable, E any] struct {
	weight E
	source ID
	target ID
	seq    uint64
}

// Graph is a typed multigraph whose mutations are gated by a [Schema].
//
// Nodes and edges live in two maps keyed by their payload's identity; the
// adjacency lists of a node hold edge IDs only. Iteration follows insertion
// order, so two graphs built by the same calls serialize identically.
//
// The zero value is not usable - use [New] to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph[ID, T comparable, N Weight[ID, T], E Weight[ID, T]] struct {
	schema Schema[T]
	nodes  map[ID]*nodeRecord[ID, N]
	edges  map[ID]*edgeRecord[ID, E]
	seq    uint64
	logger *log.Logger
}

// Option configures a Graph.
type Option func(*options)

type options struct {
	logger *log.Logger
}

// WithLogger sets the logger used for mutation debug lines and warnings about
// discouraged types. Graphs discard log output by default.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// New creates an empty Graph bound to schema. It panics if schema is nil.
func New[ID, T comparable, N Weight[ID, T], E Weight[ID, T]](schema Schema[T], opts ...Option) *Graph[ID, T, N, E] {
	if schema == nil {
		panic("graph: nil schema")
	}
	o := options{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(&o)
	}
	return &Graph[ID, T, N, E]{
		schema: schema,
		nodes:  make(map[ID]*nodeRecord[ID, N]),
		edges:  make(map[ID]*edgeRecord[ID, E]),
		logger: o.logger,
	}
}

// Schema returns the schema the graph validates against.
func (g *Graph[ID, T, N, E]) Schema() Schema[T] { return g.schema }

// NodeCount returns the number of nodes in the graph.
func (g *Graph[ID, T, N, E]) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph[ID, T, N, E]) EdgeCount() int { return len(g.edges) }

func (g *Graph[ID, T, N, E]) nextSeq() uint64 {
	g.seq++
	return g.seq
}

func (g *Graph[ID, T, N, E]) orderedNodeIDs() []ID {
	ids := slices.Collect(maps.Keys(g.nodes))
	slices.SortFunc(ids, func(a, b ID) int { return cmp.Compare(g.nodes[a].seq, g.nodes[b].seq) })
	return ids
}

func (g *Graph[ID, T, N, E]) orderedEdgeIDs() []ID {
	ids := slices.Collect(maps.Keys(g.edges))
	slices.SortFunc(ids, func(a, b ID) int { return cmp.Compare(g.edges[a].seq, g.edges[b].seq) })
	return ids
}

// Validate checks referential integrity and returns nil if the graph is sound.
// It verifies that:
//
//  1. Every edge's source and target resolve to an existing node
//  2. Every edge ID appears exactly once in its source's outgoing list and
//     exactly once in its target's incoming list
//  3. No adjacency list references a missing edge or an edge that does not
//     start (outgoing) or end (incoming) at that node
//
// The public mutation API keeps these invariants; Validate exists to check
// graphs in tests and after decoding untrusted input. Violations are reported
// as CORRUPT_GRAPH errors. Runs in O(N+E).
func (g *Graph[ID, T, N, E]) Validate() error {
	for _, eid := range g.orderedEdgeIDs() {
		e := g.edges[eid]
		src, ok := g.nodes[e.source]
		if !ok {
			return errs.New(errs.ErrCodeCorruptGraph, "edge %v: source node %v does not exist", eid, e.source)
		}
		dst, ok := g.nodes[e.target]
		if !ok {
			return errs.New(errs.ErrCodeCorruptGraph, "edge %v: target node %v does not exist", eid, e.target)
		}
		if n := countID(src.out, eid); n != 1 {
			return errs.New(errs.ErrCodeCorruptGraph, "edge %v: listed %d times in outgoing edges of %v", eid, n, e.source)
		}
		if n := countID(dst.in, eid); n != 1 {
			return errs.New(errs.ErrCodeCorruptGraph, "edge %v: listed %d times in incoming edges of %v", eid, n, e.target)
		}
	}
	for _, nid := range g.orderedNodeIDs() {
		n := g.nodes[nid]
		for _, eid := range n.out {
			if e, ok := g.edges[eid]; !ok || e.source != nid {
				return errs.New(errs.ErrCodeCorruptGraph, "node %v: outgoing edge %v does not start here", nid, eid)
			}
		}
		for _, eid := range n.in {
			if e, ok := g.edges[eid]; !ok || e.target != nid {
				return errs.New(errs.ErrCodeCorruptGraph, "node %v: incoming edge %v does not end here", nid, eid)
			}
		}
	}
	return nil
}

func countID[ID comparable](ids []ID, id ID) int {
	n := 0
	for _, x := range ids {
		if x == id {
			n++
		}
	}
	return n
}
