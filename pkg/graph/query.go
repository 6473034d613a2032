package graph

import (
	"iter"

	errs "github.com/matzehuels/typegraph/pkg/errors"
)

// Direction tells which way an [EdgeRef] was reached from the queried node.
type Direction int

const (
	// Forward marks an edge reached through the node's outgoing list.
	Forward Direction = iota
	// Backward marks an edge reached through the node's incoming list.
	Backward
)

// String returns "forward" or "backward".
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// EdgeRef is a read-only, direction-aware view of an edge produced by
// traversal queries. It is built on demand and never stored in the graph.
type EdgeRef[ID comparable, E any] struct {
	ID        ID
	Weight    E
	Source    ID
	Target    ID
	Direction Direction
}

// Outer returns the neighbor on the far side of the edge: the target for a
// Forward reference, the source for a Backward one.
func (r EdgeRef[ID, E]) Outer() ID {
	if r.Direction == Backward {
		return r.Source
	}
	return r.Target
}

// Inner returns the node the traversal query was issued against.
func (r EdgeRef[ID, E]) Inner() ID {
	if r.Direction == Backward {
		return r.Target
	}
	return r.Source
}

// Node returns the weight of the node with the given ID.
// Returns MISSING_NODE_ID if it does not exist.
func (g *Graph[ID, T, N, E]) Node(id ID) (N, error) {
	n, ok := g.nodes[id]
	if !ok {
		var zero N
		return zero, errs.New(errs.ErrCodeMissingNodeID, "node %v not found", id)
	}
	return n.weight, nil
}

// LookupNode returns the weight of the node with the given ID and true, or
// the zero weight and false if not found.
func (g *Graph[ID, T, N, E]) LookupNode(id ID) (N, bool) {
	n, ok := g.nodes[id]
	if !ok {
		var zero N
		return zero, false
	}
	return n.weight, true
}

// NodeType returns the current type of the node, derived from its weight.
func (g *Graph[ID, T, N, E]) NodeType(id ID) (T, error) {
	n, ok := g.nodes[id]
	if !ok {
		var zero T
		return zero, errs.New(errs.ErrCodeMissingNodeID, "node %v not found", id)
	}
	t, _ := n.weight.TypeTag()
	return t, nil
}

// Edge returns the weight of the edge with the given ID.
// Returns MISSING_EDGE_ID if it does not exist.
func (g *Graph[ID, T, N, E]) Edge(id ID) (E, error) {
	e, ok := g.edges[id]
	if !ok {
		var zero E
		return zero, errs.New(errs.ErrCodeMissingEdgeID, "edge %v not found", id)
	}
	return e.weight, nil
}

// LookupEdge returns the weight of the edge with the given ID and true, or
// the zero weight and false if not found.
func (g *Graph[ID, T, N, E]) LookupEdge(id ID) (E, bool) {
	e, ok := g.edges[id]
	if !ok {
		var zero E
		return zero, false
	}
	return e.weight, true
}

// Ref returns the edge together with its endpoints as a Forward [EdgeRef].
// Returns MISSING_EDGE_ID if it does not exist.
func (g *Graph[ID, T, N, E]) Ref(id ID) (EdgeRef[ID, E], error) {
	e, ok := g.edges[id]
	if !ok {
		return EdgeRef[ID, E]{}, errs.New(errs.ErrCodeMissingEdgeID, "edge %v not found", id)
	}
	return EdgeRef[ID, E]{ID: id, Weight: e.weight, Source: e.source, Target: e.target, Direction: Forward}, nil
}

// Outgoing returns the edges leaving the node as Forward references, in the
// order they were attached. Returns MISSING_NODE_ID if the node does not exist.
//
// The sequence reads the live adjacency list: do not mutate the graph while
// ranging over it.
func (g *Graph[ID, T, N, E]) Outgoing(id ID) (iter.Seq[EdgeRef[ID, E]], error) {
	return g.OutgoingFunc(id, nil)
}

// OutgoingFunc is like [Graph.Outgoing] but yields only edges whose weight
// satisfies keep. A nil keep yields every edge.
func (g *Graph[ID, T, N, E]) OutgoingFunc(id ID, keep func(E) bool) (iter.Seq[EdgeRef[ID, E]], error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeMissingNodeID, "node %v not found", id)
	}
	return g.refs(n.out, Forward, keep), nil
}

// Incoming returns the edges arriving at the node as Backward references.
// Returns MISSING_NODE_ID if the node does not exist.
func (g *Graph[ID, T, N, E]) Incoming(id ID) (iter.Seq[EdgeRef[ID, E]], error) {
	return g.IncomingFunc(id, nil)
}

// IncomingFunc is like [Graph.Incoming] but yields only edges whose weight
// satisfies keep.
func (g *Graph[ID, T, N, E]) IncomingFunc(id ID, keep func(E) bool) (iter.Seq[EdgeRef[ID, E]], error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeMissingNodeID, "node %v not found", id)
	}
	return g.refs(n.in, Backward, keep), nil
}

// Adjacent returns the outgoing references followed by the incoming ones.
// A self loop therefore appears twice, once in each direction.
func (g *Graph[ID, T, N, E]) Adjacent(id ID) (iter.Seq[EdgeRef[ID, E]], error) {
	return g.AdjacentFunc(id, nil)
}

// AdjacentFunc is like [Graph.Adjacent] but yields only edges whose weight
// satisfies keep.
func (g *Graph[ID, T, N, E]) AdjacentFunc(id ID, keep func(E) bool) (iter.Seq[EdgeRef[ID, E]], error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, errs.New(errs.ErrCodeMissingNodeID, "node %v not found", id)
	}
	out := g.refs(n.out, Forward, keep)
	in := g.refs(n.in, Backward, keep)
	return func(yield func(EdgeRef[ID, E]) bool) {
		for r := range out {
			if !yield(r) {
				return
			}
		}
		for r := range in {
			if !yield(r) {
				return
			}
		}
	}, nil
}

func (g *Graph[ID, T, N, E]) refs(ids []ID, dir Direction, keep func(E) bool) iter.Seq[EdgeRef[ID, E]] {
	return func(yield func(EdgeRef[ID, E]) bool) {
		for _, eid := range ids {
			e, ok := g.edges[eid]
			if !ok {
				continue
			}
			if keep != nil && !keep(e.weight) {
				continue
			}
			ref := EdgeRef[ID, E]{ID: eid, Weight: e.weight, Source: e.source, Target: e.target, Direction: dir}
			if !yield(ref) {
				return
			}
		}
	}
}

// Nodes returns the node weights in insertion order.
func (g *Graph[ID, T, N, E]) Nodes() iter.Seq[N] {
	return func(yield func(N) bool) {
		for _, id := range g.orderedNodeIDs() {
			n, ok := g.nodes[id]
			if !ok {
				continue
			}
			if !yield(n.weight) {
				return
			}
		}
	}
}

// NodeIDs returns the node IDs in insertion order.
func (g *Graph[ID, T, N, E]) NodeIDs() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for _, id := range g.orderedNodeIDs() {
			if _, ok := g.nodes[id]; !ok {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}

// Edges returns the edge weights in insertion order.
func (g *Graph[ID, T, N, E]) Edges() iter.Seq[E] {
	return func(yield func(E) bool) {
		for _, id := range g.orderedEdgeIDs() {
			e, ok := g.edges[id]
			if !ok {
				continue
			}
			if !yield(e.weight) {
				return
			}
		}
	}
}

// EdgeIDs returns the edge IDs in insertion order.
func (g *Graph[ID, T, N, E]) EdgeIDs() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for _, id := range g.orderedEdgeIDs() {
			if _, ok := g.edges[id]; !ok {
				continue
			}
			if !yield(id) {
				return
			}
		}
	}
}
