package graph

import (
	"slices"

	errs "github.com/matzehuels/typegraph/pkg/errors"
)

// AddNode inserts w, or replaces the weight of the node with the same identity.
//
// The schema is asked whether w's type may exist at all; a rejection fails
// with INVALID_NODE_TYPE. When a node with the same ID already exists:
//
//   - same type: only the weight is replaced, adjacency is untouched
//   - different type: every incident edge is re-checked against the schema as
//     if the node already had the new type, and the first edge that would
//     become invalid aborts the call with INVALID_EDGE_TYPE
//
// All checks run before anything is written, so a failed AddNode leaves the
// graph unchanged. Returns MISSING_IDENTITY or MISSING_TYPE if w cannot
// describe itself.
func (g *Graph[ID, T, N, E]) AddNode(w N) (ID, error) {
	var zero ID
	id, nodeType, err := g.identify(w, "node")
	if err != nil {
		return zero, err
	}

	verdict := g.schema.AllowNode(nodeType)
	if !verdict.IsAllowed() {
		return zero, errs.New(errs.ErrCodeInvalidNodeType, "node %v: type %v not allowed by schema", id, nodeType)
	}
	if verdict == Discouraged {
		g.logger.Warn("discouraged node type", "id", id, "type", nodeType)
	}

	existing, ok := g.nodes[id]
	if !ok {
		g.nodes[id] = &nodeRecord[ID, N]{weight: w, seq: g.nextSeq()}
		g.logger.Debug("node added", "id", id, "type", nodeType)
		return id, nil
	}

	if oldType, ok := existing.weight.TypeTag(); !ok || oldType != nodeType {
		discouraged, err := g.revalidateIncident(id, nodeType)
		if err != nil {
			return zero, err
		}
		existing.weight = w
		g.logger.Debug("node type changed", "id", id, "from", oldType, "to", nodeType)
		for _, eid := range discouraged {
			g.logger.Warn("discouraged edge type after node type change", "id", eid, "node", id, "type", nodeType)
		}
		return id, nil
	}
	existing.weight = w
	return id, nil
}

// revalidateIncident checks every edge touching node id under the hypothesis
// that the node has type newType. It never writes. On success it returns the
// edges the schema would then mark as discouraged.
func (g *Graph[ID, T, N, E]) revalidateIncident(id ID, newType T) ([]ID, error) {
	typeOf := func(nid ID) (T, bool) {
		if nid == id {
			return newType, true
		}
		return g.storedNodeType(nid)
	}

	var discouraged []ID
	n := g.nodes[id]
	seen := make(map[ID]struct{}, len(n.out)+len(n.in))
	for _, eid := range slices.Concat(n.out, n.in) {
		if _, dup := seen[eid]; dup {
			continue
		}
		seen[eid] = struct{}{}

		e, ok := g.edges[eid]
		if !ok {
			continue
		}
		edgeType, _ := e.weight.TypeTag()
		sourceType, _ := typeOf(e.source)
		targetType, _ := typeOf(e.target)

		count := g.multiplicity(e.source, edgeType, targetType, eid, typeOf)
		verdict := g.schema.AllowEdge(count+1, edgeType, sourceType, targetType)
		if !verdict.IsAllowed() {
			return nil, errs.New(errs.ErrCodeInvalidEdgeType,
				"node %v: changing type to %v invalidates edge %v (%v: %v -> %v, count %d)",
				id, newType, eid, edgeType, sourceType, targetType, count+1)
		}
		if verdict == Discouraged {
			discouraged = append(discouraged, eid)
		}
	}
	return discouraged, nil
}

// AddEdge inserts an edge from source to target, or updates the edge with the
// same identity in place.
//
// Both endpoints must exist (MISSING_NODE_ID otherwise). The schema is asked
// with the multiplicity the edge would have: the number of edges already
// leaving source with the same edge type and a target of the same type, plus
// one. When w replaces an existing edge, that edge is not counted against
// itself. A rejection fails with INVALID_EDGE_TYPE and leaves the graph
// unchanged.
//
// Replacing an edge whose endpoints moved updates the adjacency lists of the
// old and new endpoints.
func (g *Graph[ID, T, N, E]) AddEdge(source, target ID, w E) (ID, error) {
	var zero ID
	id, edgeType, err := g.identify(w, "edge")
	if err != nil {
		return zero, err
	}

	src, ok := g.nodes[source]
	if !ok {
		return zero, errs.New(errs.ErrCodeMissingNodeID, "edge %v: source node %v not found", id, source)
	}
	dst, ok := g.nodes[target]
	if !ok {
		return zero, errs.New(errs.ErrCodeMissingNodeID, "edge %v: target node %v not found", id, target)
	}
	sourceType, _ := src.weight.TypeTag()
	targetType, _ := dst.weight.TypeTag()

	count := g.multiplicity(source, edgeType, targetType, id, g.storedNodeType)
	verdict := g.schema.AllowEdge(count+1, edgeType, sourceType, targetType)
	if !verdict.IsAllowed() {
		return zero, errs.New(errs.ErrCodeInvalidEdgeType,
			"edge %v: type %v from %v to %v not allowed by schema (count %d)",
			id, edgeType, sourceType, targetType, count+1)
	}
	if verdict == Discouraged {
		g.logger.Warn("discouraged edge type", "id", id, "type", edgeType, "source", source, "target", target)
	}

	if e, ok := g.edges[id]; ok {
		if e.source != source {
			if old, ok := g.nodes[e.source]; ok {
				old.out = deleteID(old.out, id)
			}
			src.out = append(src.out, id)
		}
		if e.target != target {
			if old, ok := g.nodes[e.target]; ok {
				old.in = deleteID(old.in, id)
			}
			dst.in = append(dst.in, id)
		}
		e.weight, e.source, e.target = w, source, target
		g.logger.Debug("edge replaced", "id", id, "type", edgeType, "source", source, "target", target)
		return id, nil
	}

	g.edges[id] = &edgeRecord[ID, E]{weight: w, source: source, target: target, seq: g.nextSeq()}
	src.out = append(src.out, id)
	dst.in = append(dst.in, id)
	g.logger.Debug("edge added", "id", id, "type", edgeType, "source", source, "target", target)
	return id, nil
}

// RemoveNode deletes the node and every edge incident to it, returning the
// removed weight. Returns MISSING_NODE_ID if the node does not exist.
func (g *Graph[ID, T, N, E]) RemoveNode(id ID) (N, error) {
	n, ok := g.nodes[id]
	if !ok {
		var zero N
		return zero, errs.New(errs.ErrCodeMissingNodeID, "node %v not found", id)
	}
	delete(g.nodes, id)

	// A self loop is listed in both adjacency lists; the existence check
	// keeps it from being removed twice.
	for _, eid := range slices.Concat(n.out, n.in) {
		if e, ok := g.edges[eid]; ok {
			g.unlinkEdge(eid, e)
		}
	}
	g.logger.Debug("node removed", "id", id, "edges", len(n.out)+len(n.in))
	return n.weight, nil
}

// RemoveEdge deletes the edge and returns its weight. The edge ID is dropped
// from its endpoints' adjacency lists when those nodes still exist.
// Returns MISSING_EDGE_ID if the edge does not exist.
func (g *Graph[ID, T, N, E]) RemoveEdge(id ID) (E, error) {
	e, ok := g.edges[id]
	if !ok {
		var zero E
		return zero, errs.New(errs.ErrCodeMissingEdgeID, "edge %v not found", id)
	}
	g.unlinkEdge(id, e)
	g.logger.Debug("edge removed", "id", id)
	return e.weight, nil
}

func (g *Graph[ID, T, N, E]) unlinkEdge(id ID, e *edgeRecord[ID, E]) {
	delete(g.edges, id)
	if src, ok := g.nodes[e.source]; ok {
		src.out = deleteID(src.out, id)
	}
	if dst, ok := g.nodes[e.target]; ok {
		dst.in = deleteID(dst.in, id)
	}
}

// multiplicity counts the edges leaving source with type edgeType whose target
// has type targetType, skipping exclude. typeOf resolves node types so callers
// can substitute a hypothetical type for one node.
func (g *Graph[ID, T, N, E]) multiplicity(source ID, edgeType, targetType T, exclude ID, typeOf func(ID) (T, bool)) int {
	src, ok := g.nodes[source]
	if !ok {
		return 0
	}
	count := 0
	for _, eid := range src.out {
		if eid == exclude {
			continue
		}
		e, ok := g.edges[eid]
		if !ok {
			continue
		}
		if t, ok := e.weight.TypeTag(); !ok || t != edgeType {
			continue
		}
		if t, ok := typeOf(e.target); !ok || t != targetType {
			continue
		}
		count++
	}
	return count
}

func (g *Graph[ID, T, N, E]) storedNodeType(id ID) (T, bool) {
	n, ok := g.nodes[id]
	if !ok {
		var zero T
		return zero, false
	}
	return n.weight.TypeTag()
}

func (g *Graph[ID, T, N, E]) identify(w Weight[ID, T], kind string) (ID, T, error) {
	var (
		zeroID ID
		zeroT  T
	)
	id, ok := w.Identity()
	if !ok {
		return zeroID, zeroT, errs.New(errs.ErrCodeMissingIdentity, "%s weight has no identity", kind)
	}
	t, ok := w.TypeTag()
	if !ok {
		return zeroID, zeroT, errs.New(errs.ErrCodeMissingType, "%s %v: weight has no type", kind, id)
	}
	return id, t, nil
}

func deleteID[ID comparable](ids []ID, id ID) []ID {
	return slices.DeleteFunc(ids, func(x ID) bool { return x == id })
}
