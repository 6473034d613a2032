package schema

import (
	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/graph"
)

// Bool adapts yes/no predicates to [graph.Schema]. A nil predicate allows
// everything.
//
// Predicates cannot be written to a graph document: encoding a graph that
// uses Bool fails with UNSUPPORTED. Use [Rules] for graphs that are saved.
type Bool[T comparable] struct {
	Node func(nodeType T) bool
	Edge func(count int, edgeType, sourceType, targetType T) bool
}

// AllowNode reports Allowed when Node returns true.
func (b Bool[T]) AllowNode(nodeType T) graph.Verdict {
	if b.Node == nil {
		return graph.Allowed
	}
	return graph.VerdictOf(b.Node(nodeType))
}

// AllowEdge reports Allowed when Edge returns true.
func (b Bool[T]) AllowEdge(count int, edgeType, sourceType, targetType T) graph.Verdict {
	if b.Edge == nil {
		return graph.Allowed
	}
	return graph.VerdictOf(b.Edge(count, edgeType, sourceType, targetType))
}

// MarshalJSON always fails; see [Bool].
func (b Bool[T]) MarshalJSON() ([]byte, error) {
	return nil, errs.New(errs.ErrCodeUnsupported, "boolean schema predicates cannot be serialized")
}

// Permissive allows every node and edge.
type Permissive[T comparable] struct{}

func (Permissive[T]) AllowNode(T) graph.Verdict            { return graph.Allowed }
func (Permissive[T]) AllowEdge(int, T, T, T) graph.Verdict { return graph.Allowed }
