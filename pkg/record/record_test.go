package record

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/schema"
)

const abToml = `
name = "ab"
[nodes.A]
[nodes.B]
[[edges]]
type = "L"
source = "A"
target = "B"
max = 1
`

func loadRules(t *testing.T) *schema.Rules {
	t.Helper()
	r, err := schema.Parse([]byte(abToml))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return r
}

func TestIdentityAndType(t *testing.T) {
	tests := []struct {
		name           string
		node           Node
		wantID, wantTy bool
	}{
		{"complete", Node{ID: "n", Type: "A"}, true, true},
		{"no id", Node{Type: "A"}, false, true},
		{"no type", Node{ID: "n"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.node.Identity(); ok != tt.wantID {
				t.Errorf("Identity ok = %v, want %v", ok, tt.wantID)
			}
			if _, ok := tt.node.TypeTag(); ok != tt.wantTy {
				t.Errorf("TypeTag ok = %v, want %v", ok, tt.wantTy)
			}
		})
	}

	if _, ok := (Edge{}).Identity(); ok {
		t.Error("empty edge should have no identity")
	}
}

func TestScenarios(t *testing.T) {
	t.Run("cardinality", func(t *testing.T) {
		g := New(loadRules(t))
		n1, _ := g.AddNode(Node{ID: "n1", Type: "A"})
		n2, _ := g.AddNode(Node{ID: "n2", Type: "B"})

		if _, err := g.AddEdge(n1, n2, Edge{ID: "e1", Type: "L"}); err != nil {
			t.Fatalf("first edge: %v", err)
		}
		if _, err := g.AddEdge(n1, n2, Edge{ID: "e2", Type: "L"}); !errs.Is(err, errs.ErrCodeInvalidEdgeType) {
			t.Fatalf("second edge error = %v, want INVALID_EDGE_TYPE", err)
		}
		if _, err := g.RemoveEdge("e1"); err != nil {
			t.Fatal(err)
		}
		if _, err := g.AddEdge(n1, n2, Edge{ID: "e2", Type: "L"}); err != nil {
			t.Fatalf("edge after removal: %v", err)
		}
	})

	t.Run("disallowed node type", func(t *testing.T) {
		g := New(loadRules(t))
		if _, err := g.AddNode(Node{ID: "c", Type: "C"}); !errs.Is(err, errs.ErrCodeInvalidNodeType) {
			t.Fatalf("AddNode error = %v, want INVALID_NODE_TYPE", err)
		}
		if g.NodeCount() != 0 {
			t.Errorf("NodeCount = %d, want 0", g.NodeCount())
		}
	})
}

func TestCodecRoundTrip(t *testing.T) {
	g := New(loadRules(t))
	_, _ = g.AddNode(Node{ID: "n1", Type: "A", Props: Props{"label": "first", "weight": 1.5}})
	_, _ = g.AddNode(Node{ID: "n2", Type: "B"})
	_, _ = g.AddEdge("n1", "n2", Edge{ID: "e1", Type: "L", Props: Props{"tags": []any{"x", "y"}}})

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	n1, err := back.Node("n1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Props{"label": "first", "weight": 1.5}, n1.Props); diff != "" {
		t.Errorf("props mismatch (-want +got):\n%s", diff)
	}
	e1, err := back.Edge("e1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Props{"tags": []any{"x", "y"}}, e1.Props); diff != "" {
		t.Errorf("edge props mismatch (-want +got):\n%s", diff)
	}
	if r := Rules(back); r == nil || r.Name != "ab" {
		t.Errorf("Rules(back) = %+v, want rule table named ab", r)
	}
}

func TestSummarize(t *testing.T) {
	r := loadRules(t)
	r.AddEdge(schema.EdgeRule{Type: "K", Source: "*", Target: "*"})
	g := New(r)
	_, _ = g.AddNode(Node{ID: "a1", Type: "A"})
	_, _ = g.AddNode(Node{ID: "a2", Type: "A"})
	_, _ = g.AddNode(Node{ID: "b1", Type: "B"})
	_, _ = g.AddEdge("a1", "b1", Edge{ID: "l1", Type: "L"})
	_, _ = g.AddEdge("a1", "a2", Edge{ID: "k1", Type: "K"})
	_, _ = g.AddEdge("a2", "a1", Edge{ID: "k2", Type: "K"})

	s := Summarize(g)
	want := Stats{
		Nodes:     3,
		Edges:     3,
		NodeTypes: map[string]int{"A": 2, "B": 1},
		EdgeTypes: map[string]int{"L": 1, "K": 2},
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}
	if got := s.SortedEdgeTypes(); !cmp.Equal(got, []string{"K", "L"}) {
		t.Errorf("SortedEdgeTypes = %v", got)
	}
}
