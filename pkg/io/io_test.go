package io_test

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/graph"
	gio "github.com/matzehuels/typegraph/pkg/io"
	"github.com/matzehuels/typegraph/pkg/record"
	"github.com/matzehuels/typegraph/pkg/schema"
)

func abRules() *schema.Rules {
	return schema.New("ab").
		AddNode("A", graph.Allowed).
		AddNode("B", graph.Allowed).
		AddEdge(schema.EdgeRule{Type: "L", Source: "A", Target: "B", Max: 1}).
		AddEdge(schema.EdgeRule{Type: "M", Source: "*", Target: "*"})
}

func buildGraph(t *testing.T) *record.Graph {
	t.Helper()
	g := record.New(abRules())
	for _, n := range []record.Node{
		{ID: "n1", Type: "A", Props: record.Props{"name": "alpha"}},
		{ID: "n2", Type: "B"},
		{ID: "n3", Type: "A"},
	} {
		if _, err := g.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []struct {
		source, target string
		weight         record.Edge
	}{
		{"n1", "n2", record.Edge{ID: "e1", Type: "L"}},
		{"n2", "n1", record.Edge{ID: "e2", Type: "M", Props: record.Props{"since": "2024"}}},
		{"n3", "n3", record.Edge{ID: "loop", Type: "M"}},
		{"n3", "n2", record.Edge{ID: "e3", Type: "L"}},
	} {
		if _, err := g.AddEdge(e.source, e.target, e.weight); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

type snapshot struct {
	Nodes []record.Node
	Edges map[string]record.Ref
}

func capture(g *record.Graph) snapshot {
	s := snapshot{Edges: map[string]record.Ref{}}
	for n := range g.Nodes() {
		s.Nodes = append(s.Nodes, n)
	}
	for id := range g.EdgeIDs() {
		r, _ := g.Ref(id)
		s.Edges[id] = r
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	g := buildGraph(t)

	data, err := gio.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := gio.Unmarshal[string, string, record.Node, record.Edge](data, schema.DecodeJSON)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if diff := cmp.Diff(capture(g), capture(back)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(g.Schema(), back.Schema()); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}
	if err := back.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	again, err := gio.Marshal(back)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, again) {
		t.Errorf("second encoding differs:\n%s\n---\n%s", data, again)
	}
}

func TestWriteJSONEmitsEachEdgeOnce(t *testing.T) {
	g := buildGraph(t)
	var buf bytes.Buffer
	if err := gio.WriteJSON(g, &buf); err != nil {
		t.Fatal(err)
	}

	var doc struct {
		Nodes []record.Node `json:"nodes"`
		Edges []struct {
			Weight record.Edge `json:"weight"`
			Source string      `json:"source"`
			Target string      `json:"target"`
		} `json:"edges"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, e := range doc.Edges {
		ids = append(ids, e.Weight.ID)
	}
	// Grouped by source node in insertion order.
	if want := []string{"e1", "e2", "loop", "e3"}; !cmp.Equal(ids, want) {
		t.Errorf("edge order = %v, want %v", ids, want)
	}
	if !strings.Contains(buf.String(), "\n  \"nodes\": [") {
		t.Errorf("output is not indented:\n%s", buf.String())
	}
}

func TestReadJSONMissingFields(t *testing.T) {
	schemaJSON := `{"default_node":"allowed","default_edge":"allowed"}`
	tests := []struct {
		name string
		doc  string
	}{
		{"no schema", `{"nodes": [], "edges": []}`},
		{"no nodes", `{"schema": ` + schemaJSON + `, "edges": []}`},
		{"no edges", `{"schema": ` + schemaJSON + `, "nodes": []}`},
		{"edge without weight", `{"schema": ` + schemaJSON + `, "nodes": [{"id":"a","type":"X"}], "edges": [{"source":"a","target":"a"}]}`},
		{"edge without source", `{"schema": ` + schemaJSON + `, "nodes": [{"id":"a","type":"X"}], "edges": [{"weight":{"id":"e","type":"Y"},"target":"a"}]}`},
		{"edge without target", `{"schema": ` + schemaJSON + `, "nodes": [{"id":"a","type":"X"}], "edges": [{"weight":{"id":"e","type":"Y"},"source":"a"}]}`},
		{"null schema", `{"schema": null, "nodes": [], "edges": []}`},
		{"null nodes", `{"schema": ` + schemaJSON + `, "nodes": null, "edges": []}`},
		{"null edges", `{"schema": ` + schemaJSON + `, "nodes": [], "edges": null}`},
		{"all null", `{"schema": null, "nodes": null, "edges": null}`},
		{"null edge weight", `{"schema": ` + schemaJSON + `, "nodes": [{"id":"a","type":"X"}], "edges": [{"weight":null,"source":"a","target":"a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := record.ReadJSON(strings.NewReader(tt.doc))
			if !errs.Is(err, errs.ErrCodeMissingField) {
				t.Errorf("ReadJSON error = %v, want MISSING_FIELD", err)
			}
		})
	}
}

func TestReadJSONReplaysValidation(t *testing.T) {
	rules, err := json.Marshal(abRules())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name     string
		nodes    string
		edges    string
		wantCode errs.Code
		wantMsg  string
	}{
		{
			name:     "too many L edges",
			nodes:    `[{"id":"n1","type":"A"},{"id":"n2","type":"B"}]`,
			edges:    `[{"weight":{"id":"e1","type":"L"},"source":"n1","target":"n2"},{"weight":{"id":"e2","type":"L"},"source":"n1","target":"n2"}]`,
			wantCode: errs.ErrCodeInvalidEdgeType,
			wantMsg:  "edge 1 (n1->n2)",
		},
		{
			name:     "disallowed node type",
			nodes:    `[{"id":"n1","type":"A"},{"id":"c","type":"C"}]`,
			edges:    `[]`,
			wantCode: errs.ErrCodeInvalidNodeType,
			wantMsg:  "node 1",
		},
		{
			name:     "dangling endpoint",
			nodes:    `[{"id":"n1","type":"A"}]`,
			edges:    `[{"weight":{"id":"e1","type":"M"},"source":"n1","target":"ghost"}]`,
			wantCode: errs.ErrCodeMissingNodeID,
			wantMsg:  "edge 0",
		},
		{
			name:     "node without id",
			nodes:    `[{"type":"A"}]`,
			edges:    `[]`,
			wantCode: errs.ErrCodeMissingIdentity,
		},
		{
			name:     "edge without type",
			nodes:    `[{"id":"n1","type":"A"}]`,
			edges:    `[{"weight":{"id":"e1"},"source":"n1","target":"n1"}]`,
			wantCode: errs.ErrCodeMissingType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"schema":` + string(rules) + `,"nodes":` + tt.nodes + `,"edges":` + tt.edges + `}`
			_, err := record.Unmarshal([]byte(doc))
			if !errs.Is(err, tt.wantCode) {
				t.Fatalf("Unmarshal error = %v, want %s", err, tt.wantCode)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestReadJSONMalformed(t *testing.T) {
	for _, doc := range []string{
		`{`,
		`[]`,
		`{"schema": {}, "nodes": {}, "edges": []}`,
		`{"schema": {}, "nodes": [], "edges": []} garbage`,
		`{"schema": {}, "nodes": [], "edges": []} {}`,
	} {
		if _, err := record.ReadJSON(strings.NewReader(doc)); !errs.Is(err, errs.ErrCodeInvalidInput) {
			t.Errorf("ReadJSON(%s) error = %v, want INVALID_INPUT", doc, err)
		}
	}
}

func TestReadJSONAllowsTrailingWhitespace(t *testing.T) {
	doc := `{"schema": {"default_node": "allowed", "default_edge": "allowed"}, "nodes": [], "edges": []}` + "\n\n"
	if _, err := record.ReadJSON(strings.NewReader(doc)); err != nil {
		t.Errorf("ReadJSON error = %v", err)
	}
}

func TestWriteJSONBoolSchemaUnsupported(t *testing.T) {
	g := graph.New[string, string, record.Node, record.Edge](schema.Bool[string]{
		Node: func(typ string) bool { return typ == "A" },
	})
	if _, err := g.AddNode(record.Node{ID: "a", Type: "A"}); err != nil {
		t.Fatal(err)
	}
	if _, err := gio.Marshal(g); !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("Marshal error = %v, want UNSUPPORTED", err)
	}
	if _, err := gio.Marshal(graph.New[string, string, record.Node, record.Edge](schema.Permissive[string]{})); err != nil {
		t.Errorf("Marshal with a permissive schema: %v", err)
	}
}

func TestReadJSONBadSchema(t *testing.T) {
	doc := `{"schema": {"default_node": "sometimes"}, "nodes": [], "edges": []}`
	if _, err := record.ReadJSON(strings.NewReader(doc)); !errs.Is(err, errs.ErrCodeInvalidSchema) {
		t.Errorf("ReadJSON error = %v, want INVALID_SCHEMA", err)
	}
}

func TestExportImportFile(t *testing.T) {
	g := buildGraph(t)
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := gio.ExportJSON(g, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	back, err := gio.ImportJSON[string, string, record.Node, record.Edge](path, schema.DecodeJSON)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	if diff := cmp.Diff(capture(g), capture(back)); diff != "" {
		t.Errorf("file round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := record.ImportJSON(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ImportJSON(missing) should fail")
	}
}

// Weights with integer identities work with any schema decoder.
type numbered struct {
	N    int    `json:"n"`
	Kind string `json:"kind"`
}

func (w numbered) Identity() (int, bool)   { return w.N, w.N > 0 }
func (w numbered) TypeTag() (string, bool) { return w.Kind, w.Kind != "" }

func TestGenericWeights(t *testing.T) {
	decode := func(json.RawMessage) (graph.Schema[string], error) {
		return schema.Permissive[string]{}, nil
	}
	g := graph.New[int, string, numbered, numbered](schema.Permissive[string]{})
	_, _ = g.AddNode(numbered{N: 1, Kind: "x"})
	_, _ = g.AddNode(numbered{N: 2, Kind: "y"})
	_, _ = g.AddEdge(1, 2, numbered{N: 10, Kind: "z"})

	data, err := gio.Marshal(g)
	if err != nil {
		t.Fatal(err)
	}
	back, err := gio.Unmarshal[int, string, numbered, numbered](data, decode)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	r, err := back.Ref(10)
	if err != nil {
		t.Fatal(err)
	}
	if r.Source != 1 || r.Target != 2 {
		t.Errorf("edge 10 = %d->%d, want 1->2", r.Source, r.Target)
	}
}
