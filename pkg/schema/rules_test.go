package schema

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/graph"
)

const orgRules = `
name = "org"
default_node = "disallowed"
default_edge = "disallowed"

[nodes.Person]
[nodes.Team]
[nodes.Contractor]
status = "discouraged"

[[edges]]
type = "leads"
source = "Person"
target = "Team"
max = 1

[[edges]]
type = "member_of"
source = "*"
target = "Team"

[[edges]]
type = "knows"
source = "Contractor"
target = "*"
status = "disallowed"

[[edges]]
type = "knows"
source = "*"
target = "*"
status = "discouraged"
`

func TestParse(t *testing.T) {
	r, err := Parse([]byte(orgRules))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := &Rules{
		Name:        "org",
		DefaultNode: graph.Disallowed,
		DefaultEdge: graph.Disallowed,
		Nodes: map[string]NodeRule{
			"Person":     {Status: graph.Allowed},
			"Team":       {Status: graph.Allowed},
			"Contractor": {Status: graph.Discouraged},
		},
		Edges: []EdgeRule{
			{Type: "leads", Source: "Person", Target: "Team", Max: 1},
			{Type: "member_of", Source: "*", Target: "Team"},
			{Type: "knows", Source: "Contractor", Target: "*", Status: graph.Disallowed},
			{Type: "knows", Source: "*", Target: "*", Status: graph.Discouraged},
		},
	}
	if diff := cmp.Diff(want, r); diff != "" {
		t.Errorf("Parse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefaults(t *testing.T) {
	r, err := Parse([]byte(`name = "empty"`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.DefaultNode != graph.Disallowed || r.DefaultEdge != graph.Disallowed {
		t.Errorf("defaults = %v/%v, want disallowed", r.DefaultNode, r.DefaultEdge)
	}
	if got := r.AllowNode("Anything"); got != graph.Disallowed {
		t.Errorf("AllowNode = %v, want disallowed", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `name = `},
		{"unknown verdict", "[nodes.A]\nstatus = \"maybe\""},
		{"unknown key", "[nodes.A]\nstaus = \"allowed\""},
		{"edge without type", "[[edges]]\nsource = \"A\"\ntarget = \"B\""},
		{"edge without target", "[[edges]]\ntype = \"L\"\nsource = \"A\""},
		{"negative max", "[[edges]]\ntype = \"L\"\nsource = \"A\"\ntarget = \"B\"\nmax = -1"},
		{"empty node type", "[nodes.\" \"]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if !errs.Is(err, errs.ErrCodeInvalidSchema) {
				t.Errorf("Parse error = %v, want INVALID_SCHEMA", err)
			}
		})
	}
}

func TestAllowNode(t *testing.T) {
	r, err := Parse([]byte(orgRules))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		nodeType string
		want     graph.Verdict
	}{
		{"Person", graph.Allowed},
		{"Contractor", graph.Discouraged},
		{"Robot", graph.Disallowed},
	}
	for _, tt := range tests {
		if got := r.AllowNode(tt.nodeType); got != tt.want {
			t.Errorf("AllowNode(%s) = %v, want %v", tt.nodeType, got, tt.want)
		}
	}
}

func TestAllowEdge(t *testing.T) {
	r, err := Parse([]byte(orgRules))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name                 string
		count                int
		edge, source, target string
		want                 graph.Verdict
	}{
		{"first leads", 1, "leads", "Person", "Team", graph.Allowed},
		{"second leads", 2, "leads", "Person", "Team", graph.Disallowed},
		{"wrong source", 1, "leads", "Team", "Team", graph.Disallowed},
		{"wildcard source", 7, "member_of", "Contractor", "Team", graph.Allowed},
		{"first match wins", 1, "knows", "Contractor", "Person", graph.Disallowed},
		{"fallthrough match", 1, "knows", "Person", "Contractor", graph.Discouraged},
		{"no rule", 1, "owns", "Person", "Team", graph.Disallowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.AllowEdge(tt.count, tt.edge, tt.source, tt.target); got != tt.want {
				t.Errorf("AllowEdge = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuilderAndDefaults(t *testing.T) {
	r := New("built").
		AddNode("A", graph.Allowed).
		AddEdge(EdgeRule{Type: "L", Source: "A", Target: "A", Max: 2})
	r.DefaultEdge = graph.Discouraged

	if err := r.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := r.AllowEdge(3, "L", "A", "A"); got != graph.Disallowed {
		t.Errorf("AllowEdge over max = %v, want disallowed", got)
	}
	if got := r.AllowEdge(1, "X", "A", "A"); got != graph.Discouraged {
		t.Errorf("AllowEdge unmatched = %v, want discouraged", got)
	}
	if got := r.NodeTypes(); !cmp.Equal(got, []string{"A"}) {
		t.Errorf("NodeTypes = %v, want [A]", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	r, err := Parse([]byte(orgRules))
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	s, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if diff := cmp.Diff(r, s); diff != "" {
		t.Errorf("JSON round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := DecodeJSON([]byte(`{"default_node": "sometimes"}`)); !errs.Is(err, errs.ErrCodeInvalidSchema) {
		t.Errorf("DecodeJSON error = %v, want INVALID_SCHEMA", err)
	}
}

func TestTOMLRoundTrip(t *testing.T) {
	r, err := Parse([]byte(orgRules))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.WriteTOML(&buf); err != nil {
		t.Fatalf("WriteTOML: %v", err)
	}
	back, err := Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse(WriteTOML): %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(r, back); diff != "" {
		t.Errorf("TOML round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.toml")
	if err := os.WriteFile(path, []byte(orgRules), 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if r.Name != "org" {
		t.Errorf("Name = %q, want org", r.Name)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("LoadFile(missing) should fail")
	}
}

func TestBoolAndPermissive(t *testing.T) {
	b := Bool[string]{
		Node: func(typ string) bool { return typ == "A" },
		Edge: func(count int, e, s, d string) bool { return count == 1 },
	}
	if b.AllowNode("A") != graph.Allowed || b.AllowNode("B") != graph.Disallowed {
		t.Error("Bool.AllowNode does not follow its predicate")
	}
	if b.AllowEdge(1, "L", "A", "A") != graph.Allowed || b.AllowEdge(2, "L", "A", "A") != graph.Disallowed {
		t.Error("Bool.AllowEdge does not follow its predicate")
	}
	if (Bool[string]{}).AllowNode("x") != graph.Allowed {
		t.Error("Bool with nil predicate should allow")
	}

	var p Permissive[int]
	if p.AllowNode(1) != graph.Allowed || p.AllowEdge(99, 1, 2, 3) != graph.Allowed {
		t.Error("Permissive should allow everything")
	}
}
