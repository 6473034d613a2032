package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/graph"
)

// Wildcard matches any type in an [EdgeRule] field.
const Wildcard = "*"

// NodeRule is the verdict for one node type. An empty rule allows the type.
type NodeRule struct {
	Status graph.Verdict `toml:"status" json:"status"`
}

// EdgeRule is the verdict for edges of Type from Source to Target.
// Max bounds the multiplicity; zero means unbounded.
type EdgeRule struct {
	Type   string        `toml:"type" json:"type"`
	Source string        `toml:"source" json:"source"`
	Target string        `toml:"target" json:"target"`
	Max    int           `toml:"max,omitempty" json:"max,omitempty"`
	Status graph.Verdict `toml:"status" json:"status"`
}

func (r EdgeRule) matches(edgeType, sourceType, targetType string) bool {
	return match(r.Type, edgeType) && match(r.Source, sourceType) && match(r.Target, targetType)
}

func match(pattern, value string) bool {
	return pattern == Wildcard || pattern == value
}

// String renders the rule as "type: source -> target".
func (r EdgeRule) String() string {
	return fmt.Sprintf("%s: %s -> %s", r.Type, r.Source, r.Target)
}

// Rules is a table-driven schema over string types.
//
// Node types not listed in Nodes get DefaultNode. Edges that match no rule
// get DefaultEdge. Both defaults are Disallowed unless set.
type Rules struct {
	Name        string              `toml:"name" json:"name,omitempty"`
	DefaultNode graph.Verdict       `toml:"default_node" json:"default_node"`
	DefaultEdge graph.Verdict       `toml:"default_edge" json:"default_edge"`
	Nodes       map[string]NodeRule `toml:"nodes" json:"nodes,omitempty"`
	Edges       []EdgeRule          `toml:"edges" json:"edges,omitempty"`
}

var _ graph.Schema[string] = (*Rules)(nil)

// New returns an empty rule table that disallows everything.
func New(name string) *Rules {
	return &Rules{
		Name:        name,
		DefaultNode: graph.Disallowed,
		DefaultEdge: graph.Disallowed,
		Nodes:       make(map[string]NodeRule),
	}
}

// AllowNode returns the verdict for nodeType.
func (r *Rules) AllowNode(nodeType string) graph.Verdict {
	if rule, ok := r.Nodes[nodeType]; ok {
		return rule.Status
	}
	return r.DefaultNode
}

// AllowEdge returns the verdict of the first rule matching the edge, or
// DefaultEdge when none does. A matching rule with Max > 0 disallows the
// edge when count exceeds Max.
func (r *Rules) AllowEdge(count int, edgeType, sourceType, targetType string) graph.Verdict {
	for _, rule := range r.Edges {
		if !rule.matches(edgeType, sourceType, targetType) {
			continue
		}
		if rule.Max > 0 && count > rule.Max {
			return graph.Disallowed
		}
		return rule.Status
	}
	return r.DefaultEdge
}

// AddNode allows nodeType with the given verdict and returns r for chaining.
func (r *Rules) AddNode(nodeType string, status graph.Verdict) *Rules {
	if r.Nodes == nil {
		r.Nodes = make(map[string]NodeRule)
	}
	r.Nodes[nodeType] = NodeRule{Status: status}
	return r
}

// AddEdge appends an edge rule and returns r for chaining.
func (r *Rules) AddEdge(rule EdgeRule) *Rules {
	r.Edges = append(r.Edges, rule)
	return r
}

// Validate checks the rule table for entries that can never be meant.
// Problems are reported as INVALID_SCHEMA errors.
func (r *Rules) Validate() error {
	for _, v := range []graph.Verdict{r.DefaultNode, r.DefaultEdge} {
		if _, err := v.MarshalText(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidSchema, err, "schema %q: default verdict", r.Name)
		}
	}
	for name, rule := range r.Nodes {
		if strings.TrimSpace(name) == "" {
			return errs.New(errs.ErrCodeInvalidSchema, "schema %q: empty node type", r.Name)
		}
		if _, err := rule.Status.MarshalText(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidSchema, err, "schema %q: node %s", r.Name, name)
		}
	}
	for i, rule := range r.Edges {
		switch {
		case rule.Type == "":
			return errs.New(errs.ErrCodeInvalidSchema, "schema %q: edge rule %d has no type", r.Name, i)
		case rule.Source == "", rule.Target == "":
			return errs.New(errs.ErrCodeInvalidSchema, "schema %q: edge rule %d (%s) needs source and target", r.Name, i, rule)
		case rule.Max < 0:
			return errs.New(errs.ErrCodeInvalidSchema, "schema %q: edge rule %d (%s) has negative max", r.Name, i, rule)
		}
		if _, err := rule.Status.MarshalText(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidSchema, err, "schema %q: edge rule %d (%s)", r.Name, i, rule)
		}
	}
	return nil
}

// NodeTypes returns the explicitly listed node types, sorted.
func (r *Rules) NodeTypes() []string {
	return slices.Sorted(maps.Keys(r.Nodes))
}

// Parse decodes a TOML rule table and validates it. Unknown keys are
// rejected so that typos do not silently widen the schema.
func Parse(data []byte) (*Rules, error) {
	r := New("")
	md, err := toml.Decode(string(data), r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidSchema, err, "parse rules")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidSchema, "unknown key %q", undecoded[0].String())
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// LoadFile reads and parses a TOML rule file.
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// DecodeJSON rebuilds a rule table from its JSON form, as stored in graph
// documents. It satisfies the decoder signature expected by package io.
func DecodeJSON(raw json.RawMessage) (graph.Schema[string], error) {
	r, err := FromJSON(raw)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// FromJSON decodes and validates a rule table from JSON.
func FromJSON(raw []byte) (*Rules, error) {
	r := New("")
	if err := json.Unmarshal(raw, r); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidSchema, err, "decode rules")
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// WriteTOML encodes r as TOML.
func (r *Rules) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(r)
}
