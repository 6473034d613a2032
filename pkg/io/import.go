package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	errs "github.com/matzehuels/typegraph/pkg/errors"
	"github.com/matzehuels/typegraph/pkg/graph"
)

// SchemaDecoder rebuilds a schema from the raw JSON stored under the
// document's "schema" key.
type SchemaDecoder[T comparable] func(raw json.RawMessage) (graph.Schema[T], error)

// ReadJSON decodes a JSON graph document from r.
//
// The input must be an object with "schema", "nodes" and "edges" keys:
//
//	{
//	  "schema": {...},
//	  "nodes": [{"id": "n1", "type": "A"}, {"id": "n2", "type": "B"}],
//	  "edges": [{"weight": {"id": "e1", "type": "L"}, "source": "n1", "target": "n2"}]
//	}
//
// The schema is decoded first with decodeSchema. ReadJSON then builds an empty
// graph and replays AddNode for every node followed by AddEdge for every edge,
// in document order, so a document that violates its own schema is rejected
// with the same error the mutation would raise.
//
// ReadJSON returns an error if:
//   - The JSON is malformed or followed by more data (INVALID_INPUT)
//   - A top-level key or an edge's weight, source or target is absent or
//     null (MISSING_FIELD)
//   - decodeSchema fails
//   - Replaying a node or edge fails (the mutation's own code, with context)
//
// ReadJSON does not close r. opts are passed to [graph.New].
func ReadJSON[ID, T comparable, N graph.Weight[ID, T], E graph.Weight[ID, T]](r io.Reader, decodeSchema SchemaDecoder[T], opts ...graph.Option) (*graph.Graph[ID, T, N, E], error) {
	var top map[string]json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&top); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode")
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return nil, errs.New(errs.ErrCodeInvalidInput, "decode: unexpected data after document")
	}
	for _, key := range []string{"schema", "nodes", "edges"} {
		if isAbsent(top[key]) {
			return nil, errs.New(errs.ErrCodeMissingField, "document has no %q field", key)
		}
	}

	schema, err := decodeSchema(top["schema"])
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if schema == nil {
		return nil, errs.New(errs.ErrCodeInvalidSchema, "schema decoder returned nil")
	}

	var nodes []json.RawMessage
	if err := json.Unmarshal(top["nodes"], &nodes); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode nodes")
	}
	var edges []map[string]json.RawMessage
	if err := json.Unmarshal(top["edges"], &edges); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode edges")
	}

	g := graph.New[ID, T, N, E](schema, opts...)
	for i, raw := range nodes {
		var n N
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode node %d", i)
		}
		if _, err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
	}
	for i, fields := range edges {
		e, source, target, err := decodeEdge[ID, E](fields)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if _, err := g.AddEdge(source, target, e); err != nil {
			return nil, fmt.Errorf("edge %d (%v->%v): %w", i, source, target, err)
		}
	}

	return g, nil
}

func decodeEdge[ID comparable, E any](fields map[string]json.RawMessage) (E, ID, ID, error) {
	var (
		w              E
		source, target ID
	)
	for _, f := range []struct {
		key string
		dst any
	}{
		{"weight", &w},
		{"source", &source},
		{"target", &target},
	} {
		raw := fields[f.key]
		if isAbsent(raw) {
			return w, source, target, errs.New(errs.ErrCodeMissingField, "edge has no %q field", f.key)
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return w, source, target, errs.Wrap(errs.ErrCodeInvalidInput, err, "decode %s", f.key)
		}
	}
	return w, source, target, nil
}

// isAbsent reports whether a field is missing or explicitly null.
func isAbsent(raw json.RawMessage) bool {
	return raw == nil || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Unmarshal decodes a graph from data. See [ReadJSON].
func Unmarshal[ID, T comparable, N graph.Weight[ID, T], E graph.Weight[ID, T]](data []byte, decodeSchema SchemaDecoder[T], opts ...graph.Option) (*graph.Graph[ID, T, N, E], error) {
	return ReadJSON[ID, T, N, E](bytes.NewReader(data), decodeSchema, opts...)
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
//
// ImportJSON opens the file, decodes it using [ReadJSON], and closes the
// file. It returns the same validation errors as [ReadJSON].
func ImportJSON[ID, T comparable, N graph.Weight[ID, T], E graph.Weight[ID, T]](path string, decodeSchema SchemaDecoder[T], opts ...graph.Option) (*graph.Graph[ID, T, N, E], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON[ID, T, N, E](f, decodeSchema, opts...)
}
