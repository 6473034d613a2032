package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/typegraph/pkg/graph"
)

type document[ID, T comparable, N, E any] struct {
	Schema graph.Schema[T] `json:"schema"`
	Nodes  []N             `json:"nodes"`
	Edges  []edge[ID, E]   `json:"edges"`
}

type edge[ID comparable, E any] struct {
	Weight E  `json:"weight"`
	Source ID `json:"source"`
	Target ID `json:"target"`
}

// encode builds the wire document. Edges are collected from each node's
// outgoing list, in node insertion order, so every edge appears exactly once.
func encode[ID, T comparable, N graph.Weight[ID, T], E graph.Weight[ID, T]](g *graph.Graph[ID, T, N, E]) (document[ID, T, N, E], error) {
	doc := document[ID, T, N, E]{
		Schema: g.Schema(),
		Nodes:  make([]N, 0, g.NodeCount()),
		Edges:  make([]edge[ID, E], 0, g.EdgeCount()),
	}
	for id := range g.NodeIDs() {
		n, err := g.Node(id)
		if err != nil {
			return doc, err
		}
		doc.Nodes = append(doc.Nodes, n)

		out, err := g.Outgoing(id)
		if err != nil {
			return doc, err
		}
		for r := range out {
			doc.Edges = append(doc.Edges, edge[ID, E]{Weight: r.Weight, Source: r.Source, Target: r.Target})
		}
	}
	return doc, nil
}

// WriteJSON encodes g as an indented JSON document and writes it to w.
// The output can be read back with [ReadJSON] given a decoder for the
// schema's own JSON form.
func WriteJSON[ID, T comparable, N graph.Weight[ID, T], E graph.Weight[ID, T]](g *graph.Graph[ID, T, N, E], w io.Writer) error {
	doc, err := encode(g)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the JSON document for g. It produces the same bytes as
// [WriteJSON].
func Marshal[ID, T comparable, N graph.Weight[ID, T], E graph.Weight[ID, T]](g *graph.Graph[ID, T, N, E]) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes g to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON[ID, T comparable, N graph.Weight[ID, T], E graph.Weight[ID, T]](g *graph.Graph[ID, T, N, E], path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
