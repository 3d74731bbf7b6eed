package io

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AnClark/cygpm-prototype/pkg/depgraph"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
)

// ReadJSON decodes a JSON graph from r.
//
// The input must be an object with "nodes" and "edges" arrays:
//
//	{
//	  "root": "bash",
//	  "nodes": [{"id": "bash"}, {"id": "cygwin", "depth": 1, "kind": "external"}],
//	  "edges": [{"from": "bash", "to": "cygwin"}]
//	}
//
// Each node must have an "id". Every edge must reference known node IDs.
// Cycles are allowed. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*depgraph.Graph, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json graph")
	}
	return fromWire(data)
}

// ReadYAML is ReadJSON for the YAML form written by [WriteYAML].
func ReadYAML(r io.Reader) (*depgraph.Graph, error) {
	var data graph
	if err := yaml.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml graph")
	}
	return fromWire(data)
}

// Import reads a graph file, choosing the decoder from the extension:
// .yaml and .yml are YAML, anything else is JSON.
func Import(path string) (*depgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadYAML(f)
	default:
		return ReadJSON(f)
	}
}

func fromWire(data graph) (*depgraph.Graph, error) {
	var meta depgraph.Metadata
	if data.Root != "" {
		meta = depgraph.Metadata{depgraph.MetaRoot: data.Root}
	}
	g := depgraph.New(meta)

	for _, n := range data.Nodes {
		nd := depgraph.Node{ID: n.ID, Depth: n.Depth, Meta: n.Meta}
		switch n.Kind {
		case "":
		case kindExternal:
			nd.Kind = depgraph.NodeKindExternal
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "node %s: unknown kind %q", n.ID, n.Kind)
		}
		if err := g.AddNode(nd); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "node %s", n.ID)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(depgraph.Edge{From: e.From, To: e.To}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edge %s->%s", e.From, e.To)
		}
	}
	return g, nil
}
