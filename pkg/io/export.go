package io

import (
	"encoding/json"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AnClark/cygpm-prototype/pkg/depgraph"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
)

// Format names a serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml", or "yml".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want json or yaml)", s)
}

const kindExternal = "external"

type graph struct {
	Root  string `json:"root,omitempty" yaml:"root,omitempty"`
	Nodes []node `json:"nodes" yaml:"nodes"`
	Edges []edge `json:"edges" yaml:"edges"`
}

type node struct {
	ID    string            `json:"id" yaml:"id"`
	Depth int               `json:"depth" yaml:"depth"`
	Kind  string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	Meta  depgraph.Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
}

type edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

func toWire(g *depgraph.Graph) graph {
	nodes, edges := g.Nodes(), g.Edges()
	out := graph{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}
	out.Root, _ = g.Meta()[depgraph.MetaRoot].(string)

	for i, n := range nodes {
		nd := node{ID: n.ID, Depth: n.Depth}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		if n.IsExternal() {
			nd.Kind = kindExternal
		}
		out.Nodes[i] = nd
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.From, To: e.To}
	}
	return out
}

// WriteJSON encodes a dependency graph as indented JSON and writes it to w.
// The output can be read back with [ReadJSON].
func WriteJSON(g *depgraph.Graph, w io.Writer) error {
	return Encode(w, FormatJSON, toWire(g))
}

// WriteYAML is WriteJSON in YAML.
func WriteYAML(g *depgraph.Graph, w io.Writer) error {
	return Encode(w, FormatYAML, toWire(g))
}

// Write encodes g in the given format.
func Write(g *depgraph.Graph, w io.Writer, f Format) error {
	return Encode(w, f, toWire(g))
}

// Export writes g to a file at path in the given format.
func Export(g *depgraph.Graph, path string, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	defer file.Close()
	return Write(g, file, f)
}

// Encode writes any value, such as a package record or an install plan, in
// the given format. JSON output is indented by two spaces.
func Encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode json")
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
		}
		if err := enc.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	return nil
}
