// Package io provides JSON and YAML import and export for dependency graphs
// and catalog records.
//
// # Graph Format
//
// A graph has a root and two arrays:
//
//	{
//	  "root": "bash",
//	  "nodes": [
//	    {"id": "bash", "depth": 0, "meta": {"version": "4.4.12-3"}},
//	    {"id": "coreutils", "depth": 1},
//	    {"id": "cygwin", "depth": 1, "kind": "external"}
//	  ],
//	  "edges": [
//	    {"from": "bash", "to": "coreutils"},
//	    {"from": "coreutils", "to": "bash"},
//	    {"from": "bash", "to": "cygwin"}
//	  ]
//	}
//
// Nodes and edges appear in the order the resolver discovered them. The
// "kind" field is omitted for packages with a catalog record and is
// "external" otherwise. Unlike a layout DAG, the graph may be cyclic.
//
// # Import and Export
//
// [WriteJSON], [WriteYAML], and [Export] write a graph; [ReadJSON],
// [ReadYAML], and [Import] read one back:
//
//	err := io.Export(g, "bash.yaml", io.FormatYAML)
//	g, err := io.Import("bash.yaml")
//
// [Encode] writes any other value, such as a package record or an install
// plan, in the same two formats.
package io
