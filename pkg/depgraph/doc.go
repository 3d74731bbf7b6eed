// Package depgraph provides the directed graph used to export and render a
// package's dependency closure.
//
// # Overview
//
// A [Graph] holds one [Node] per package reached from a root and one [Edge]
// per dependency followed. Dependency graphs built from a setup.ini manifest
// are frequently cyclic (bash requires coreutils, which requires bash), so
// cycles are legal; [Graph.Cycles] reports the back edges for display.
//
//	g := depgraph.New(depgraph.Metadata{depgraph.MetaRoot: "bash"})
//	g.AddNode(depgraph.Node{ID: "bash"})
//	g.AddNode(depgraph.Node{ID: "coreutils", Depth: 1})
//	g.AddEdge(depgraph.Edge{From: "bash", To: "coreutils"})
//
// # Node Kinds
//
//   - [NodeKindPackage]: a package with a catalog record
//   - [NodeKindExternal]: a dependency named in a manifest but absent from
//     it, such as a base system package; always a sink
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. A graph is built once by
// the resolver and then only read.
package depgraph
