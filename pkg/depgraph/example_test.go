package depgraph_test

import (
	"fmt"

	"github.com/AnClark/cygpm-prototype/pkg/depgraph"
)

func ExampleGraph_basic() {
	// bash → coreutils → libiconv2
	g := depgraph.New(nil)
	_ = g.AddNode(depgraph.Node{ID: "bash"})
	_ = g.AddNode(depgraph.Node{ID: "coreutils", Depth: 1})
	_ = g.AddNode(depgraph.Node{ID: "libiconv2", Depth: 2})
	_ = g.AddEdge(depgraph.Edge{From: "bash", To: "coreutils"})
	_ = g.AddEdge(depgraph.Edge{From: "coreutils", To: "libiconv2"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Max depth:", g.MaxDepth())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Max depth: 2
}

func ExampleGraph_Cycles() {
	// bash and coreutils require each other.
	g := depgraph.New(nil)
	_ = g.AddNode(depgraph.Node{ID: "bash"})
	_ = g.AddNode(depgraph.Node{ID: "coreutils", Depth: 1})
	_ = g.AddEdge(depgraph.Edge{From: "bash", To: "coreutils"})
	_ = g.AddEdge(depgraph.Edge{From: "coreutils", To: "bash"})

	for _, e := range g.Cycles() {
		fmt.Printf("%s -> %s\n", e.From, e.To)
	}
	// Output:
	// coreutils -> bash
}

func ExampleGraph_Sinks() {
	g := depgraph.New(nil)
	_ = g.AddNode(depgraph.Node{ID: "bash"})
	_ = g.AddNode(depgraph.Node{ID: "cygwin", Depth: 1, Kind: depgraph.NodeKindExternal})
	_ = g.AddNode(depgraph.Node{ID: "libiconv2", Depth: 1})
	_ = g.AddEdge(depgraph.Edge{From: "bash", To: "cygwin"})
	_ = g.AddEdge(depgraph.Edge{From: "bash", To: "libiconv2"})

	fmt.Println("Sinks:", depgraph.NodeIDs(g.Sinks()))
	fmt.Println("Sources:", depgraph.NodeIDs(g.Sources()))
	// Output:
	// Sinks: [cygwin libiconv2]
	// Sources: [bash]
}
