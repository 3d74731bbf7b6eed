package depgraph

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNodeErrors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: err = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: err = %v", err)
	}
	n, _ := g.Node("a")
	if n.Meta == nil {
		t.Error("Meta not initialized")
	}
}

func TestAddEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"valid", Edge{From: "a", To: "b"}, nil},
		{"repeat is no-op", Edge{From: "a", To: "b"}, nil},
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge = %v, want %v", err, tt.want)
			}
		})
	}

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if !g.HasEdge("a", "b") || g.HasEdge("b", "a") {
		t.Error("HasEdge mismatch")
	}
	if got := g.Parents("b"); !slices.Equal(got, []string{"a"}) {
		t.Errorf("Parents(b) = %v", got)
	}
	if g.OutDegree("a") != 1 || g.InDegree("a") != 0 {
		t.Error("degree mismatch")
	}
}

func TestNodesInsertionOrder(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"zlib", "bash", "m4"} {
		_ = g.AddNode(Node{ID: id})
	}
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, []string{"zlib", "bash", "m4"}) {
		t.Errorf("Nodes = %v", got)
	}
}

func TestCycles(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"A", "B", "C", "D"} {
		_ = g.AddNode(Node{ID: id})
	}
	for _, e := range []Edge{{"A", "B"}, {"B", "C"}, {"C", "A"}, {"A", "D"}} {
		if err := g.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}

	got := g.Cycles()
	if len(got) != 1 || got[0] != (Edge{From: "C", To: "A"}) {
		t.Errorf("Cycles = %v, want [C->A]", got)
	}

	acyclic := New(nil)
	_ = acyclic.AddNode(Node{ID: "x"})
	if c := acyclic.Cycles(); len(c) != 0 {
		t.Errorf("acyclic Cycles = %v", c)
	}
}
