package nodelink

import (
	"strings"
	"testing"

	"github.com/AnClark/cygpm-prototype/pkg/depgraph"
)

func cyclicGraph() *depgraph.Graph {
	g := depgraph.New(depgraph.Metadata{depgraph.MetaRoot: "bash"})
	_ = g.AddNode(depgraph.Node{ID: "bash", Meta: depgraph.Metadata{
		depgraph.MetaVersion:   "4.4.12-3",
		depgraph.MetaShortDesc: "The GNU Bourne Again SHell",
	}})
	_ = g.AddNode(depgraph.Node{ID: "coreutils", Depth: 1})
	_ = g.AddNode(depgraph.Node{ID: "cygwin", Depth: 1, Kind: depgraph.NodeKindExternal})
	_ = g.AddEdge(depgraph.Edge{From: "bash", To: "coreutils"})
	_ = g.AddEdge(depgraph.Edge{From: "coreutils", To: "bash"})
	_ = g.AddEdge(depgraph.Edge{From: "bash", To: "cygwin"})
	return g
}

func TestToDOT(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		notWant []string
	}{
		{
			name: "plain",
			opts: Options{},
			want: []string{
				"digraph G {",
				`"bash" [label="bash", penwidth=2, fillcolor=lightyellow];`,
				`"cygwin" [label="cygwin", style="rounded,filled,dashed"`,
				`"coreutils" -> "bash";`,
			},
			notWant: []string{"color=red", "4.4.12-3"},
		},
		{
			name: "detailed",
			opts: Options{Detailed: true},
			want: []string{
				`label="bash\n4.4.12-3\nThe GNU Bourne Again SHell"`,
				`label="cygwin\n(not in catalog)"`,
			},
		},
		{
			name: "cycles",
			opts: Options{MarkCycles: true},
			want: []string{
				`"coreutils" -> "bash" [color=red, style=dashed, constraint=false];`,
				`"bash" -> "coreutils";`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDOT(cyclicGraph(), tt.opts)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("missing %q in:\n%s", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(got, w) {
					t.Errorf("unexpected %q in:\n%s", w, got)
				}
			}
		})
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("got  %s\nwant %s", got, want)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox was modified")
	}
}
