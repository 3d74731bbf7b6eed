package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/AnClark/cygpm-prototype/pkg/depgraph"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
	"github.com/AnClark/cygpm-prototype/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the version, short description, and category to node
	// labels. When false, only the package name is shown.
	Detailed bool

	// MarkCycles draws the edges that close a dependency cycle in red and
	// keeps them out of the ranking, so cyclic closures still read top-down.
	MarkCycles bool
}

// ToDOT converts a dependency graph to Graphviz DOT source. The root named
// in the graph metadata is drawn bold; packages with no catalog record are
// drawn dashed and grey.
func ToDOT(g *depgraph.Graph, opts Options) string {
	root, _ := g.Meta()[depgraph.MetaRoot].(string)

	back := make(map[depgraph.Edge]bool)
	if opts.MarkCycles {
		for _, e := range g.Cycles() {
			back[e] = true
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := nodeAttrs(*n, fmtLabel(*n, opts.Detailed), n.ID == root)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if back[e] {
			fmt.Fprintf(&buf, "  %q -> %q [color=red, style=dashed, constraint=false];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n depgraph.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}

	lines := []string{n.ID}
	for _, k := range []string{depgraph.MetaVersion, depgraph.MetaShortDesc, depgraph.MetaCategory} {
		if v, ok := n.Meta[k]; ok && v != "" {
			lines = append(lines, fmt.Sprint(v))
		}
	}
	if n.IsExternal() {
		lines = append(lines, "(not in catalog)")
	}
	return strings.Join(lines, "\n")
}

func nodeAttrs(n depgraph.Node, label string, root bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsExternal():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=dimgrey")
	case root:
		attrs = append(attrs, "penwidth=2", "fillcolor=lightyellow")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG in-process using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one sized
// in pixels from the viewBox, so browsers scale the drawing.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source as PDF via [RenderSVG] and rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via [RenderSVG] and rsvg-convert.
// A scale of 2.0 doubles the resolution.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
