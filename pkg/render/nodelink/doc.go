// Package nodelink renders dependency graphs as node-link diagrams.
//
// # Usage
//
// Convert a resolved graph to DOT, then render it to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{MarkCycles: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions, which need librsvg
// (rsvg-convert) on the PATH:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// # Drawing
//
// Nodes are rounded boxes laid out top to bottom, from the root down to its
// deepest dependencies. The root is drawn bold. Dependencies that have no
// catalog record are dashed and grey. With [Options.MarkCycles] the edges
// that close a cycle are drawn red and dashed.
//
// The DOT source from [ToDOT] can also be saved and processed with external
// Graphviz tools.
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering.
package nodelink
