// Package render converts rendered dependency diagrams between output
// formats.
//
// The [nodelink] subpackage draws a [depgraph.Graph] with Graphviz and
// produces SVG in-process. [ToPDF] and [ToPNG] turn that SVG into other
// formats using the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/AnClark/cygpm-prototype/pkg/render/nodelink
// [depgraph.Graph]: github.com/AnClark/cygpm-prototype/pkg/depgraph
package render
