package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnClark/cygpm-prototype/pkg/catalog"
	"github.com/AnClark/cygpm-prototype/pkg/depgraph"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
	cio "github.com/AnClark/cygpm-prototype/pkg/io"
	"github.com/AnClark/cygpm-prototype/pkg/render/nodelink"
	"github.com/AnClark/cygpm-prototype/pkg/resolve"
)

const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatPDF  = "pdf"
	formatPNG  = "png"
	formatJSON = "json"
	formatYAML = "yaml"
)

var graphFormats = []string{formatDOT, formatSVG, formatPDF, formatPNG, formatJSON, formatYAML}

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	version  string
	format   string
	output   string  // output file; stdout if empty
	detailed bool    // versions and summaries in node labels
	scale    float64 // PNG scale factor
}

// graphCommand renders the dependency closure of a package.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: formatDOT, scale: 2}

	cmd := &cobra.Command{
		Use:   "graph <package>",
		Short: "Render the dependency closure of a package",
		Long: `Graph resolves the closure of a package and writes it as a node-link
diagram. Edges that close a dependency cycle are drawn in red; dependencies
with no catalog record are drawn dashed.

The format is taken from --format, or from the extension of --output.`,
		Example: `  cygpm graph bash | dot -Tsvg > bash.svg
  cygpm graph bash -o bash.svg --detailed
  cygpm graph bash -f json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") && opts.output != "" {
				switch ext := strings.TrimPrefix(filepath.Ext(opts.output), "."); ext {
				case "":
				case "yml":
					opts.format = formatYAML
				case "gv":
					opts.format = formatDOT
				default:
					opts.format = ext
				}
			}
			if err := validateGraphFormat(opts.format); err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(s *catalog.SQLiteStore) error {
				g, err := resolve.New(s, c.Logger).Graph(cmd.Context(), args[0], opts.version)
				if err != nil {
					return err
				}
				return c.writeGraph(cmd.Context(), cmd.OutOrStdout(), g, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", "", "graph a previous version of the package")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: "+strings.Join(graphFormats, ", "))
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show versions and summaries in node labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")

	return cmd
}

func validateGraphFormat(f string) error {
	for _, v := range graphFormats {
		if f == v {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of %s)", f, strings.Join(graphFormats, ", "))
}

// renderGraph encodes g in the requested format.
func renderGraph(ctx context.Context, g *depgraph.Graph, opts graphOpts) ([]byte, error) {
	var buf bytes.Buffer
	switch opts.format {
	case formatJSON:
		err := cio.WriteJSON(g, &buf)
		return buf.Bytes(), err
	case formatYAML:
		err := cio.WriteYAML(g, &buf)
		return buf.Bytes(), err
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed, MarkCycles: true})
	switch opts.format {
	case formatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case formatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case formatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.scale)
	}
	return []byte(dot), nil
}

func (c *CLI) writeGraph(ctx context.Context, stdout io.Writer, g *depgraph.Graph, opts graphOpts) error {
	data, err := renderGraph(ctx, g, opts)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", opts.output)
	}
	c.Logger.Debug("wrote graph", "file", opts.output, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	printFile(stdout, opts.output)
	return nil
}
