package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnClark/cygpm-prototype/pkg/catalog"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
	cio "github.com/AnClark/cygpm-prototype/pkg/io"
	"github.com/AnClark/cygpm-prototype/pkg/resolve"
)

const (
	outputText      = "text"
	defaultSearchN  = 20
	timestampFormat = "2006-01-02 15:04:05 MST"
)

// parseOutput validates an -o value. Text returns an empty format.
func parseOutput(s string) (cio.Format, error) {
	if s == "" || s == outputText {
		return "", nil
	}
	return cio.ParseFormat(s)
}

// =============================================================================
// info
// =============================================================================

type infoOpts struct {
	version string
	field   string
	output  string
}

func (c *CLI) infoCommand() *cobra.Command {
	var opts infoOpts

	cmd := &cobra.Command{
		Use:   "info <package>",
		Short: "Show a package's metadata and artifacts",
		Example: `  cygpm info bash
  cygpm info bash --version 4.4.11-2 -o json
  cygpm info bash --field install_size`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(opts.output)
			if err != nil {
				return err
			}
			return c.withStore(cmd.Context(), func(s *catalog.SQLiteStore) error {
				return runInfo(cmd.Context(), cmd.OutOrStdout(), s, args[0], opts, format)
			})
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", "", "show a previous version instead of the current one")
	cmd.Flags().StringVar(&opts.field, "field", "", "print a single field ("+strings.Join(catalog.FieldNames(), ", ")+")")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "output format: text, json, yaml")

	return cmd
}

func runInfo(ctx context.Context, w io.Writer, r catalog.Reader, name string, opts infoOpts, format cio.Format) error {
	if opts.field != "" {
		f, err := catalog.ParseField(opts.field)
		if err != nil {
			return err
		}
		v, err := r.Field(ctx, name, opts.version, f)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, v)
		return nil
	}

	p, err := r.Package(ctx, name)
	if err != nil {
		return err
	}
	if opts.version != "" && opts.version != p.Version {
		pv, err := r.PrevVersion(ctx, name, opts.version)
		if err != nil {
			return err
		}
		if format != "" {
			return cio.Encode(w, format, pv)
		}
		fmt.Fprintln(w, StyleTitle.Render(pv.Name+" "+pv.Version)+" "+StyleDim.Render("(previous version)"))
		printArtifacts(w, pv.Install, pv.Source)
		printKeyValue(w, "depends2", pv.Depends2)
		return nil
	}

	if format != "" {
		return cio.Encode(w, format, p)
	}
	fmt.Fprintln(w, StyleTitle.Render(p.Name+" "+p.Version))
	printKeyValue(w, "summary", p.ShortDesc)
	printKeyValue(w, "category", p.Category)
	printKeyValue(w, "requires", p.Requires)
	printKeyValue(w, "depends2", p.Depends2)
	printArtifacts(w, p.Install, p.Source)
	if p.LongDesc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, StyleDim.Render(p.LongDesc))
	}
	return nil
}

func printArtifacts(w io.Writer, install, source catalog.Artifact) {
	for _, a := range []struct {
		label string
		art   catalog.Artifact
	}{{"install", install}, {"source", source}} {
		if a.art.IsZero() {
			continue
		}
		size := a.art.Size
		if n, ok := a.art.Bytes(); ok {
			size = formatBytes(n)
		}
		printKeyValue(w, a.label, a.art.Path)
		printKeyValue(w, "  size", size)
		printKeyValue(w, "  sha512", a.art.SHA512)
	}
}

// =============================================================================
// versions
// =============================================================================

func (c *CLI) versionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "versions <package>",
		Short: "List the current and previous versions of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s *catalog.SQLiteStore) error {
				return runVersions(cmd.Context(), cmd.OutOrStdout(), s, args[0])
			})
		},
	}
}

func runVersions(ctx context.Context, w io.Writer, r catalog.Reader, name string) error {
	current, err := r.NewestVersion(ctx, name)
	if err != nil {
		return err
	}
	prev, err := r.PreviousVersions(ctx, name)
	if err != nil {
		return err
	}

	rows := [][]string{{current, "current"}}
	for _, v := range prev {
		rows = append(rows, []string{v, "previous"})
	}
	printTable(w, []string{"Version", ""}, rows)
	return nil
}

// =============================================================================
// deps
// =============================================================================

type depsOpts struct {
	version string
	direct  bool
	plan    bool
	output  string
	workers int
}

func (c *CLI) depsCommand() *cobra.Command {
	opts := depsOpts{workers: resolve.DefaultWorkers}

	cmd := &cobra.Command{
		Use:   "deps <package>...",
		Short: "Resolve the transitive dependencies of one or more packages",
		Long: `Deps walks the dependency map from each package and prints every package
reached, the roots included, in discovery order. With several packages the
closures are resolved concurrently and merged.

Dependencies with no catalog record are still listed; --plan marks them as
external and totals the download size of everything else.`,
		Example: `  cygpm deps bash
  cygpm deps bash --version 4.4.11-2
  cygpm deps gcc-core make --plan`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(opts.output)
			if err != nil {
				return err
			}
			if opts.version != "" && len(args) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--version needs exactly one package")
			}
			return c.withStore(cmd.Context(), func(s *catalog.SQLiteStore) error {
				r := resolve.New(s, c.Logger)
				r.Workers = opts.workers
				return runDeps(cmd.Context(), cmd.OutOrStdout(), r, args, opts, format)
			})
		},
	}

	cmd.Flags().StringVar(&opts.version, "version", "", "resolve from a previous version of the package")
	cmd.Flags().BoolVar(&opts.direct, "direct", false, "list direct dependencies only")
	cmd.Flags().BoolVar(&opts.plan, "plan", false, "show the install plan with artifact sizes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputText, "output format: text, json, yaml")
	cmd.Flags().IntVar(&opts.workers, "workers", opts.workers, "packages resolved concurrently")

	return cmd
}

func runDeps(ctx context.Context, w io.Writer, r *resolve.Resolver, roots []string, opts depsOpts, format cio.Format) error {
	switch {
	case opts.plan:
		plan, err := r.Plan(ctx, roots...)
		if err != nil {
			return err
		}
		if format != "" {
			return cio.Encode(w, format, plan)
		}
		printPlan(w, plan)
		return nil

	case opts.direct:
		out := make(map[string][]string, len(roots))
		for _, root := range roots {
			version := opts.version
			if version == "" {
				v, err := r.Catalog.NewestVersion(ctx, root)
				if err != nil {
					return err
				}
				version = v
			}
			deps, err := r.Catalog.DependenciesOf(ctx, root, version)
			if err != nil {
				return err
			}
			out[root] = deps
		}
		if format != "" {
			return cio.Encode(w, format, out)
		}
		var names []string
		for _, root := range roots {
			for _, d := range out[root] {
				if !slices.Contains(names, d) {
					names = append(names, d)
				}
			}
		}
		printList(w, names)
		return nil
	}

	if len(roots) == 1 {
		pkgs, err := r.ResolveVersion(ctx, roots[0], opts.version)
		if err != nil {
			return err
		}
		if format != "" {
			return cio.Encode(w, format, pkgs)
		}
		printList(w, pkgs)
		return nil
	}

	closures, err := r.ResolveAll(ctx, roots)
	if err != nil {
		return err
	}
	if format != "" {
		return cio.Encode(w, format, closures)
	}
	printList(w, resolve.Union(closures))
	return nil
}

func printPlan(w io.Writer, plan *resolve.Plan) {
	rows := make([][]string, 0, len(plan.Items))
	for _, it := range plan.Items {
		size := it.Install.Size
		if n, ok := it.Install.Bytes(); ok {
			size = formatBytes(n)
		}
		rows = append(rows, []string{it.Name, it.Version, size})
	}
	printTable(w, []string{"Package", "Version", "Size"}, rows)
	printKeyValue(w, "packages", strconv.Itoa(len(plan.Items)))
	printKeyValue(w, "download", formatBytes(plan.TotalBytes))
	if len(plan.External) > 0 {
		printKeyValue(w, "external", styleExternal.Render(strings.Join(plan.External, ", ")))
	}
}

// =============================================================================
// search
// =============================================================================

func (c *CLI) searchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Fuzzy-search package names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(s *catalog.SQLiteStore) error {
				return runSearch(cmd.Context(), cmd.OutOrStdout(), s, args[0], limit)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultSearchN, "maximum number of matches (0 for all)")

	return cmd
}

func runSearch(ctx context.Context, w io.Writer, r catalog.Reader, pattern string, limit int) error {
	matches, err := catalog.SearchStore(ctx, r, pattern, limit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		printInfo(w, "No packages match %q", pattern)
		return nil
	}

	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		p, err := r.Package(ctx, m.Name)
		if err != nil {
			return err
		}
		rows = append(rows, []string{m.Name, p.Version, p.ShortDesc})
	}
	printTable(w, []string{"Package", "Version", "Summary"}, rows)
	return nil
}

// =============================================================================
// stats
// =============================================================================

func (c *CLI) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show catalog size, manifest header, and the last load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withStore(cmd.Context(), func(s *catalog.SQLiteStore) error {
				printKeyValue(cmd.OutOrStdout(), "database", c.Config.Database)
				return runStats(cmd.Context(), cmd.OutOrStdout(), s)
			})
		},
	}
}

func runStats(ctx context.Context, w io.Writer, r catalog.Reader) error {
	n, err := r.PackageCount(ctx)
	if err != nil {
		return err
	}
	printKeyValue(w, "packages", strconv.Itoa(n))

	info, err := r.ManifestInfo(ctx)
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		printKeyValue(w, k, info[k])
	}

	run, err := r.LastRun(ctx)
	if err != nil {
		return err
	}
	if run.ID == "" {
		printInfo(w, "Catalog is empty; run %s load", appName)
		return nil
	}
	printKeyValue(w, "loaded", run.LoadedAt.Local().Format(timestampFormat))
	printKeyValue(w, "source", run.Source)
	printKeyValue(w, "prev versions", strconv.Itoa(run.PrevVersions))
	printKeyValue(w, "anomalies", strconv.Itoa(run.Anomalies))
	return nil
}
