package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AnClark/cygpm-prototype/pkg/catalog"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
	"github.com/AnClark/cygpm-prototype/pkg/httputil"
	"github.com/AnClark/cygpm-prototype/pkg/mirror"
	"github.com/AnClark/cygpm-prototype/pkg/setupini"
)

const (
	// maxAnomalies caps the anomalies listed after a load; the rest are counted.
	maxAnomalies = 20

	downloadTimeout = 5 * time.Minute
)

// loadOpts holds the command-line flags for the load command.
type loadOpts struct {
	mirror      string // mirror base URL; overrides the file argument
	arch        string // mirror architecture directory
	compression string // "", "zst" or "bz2"
	noCache     bool   // skip the on-disk manifest cache
}

// loadCommand creates the load command, which replaces the catalog with the
// contents of a manifest and rebuilds the dependency map.
func (c *CLI) loadCommand() *cobra.Command {
	var opts loadOpts

	cmd := &cobra.Command{
		Use:   "load [setup.ini]",
		Short: "Load a setup.ini manifest into the catalog",
		Long: `Load parses a setup.ini manifest, replaces the catalog with its packages and
previous versions, and rebuilds the dependency map.

The manifest is read from the file argument, the configured manifest path, or
downloaded from a mirror with --mirror (or the configured mirror url).`,
		Example: `  cygpm load setup.ini
  cygpm load --mirror https://mirrors.kernel.org/sourceware/cygwin --compression zst`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runLoad(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), path, opts)
		},
	}

	cmd.Flags().StringVar(&opts.mirror, "mirror", "", "download the manifest from this mirror URL")
	cmd.Flags().StringVar(&opts.arch, "arch", "", "mirror architecture (default from config, x86_64)")
	cmd.Flags().StringVar(&opts.compression, "compression", "", "mirror manifest compression: zst, bz2, or none")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "always download, bypassing the manifest cache")

	return cmd
}

func (c *CLI) runLoad(ctx context.Context, out, errw io.Writer, path string, opts loadOpts) error {
	body, source, err := c.manifestSource(ctx, errw, path, opts)
	if err != nil {
		return err
	}
	defer body.Close()

	return c.withStore(ctx, func(s *catalog.SQLiteStore) error {
		prog := newProgress(c.Logger)
		loader := catalog.NewLoader(s, c.Logger)

		res, err := loader.Load(ctx, body, source)
		if err != nil {
			return err
		}
		edges, err := loader.BuildDependencyMap(ctx)
		if err != nil {
			return err
		}
		prog.done("catalog loaded", "packages", res.Packages, "edges", edges)

		printSuccess(out, "Loaded %d packages (%d previous versions) from %s", res.Packages, res.PrevVersions, source)
		printDetail(out, "%d dependency edges, run %s", edges, res.RunID)
		printAnomalies(out, res.Anomalies)
		return nil
	})
}

// manifestSource opens the manifest named by the flags, the argument, or
// the config, in that order.
func (c *CLI) manifestSource(ctx context.Context, errw io.Writer, path string, opts loadOpts) (io.ReadCloser, string, error) {
	mirrorURL := opts.mirror
	if mirrorURL == "" && path == "" && c.Config.Manifest == "" {
		mirrorURL = c.Config.Mirror.URL
	}
	if mirrorURL != "" {
		return c.fetchManifest(ctx, errw, mirrorURL, opts)
	}

	if path == "" {
		path = c.Config.Manifest
	}
	if path == "" {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "no manifest given; pass a file, --mirror, or set manifest in the config")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrCodeInvalidInput, err, "open manifest %s", path)
	}
	return f, path, nil
}

func (c *CLI) fetchManifest(ctx context.Context, errw io.Writer, mirrorURL string, opts loadOpts) (io.ReadCloser, string, error) {
	arch := opts.arch
	if arch == "" {
		arch = c.Config.Mirror.Arch
	}
	compression := opts.compression
	if compression == "" {
		compression = c.Config.Mirror.Compression
	}
	comp, err := mirror.ParseCompression(compression)
	if err != nil {
		return nil, "", err
	}

	var cache *httputil.Cache
	if !opts.noCache {
		cache, err = httputil.NewCache(c.Config.Mirror.CacheDir, c.Config.Mirror.CacheTTL)
		if err != nil {
			c.Logger.Warn("manifest cache disabled", "err", err)
			cache = nil
		}
	}

	f := mirror.New(httputil.NewClient(ctx, downloadTimeout), cache, c.Logger)

	spin := newSpinner(ctx, errw, "Downloading manifest from "+mirrorURL)
	spin.Start()
	res, err := f.Fetch(ctx, mirrorURL, arch, comp)
	spin.Stop()
	if err != nil {
		return nil, "", err
	}

	switch {
	case res.FromCache:
		c.Logger.Info("using cached manifest", "url", res.URL)
	case res.Revalidated:
		c.Logger.Info("cached manifest is current", "url", res.URL)
	}
	return io.NopCloser(bytes.NewReader(res.Body)), res.URL, nil
}

// printAnomalies lists parse anomalies, severe ones as warnings.
func printAnomalies(w io.Writer, anomalies []setupini.Anomaly) {
	if len(anomalies) == 0 {
		return
	}
	printInfo(w, "%d anomalies", len(anomalies))
	for i, a := range anomalies {
		if i == maxAnomalies {
			printDetail(w, "... and %d more (see --verbose)", len(anomalies)-maxAnomalies)
			break
		}
		if a.Severe() {
			printWarning(w, "%s", a)
		} else {
			printDetail(w, "%s", a)
		}
	}
	fmt.Fprintln(w)
}
