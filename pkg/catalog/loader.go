package catalog

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/AnClark/cygpm-prototype/pkg/errors"
	"github.com/AnClark/cygpm-prototype/pkg/observability"
	"github.com/AnClark/cygpm-prototype/pkg/setupini"
)

// Loader rebuilds a catalog from a manifest.
//
// Every rebuild runs inside one transaction: readers see either the previous
// catalog or the complete new one, never a mix. A Loader holds no state
// between calls, but callers must not run queries against the same store
// while a load is in progress.
type Loader struct {
	Store  Store
	Logger *log.Logger
}

// NewLoader creates a loader writing to store. A nil logger discards output.
func NewLoader(store Store, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Loader{Store: store, Logger: logger}
}

// LoadResult summarizes a successful load.
type LoadResult struct {
	RunID        string
	Packages     int
	PrevVersions int
	Header       map[string]string
	Anomalies    []setupini.Anomaly
}

// Load parses the manifest read from r and replaces the catalog contents
// with it. source labels the run in the ingestion history (usually the
// manifest path). The returned package count equals the number of distinct
// package names in the manifest.
//
// Parse anomalies are logged and returned but never fail the load. Any
// storage failure rolls the whole load back.
func (l *Loader) Load(ctx context.Context, r io.Reader, source string) (res *LoadResult, err error) {
	start := time.Now()
	hooks := observability.Ingest()
	hooks.OnLoadStart(ctx, source)
	defer func() {
		n := 0
		if res != nil {
			n = res.Packages
		}
		hooks.OnLoadComplete(ctx, source, n, time.Since(start), err)
	}()

	tx, err := l.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := tx.Reset(ctx); err != nil {
		return nil, err
	}

	out := &LoadResult{RunID: uuid.NewString()}
	report := func(a setupini.Anomaly) {
		out.Anomalies = append(out.Anomalies, a)
		hooks.OnAnomaly(ctx, a.Kind.String(), a.Line)
		if a.Severe() {
			l.Logger.Warn(a.String())
		} else {
			l.Logger.Debug(a.String())
		}
	}

	parser := setupini.NewParser(r)
	parser.OnAnomaly = report

	seen := make(map[string]int) // name -> line of first header
	parsed, err := parser.Parse(func(g setupini.Group) error {
		name := g.Package.Name
		if first, dup := seen[name]; dup {
			report(setupini.Anomaly{
				Kind:    setupini.AnomalyDuplicatePackage,
				Line:    g.Package.Line,
				Package: name,
				Detail:  "first defined at line " + strconv.Itoa(first),
			})
			return nil
		}
		seen[name] = g.Package.Line

		l.checkArtifacts(name, g.Package.Line, g.Package.InstallRaw, g.Package.SourceRaw, report)
		if err := tx.InsertPackage(ctx, PackageFromRecord(g.Package)); err != nil {
			return err
		}
		out.Packages++

		for _, pv := range g.PrevVersions {
			l.checkArtifacts(name, pv.Line, pv.InstallRaw, pv.SourceRaw, report)
			if err := tx.InsertPrevVersion(ctx, PrevVersionFromRecord(pv)); err != nil {
				return err
			}
			out.PrevVersions++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out.Header = make(map[string]string, len(parsed.Header))
	for k, v := range parsed.Header {
		out.Header[k] = setupini.UnescapeQuotes(v)
	}
	if err := tx.SetManifestInfo(ctx, out.Header); err != nil {
		return nil, err
	}
	run := Run{
		ID:           out.RunID,
		Source:       source,
		LoadedAt:     time.Now(),
		Packages:     out.Packages,
		PrevVersions: out.PrevVersions,
		Anomalies:    len(out.Anomalies),
	}
	if err := tx.RecordRun(ctx, run); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	l.Logger.Info("loaded manifest",
		"source", source,
		"packages", out.Packages,
		"prev_versions", out.PrevVersions,
		"anomalies", len(out.Anomalies),
		"duration", time.Since(start).Round(time.Millisecond))
	return out, nil
}

// LoadFile is Load for a manifest on disk.
func (l *Loader) LoadFile(ctx context.Context, path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open manifest %s", path)
	}
	defer f.Close()
	return l.Load(ctx, f, path)
}

// checkArtifacts reports a missing install artifact and any artifact that
// does not split into exactly three fields.
func (l *Loader) checkArtifacts(pkg string, line int, install, source string, report func(setupini.Anomaly)) {
	if strings.TrimSpace(install) == "" {
		report(setupini.Anomaly{Kind: setupini.AnomalyMissingInstall, Line: line, Package: pkg})
	}
	for _, raw := range []string{install, source} {
		if strings.TrimSpace(raw) != "" && !WellFormedArtifact(raw) {
			report(setupini.Anomaly{
				Kind:    setupini.AnomalyMalformedArtifact,
				Line:    line,
				Package: pkg,
				Detail:  setupini.UnescapeQuotes(raw),
			})
		}
	}
}

// BuildDependencyMap regenerates the dependency map from the raw requires
// and depends2 fields of every package version. It runs in one transaction
// and returns the number of edges written.
func (l *Loader) BuildDependencyMap(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() {
		observability.Ingest().OnDependencyMapComplete(ctx, n, time.Since(start), err)
	}()

	tx, err := l.Store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if err := tx.ClearEdges(ctx); err != nil {
		return 0, err
	}
	sources, err := tx.DependencySources(ctx)
	if err != nil {
		return 0, err
	}

	edges := MapEdges(sources)
	for _, e := range edges {
		if err := tx.InsertEdge(ctx, e); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	l.Logger.Info("built dependency map",
		"sources", len(sources),
		"edges", len(edges),
		"duration", time.Since(start).Round(time.Millisecond))
	return len(edges), nil
}
