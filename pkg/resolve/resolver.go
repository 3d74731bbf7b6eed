package resolve

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/AnClark/cygpm-prototype/pkg/catalog"
	"github.com/AnClark/cygpm-prototype/pkg/depgraph"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
	"github.com/AnClark/cygpm-prototype/pkg/observability"
)

// DefaultWorkers bounds the number of closures [Resolver.ResolveAll]
// computes at once.
const DefaultWorkers = 4

// Resolver computes transitive dependency closures over a committed catalog.
// It only reads from the catalog, so one Resolver may serve concurrent
// callers, but never while the catalog is being rebuilt.
type Resolver struct {
	Catalog catalog.Reader
	Logger  *log.Logger
	Workers int // concurrent closures in ResolveAll (default: DefaultWorkers)
}

// New creates a resolver over c. A nil logger discards output.
func New(c catalog.Reader, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Resolver{Catalog: c, Logger: logger, Workers: DefaultWorkers}
}

// Closure is the dependency closure of one root.
type Closure struct {
	Root     string   `json:"root" yaml:"root"`
	Version  string   `json:"version" yaml:"version"`
	Packages []string `json:"packages" yaml:"packages"`
}

// Resolve returns root and every package it transitively depends on, each
// exactly once, in depth-first discovery order. The root's newest version
// anchors the traversal.
//
// A dependency with no catalog record is included as a leaf. A missing root
// is a PACKAGE_NOT_FOUND error, and any storage error aborts the traversal.
func (r *Resolver) Resolve(ctx context.Context, root string) ([]string, error) {
	return r.ResolveVersion(ctx, root, "")
}

// ResolveVersion is Resolve anchored at a specific version of root, which may
// be a previous one. Dependencies always resolve to their newest versions.
// An empty version means the newest.
func (r *Resolver) ResolveVersion(ctx context.Context, root, version string) (pkgs []string, err error) {
	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, root, version)
	defer func() {
		observability.Resolve().OnResolveComplete(ctx, root, len(pkgs), time.Since(start), err)
	}()

	err = r.walk(ctx, root, version, func(n visit) {
		pkgs = append(pkgs, n.name)
	}, nil)
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("resolved closure", "root", root, "version", version, "packages", len(pkgs))
	return pkgs, nil
}

// ResolveAll resolves several roots concurrently. The closures are returned
// in the order of roots. The first failure cancels the remaining work.
func (r *Resolver) ResolveAll(ctx context.Context, roots []string) ([]Closure, error) {
	if len(roots) == 0 {
		return nil, nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	out := make([]Closure, len(roots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, root := range roots {
		g.Go(func() error {
			version, err := r.Catalog.NewestVersion(gctx, root)
			if err != nil {
				return err
			}
			pkgs, err := r.ResolveVersion(gctx, root, version)
			if err != nil {
				return err
			}
			out[i] = Closure{Root: root, Version: version, Packages: pkgs}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Union merges closures into one ordered set: the packages of the first
// closure, then those of the second not already listed, and so on.
func Union(closures []Closure) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range closures {
		for _, p := range c.Packages {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}

// Graph returns the closure of root as a graph with one edge per dependency
// followed, including the edges that lead back into already visited
// packages. Package nodes carry version, sdesc, and category metadata;
// dependencies without a catalog record become external nodes.
func (r *Resolver) Graph(ctx context.Context, root, version string) (g *depgraph.Graph, err error) {
	start := time.Now()
	observability.Resolve().OnResolveStart(ctx, root, version)
	defer func() {
		n := 0
		if g != nil {
			n = g.NodeCount()
		}
		observability.Resolve().OnResolveComplete(ctx, root, n, time.Since(start), err)
	}()

	out := depgraph.New(depgraph.Metadata{depgraph.MetaRoot: root})
	var found []string

	err = r.walk(ctx, root, version, func(n visit) {
		node := depgraph.Node{ID: n.name, Depth: n.depth}
		if n.found {
			node.Meta = depgraph.Metadata{depgraph.MetaVersion: n.version}
			found = append(found, n.name)
		} else {
			node.Kind = depgraph.NodeKindExternal
		}
		_ = out.AddNode(node)
	}, func(from, to string) {
		_ = out.AddEdge(depgraph.Edge{From: from, To: to})
	})
	if err != nil {
		return nil, err
	}

	for _, name := range found {
		p, err := r.Catalog.Package(ctx, name)
		if err != nil {
			return nil, err
		}
		n, _ := out.Node(name)
		if p.ShortDesc != "" {
			n.Meta[depgraph.MetaShortDesc] = p.ShortDesc
		}
		if p.Category != "" {
			n.Meta[depgraph.MetaCategory] = p.Category
		}
	}
	return out, nil
}

// visit describes a package the first time the traversal reaches it.
type visit struct {
	name    string
	version string // empty when !found
	depth   int
	found   bool // has a catalog record
}

// walk runs the depth-first traversal. onNode is called once per package,
// before any edge that touches it; onEdge, if set, is called for every
// dependency followed, including those pointing at visited packages.
func (r *Resolver) walk(ctx context.Context, root, version string, onNode func(visit), onEdge func(from, to string)) error {
	rootVersion, err := r.rootVersion(ctx, root, version)
	if err != nil {
		return err
	}

	visited := map[string]struct{}{root: {}}
	onNode(visit{name: root, version: rootVersion, found: true})

	var descend func(name, version string, depth int) error
	descend = func(name, version string, depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		deps, err := r.Catalog.DependenciesOf(ctx, name, version)
		if err != nil {
			return err
		}

		for _, dep := range deps {
			if _, seen := visited[dep]; seen {
				if onEdge != nil {
					onEdge(name, dep)
				}
				continue
			}
			visited[dep] = struct{}{}

			v, err := r.Catalog.NewestVersion(ctx, dep)
			if errors.IsNotFound(err) {
				r.Logger.Debug("dependency outside catalog", "package", name, "dependency", dep)
				onNode(visit{name: dep, depth: depth + 1})
				if onEdge != nil {
					onEdge(name, dep)
				}
				continue
			}
			if err != nil {
				return err
			}

			onNode(visit{name: dep, version: v, depth: depth + 1, found: true})
			if onEdge != nil {
				onEdge(name, dep)
			}
			if err := descend(dep, v, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	return descend(root, rootVersion, 0)
}

// rootVersion checks that root exists at version and returns the version
// the traversal starts from.
func (r *Resolver) rootVersion(ctx context.Context, root, version string) (string, error) {
	current, err := r.Catalog.NewestVersion(ctx, root)
	if err != nil {
		return "", err
	}
	if version == "" || version == current {
		return current, nil
	}
	if _, err := r.Catalog.PrevVersion(ctx, root, version); err != nil {
		return "", err
	}
	return version, nil
}
