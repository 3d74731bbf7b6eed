// Package pkg provides the core libraries for cygpm, a catalog and
// dependency resolver for Cygwin package manifests.
//
// # Overview
//
// cygpm reads a setup.ini manifest (as published on every Cygwin mirror),
// stores each package and its previous versions in a local SQLite catalog,
// and answers dependency questions against it. The pkg directory is
// organized as:
//
//  1. [setupini] - Manifest parsing into header, package and prev records
//  2. [catalog] - SQLite storage, ingestion runs, lookups and fuzzy search
//  3. [resolve] - Transitive dependency closures and download plans
//  4. [depgraph], [render] - Graph model, Graphviz rendering, SVG/PDF/PNG
//  5. [mirror], [httputil] - Manifest download with caching and retries
//  6. [api] - Read-only HTTP API over a loaded catalog
//
// # Architecture
//
// The typical data flow:
//
//	setup.ini (file or mirror)
//	         ↓
//	    [setupini] package (parse records and anomalies)
//	         ↓
//	    [catalog] package (store packages, build dependency map)
//	         ↓
//	    [resolve] package (closure, union, plan)
//	         ↓
//	    text / JSON / YAML / DOT / SVG / PDF / PNG
//
// # Quick Start
//
//	ctx := context.Background()
//	store, _ := catalog.OpenSQLite(ctx, "cygpm.db")
//	defer store.Close()
//
//	// 1. Load a manifest
//	loader := catalog.NewLoader(store, logger)
//	res, _ := loader.LoadFile(ctx, "setup.ini")
//	_, _ = loader.BuildDependencyMap(ctx)
//
//	// 2. Resolve a closure
//	closure, _ := resolve.New(store, logger).Resolve(ctx, "coreutils")
//
//	// 3. Render it
//	g, _ := resolve.New(store, logger).Graph(ctx, "coreutils", "")
//	svg, _ := nodelink.RenderSVG(ctx, nodelink.ToDOT(g, nodelink.Options{}))
//
// # Supporting Packages
//
// [config] - TOML configuration file with XDG-aware default locations.
//
// [errors] - Coded errors shared by every layer and mapped to HTTP status
// codes by [api].
//
// [io] - JSON and YAML encoding of graphs, closures and plans.
//
// [observability] - Hooks for ingestion, resolution and HTTP metrics.
//
// [buildinfo] - Version information injected at link time.
//
// # Testing
//
//	go test ./...                # All tests
//	go test ./pkg/catalog/...    # Specific package
//	go test -run Example ./pkg/...
//
// [setupini]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/setupini
// [catalog]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/catalog
// [resolve]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/resolve
// [depgraph]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/depgraph
// [render]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/render
// [mirror]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/mirror
// [httputil]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/httputil
// [api]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/api
// [config]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/config
// [errors]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/errors
// [io]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/io
// [observability]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/AnClark/cygpm-prototype/pkg/buildinfo
package pkg
