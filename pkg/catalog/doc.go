// Package catalog stores the packages of a setup.ini manifest and the
// dependency map derived from them.
//
// # Overview
//
// A catalog holds three kinds of rows: the current version of every package
// ([Package]), the historical versions listed under "[prev]" ([PrevVersion]),
// and dependency map [Edge]s keyed by (package, version). The query side is
// the [Reader] interface; writes go through a [Tx] obtained from a [Store].
// [SQLiteStore] is the Store used by the command-line tool.
//
// # Building a catalog
//
// A catalog is always rebuilt in full, in two steps:
//
//	store, _ := catalog.OpenSQLite(ctx, "catalog.db")
//	loader := catalog.NewLoader(store, logger)
//	res, err := loader.LoadFile(ctx, "setup.ini")     // packages + [prev] blocks
//	edges, err := loader.BuildDependencyMap(ctx)       // requires + depends2 edges
//
// Each step is a single transaction. A failing write rolls the step back and
// leaves the previous catalog untouched.
//
// # Duplicates
//
// When a manifest names the same package twice, the first block wins. The
// later block and its previous versions are skipped and reported as a
// duplicate-package anomaly.
//
// # Artifacts
//
// Install and source archives are stored split into path, size, and SHA-512
// ([Artifact]). A manifest value with fewer than three fields leaves the
// missing parts empty; [Artifact.Raw] rebuilds the manifest form.
package catalog
