// Package resolve computes the transitive dependency closure of a package.
//
// # Overview
//
// A [Resolver] walks the catalog's dependency map depth-first, starting at a
// root package and following each dependency to its newest version. Every
// package is visited once, so cyclic manifests terminate:
//
//	r := resolve.New(store, logger)
//	pkgs, err := r.Resolve(ctx, "bash")
//	// [bash coreutils libiconv2 cygwin]
//
// The root is always first; the rest follow in discovery order.
//
// # Missing Packages
//
// A dependency that names a package with no catalog record is kept in the
// closure as a leaf. Only a missing root is an error. [Resolver.Graph] marks
// such leaves as external nodes and [Resolver.Plan] lists them separately.
//
// # Historical Roots
//
// [Resolver.ResolveVersion] anchors the walk at a previous version of the
// root, using the dependencies recorded for that version. Everything below
// the root resolves to its newest version.
//
// # Multiple Roots
//
// [Resolver.ResolveAll] resolves several roots concurrently with a bounded
// worker count; [Union] merges the closures for an install plan.
package resolve
