package catalog

import (
	"strings"
	"unicode"
)

// MapEdges turns raw dependency fields into dependency map rows. All
// requires edges of current versions come first, then the depends2 edges of
// every source, both in source order, so the output is deterministic for a
// given catalog.
func MapEdges(sources []Source) []Edge {
	var edges []Edge
	for _, s := range sources {
		if s.Current {
			edges = append(edges, RequiresEdges(s.Package, s.Version, s.Requires)...)
		}
	}
	for _, s := range sources {
		edges = append(edges, Depends2Edges(s.Package, s.Version, s.Depends2)...)
	}
	return edges
}

// RequiresEdges splits a space-separated requires field.
func RequiresEdges(pkg, version, raw string) []Edge {
	var edges []Edge
	for _, dep := range strings.Fields(raw) {
		edges = append(edges, Edge{Package: pkg, Version: version, DependsOn: dep})
	}
	return edges
}

// Depends2Edges splits a comma-separated depends2 field. Leading blanks of
// each item are dropped and empty items are discarded.
func Depends2Edges(pkg, version, raw string) []Edge {
	var edges []Edge
	for _, item := range strings.Split(raw, ",") {
		dep := strings.TrimLeftFunc(item, unicode.IsSpace)
		if dep == "" {
			continue
		}
		edges = append(edges, Edge{Package: pkg, Version: version, DependsOn: dep})
	}
	return edges
}
