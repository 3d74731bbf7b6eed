package catalog

import (
	"context"

	"github.com/sahilm/fuzzy"
)

// Match is one package name found by [Search].
type Match struct {
	Name           string `json:"name" yaml:"name"`
	Score          int    `json:"score" yaml:"score"`
	MatchedIndexes []int  `json:"-" yaml:"-"`
}

// Search fuzzy-matches pattern against names and returns the hits best
// first. An exact name match always ranks first. A limit of zero or less
// returns every hit.
func Search(names []string, pattern string, limit int) []Match {
	if pattern == "" {
		return nil
	}
	results := fuzzy.Find(pattern, names)

	matches := make([]Match, 0, len(results)+1)
	for _, name := range names {
		if name == pattern {
			matches = append(matches, Match{Name: name, Score: exactScore})
			break
		}
	}
	for _, r := range results {
		if r.Str == pattern {
			continue
		}
		matches = append(matches, Match{Name: r.Str, Score: r.Score, MatchedIndexes: r.MatchedIndexes})
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// exactScore ranks an exact name above any fuzzy score.
const exactScore = 1 << 30

// SearchStore runs [Search] over every package name in r.
func SearchStore(ctx context.Context, r Reader, pattern string, limit int) ([]Match, error) {
	names, err := r.Names(ctx)
	if err != nil {
		return nil, err
	}
	return Search(names, pattern, limit), nil
}
