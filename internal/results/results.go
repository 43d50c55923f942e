// Package results merges successive pages of movie listings into one
// stable, duplicate-free ordered collection.
package results

import (
	"github.com/cinequery/cinequery/pkg/tmdb"
)

// Merge folds a fetched page into the accumulated list. Page 1
// replaces the accumulation entirely; later pages append only movies
// whose id has not been seen, preserving the page's own order for the
// new entries. Previously accumulated movies are never reordered or
// removed, so each distinct id keeps its first-seen position.
func Merge(existing []tmdb.Movie, page *tmdb.MoviePage) []tmdb.Movie {
	if page.Page <= 1 {
		return append([]tmdb.Movie(nil), page.Results...)
	}

	seen := make(map[int]struct{}, len(existing))
	for _, m := range existing {
		seen[m.ID] = struct{}{}
	}

	merged := existing
	for _, m := range page.Results {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	return merged
}

// HasMore reports whether a further page exists beyond the current one.
func HasMore(currentPage, totalPages int) bool {
	return currentPage < totalPages
}
