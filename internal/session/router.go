package session

import (
	"strings"

	"github.com/cinequery/cinequery/internal/cache"
	"github.com/cinequery/cinequery/internal/parse"
)

// Mode selects which upstream read strategy is authoritative for the
// current query.
type Mode string

const (
	// ModePopular lists popular movies; active while the query is blank.
	ModePopular Mode = "popular"
	// ModeSearch is a plain free-text title search.
	ModeSearch Mode = "search"
	// ModeDiscover is the advanced-filter discovery endpoint; active
	// when structured filters were detected in the query.
	ModeDiscover Mode = "discover"
)

// Route picks the mode for a settled query. Only the routed endpoint
// is ever requested; the other two stay idle.
func Route(debounced string, q parse.Query) Mode {
	switch {
	case strings.TrimSpace(debounced) == "":
		return ModePopular
	case q.UseAdvancedFilters:
		return ModeDiscover
	default:
		return ModeSearch
	}
}

// pageKey builds the cache key for one fetch of the given state.
func pageKey(mode Mode, q parse.Query, debounced string, page int) cache.PageKey {
	key := cache.PageKey{Mode: string(mode), Page: page}
	switch mode {
	case ModeSearch:
		key.Query = q.FreeText
		if key.Query == "" {
			key.Query = debounced
		}
	case ModeDiscover:
		key.Query = parse.ToDiscoverParams(q).Encode()
	}
	return key
}
