package genre

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/cinequery/cinequery/pkg/tmdb"
)

// API is the slice of the TMDB client the loader needs.
type API interface {
	MovieGenres(ctx context.Context) ([]tmdb.Genre, error)
}

// Loader fetches the genre table from the API once and caches the
// resulting lexicon. Concurrent callers share a single fetch. When the
// fetch fails the built-in table is served instead, so the lexicon is
// always available.
type Loader struct {
	api   API
	group singleflight.Group

	mu  sync.Mutex
	lex *Lexicon
}

// NewLoader creates a loader backed by the given client.
func NewLoader(api API) *Loader {
	return &Loader{api: api}
}

// Lexicon returns the fetched lexicon, fetching it on first use.
func (l *Loader) Lexicon(ctx context.Context) *Lexicon {
	l.mu.Lock()
	if l.lex != nil {
		lex := l.lex
		l.mu.Unlock()
		return lex
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do("genres", func() (any, error) {
		genres, err := l.api.MovieGenres(ctx)
		if err != nil {
			return nil, err
		}
		return FromAPI(genres), nil
	})
	if err != nil {
		slog.Warn("genre table fetch failed, using built-in table",
			slog.String("error", err.Error()),
		)
		return Default()
	}

	lex := v.(*Lexicon)
	l.mu.Lock()
	l.lex = lex
	l.mu.Unlock()
	return lex
}

// FromAPI builds a lexicon from a fetched genre table, keeping the
// built-in keyword synonyms for ids we know about. Unknown genres get
// their lowercased name as the only keyword.
func FromAPI(genres []tmdb.Genre) *Lexicon {
	entries := make([]Entry, 0, len(genres))
	for _, g := range genres {
		entries = append(entries, Entry{
			ID:       g.ID,
			Name:     g.Name,
			Keywords: defaultKeywords[g.ID],
		})
	}
	return New(entries)
}
