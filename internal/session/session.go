// Package session owns one interactive search session: it debounces
// raw input, routes each settled query to the right upstream endpoint,
// and accumulates paginated results into a deduplicated ordered list.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cinequery/cinequery/internal/cache"
	"github.com/cinequery/cinequery/internal/debounce"
	"github.com/cinequery/cinequery/internal/genre"
	"github.com/cinequery/cinequery/internal/parse"
	"github.com/cinequery/cinequery/internal/results"
	"github.com/cinequery/cinequery/pkg/tmdb"
)

// API is the slice of the TMDB client the session needs.
type API interface {
	SearchMovies(ctx context.Context, query string, page int) (*tmdb.MoviePage, error)
	PopularMovies(ctx context.Context, page int) (*tmdb.MoviePage, error)
	DiscoverMovies(ctx context.Context, params tmdb.DiscoverParams, page int) (*tmdb.MoviePage, error)
}

// Snapshot is the session state handed to the presentation layer.
type Snapshot struct {
	Movies      []tmdb.Movie
	IsLoading   bool
	Err         error
	Query       string // raw, un-debounced input
	Mode        Mode
	CurrentPage int
	TotalPages  int
	HasMore     bool
	IsSearching bool
	Description string
}

// Session is one search surface's state. Methods are safe for
// concurrent use; fetches run asynchronously and deliver their results
// back through a version check so that responses belonging to a
// superseded query or mode are discarded on arrival.
type Session struct {
	api      API
	lex      *genre.Lexicon
	pages    *cache.PageCache
	onChange func(Snapshot)
	ctx      context.Context
	deb      *debounce.Debouncer[string]

	mu         sync.Mutex
	rawQuery   string
	debounced  string
	parsed     parse.Query
	mode       Mode
	page       int
	movies     []tmdb.Movie
	totalPages int
	loading    bool
	err        error

	// version increments on every query/mode reset and refresh; a
	// response is merged only if the version captured at dispatch
	// still matches.
	version uint64
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the input settle delay.
func WithDebounce(delay time.Duration) Option {
	return func(s *Session) {
		s.deb = debounce.New(delay, s.onDebounced)
	}
}

// WithPageCache attaches a result-page cache.
func WithPageCache(c *cache.PageCache) Option {
	return func(s *Session) {
		s.pages = c
	}
}

// WithOnChange registers a callback invoked after every state change,
// with the fresh snapshot. Called without internal locks held.
func WithOnChange(fn func(Snapshot)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithContext sets the base context for upstream fetches.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		s.ctx = ctx
	}
}

// New creates a session and kicks off the initial popular listing
// fetch.
func New(client API, lex *genre.Lexicon, opts ...Option) *Session {
	s := &Session{
		api:  client,
		lex:  lex,
		ctx:  context.Background(),
		mode: ModePopular,
		page: 1,
	}
	s.deb = debounce.New(debounce.DefaultDelay, s.onDebounced)
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.dispatchLocked(false)
	s.mu.Unlock()
	return s
}

// SetQuery records a keystroke-level input change. The query is routed
// only once it has been stable for the debounce delay.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	s.rawQuery = q
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.deb.Set(q)
	s.notify(snap)
}

// ClearSearch drops the query immediately, bypassing the debounce, and
// returns the session to the popular listing.
func (s *Session) ClearSearch() {
	s.deb.Cancel()
	s.mu.Lock()
	s.rawQuery = ""
	s.mu.Unlock()
	s.onDebounced("")
}

// LoadMore fetches the next page for the current query. A no-op while
// a fetch is in flight or when no further page exists.
func (s *Session) LoadMore() {
	s.mu.Lock()
	if s.loading || !results.HasMore(s.page, s.totalPages) {
		s.mu.Unlock()
		return
	}
	s.page++
	s.dispatchLocked(false)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Refresh refetches the current query from page 1, clearing the
// accumulation and bypassing the page cache. Also serves as the
// explicit retry after an error.
func (s *Session) Refresh() {
	s.mu.Lock()
	s.page = 1
	s.movies = nil
	s.totalPages = 0
	s.err = nil
	s.version++
	s.dispatchLocked(true)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Close stops the debouncer. In-flight fetches resolve against a dead
// version and are discarded.
func (s *Session) Close() {
	s.deb.Stop()
	s.mu.Lock()
	s.version++
	s.mu.Unlock()
}

// onDebounced runs when the input has settled. Any change of the
// settled query resets pagination and accumulation, even when the mode
// stays the same.
func (s *Session) onDebounced(q string) {
	s.mu.Lock()
	if q == s.debounced {
		s.mu.Unlock()
		return
	}

	s.debounced = q
	s.parsed = parse.Parse(q, s.lex)
	newMode := Route(q, s.parsed)
	slog.Debug("query settled",
		slog.String("query", q),
		slog.String("mode", string(newMode)),
	)

	s.mode = newMode
	s.page = 1
	s.movies = nil
	s.totalPages = 0
	s.err = nil
	s.version++
	s.dispatchLocked(false)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// dispatchLocked starts the fetch for the current state. Caller holds
// the lock.
func (s *Session) dispatchLocked(bypassCache bool) {
	s.loading = true
	v := s.version
	mode := s.mode
	parsed := s.parsed
	debounced := s.debounced
	page := s.page

	go s.fetch(v, mode, parsed, debounced, page, bypassCache)
}

func (s *Session) fetch(v uint64, mode Mode, parsed parse.Query, debounced string, page int, bypassCache bool) {
	key := pageKey(mode, parsed, debounced, page)
	if s.pages != nil && !bypassCache {
		if cached, ok := s.pages.Get(key); ok {
			s.apply(v, cached, nil)
			return
		}
	}

	result, err := s.call(mode, parsed, debounced, page)
	if err == nil && s.pages != nil {
		s.pages.Put(key, result)
	}
	s.apply(v, result, err)
}

func (s *Session) call(mode Mode, parsed parse.Query, debounced string, page int) (*tmdb.MoviePage, error) {
	switch mode {
	case ModeSearch:
		query := parsed.FreeText
		if query == "" {
			query = debounced
		}
		return s.api.SearchMovies(s.ctx, query, page)
	case ModeDiscover:
		return s.api.DiscoverMovies(s.ctx, parse.ToDiscoverParams(parsed), page)
	default:
		return s.api.PopularMovies(s.ctx, page)
	}
}

// apply merges a fetch result, unless the session has moved on since
// the fetch was dispatched.
func (s *Session) apply(v uint64, page *tmdb.MoviePage, err error) {
	s.mu.Lock()
	if v != s.version {
		s.mu.Unlock()
		slog.Debug("discarding stale response",
			slog.Uint64("dispatched_version", v),
		)
		return
	}

	s.loading = false
	if err != nil {
		// The accumulated set stays untouched on failure.
		s.err = err
	} else {
		s.err = nil
		s.movies = results.Merge(s.movies, page)
		s.totalPages = page.TotalPages
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Movies:      s.movies,
		IsLoading:   s.loading,
		Err:         s.err,
		Query:       s.rawQuery,
		Mode:        s.mode,
		CurrentPage: s.page,
		TotalPages:  s.totalPages,
		HasMore:     results.HasMore(s.page, s.totalPages),
		IsSearching: strings.TrimSpace(s.debounced) != "",
		Description: parse.Describe(s.parsed),
	}
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
