package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinequery/cinequery/internal/cache"
	"github.com/cinequery/cinequery/internal/genre"
	"github.com/cinequery/cinequery/pkg/tmdb"
)

const testDebounce = 5 * time.Millisecond

// fakeAPI is an in-memory stand-in for the TMDB client.
type fakeAPI struct {
	mu sync.Mutex

	popularPages  map[int]*tmdb.MoviePage
	searchPages   map[int]*tmdb.MoviePage
	discoverPages map[int]*tmdb.MoviePage
	err           error
	searchDelay   time.Duration

	popularCalls  int
	searchCalls   int
	discoverCalls int

	lastSearchQuery string
	lastParams      tmdb.DiscoverParams
}

func page(n, total int, ids ...int) *tmdb.MoviePage {
	p := &tmdb.MoviePage{Page: n, TotalPages: total}
	for _, id := range ids {
		p.Results = append(p.Results, tmdb.Movie{ID: id})
	}
	return p
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		popularPages:  map[int]*tmdb.MoviePage{1: page(1, 1, 100, 101)},
		searchPages:   map[int]*tmdb.MoviePage{1: page(1, 2, 1, 2), 2: page(2, 2, 2, 3)},
		discoverPages: map[int]*tmdb.MoviePage{1: page(1, 1, 50)},
	}
}

func (f *fakeAPI) take(pages map[int]*tmdb.MoviePage, n int) (*tmdb.MoviePage, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := pages[n]; ok {
		return p, nil
	}
	return page(n, len(pages)), nil
}

func (f *fakeAPI) SearchMovies(ctx context.Context, query string, n int) (*tmdb.MoviePage, error) {
	f.mu.Lock()
	f.searchCalls++
	f.lastSearchQuery = query
	delay := f.searchDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.take(f.searchPages, n)
}

func (f *fakeAPI) PopularMovies(ctx context.Context, n int) (*tmdb.MoviePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.popularCalls++
	return f.take(f.popularPages, n)
}

func (f *fakeAPI) DiscoverMovies(ctx context.Context, params tmdb.DiscoverParams, n int) (*tmdb.MoviePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discoverCalls++
	f.lastParams = params
	return f.take(f.discoverPages, n)
}

func (f *fakeAPI) counts() (popular, search, discover int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.popularCalls, f.searchCalls, f.discoverCalls
}

func settled(s *Session, mode Mode) func() bool {
	return func() bool {
		snap := s.Snapshot()
		return snap.Mode == mode && !snap.IsLoading
	}
}

func movieIDs(in []tmdb.Movie) []int {
	out := make([]int, len(in))
	for i, m := range in {
		out[i] = m.ID
	}
	return out
}

func TestSessionStartsWithPopularListing(t *testing.T) {
	api := newFakeAPI()
	s := New(api, genre.Default(), WithDebounce(testDebounce))
	defer s.Close()

	require.Eventually(t, settled(s, ModePopular), time.Second, 2*time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, []int{100, 101}, movieIDs(snap.Movies))
	assert.Equal(t, "All movies", snap.Description)
	assert.False(t, snap.IsSearching)
	assert.False(t, snap.HasMore)
}

func TestSessionRoutesFreeTextToSearch(t *testing.T) {
	api := newFakeAPI()
	s := New(api, genre.Default(), WithDebounce(testDebounce))
	defer s.Close()

	s.SetQuery("inception")
	require.Eventually(t, settled(s, ModeSearch), time.Second, 2*time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, []int{1, 2}, movieIDs(snap.Movies))
	assert.True(t, snap.IsSearching)
	assert.True(t, snap.HasMore)
	api.mu.Lock()
	assert.Equal(t, "inception", api.lastSearchQuery)
	api.mu.Unlock()
}

func TestSessionRoutesFilteredQueryToDiscover(t *testing.T) {
	api := newFakeAPI()
	s := New(api, genre.Default(), WithDebounce(testDebounce))
	defer s.Close()

	s.SetQuery("action 2020 rating>7")
	require.Eventually(t, settled(s, ModeDiscover), time.Second, 2*time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, []int{50}, movieIDs(snap.Movies))
	assert.Equal(t, "from 2020, genre: 28, rating ≥ 7", snap.Description)

	api.mu.Lock()
	params := api.lastParams
	api.mu.Unlock()
	assert.Equal(t, "2020", params["primary_release_year"])
	assert.Equal(t, "28", params["with_genres"])
	assert.Equal(t, "7", params["vote_average.gte"])
	assert.Equal(t, "100", params["vote_count.gte"])

	// Only the discover endpoint fired for this query.
	_, search, discover := api.counts()
	assert.Zero(t, search)
	assert.Equal(t, 1, discover)
}

func TestSessionDebouncesBursts(t *testing.T) {
	api := newFakeAPI()
	s := New(api, genre.Default(), WithDebounce(30*time.Millisecond))
	defer s.Close()

	s.SetQuery("i")
	s.SetQuery("in")
	s.SetQuery("inception")

	require.Eventually(t, settled(s, ModeSearch), time.Second, 2*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, search, _ := api.counts()
	assert.Equal(t, 1, search)
	api.mu.Lock()
	assert.Equal(t, "inception", api.lastSearchQuery)
	api.mu.Unlock()
}

func TestSessionLoadMoreAccumulatesWithDedup(t *testing.T) {
	api := newFakeAPI()
	s := New(api, genre.Default(), WithDebounce(testDebounce))
	defer s.Close()

	s.SetQuery("inception")
	require.Eventually(t, settled(s, ModeSearch), time.Second, 2*time.Millisecond)

	s.LoadMore()
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.CurrentPage == 2 && !snap.IsLoading
	}, time.Second, 2*time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, []int{1, 2, 3}, movieIDs(snap.Movies))
	assert.False(t, snap.HasMore)

	// No further page exists; LoadMore is a no-op now.
	_, before, _ := api.counts()
	s.LoadMore()
	time.Sleep(20 * time.Millisecond)
	_, after, _ := api.counts()
	assert.Equal(t, before, after)
}

func TestSessionQueryChangeResetsAccumulation(t *testing.T) {
	api := newFakeAPI()
	s := New(api, genre.Default(), WithDebounce(testDebounce))
	defer s.Close()

	s.SetQuery("inception")
	require.Eventually(t, settled(s, ModeSearch), time.Second, 2*time.Millisecond)
	s.LoadMore()
	require.Eventually(t, func() bool {
		return s.Snapshot().CurrentPage == 2 && !s.Snapshot().IsLoading
	}, time.Second, 2*time.Millisecond)

	api.mu.Lock()
	api.searchPages = map[int]*tmdb.MoviePage{1: page(1, 1, 7)}
	api.mu.Unlock()

	s.SetQuery("tenet")
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.CurrentPage == 1 && !snap.IsLoading && len(snap.Movies) == 1
	}, time.Second, 2*time.Millisecond)

	assert.Equal(t, []int{7}, movieIDs(s.Snapshot().Movies))
}

func TestSessionDiscardsStaleResponses(t *testing.T) {
	api := newFakeAPI()
	api.searchDelay = 50 * time.Millisecond
	s := New(api, genre.Default(), WithDebounce(testDebounce))
	defer s.Close()

	s.SetQuery("slow query")
	require.Eventually(t, func() bool {
		_, search, _ := api.counts()
		return search == 1
	}, time.Second, 2*time.Millisecond)

	// Clear while the search response is still in flight.
	s.ClearSearch()
	require.Eventually(t, settled(s, ModePopular), time.Second, 2*time.Millisecond)

	// Let the stale search response arrive; it must not be merged.
	time.Sleep(80 * time.Millisecond)
	snap := s.Snapshot()
	assert.Equal(t, ModePopular, snap.Mode)
	assert.Equal(t, []int{100, 101}, movieIDs(snap.Movies))
}

func TestSessionSurfacesErrorsAndRetriesOnRefresh(t *testing.T) {
	api := newFakeAPI()
	boom := errors.New("upstream unavailable")
	api.err = boom

	s := New(api, genre.Default(), WithDebounce(testDebounce))
	defer s.Close()

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.Err != nil && !snap.IsLoading
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, boom, s.Snapshot().Err)
	assert.Empty(t, s.Snapshot().Movies)

	api.mu.Lock()
	api.err = nil
	api.mu.Unlock()

	s.Refresh()
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.Err == nil && !snap.IsLoading && len(snap.Movies) > 0
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, []int{100, 101}, movieIDs(s.Snapshot().Movies))
}

func TestSessionFailedPageLeavesAccumulationUntouched(t *testing.T) {
	api := newFakeAPI()
	s := New(api, genre.Default(), WithDebounce(testDebounce))
	defer s.Close()

	s.SetQuery("inception")
	require.Eventually(t, settled(s, ModeSearch), time.Second, 2*time.Millisecond)

	boom := errors.New("page 2 failed")
	api.mu.Lock()
	api.err = boom
	api.mu.Unlock()

	s.LoadMore()
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.Err != nil && !snap.IsLoading
	}, time.Second, 2*time.Millisecond)

	assert.Equal(t, []int{1, 2}, movieIDs(s.Snapshot().Movies))
}

func TestSessionServesRepeatQueriesFromCache(t *testing.T) {
	api := newFakeAPI()
	pages, err := cache.NewPageCache(16)
	require.NoError(t, err)

	s := New(api, genre.Default(), WithDebounce(testDebounce), WithPageCache(pages))
	defer s.Close()

	s.SetQuery("inception")
	require.Eventually(t, settled(s, ModeSearch), time.Second, 2*time.Millisecond)
	s.ClearSearch()
	require.Eventually(t, settled(s, ModePopular), time.Second, 2*time.Millisecond)

	s.SetQuery("inception")
	require.Eventually(t, settled(s, ModeSearch), time.Second, 2*time.Millisecond)

	_, search, _ := api.counts()
	assert.Equal(t, 1, search, "second identical query should hit the cache")
}

func TestSessionRefreshBypassesCache(t *testing.T) {
	api := newFakeAPI()
	pages, err := cache.NewPageCache(16)
	require.NoError(t, err)

	s := New(api, genre.Default(), WithDebounce(testDebounce), WithPageCache(pages))
	defer s.Close()

	s.SetQuery("inception")
	require.Eventually(t, settled(s, ModeSearch), time.Second, 2*time.Millisecond)

	s.Refresh()
	require.Eventually(t, settled(s, ModeSearch), time.Second, 2*time.Millisecond)

	_, search, _ := api.counts()
	assert.Equal(t, 2, search)
}

func TestSessionNotifiesOnChange(t *testing.T) {
	api := newFakeAPI()

	var mu sync.Mutex
	var snaps []Snapshot
	s := New(api, genre.Default(),
		WithDebounce(testDebounce),
		WithOnChange(func(snap Snapshot) {
			mu.Lock()
			snaps = append(snaps, snap)
			mu.Unlock()
		}),
	)
	defer s.Close()

	require.Eventually(t, settled(s, ModePopular), time.Second, 2*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]
	assert.False(t, last.IsLoading)
	assert.Equal(t, ModePopular, last.Mode)
}
