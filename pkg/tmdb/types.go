package tmdb

import (
	"net/url"
	"sort"
	"strings"
)

// Movie is a single movie summary as returned by the listing endpoints.
// Identity is ID; everything else is display data.
type Movie struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Overview      string  `json:"overview"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	VoteCount     int     `json:"vote_count"`
	GenreIDs      []int   `json:"genre_ids"`
	Popularity    float64 `json:"popularity"`
}

// MoviePage is one page of a paginated movie listing.
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Genre is one entry of the TMDB genre table.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// genreListResponse is the /genre/movie/list body shape.
type genreListResponse struct {
	Genres []Genre `json:"genres"`
}

// SortPopularityDesc is the default discover sort order.
const SortPopularityDesc = "popularity.desc"

// DiscoverParams is a flat set of /discover/movie filter parameters,
// keyed by the TMDB parameter names (primary_release_year,
// vote_average.gte, with_genres, ...).
type DiscoverParams map[string]string

// Values converts the parameters to url.Values.
func (p DiscoverParams) Values() url.Values {
	v := url.Values{}
	for key, val := range p {
		v.Set(key, val)
	}
	return v
}

// Encode returns a canonical key-sorted encoding of the parameters,
// usable as a cache key component.
func (p DiscoverParams) Encode() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(p[k])
	}
	return b.String()
}
