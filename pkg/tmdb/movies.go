package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// SearchMovies performs a free-text title search.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*MoviePage, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("include_adult", "false")

	var result MoviePage
	if err := c.get(ctx, "/search/movie", q, &result); err != nil {
		return nil, fmt.Errorf("searching movies for %q: %w", query, err)
	}
	return &result, nil
}

// PopularMovies retrieves the current popular movie listing.
func (c *Client) PopularMovies(ctx context.Context, page int) (*MoviePage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))

	var result MoviePage
	if err := c.get(ctx, "/movie/popular", q, &result); err != nil {
		return nil, fmt.Errorf("listing popular movies: %w", err)
	}
	return &result, nil
}

// DiscoverMovies retrieves movies matching the given filter parameters.
func (c *Client) DiscoverMovies(ctx context.Context, params DiscoverParams, page int) (*MoviePage, error) {
	q := params.Values()
	q.Set("page", strconv.Itoa(page))

	var result MoviePage
	if err := c.get(ctx, "/discover/movie", q, &result); err != nil {
		return nil, fmt.Errorf("discovering movies: %w", err)
	}
	return &result, nil
}

// MovieGenres retrieves the movie genre table.
func (c *Client) MovieGenres(ctx context.Context) ([]Genre, error) {
	var result genreListResponse
	if err := c.get(ctx, "/genre/movie/list", nil, &result); err != nil {
		return nil, fmt.Errorf("listing movie genres: %w", err)
	}
	return result.Genres, nil
}
