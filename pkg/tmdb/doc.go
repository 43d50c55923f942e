// Package tmdb provides a read-only Go client for The Movie Database
// (TMDB) HTTP API, covering the three movie listing operations used by
// the query router: text search, popular listing, and filtered
// discovery, plus the genre table.
//
// # Quick Start
//
// Create a client with an API key and search for movies:
//
//	c := tmdb.New(os.Getenv("TMDB_API_KEY"))
//	page, err := c.SearchMovies(ctx, "inception", 1)
//
// Use custom configuration:
//
//	c := tmdb.New(apiKey,
//	    tmdb.WithBaseURL("https://proxy.example.com/3"),
//	    tmdb.WithHTTPClient(customHTTPClient),
//	)
//
// # Pagination
//
// All listing calls take a 1-based page number and return a MoviePage
// carrying the total page count, so callers can keep requesting the
// next page while Page < TotalPages.
//
// # Errors
//
// Upstream error responses are returned as *APIError with the HTTP
// status and the status_message TMDB supplies. Transport failures are
// returned wrapped, unchanged in meaning.
package tmdb
