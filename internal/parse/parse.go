// Package parse converts free-text movie queries into a structured
// filter set, maps that set onto the discover endpoint's parameters,
// and renders it back into a human-readable description.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cinequery/cinequery/internal/genre"
)

// Query is the structured result of parsing one input string. Optional
// fields are nil when the corresponding signal was not detected. A
// Query is built fresh per input and never mutated afterwards.
type Query struct {
	FreeText          string
	Year              *int
	MinRating         *float64
	MaxRating         *float64
	GenreIDs          []string
	MinRuntimeMinutes *int
	MaxRuntimeMinutes *int

	// UseAdvancedFilters is true iff any structured signal (year,
	// rating, runtime, genre) was detected.
	UseAdvancedFilters bool
}

// extractor consumes matched substrings out of the remainder and
// records what it found on the query. Extractors run in a fixed order;
// each sees only what earlier ones left behind.
type extractor func(remainder string, q *Query) string

var extractors = []extractor{
	extractYear,
	extractRating,
	extractRuntime,
}

// Parse converts raw free text into a structured query using the given
// lexicon. Deterministic and pure: same input, same output.
func Parse(raw string, lex *genre.Lexicon) Query {
	var q Query
	remainder := strings.TrimSpace(raw)
	if remainder == "" {
		return q
	}

	for _, ex := range extractors {
		remainder = ex(remainder, &q)
	}
	remainder = extractGenres(remainder, &q, lex)

	if text := strings.Join(strings.Fields(remainder), " "); text != "" {
		q.FreeText = text
	}
	return q
}

// yearRe matches a standalone 4-digit year between 1900 and 2099.
var yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

func extractYear(remainder string, q *Query) string {
	loc := yearRe.FindStringSubmatchIndex(remainder)
	if loc == nil {
		return remainder
	}
	year, err := strconv.Atoi(remainder[loc[2]:loc[3]])
	if err != nil {
		return remainder
	}
	q.Year = &year
	q.UseAdvancedFilters = true
	// Only the first year is taken; the rest of the text keeps any
	// further matches as ordinary words.
	return remainder[:loc[0]] + " " + remainder[loc[1]:]
}

// Rating patterns, tried in this fixed priority order. The first one
// that yields a usable value wins and at most one rating is extracted.
var ratingRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)rating\s*>=?\s*(\d+(?:\.\d+)?)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*rating`),
	regexp.MustCompile(`(\d+(?:\.\d+)?)\s*\+`),
	// The bare ">N" form captures a trailing "min" marker so that
	// ">90 min" is left for the runtime pass. The leading character
	// class keeps "runtime>120" out of this pattern's reach.
	regexp.MustCompile(`(?:^|[\s\d])>\s*(\d+(?:\.\d+)?)(\s*min)?`),
}

func extractRating(remainder string, q *Query) string {
	for _, re := range ratingRes {
		loc := re.FindStringSubmatchIndex(remainder)
		if loc == nil {
			continue
		}
		// Minute-suffixed matches belong to the runtime pass.
		if len(loc) >= 6 && loc[4] >= 0 {
			continue
		}
		val, err := strconv.ParseFloat(remainder[loc[2]:loc[3]], 64)
		if err != nil || val < 0 || val > 10 {
			// Out of the 0..10 rating scale; not a rating token.
			continue
		}
		q.MinRating = &val
		q.UseAdvancedFilters = true
		return remainder[:loc[0]] + " " + remainder[loc[1]:]
	}
	return remainder
}

// Runtime patterns, tried in this fixed priority order.
var runtimeRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)runtime\s*>=?\s*(\d+)`),
	regexp.MustCompile(`(?i)longer\s+than\s+(\d+)`),
	regexp.MustCompile(`(?i)>\s*(\d+)\s*min(?:ute)?s?\b`),
}

func extractRuntime(remainder string, q *Query) string {
	for _, re := range runtimeRes {
		loc := re.FindStringSubmatchIndex(remainder)
		if loc == nil {
			continue
		}
		minutes, err := strconv.Atoi(remainder[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		q.MinRuntimeMinutes = &minutes
		q.UseAdvancedFilters = true
		return remainder[:loc[0]] + " " + remainder[loc[1]:]
	}
	return remainder
}

func extractGenres(remainder string, q *Query, lex *genre.Lexicon) string {
	ids := lex.InText(remainder)
	if len(ids) == 0 {
		return remainder
	}
	q.GenreIDs = make([]string, len(ids))
	for i, id := range ids {
		q.GenreIDs[i] = strconv.Itoa(id)
	}
	q.UseAdvancedFilters = true
	// Only canonical genre names are stripped from the remainder, as
	// whole words. Keyword synonyms ("zombie", "scary", ...) stay in
	// the free text on purpose.
	return lex.StripNames(remainder)
}
