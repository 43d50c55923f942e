package parse

import (
	"fmt"
	"strconv"
	"strings"
)

// Describe renders a query as a short human-readable summary, one
// clause per detected field, comma-joined. An empty query reads
// "All movies".
func Describe(q Query) string {
	var parts []string
	if q.FreeText != "" {
		parts = append(parts, fmt.Sprintf("%q", q.FreeText))
	}
	if q.Year != nil {
		parts = append(parts, fmt.Sprintf("from %d", *q.Year))
	}
	if len(q.GenreIDs) > 0 {
		parts = append(parts, "genre: "+strings.Join(q.GenreIDs, ","))
	}
	if q.MinRating != nil {
		parts = append(parts, "rating ≥ "+formatRating(*q.MinRating))
	}
	if q.MaxRating != nil {
		parts = append(parts, "rating ≤ "+formatRating(*q.MaxRating))
	}
	if q.MinRuntimeMinutes != nil {
		parts = append(parts, "runtime ≥ "+strconv.Itoa(*q.MinRuntimeMinutes)+" min")
	}
	if len(parts) == 0 {
		return "All movies"
	}
	return strings.Join(parts, ", ")
}
