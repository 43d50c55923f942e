package parse

import (
	"strconv"
	"strings"

	"github.com/cinequery/cinequery/pkg/tmdb"
)

// voteCountFloor accompanies any minimum-rating filter so that a
// single 10/10 vote cannot surface as a top result.
const voteCountFloor = 100

// ToDiscoverParams maps a structured query onto the discover
// endpoint's parameter shape. Absent optional fields are omitted; the
// sort order always defaults to popularity descending.
func ToDiscoverParams(q Query) tmdb.DiscoverParams {
	p := tmdb.DiscoverParams{
		"sort_by": tmdb.SortPopularityDesc,
	}
	if q.Year != nil {
		p["primary_release_year"] = strconv.Itoa(*q.Year)
	}
	if q.MinRating != nil {
		p["vote_average.gte"] = formatRating(*q.MinRating)
		p["vote_count.gte"] = strconv.Itoa(voteCountFloor)
	}
	if q.MaxRating != nil {
		p["vote_average.lte"] = formatRating(*q.MaxRating)
	}
	if len(q.GenreIDs) > 0 {
		p["with_genres"] = strings.Join(q.GenreIDs, ",")
	}
	if q.MinRuntimeMinutes != nil {
		p["with_runtime.gte"] = strconv.Itoa(*q.MinRuntimeMinutes)
	}
	if q.MaxRuntimeMinutes != nil {
		p["with_runtime.lte"] = strconv.Itoa(*q.MaxRuntimeMinutes)
	}
	return p
}

func formatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
