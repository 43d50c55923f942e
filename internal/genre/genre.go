// Package genre holds the movie genre lexicon: the mapping between
// TMDB genre ids, canonical genre names, and the keyword synonyms used
// to spot genres inside free text.
package genre

import (
	"regexp"
	"sort"
	"strings"
)

// Entry is one genre with its canonical name and lowercase keyword
// synonyms. Keywords may overlap across entries; ambiguous text is
// allowed to match more than one genre.
type Entry struct {
	ID       int
	Name     string
	Keywords []string
}

// Lexicon is an immutable genre table built once at startup and shared
// by reference. Lookups are case-insensitive.
type Lexicon struct {
	entries []Entry
	byName  map[string]int // lowercased name or keyword -> id
	byID    map[int]Entry
	nameRe  *regexp.Regexp // whole-word alternation over canonical names
}

// defaultKeywords maps genre ids to the keyword synonyms recognized in
// free text, beyond the canonical name itself.
var defaultKeywords = map[int][]string{
	28:    {"action"},
	12:    {"adventure"},
	16:    {"animation", "animated", "anime", "cartoon"},
	35:    {"comedy", "funny", "hilarious"},
	80:    {"crime", "heist", "gangster", "mafia"},
	99:    {"documentary", "docu"},
	18:    {"drama"},
	10751: {"family", "kids"},
	14:    {"fantasy", "magic", "wizard"},
	36:    {"history", "historical"},
	27:    {"horror", "scary", "zombie", "ghost"},
	10402: {"music", "musical"},
	9648:  {"mystery", "detective", "whodunit"},
	10749: {"romance", "romantic", "love story"},
	878:   {"science fiction", "sci-fi", "scifi", "sci fi", "space"},
	10770: {"tv movie"},
	53:    {"thriller", "suspense"},
	10752: {"war"},
	37:    {"western", "cowboy"},
}

// defaultNames is the TMDB movie genre table, in its declaration order.
var defaultNames = []struct {
	id   int
	name string
}{
	{28, "Action"},
	{12, "Adventure"},
	{16, "Animation"},
	{35, "Comedy"},
	{80, "Crime"},
	{99, "Documentary"},
	{18, "Drama"},
	{10751, "Family"},
	{14, "Fantasy"},
	{36, "History"},
	{27, "Horror"},
	{10402, "Music"},
	{9648, "Mystery"},
	{10749, "Romance"},
	{878, "Science Fiction"},
	{10770, "TV Movie"},
	{53, "Thriller"},
	{10752, "War"},
	{37, "Western"},
}

// Default returns the built-in lexicon, usable without any upstream
// call.
func Default() *Lexicon {
	entries := make([]Entry, 0, len(defaultNames))
	for _, g := range defaultNames {
		entries = append(entries, Entry{
			ID:       g.id,
			Name:     g.name,
			Keywords: defaultKeywords[g.id],
		})
	}
	return New(entries)
}

// New builds a lexicon from the given entries. Entry order is
// preserved and determines scan order in InText.
func New(entries []Entry) *Lexicon {
	l := &Lexicon{
		entries: entries,
		byName:  make(map[string]int),
		byID:    make(map[int]Entry, len(entries)),
	}
	for _, e := range entries {
		l.byID[e.ID] = e
		l.byName[strings.ToLower(e.Name)] = e.ID
		for _, kw := range e.Keywords {
			l.byName[kw] = e.ID
		}
	}

	if len(entries) == 0 {
		return l
	}

	// Longest name first so multi-word names win over their components.
	names := l.Names()
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	l.nameRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)

	return l
}

// StripNames removes canonical genre names from the text as whole
// words, case-insensitively. Keyword synonyms are never stripped.
func (l *Lexicon) StripNames(text string) string {
	if l.nameRe == nil {
		return text
	}
	return l.nameRe.ReplaceAllString(text, " ")
}

// IDByName looks up a genre id by canonical name or keyword,
// case-insensitively. The second return is false when nothing matches.
func (l *Lexicon) IDByName(text string) (int, bool) {
	id, ok := l.byName[strings.ToLower(strings.TrimSpace(text))]
	return id, ok
}

// NameByID returns the canonical name for a genre id.
func (l *Lexicon) NameByID(id int) (string, bool) {
	e, ok := l.byID[id]
	if !ok {
		return "", false
	}
	return e.Name, true
}

// InText scans the lowercased text for substring occurrences of any
// canonical name or keyword and returns the matching ids, deduplicated,
// in table declaration order. Substring containment is intentional:
// "spaceship" matches the "space" keyword, and overlapping keywords may
// surface several genres for the same text.
func (l *Lexicon) InText(text string) []int {
	lower := strings.ToLower(text)
	var ids []int
	for _, e := range l.entries {
		if strings.Contains(lower, strings.ToLower(e.Name)) {
			ids = append(ids, e.ID)
			continue
		}
		for _, kw := range e.Keywords {
			if strings.Contains(lower, kw) {
				ids = append(ids, e.ID)
				break
			}
		}
	}
	return ids
}

// Entries returns the table in declaration order.
func (l *Lexicon) Entries() []Entry {
	return l.entries
}

// Names returns the canonical genre names in declaration order.
func (l *Lexicon) Names() []string {
	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.Name
	}
	return names
}
