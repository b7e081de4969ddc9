package catalog

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/atelier/internal/domain"
)

// Filter narrows the gallery. Empty fields match everything.
type Filter struct {
	Artist   string
	Century  string // as produced by Artwork.Century, e.g. "19th century"
	Category string
	Search   string // free text over title, artist and description
}

// IsZero reports whether the filter lets everything through
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether a passes every set criterion
func (f Filter) Matches(a domain.Artwork) bool {
	if f.Artist != "" && !strings.EqualFold(a.Artist, f.Artist) {
		return false
	}
	if f.Century != "" && !strings.EqualFold(a.Century(), f.Century) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(a.Category, f.Category) {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" && !matchesText(q, a) {
		return false
	}
	return true
}

// Apply returns the artworks that pass f. With a search term, results are
// ranked by how closely the title matches; otherwise catalog order is kept.
func (f Filter) Apply(artworks []domain.Artwork) []domain.Artwork {
	out := make([]domain.Artwork, 0, len(artworks))
	for _, a := range artworks {
		if f.Matches(a) {
			out = append(out, a)
		}
	}

	q := strings.TrimSpace(f.Search)
	if q == "" || len(out) < 2 {
		return out
	}

	rank := make(map[domain.FavoriteID]int, len(out))
	for _, a := range out {
		rank[a.ID] = titleDistance(q, a.Title)
	}
	sort.SliceStable(out, func(i, j int) bool { return rank[out[i].ID] < rank[out[j].ID] })
	return out
}

// matchesText accepts a fuzzy match on title or artist (accents and case are
// ignored) or a plain substring of the description.
func matchesText(q string, a domain.Artwork) bool {
	if fuzzy.MatchNormalizedFold(q, a.Title) || fuzzy.MatchNormalizedFold(q, a.Artist) {
		return true
	}
	return strings.Contains(strings.ToLower(a.Description), strings.ToLower(q))
}

// titleDistance scores a title against the query, lower is better.
// Non-matching titles sort after every match.
func titleDistance(q, title string) int {
	lowerQ, lowerT := strings.ToLower(q), strings.ToLower(title)
	switch {
	case lowerT == lowerQ:
		return 0
	case strings.HasPrefix(lowerT, lowerQ):
		return 1
	case strings.Contains(lowerT, lowerQ):
		return 2
	}
	if d := fuzzy.RankMatchNormalizedFold(q, title); d >= 0 {
		return 10 + d
	}
	return 1 << 20
}
