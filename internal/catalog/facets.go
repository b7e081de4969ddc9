package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mmcdole/atelier/internal/domain"
)

const unknownCentury = "Unknown"

// Facets are the distinct values the gallery filters offer
type Facets struct {
	Artists    []string
	Centuries  []string
	Categories []string
}

// FacetsOf collects sorted distinct artists, centuries and categories.
// Centuries are in chronological order with "Unknown" last.
func FacetsOf(artworks []domain.Artwork) Facets {
	artists := map[string]struct{}{}
	centuries := map[string]struct{}{}
	categories := map[string]struct{}{}

	for _, a := range artworks {
		if a.Artist != "" {
			artists[a.Artist] = struct{}{}
		}
		if a.Category != "" {
			categories[a.Category] = struct{}{}
		}
		centuries[a.Century()] = struct{}{}
	}

	f := Facets{
		Artists:    sortedKeys(artists),
		Categories: sortedKeys(categories),
		Centuries:  sortedKeys(centuries),
	}
	sort.SliceStable(f.Centuries, func(i, j int) bool {
		return centuryNumber(f.Centuries[i]) < centuryNumber(f.Centuries[j])
	})
	return f
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

// centuryNumber extracts 19 from "19th century"; unknown sorts last
func centuryNumber(label string) int {
	if label == unknownCentury {
		return 1 << 30
	}
	digits := strings.TrimRightFunc(strings.Fields(label + " ")[0], func(r rune) bool {
		return r < '0' || r > '9'
	})
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 1 << 30
	}
	return n
}
