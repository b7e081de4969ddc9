package favorites

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mmcdole/atelier/internal/domain"
)

// SortMode orders the favorite artworks view
type SortMode string

const (
	SortNewest SortMode = "date-desc" // most recently favorited first
	SortOldest SortMode = "date-asc"
	SortTitle  SortMode = "title"
	SortArtist SortMode = "artist"
	SortYear   SortMode = "year" // newest work first, unknown years last
)

// SortModes lists the modes in the order the UI cycles through them
func SortModes() []SortMode {
	return []SortMode{SortNewest, SortOldest, SortTitle, SortArtist, SortYear}
}

// ParseSortMode accepts the config and flag spelling of a mode
func ParseSortMode(s string) (SortMode, error) {
	mode := SortMode(strings.ToLower(strings.TrimSpace(s)))
	if mode == "" {
		return SortNewest, nil
	}
	for _, m := range SortModes() {
		if m == mode {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

// Next returns the mode after m, wrapping around
func (m SortMode) Next() SortMode {
	modes := SortModes()
	for i, mode := range modes {
		if mode == m {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

// Label returns the display name
func (m SortMode) Label() string {
	switch m {
	case SortNewest:
		return "Recently added"
	case SortOldest:
		return "First added"
	case SortTitle:
		return "Title"
	case SortArtist:
		return "Artist"
	case SortYear:
		return "Year"
	default:
		return string(m)
	}
}

// SortArtworks returns a sorted copy of artworks. order is the favorite set
// in insertion order and drives the date modes.
func SortArtworks(artworks []domain.Artwork, order domain.FavoriteSet, mode SortMode) []domain.Artwork {
	sorted := make([]domain.Artwork, len(artworks))
	copy(sorted, artworks)

	position := make(map[domain.FavoriteID]int, len(order))
	for i, id := range order {
		position[id] = i
	}

	var less func(a, b domain.Artwork) bool
	switch mode {
	case SortOldest:
		less = func(a, b domain.Artwork) bool { return position[a.ID] < position[b.ID] }
	case SortTitle:
		less = func(a, b domain.Artwork) bool { return foldLess(a.Title, b.Title) }
	case SortArtist:
		less = func(a, b domain.Artwork) bool { return foldLess(a.Artist, b.Artist) }
	case SortYear:
		less = func(a, b domain.Artwork) bool {
			ya, okA := a.YearValue()
			yb, okB := b.YearValue()
			if okA != okB {
				return okA
			}
			return ya > yb
		}
	default:
		less = func(a, b domain.Artwork) bool { return position[a.ID] > position[b.ID] }
	}

	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

func foldLess(a, b string) bool {
	return strings.ToLower(a) < strings.ToLower(b)
}
