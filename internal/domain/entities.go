package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FavoriteID identifies an artwork in the catalog
type FavoriteID int64

// String returns the decimal form used in URLs and storage keys
func (id FavoriteID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseFavoriteID parses a decimal artwork identifier
func ParseFavoriteID(s string) (FavoriteID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid artwork id %q: %w", s, err)
	}
	return FavoriteID(n), nil
}

// FavoriteSet is an ordered collection of favorite ids without duplicates.
// Order is insertion order on this client; the server does not preserve it.
type FavoriteSet []FavoriteID

// Contains reports whether id is a member of the set
func (s FavoriteSet) Contains(id FavoriteID) bool {
	return s.IndexOf(id) >= 0
}

// IndexOf returns the position of id, or -1 when absent
func (s FavoriteSet) IndexOf(id FavoriteID) int {
	for i, v := range s {
		if v == id {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy (never nil)
func (s FavoriteSet) Clone() FavoriteSet {
	out := make(FavoriteSet, len(s))
	copy(out, s)
	return out
}

// Dedupe returns a copy with repeated ids collapsed to their first occurrence
func (s FavoriteSet) Dedupe() FavoriteSet {
	seen := make(map[FavoriteID]struct{}, len(s))
	out := make(FavoriteSet, 0, len(s))
	for _, id := range s {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SameMembers compares two sets ignoring order and duplicates
func (s FavoriteSet) SameMembers(other FavoriteSet) bool {
	a := make(map[FavoriteID]struct{}, len(s))
	for _, id := range s {
		a[id] = struct{}{}
	}
	b := make(map[FavoriteID]struct{}, len(other))
	for _, id := range other {
		if _, ok := a[id]; !ok {
			return false
		}
		b[id] = struct{}{}
	}
	return len(a) == len(b)
}

// SyncState tells whether the favorites cache may contact the server
type SyncState int

const (
	SyncDisabled SyncState = iota
	SyncEnabled
)

func (s SyncState) String() string {
	switch s {
	case SyncEnabled:
		return "enabled"
	default:
		return "disabled"
	}
}

// Artwork is the catalog summary of a single piece
type Artwork struct {
	ID          FavoriteID `json:"id"`
	Title       string     `json:"title"`
	Artist      string     `json:"artist"`
	Year        string     `json:"year"` // free-form, usually a four digit year
	Category    string     `json:"category"`
	Technique   string     `json:"technique,omitempty"`
	Dimensions  string     `json:"dimensions,omitempty"`
	Image       string     `json:"image"`
	Description string     `json:"description,omitempty"`
}

// YearValue returns the numeric year, false when Year is not a number
func (a Artwork) YearValue() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(a.Year))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Century returns a display label such as "16th century", or "Unknown"
func (a Artwork) Century() string {
	year, ok := a.YearValue()
	if !ok || year <= 0 {
		return "Unknown"
	}
	c := (year + 99) / 100
	return fmt.Sprintf("%d%s century", c, ordinalSuffix(c))
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// User is the account behind an authenticated session
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Credentials is what a session needs to survive a restart
type Credentials struct {
	Token string
	User  User
}
