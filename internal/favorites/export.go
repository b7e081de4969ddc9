package favorites

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mmcdole/atelier/internal/domain"
)

// ExportedArtwork is one entry of an exported favorites file
type ExportedArtwork struct {
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Year     string `json:"year"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

// Export writes artworks as an indented JSON array
func Export(w io.Writer, artworks []domain.Artwork) error {
	out := make([]ExportedArtwork, 0, len(artworks))
	for _, a := range artworks {
		out = append(out, ExportedArtwork{
			Title:    a.Title,
			Artist:   a.Artist,
			Year:     a.Year,
			Category: a.Category,
			Image:    a.Image,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("export favorites: %w", err)
	}
	return nil
}

// ExportFileName returns the default export file name for day t
func ExportFileName(t time.Time) string {
	return "favorites-" + t.Format("2006-01-02") + ".json"
}
