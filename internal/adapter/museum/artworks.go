package museum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmcdole/atelier/internal/domain"
)

// GetArtworks returns the full catalog
func (c *Client) GetArtworks(ctx context.Context) ([]domain.Artwork, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/artworks", nil, false)
	if err != nil {
		return nil, err
	}

	var artworks []domain.Artwork
	if err := json.Unmarshal(body, &artworks); err != nil {
		return nil, fmt.Errorf("%w: malformed artworks response: %v", domain.ErrServer, err)
	}
	return artworks, nil
}

// GetArtwork returns a single artwork
func (c *Client) GetArtwork(ctx context.Context, id domain.FavoriteID) (*domain.Artwork, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/artworks/"+id.String(), nil, false)
	if hasStatus(err, http.StatusNotFound) {
		return nil, fmt.Errorf("%w: %d", domain.ErrArtworkNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	var artwork domain.Artwork
	if err := json.Unmarshal(body, &artwork); err != nil {
		return nil, fmt.Errorf("%w: malformed artwork response: %v", domain.ErrServer, err)
	}
	return &artwork, nil
}
