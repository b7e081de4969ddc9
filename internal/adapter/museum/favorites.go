package museum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mmcdole/atelier/internal/domain"
)

// replaceRequest is the body of PUT /favorites
type replaceRequest struct {
	Favorites domain.FavoriteSet `json:"favorites"`
}

// FetchAll returns the ids the server stores for the current user
func (c *Client) FetchAll(ctx context.Context) (domain.FavoriteSet, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/favorites", nil, true)
	if err != nil {
		return nil, err
	}

	var ids domain.FavoriteSet
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("%w: malformed favorites response: %v", domain.ErrServer, err)
	}
	if ids == nil {
		ids = domain.FavoriteSet{}
	}
	c.logger.Debug("fetched server favorites", "count", len(ids))
	return ids, nil
}

// Add marks id as a favorite on the server. Already present is not an error.
func (c *Client) Add(ctx context.Context, id domain.FavoriteID) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/favorites/"+id.String(), nil, true)
	if hasStatus(err, http.StatusConflict) {
		return nil
	}
	return err
}

// Remove unmarks id on the server. Already absent is not an error.
func (c *Client) Remove(ctx context.Context, id domain.FavoriteID) error {
	_, err := c.doRequest(ctx, http.MethodDelete, "/favorites/"+id.String(), nil, true)
	if hasStatus(err, http.StatusNotFound) {
		return nil
	}
	return err
}

// ReplaceAll overwrites the server set with ids
func (c *Client) ReplaceAll(ctx context.Context, ids domain.FavoriteSet) error {
	if ids == nil {
		ids = domain.FavoriteSet{}
	}
	_, err := c.doRequest(ctx, http.MethodPut, "/favorites", replaceRequest{Favorites: ids}, true)
	return err
}
