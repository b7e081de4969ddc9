package domain

import (
	"context"
)

// FavoritesClient provides the server-side copy of a user's favorites.
// Every call requires an authenticated session.
type FavoritesClient interface {
	// FetchAll returns the server's favorite set (unordered)
	FetchAll(ctx context.Context) (FavoriteSet, error)

	// Add marks id as favorite; adding a present id is not an error
	Add(ctx context.Context, id FavoriteID) error

	// Remove unmarks id; removing an absent id is not an error
	Remove(ctx context.Context, id FavoriteID) error

	// ReplaceAll overwrites the server set with ids
	ReplaceAll(ctx context.Context, ids FavoriteSet) error
}

// CatalogClient provides read-only access to the artwork catalog
type CatalogClient interface {
	// GetArtworks returns the whole catalog
	GetArtworks(ctx context.Context) ([]Artwork, error)

	// GetArtwork returns a single artwork, ErrArtworkNotFound when missing
	GetArtwork(ctx context.Context, id FavoriteID) (*Artwork, error)
}

// SessionAuthority reports the current authentication state
type SessionAuthority interface {
	IsAuthenticated() bool
}
