package domain

// FavoritesStore persists the favorite set on this machine.
type FavoritesStore interface {
	// LoadFavorites returns the persisted set. Missing or corrupt data yields
	// an empty set; it never fails.
	LoadFavorites() FavoriteSet

	// SaveFavorites replaces the persisted set. Errors wrap ErrStorage.
	SaveFavorites(ids FavoriteSet) error
}

// ArtworkStore caches the catalog for offline browsing.
type ArtworkStore interface {
	GetArtworks() ([]Artwork, bool)
	SaveArtworks(artworks []Artwork) error
}

// Store is the full local cache (BoltDB + memory).
type Store interface {
	FavoritesStore
	ArtworkStore

	InvalidateArtworks()
	InvalidateAll()

	Close() error
}
