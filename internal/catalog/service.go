package catalog

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmcdole/atelier/internal/domain"
)

// Service orchestrates catalog client + store operations.
type Service struct {
	client domain.CatalogClient
	store  domain.ArtworkStore
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(client domain.CatalogClient, store domain.ArtworkStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, store: store, logger: logger}
}

// Artworks returns the catalog from the server and refreshes the local copy.
// When the server cannot be reached the local copy is returned instead and
// fromCache is true.
func (s *Service) Artworks(ctx context.Context) (artworks []domain.Artwork, fromCache bool, err error) {
	artworks, err = s.client.GetArtworks(ctx)
	if err != nil {
		cached, ok := s.store.GetArtworks()
		if !ok {
			s.logger.Error("failed to fetch artworks", "error", err)
			return nil, false, err
		}
		s.logger.Warn("server unavailable, using cached catalog", "error", err, "count", len(cached))
		return cached, true, nil
	}

	if err := s.store.SaveArtworks(artworks); err != nil {
		s.logger.Error("failed to save artworks", "error", err)
	}
	s.logger.Debug("fetched artworks", "count", len(artworks))
	return artworks, false, nil
}

// Cached returns the local copy of the catalog without network access
func (s *Service) Cached() ([]domain.Artwork, bool) {
	return s.store.GetArtworks()
}

// Artwork returns a single artwork, looking in the local copy when the
// server is unreachable.
func (s *Service) Artwork(ctx context.Context, id domain.FavoriteID) (*domain.Artwork, error) {
	artwork, err := s.client.GetArtwork(ctx, id)
	if err == nil || errors.Is(err, domain.ErrArtworkNotFound) {
		return artwork, err
	}

	if cached, ok := s.store.GetArtworks(); ok {
		if a, found := byID(cached)[id]; found {
			s.logger.Warn("server unavailable, using cached artwork", "id", id, "error", err)
			return &a, nil
		}
	}
	return nil, err
}

// Resolve maps favorite ids to artworks in the order of ids. Ids missing from
// the catalog are skipped.
func (s *Service) Resolve(ctx context.Context, ids domain.FavoriteSet) ([]domain.Artwork, error) {
	if len(ids) == 0 {
		return []domain.Artwork{}, nil
	}

	all, _, err := s.Artworks(ctx)
	if err != nil {
		return nil, err
	}
	return ResolveFrom(all, ids), nil
}

// ResolveFrom is Resolve against an already loaded catalog
func ResolveFrom(all []domain.Artwork, ids domain.FavoriteSet) []domain.Artwork {
	index := byID(all)
	out := make([]domain.Artwork, 0, len(ids))
	for _, id := range ids {
		if a, ok := index[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

func byID(artworks []domain.Artwork) map[domain.FavoriteID]domain.Artwork {
	index := make(map[domain.FavoriteID]domain.Artwork, len(artworks))
	for _, a := range artworks {
		index[a.ID] = a
	}
	return index
}
