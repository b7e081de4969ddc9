package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/atelier/internal/adapter"
	"github.com/mmcdole/atelier/internal/catalog"
	"github.com/mmcdole/atelier/internal/domain"
	"github.com/mmcdole/atelier/internal/favorites"
)

// Command factories for async operations. Favorites mutations run here,
// off the update loop, because removals may block on the confirm modal.

// LoadCatalogCmd loads the gallery
func LoadCatalogCmd(svc *catalog.Service) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		artworks, fromCache, err := svc.Artworks(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading gallery"}
		}
		return CatalogLoadedMsg{Artworks: artworks, FromCache: fromCache}
	}
}

// InitFavoritesCmd loads local favorites and merges with the server when
// signed in
func InitFavoritesCmd(cache *favorites.Cache) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		cache.Initialize(ctx)
		return FavoritesChangedMsg{IDs: cache.GetAll()}
	}
}

// ToggleFavoriteCmd adds or removes an artwork
func ToggleFavoriteCmd(cache *favorites.Cache, a domain.Artwork) tea.Cmd {
	return func() tea.Msg {
		wasFavorite := cache.IsFavorite(a.ID)
		isFavorite := cache.Toggle(a.ID)

		switch {
		case !wasFavorite:
			return StatusMsg{Text: fmt.Sprintf("Added %q to favorites", a.Title)}
		case !isFavorite:
			return StatusMsg{Text: fmt.Sprintf("Removed %q from favorites", a.Title)}
		default:
			return StatusMsg{Text: "Kept in favorites"}
		}
	}
}

// ClearFavoritesCmd removes every favorite after confirmation
func ClearFavoritesCmd(cache *favorites.Cache) tea.Cmd {
	return func() tea.Msg {
		if cache.GetCount() == 0 {
			return StatusMsg{Text: "No favorites to clear"}
		}
		if !cache.ClearAll() {
			return StatusMsg{Text: "Kept favorites"}
		}
		return StatusMsg{Text: "Cleared all favorites"}
	}
}

// SyncCmd merges local favorites with the server
func SyncCmd(cache *favorites.Cache) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return SyncDoneMsg{Err: cache.Sync(ctx)}
	}
}

// ExportCmd writes the favorite artworks to a dated JSON file in dir
func ExportCmd(artworks []domain.Artwork, dir string) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, favorites.ExportFileName(time.Now()))
		f, err := os.Create(path)
		if err != nil {
			return ErrMsg{Err: err, Context: "exporting favorites"}
		}
		if err := favorites.Export(f, artworks); err != nil {
			f.Close()
			return ErrMsg{Err: err, Context: "exporting favorites"}
		}
		if err := f.Close(); err != nil {
			return ErrMsg{Err: err, Context: "exporting favorites"}
		}
		return ExportedMsg{Path: path, Count: len(artworks)}
	}
}

// OpenArtworkCmd opens the artwork page in the browser
func OpenArtworkCmd(opener *adapter.Opener, a domain.Artwork) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Open(a.ID); err != nil {
			return ErrMsg{Err: err, Context: "opening artwork"}
		}
		return StatusMsg{Text: fmt.Sprintf("Opened %q", a.Title)}
	}
}

// CopyLinkCmd puts the artwork's share link on the clipboard
func CopyLinkCmd(opener *adapter.Opener, a domain.Artwork) tea.Cmd {
	return func() tea.Msg {
		link, err := opener.CopyLink(a.ID)
		if errors.Is(err, adapter.ErrClipboardUnavailable) {
			return StatusMsg{Text: "Share link: " + link}
		}
		if err != nil {
			return ErrMsg{Err: err, Context: "copying link"}
		}
		return StatusMsg{Text: "Copied " + link}
	}
}
