package tui

import "github.com/mmcdole/atelier/internal/domain"

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// StatusMsg shows a line in the footer
type StatusMsg struct {
	Text  string
	IsErr bool
}

// CatalogLoadedMsg signals that the gallery has been loaded
type CatalogLoadedMsg struct {
	Artworks  []domain.Artwork
	FromCache bool
}

// FavoritesChangedMsg signals that the favorites set changed
type FavoritesChangedMsg struct {
	IDs domain.FavoriteSet
}

// SyncStateMsg signals that sync was enabled or disabled
type SyncStateMsg struct {
	State domain.SyncState
}

// RemoteResultMsg reports a finished server call
type RemoteResultMsg struct {
	Result domain.RemoteResult
}

// SessionChangedMsg signals sign-in or sign-out
type SessionChangedMsg struct {
	Authenticated bool
}

// SyncDoneMsg signals that a manual sync finished
type SyncDoneMsg struct {
	Err error
}

// ExportedMsg signals that favorites were written to a file
type ExportedMsg struct {
	Path  string
	Count int
}

// ConfirmRequestMsg asks the model to show the confirm modal
type ConfirmRequestMsg struct {
	Request domain.ConfirmRequest
	reply   chan<- bool
}
