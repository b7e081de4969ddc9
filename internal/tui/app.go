package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/atelier/internal/adapter"
	"github.com/mmcdole/atelier/internal/catalog"
	"github.com/mmcdole/atelier/internal/domain"
	"github.com/mmcdole/atelier/internal/favorites"
	"github.com/mmcdole/atelier/internal/tui/components"
)

// View selects the list on screen
type View int

const (
	ViewGallery View = iota
	ViewFavorites
)

// ParseView maps the config spelling to a View
func ParseView(s string) View {
	if s == "favorites" {
		return ViewFavorites
	}
	return ViewGallery
}

// Layout constants
const (
	HeaderHeight  = 1
	FooterHeight  = 1
	DetailPercent = 40
)

// Config wires the model to the application services
type Config struct {
	Cache         *favorites.Cache
	Catalog       *catalog.Service
	Opener        *adapter.Opener
	Observer      *ChannelObserver
	View          View
	Sort          favorites.SortMode
	Authenticated bool
	Username      string
	ExportDir     string
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	cache    *favorites.Cache
	catalog  *catalog.Service
	opener   *adapter.Opener
	observer *ChannelObserver

	// UI components
	gallery  *components.ArtworkList
	favList  *components.ArtworkList
	confirm  components.ConfirmModal
	help     help.Model
	pending  chan<- bool // reply for the visible confirm modal
	view     View
	details  bool
	showHelp bool

	// Data
	artworks  []domain.Artwork
	favIDs    domain.FavoriteSet
	sortMode  favorites.SortMode
	exportDir string

	// Session and sync
	authenticated bool
	username      string
	syncState     domain.SyncState
	syncing       bool
	offline       bool

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// Status line
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model
func NewModel(cfg Config) Model {
	gallery := components.NewArtworkList("Gallery")
	gallery.SetEmptyText("Loading gallery...")
	favList := components.NewArtworkList("Favorites")
	favList.SetEmptyText("No favorites yet. Press f on an artwork.")

	sortMode := cfg.Sort
	if sortMode == "" {
		sortMode = favorites.SortNewest
	}
	exportDir := cfg.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	m := Model{
		cache:         cfg.Cache,
		catalog:       cfg.Catalog,
		opener:        cfg.Opener,
		observer:      cfg.Observer,
		gallery:       gallery,
		favList:       favList,
		help:          help.New(),
		view:          cfg.View,
		sortMode:      sortMode,
		exportDir:     exportDir,
		authenticated: cfg.Authenticated,
		username:      cfg.Username,
	}
	m.focusActive()
	m.updateFavoritesTitle()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadCatalogCmd(m.catalog),
		InitFavoritesCmd(m.cache),
		m.observer.listen(),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case busMsg:
		next, cmd := m.Update(msg.inner)
		return next, tea.Batch(cmd, m.observer.listen())

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.help.Width = msg.Width
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case CatalogLoadedMsg:
		m.artworks = msg.Artworks
		m.offline = msg.FromCache
		m.gallery.SetEmptyText("The gallery is empty")
		m.gallery.SetItems(msg.Artworks)
		m.refreshFavorites()
		if msg.FromCache {
			m.setStatus("Server unreachable, showing the saved gallery", true)
		}
		return m, nil

	case FavoritesChangedMsg:
		m.refreshFavorites()
		return m, nil

	case SyncStateMsg:
		m.syncState = msg.State
		return m, nil

	case SessionChangedMsg:
		m.authenticated = msg.Authenticated
		if !msg.Authenticated {
			m.username = ""
			m.setStatus("Signed out, favorites stay on this device", false)
		}
		return m, nil

	case RemoteResultMsg:
		m.handleRemoteResult(msg.Result)
		return m, nil

	case ConfirmRequestMsg:
		if m.pending != nil {
			msg.reply <- false
			return m, nil
		}
		m.pending = msg.reply
		m.confirm.Show(msg.Request.Prompt(), m.confirmDetail(msg.Request))
		return m, nil

	case SyncDoneMsg:
		m.syncing = false
		switch {
		case msg.Err == nil:
			m.setStatus(fmt.Sprintf("Synced %d favorites", len(m.favIDs)), false)
		case errors.Is(msg.Err, domain.ErrSyncDisabled):
			m.setStatus("Sign in with `atelier login` to sync", true)
		default:
			m.setStatus("Sync failed: "+msg.Err.Error(), true)
		}
		return m, nil

	case ExportedMsg:
		m.setStatus(fmt.Sprintf("Exported %d favorites to %s", msg.Count, msg.Path), false)
		return m, nil

	case StatusMsg:
		m.setStatus(msg.Text, msg.IsErr)
		return m, nil

	case ErrMsg:
		m.setStatus(msg.Error(), true)
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm.IsVisible() {
		if answered, yes := m.confirm.Update(msg); answered {
			m.answer(yes)
		}
		return m, nil
	}

	list := m.activeList()
	if list.IsFiltering() {
		return m, list.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		m.observer.Close()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.SwitchView):
		if m.view == ViewGallery {
			m.view = ViewFavorites
		} else {
			m.view = ViewGallery
		}
		m.focusActive()
		return m, nil

	case key.Matches(msg, Keys.Details):
		m.details = !m.details
		m.updateLayout()
		return m, nil

	case key.Matches(msg, Keys.Filter):
		return m, list.StartFilter()

	case key.Matches(msg, Keys.Sort):
		m.sortMode = m.sortMode.Next()
		m.refreshFavorites()
		m.setStatus("Sorted by "+m.sortMode.Label(), false)
		return m, nil

	case key.Matches(msg, Keys.Toggle):
		if a, ok := list.Selected(); ok {
			return m, ToggleFavoriteCmd(m.cache, a)
		}
		return m, nil

	case key.Matches(msg, Keys.Clear):
		return m, ClearFavoritesCmd(m.cache)

	case key.Matches(msg, Keys.Sync):
		if !m.authenticated {
			m.setStatus("Sign in with `atelier login` to sync", true)
			return m, nil
		}
		m.syncing = true
		m.setStatus("Syncing favorites...", false)
		return m, SyncCmd(m.cache)

	case key.Matches(msg, Keys.Export):
		return m, ExportCmd(m.favList.Visible(), m.exportDir)

	case key.Matches(msg, Keys.Open):
		if a, ok := list.Selected(); ok {
			return m, OpenArtworkCmd(m.opener, a)
		}
		return m, nil

	case key.Matches(msg, Keys.CopyLink):
		if a, ok := list.Selected(); ok {
			return m, CopyLinkCmd(m.opener, a)
		}
		return m, nil
	}

	return m, list.Update(msg)
}

// answer replies to the pending confirmation
func (m *Model) answer(yes bool) {
	if m.pending != nil {
		m.pending <- yes
		m.pending = nil
	}
}

func (m *Model) handleRemoteResult(res domain.RemoteResult) {
	if res.Err == nil {
		return
	}
	switch {
	case errors.Is(res.Err, domain.ErrSessionExpired):
		m.setStatus("Session expired, sign in again to sync", true)
	case errors.Is(res.Err, domain.ErrNetwork):
		m.setStatus("Server unreachable, changes are saved locally", true)
	default:
		m.setStatus(fmt.Sprintf("Sync %s failed: %v", res.Op, res.Err), true)
	}
}

func (m Model) confirmDetail(req domain.ConfirmRequest) string {
	if req.Kind != domain.ConfirmRemove {
		return "This also clears them on the server when signed in."
	}
	for _, a := range m.artworks {
		if a.ID == req.ID {
			return a.Title + " by " + a.Artist
		}
	}
	return ""
}

// refreshFavorites rebuilds the favorites view from the cache
func (m *Model) refreshFavorites() {
	m.favIDs = m.cache.GetAll()
	resolved := catalog.ResolveFrom(m.artworks, m.favIDs)
	m.favList.SetItems(favorites.SortArtworks(resolved, m.favIDs, m.sortMode))
	m.favList.SetFavorites(m.favIDs)
	m.gallery.SetFavorites(m.favIDs)
	m.updateFavoritesTitle()
}

func (m *Model) updateFavoritesTitle() {
	m.favList.SetTitle("Favorites · " + m.sortMode.Label())
}

func (m *Model) setStatus(text string, isErr bool) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
}

func (m Model) activeList() *components.ArtworkList {
	if m.view == ViewFavorites {
		return m.favList
	}
	return m.gallery
}

func (m *Model) focusActive() {
	m.gallery.SetFocused(m.view == ViewGallery)
	m.favList.SetFocused(m.view == ViewFavorites)
}
