package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/atelier/internal/adapter"
	"github.com/mmcdole/atelier/internal/favorites"
	"github.com/mmcdole/atelier/internal/tui"
)

func runTUI(ctx context.Context, flags *globalFlags) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("starting atelier", "version", getVersion(), "server", a.cfg.Server.URL)

	sortMode, err := favorites.ParseSortMode(a.cfg.UI.DefaultSort)
	if err != nil {
		a.logger.Warn("ignoring ui.default_sort", "error", err)
		sortMode = favorites.SortNewest
	}

	observer := tui.NewChannelObserver(64)
	defer observer.Close()

	opts := []favorites.Option{favorites.WithObserver(observer)}
	if a.cfg.UI.ConfirmRemovals && !flags.yes {
		opts = append(opts, favorites.WithConfirmer(observer))
	}
	cache := a.newCache(true, opts...)
	defer cache.Close()

	// Session changes from a 401, or from `atelier login` in another
	// terminal picked up through the config watcher
	a.session.Subscribe(observer.OnSessionChanged)
	a.session.Subscribe(func(authenticated bool) {
		cache.HandleSessionChange(ctx, authenticated)
	})
	adapter.WatchConfig(func(cfg *adapter.Config) {
		a.session.Reload(cfg.Credentials())
	})

	user, _ := a.session.User()
	cwd, _ := os.Getwd()
	model := tui.NewModel(tui.Config{
		Cache:         cache,
		Catalog:       a.catalog,
		Opener:        adapter.NewOpener(a.cfg.UI.OpenCommand, a.cfg.Server.SiteURL, a.logger),
		Observer:      observer,
		View:          tui.ParseView(a.cfg.UI.DefaultView),
		Sort:          sortMode,
		Authenticated: a.session.IsAuthenticated(),
		Username:      user.Username,
		ExportDir:     cwd,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	observer.Close()
	cache.Wait()
	a.logger.Info("shutting down")
	return nil
}
