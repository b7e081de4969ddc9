package main

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/atelier/internal/adapter"
	"github.com/mmcdole/atelier/internal/adapter/museum"
	"github.com/mmcdole/atelier/internal/catalog"
	"github.com/mmcdole/atelier/internal/domain"
	"github.com/mmcdole/atelier/internal/favorites"
	"github.com/mmcdole/atelier/internal/session"
	"github.com/mmcdole/atelier/internal/store"
)

// app holds the wired services for one command run
type app struct {
	cfg     *adapter.Config
	logger  *slog.Logger
	store   domain.Store
	session *session.Authority
	client  *museum.Client
	catalog *catalog.Service
}

// newApp loads configuration and wires the store, session and clients
func newApp(flags *globalFlags) (*app, error) {
	cfg, err := adapter.LoadConfig(flags.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	cacheDir := cfg.Cache.Dir
	if flags.noCache {
		cacheDir = ""
	}
	st, err := store.NewLibraryStore(cacheDir, cfg.Server.URL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	auth := session.New(cfg.Server.URL, cfg.Credentials(), adapter.SessionStore{}, logger,
		session.WithTimeout(cfg.Sync.Timeout))
	client := museum.NewClient(cfg.Server.URL, auth, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		session: auth,
		client:  client,
		catalog: catalog.NewService(client, st, logger),
	}, nil
}

// newCache builds the favorites cache for this run. Call Initialize on it.
// With autoSync false, Initialize only loads the local set.
func (a *app) newCache(autoSync bool, opts ...favorites.Option) *favorites.Cache {
	var auth domain.SessionAuthority
	if autoSync {
		auth = a.session
	}
	dispatcher := favorites.NewDispatcher(a.cfg.DispatcherConfig(), a.logger)
	opts = append([]favorites.Option{favorites.WithDispatcher(dispatcher)}, opts...)
	return favorites.NewCache(a.store, a.client, auth, a.logger, opts...)
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close cache", "error", err)
	}
}
