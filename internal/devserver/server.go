package devserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Config configures the development backend
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// Server is an in-memory museum API for local development and tests.
type Server struct {
	httpServer *http.Server
	store      *memoryStore
	logger     *slog.Logger
}

// NewServer builds the router and the HTTP server
func NewServer(cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		store:  newMemoryStore(seedArtworks()),
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP, loggerMiddleware(logger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "atelier museum API"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/artworks", s.listArtworks)
		r.Get("/artworks/{id}", s.getArtwork)

		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/verify", s.verify)

			r.Get("/favorites", s.listFavorites)
			r.Put("/favorites", s.replaceFavorites)
			r.Post("/favorites/{id}", s.addFavorite)
			r.Delete("/favorites/{id}", s.removeFavorite)
		})
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router (httptest servers)
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// RevokeToken invalidates a bearer token, as an expired session would be
func (s *Server) RevokeToken(token string) {
	s.store.revoke(token)
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.Info("starting museum api", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping museum api")
	return s.httpServer.Shutdown(ctx)
}
