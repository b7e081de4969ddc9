package devserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mmcdole/atelier/internal/domain"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type replaceRequest struct {
	Favorites []domain.FavoriteID `json:"favorites"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"message": message})
}

func respondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func idParam(r *http.Request) (domain.FavoriteID, bool) {
	id, err := domain.ParseFavoriteID(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

// === Catalog ===

func (s *Server) listArtworks(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.store.listArtworks())
}

func (s *Server) getArtwork(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid artwork id")
		return
	}
	artwork, ok := s.store.artwork(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "artwork not found")
		return
	}
	respondWithJSON(w, http.StatusOK, artwork)
}

// === Auth ===

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !strings.Contains(req.Email, "@") || len(req.Password) < 6 || len(strings.TrimSpace(req.Username)) < 3 {
		writeJSONError(w, http.StatusBadRequest, "email, username (3+) and password (6+) are required")
		return
	}

	user, token, err := s.store.register(req.Email, req.Username, req.Password)
	if errors.Is(err, errEmailTaken) {
		writeJSONError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		s.logger.Error("register failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	s.logger.Info("user registered", "user_id", user.ID)
	respondWithJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.store.login(req.Email, req.Password)
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	respondWithJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) verify(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, userFrom(r))
}

// === Favorites ===

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.store.favoritesOf(userFrom(r).ID))
}

func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid artwork id")
		return
	}
	if _, ok := s.store.artwork(id); !ok {
		writeJSONError(w, http.StatusNotFound, "artwork not found")
		return
	}
	if !s.store.addFavorite(userFrom(r).ID, id) {
		writeJSONError(w, http.StatusConflict, "already a favorite")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]domain.FavoriteID{"id": id})
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "invalid artwork id")
		return
	}
	if !s.store.removeFavorite(userFrom(r).ID, id) {
		writeJSONError(w, http.StatusNotFound, "not a favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) replaceFavorites(w http.ResponseWriter, r *http.Request) {
	var req replaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Favorites == nil {
		writeJSONError(w, http.StatusBadRequest, "favorites array is required")
		return
	}

	// Same policy as addFavorite: only catalog artworks can be favorites.
	for _, id := range req.Favorites {
		if _, ok := s.store.artwork(id); !ok {
			writeJSONError(w, http.StatusNotFound, fmt.Sprintf("artwork %d not found", id))
			return
		}
	}

	userID := userFrom(r).ID
	s.store.replaceFavorites(userID, req.Favorites)
	respondWithJSON(w, http.StatusOK, s.store.favoritesOf(userID))
}
