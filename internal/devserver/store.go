package devserver

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mmcdole/atelier/internal/domain"
)

var (
	errEmailTaken   = errors.New("email already registered")
	errBadLogin     = errors.New("invalid email or password")
	errUnknownToken = errors.New("unknown token")
)

type account struct {
	user         domain.User
	salt         string
	passwordHash string
}

// memoryStore holds users, sessions and favorites for the dev backend
type memoryStore struct {
	mu        sync.RWMutex
	artworks  map[domain.FavoriteID]domain.Artwork
	order     []domain.FavoriteID
	accounts  map[string]*account // by lowercased email
	tokens    map[string]string   // token -> user id
	favorites map[string]map[domain.FavoriteID]struct{}
}

func newMemoryStore(artworks []domain.Artwork) *memoryStore {
	s := &memoryStore{
		artworks:  make(map[domain.FavoriteID]domain.Artwork, len(artworks)),
		accounts:  make(map[string]*account),
		tokens:    make(map[string]string),
		favorites: make(map[string]map[domain.FavoriteID]struct{}),
	}
	for _, a := range artworks {
		s.artworks[a.ID] = a
		s.order = append(s.order, a.ID)
	}
	return s
}

func hashPassword(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}

// === Accounts ===

func (s *memoryStore) register(email, username, password string) (domain.User, string, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[key]; ok {
		return domain.User{}, "", errEmailTaken
	}
	salt := uuid.NewString()
	acc := &account{
		user:         domain.User{ID: uuid.NewString(), Email: key, Username: strings.TrimSpace(username)},
		salt:         salt,
		passwordHash: hashPassword(salt, password),
	}
	s.accounts[key] = acc
	s.favorites[acc.user.ID] = make(map[domain.FavoriteID]struct{})

	token := uuid.NewString()
	s.tokens[token] = acc.user.ID
	return acc.user, token, nil
}

func (s *memoryStore) login(email, password string) (domain.User, string, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[key]
	if !ok {
		return domain.User{}, "", errBadLogin
	}
	got := hashPassword(acc.salt, password)
	if subtle.ConstantTimeCompare([]byte(got), []byte(acc.passwordHash)) != 1 {
		return domain.User{}, "", errBadLogin
	}

	token := uuid.NewString()
	s.tokens[token] = acc.user.ID
	return acc.user, token, nil
}

func (s *memoryStore) userForToken(token string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokens[token]
	if !ok {
		return domain.User{}, errUnknownToken
	}
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc.user, nil
		}
	}
	return domain.User{}, errUnknownToken
}

// revoke drops a token; later requests with it get 401
func (s *memoryStore) revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// === Artworks ===

func (s *memoryStore) listArtworks() []domain.Artwork {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Artwork, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.artworks[id])
	}
	return out
}

func (s *memoryStore) artwork(id domain.FavoriteID) (domain.Artwork, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artworks[id]
	return a, ok
}

// === Favorites ===

// favoritesOf returns the user's ids in ascending order; the server keeps no
// insertion order.
func (s *memoryStore) favoritesOf(userID string) domain.FavoriteSet {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(domain.FavoriteSet, 0, len(s.favorites[userID]))
	for id := range s.favorites[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// addFavorite reports false when id was already present
func (s *memoryStore) addFavorite(userID string, id domain.FavoriteID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.favorites[userID]
	if set == nil {
		set = make(map[domain.FavoriteID]struct{})
		s.favorites[userID] = set
	}
	if _, ok := set[id]; ok {
		return false
	}
	set[id] = struct{}{}
	return true
}

// removeFavorite reports false when id was absent
func (s *memoryStore) removeFavorite(userID string, id domain.FavoriteID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.favorites[userID][id]; !ok {
		return false
	}
	delete(s.favorites[userID], id)
	return true
}

func (s *memoryStore) replaceFavorites(userID string, ids domain.FavoriteSet) {
	set := make(map[domain.FavoriteID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	s.mu.Lock()
	s.favorites[userID] = set
	s.mu.Unlock()
}
