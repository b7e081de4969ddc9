package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/atelier/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketFavorites = []byte("favorites")
	bucketArtworks  = []byte("artworks")
)

// Keys inside the buckets
const (
	keyFavoriteIDs = "ids"
	keyArtworkList = "list"
)

// LibraryStore implements domain.Store using BoltDB.
type LibraryStore struct {
	db     *bolt.DB
	logger *slog.Logger
	mu     sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewLibraryStore opens (or creates) the cache database for serverURL below
// baseCacheDir. An empty baseCacheDir gives a memory-only store.
func NewLibraryStore(baseCacheDir, serverURL string, logger *slog.Logger) (*LibraryStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &LibraryStore{logger: logger, cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	dbPath := filepath.Join(dir, "atelier.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketFavorites, bucketArtworks} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("opened local store", "path", dbPath)
	return &LibraryStore{db: db, logger: logger, cache: make(map[string][]byte)}, nil
}

// hashServerURL keeps favorites of different servers apart
func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *LibraryStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

// getRaw returns the stored bytes for key, nil when missing
func (s *LibraryStore) getRaw(bucket []byte, key string) []byte {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return data
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to read local store", "bucket", string(bucket), "key", key, "error", err)
		return nil
	}
	if data == nil {
		return nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return data
}

func (s *LibraryStore) get(bucket []byte, key string, dest interface{}) bool {
	data := s.getRaw(bucket, key)
	if data == nil {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (s *LibraryStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.db != nil {
		// Disk first; the memory copy must not run ahead of it
		err = s.db.Update(func(tx *bolt.Tx) error {
			b := tx.Bucket(bucket)
			if b == nil {
				return fmt.Errorf("bucket %s missing", bucket)
			}
			return b.Put([]byte(key), data)
		})
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()
	return nil
}

func (s *LibraryStore) delete(bucket []byte, key string) {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			return b.Delete([]byte(key))
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to delete from local store", "bucket", string(bucket), "key", key, "error", err)
	}
}

// === Favorites ===

// LoadFavorites returns the persisted favorite set. Missing data gives an
// empty set; corrupt data is logged and also gives an empty set.
func (s *LibraryStore) LoadFavorites() domain.FavoriteSet {
	data := s.getRaw(bucketFavorites, keyFavoriteIDs)
	if data == nil {
		return domain.FavoriteSet{}
	}

	var ids domain.FavoriteSet
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.Error("corrupt favorites in local store, starting empty", "error", err)
		return domain.FavoriteSet{}
	}
	ids = ids.Dedupe()
	s.logger.Debug("loaded favorites from local store", "count", len(ids))
	return ids
}

// SaveFavorites replaces the persisted favorite set
func (s *LibraryStore) SaveFavorites(ids domain.FavoriteSet) error {
	if ids == nil {
		ids = domain.FavoriteSet{}
	}
	if err := s.set(bucketFavorites, keyFavoriteIDs, ids); err != nil {
		return fmt.Errorf("%w: save favorites: %v", domain.ErrStorage, err)
	}
	return nil
}

// === Artworks ===

func (s *LibraryStore) GetArtworks() ([]domain.Artwork, bool) {
	var artworks []domain.Artwork
	ok := s.get(bucketArtworks, keyArtworkList, &artworks)
	return artworks, ok
}

func (s *LibraryStore) SaveArtworks(artworks []domain.Artwork) error {
	if err := s.set(bucketArtworks, keyArtworkList, artworks); err != nil {
		return fmt.Errorf("%w: save artworks: %v", domain.ErrStorage, err)
	}
	return nil
}

// === Invalidation ===

func (s *LibraryStore) InvalidateArtworks() {
	s.delete(bucketArtworks, keyArtworkList)
}

// InvalidateAll wipes every bucket, favorites included
func (s *LibraryStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketFavorites, bucketArtworks} {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			var keys [][]byte
			if err := b.ForEach(func(k, _ []byte) error {
				keys = append(keys, append([]byte(nil), k...))
				return nil
			}); err != nil {
				return err
			}
			for _, k := range keys {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to wipe local store", "error", err)
	}
}
