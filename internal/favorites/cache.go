package favorites

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/atelier/internal/domain"
)

// Cache is the in-memory view of the user's favorites for one session.
//
// Local effects (memory + local store) are applied synchronously and in call
// order. Remote calls are best effort: they run on the Dispatcher, their
// failures are logged and reported to observers, and they never roll back
// local state. Only Sync reports errors to its caller.
type Cache struct {
	store      domain.FavoritesStore
	remote     domain.FavoritesClient
	session    domain.SessionAuthority
	dispatcher *Dispatcher
	confirmer  domain.Confirmer
	logger     *slog.Logger

	mu        sync.Mutex // guards everything below up to syncMu
	ids       domain.FavoriteSet
	loaded    bool // ids include the local store
	state     domain.SyncState
	observers []domain.FavoritesObserver

	// Local removals made while a Sync is between fetch and adopt. The
	// server's contribution must not bring them back.
	syncing     bool
	syncRemoved domain.FavoriteSet
	syncCleared bool

	syncMu sync.Mutex // one merge at a time
}

// Option configures a Cache
type Option func(*Cache)

// WithConfirmer sets who approves Remove and ClearAll (default: always yes)
func WithConfirmer(c domain.Confirmer) Option {
	return func(cache *Cache) {
		if c != nil {
			cache.confirmer = c
		}
	}
}

// WithObserver registers an observer at construction time
func WithObserver(o domain.FavoritesObserver) Option {
	return func(cache *Cache) {
		if o != nil {
			cache.observers = append(cache.observers, o)
		}
	}
}

// WithDispatcher replaces the default background dispatcher
func WithDispatcher(d *Dispatcher) Option {
	return func(cache *Cache) {
		if d != nil {
			cache.dispatcher = d
		}
	}
}

// NewCache creates an empty cache. Call Initialize before use.
func NewCache(store domain.FavoritesStore, remote domain.FavoritesClient, session domain.SessionAuthority, logger *slog.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cache{
		store:     store,
		remote:    remote,
		session:   session,
		confirmer: domain.AlwaysConfirm,
		logger:    logger,
		ids:       domain.FavoriteSet{},
		state:     domain.SyncDisabled,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dispatcher == nil {
		c.dispatcher = NewDispatcher(DefaultDispatcherConfig(), logger)
	}
	return c
}

// Subscribe registers an observer
func (c *Cache) Subscribe(o domain.FavoritesObserver) {
	c.mu.Lock()
	c.observers = append(c.observers, o)
	c.mu.Unlock()
}

// Initialize loads the local store and, when a session exists, merges with
// the server. Remote failures are logged; local favorites are always usable
// afterwards.
func (c *Cache) Initialize(ctx context.Context) {
	c.mu.Lock()
	c.loaded = false
	c.loadLocked()
	count := len(c.ids)
	c.mu.Unlock()
	c.logger.Info("loaded favorites", "count", count)
	c.notifyChanged()

	if c.session != nil && c.session.IsAuthenticated() {
		if err := c.EnableSync(ctx); err != nil {
			c.logger.Warn("initial favorites sync failed", "error", err)
		}
	}
}

// === Queries ===

func (c *Cache) IsFavorite(id domain.FavoriteID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ids.Contains(id)
}

// GetAll returns a copy of the favorites in local insertion order
func (c *Cache) GetAll() domain.FavoriteSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ids.Clone()
}

func (c *Cache) GetCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

func (c *Cache) State() domain.SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// === Mutations ===

// Add appends id unless it is already a favorite
func (c *Cache) Add(id domain.FavoriteID) {
	c.mu.Lock()
	c.loadLocked()
	if c.ids.Contains(id) {
		c.mu.Unlock()
		return
	}
	c.ids = append(c.ids, id)
	snapshot := c.ids.Clone()
	enabled := c.state == domain.SyncEnabled
	c.mu.Unlock()

	c.persist(snapshot)
	c.logger.Debug("added favorite", "id", id, "count", len(snapshot))
	c.notifyChanged()

	if enabled {
		c.dispatch(Task{Op: domain.OpAdd, ID: id, Run: func(ctx context.Context) error {
			return c.remote.Add(ctx, id)
		}})
	}
}

// Remove drops id after the confirmer approves. It reports whether id was
// removed; absent ids and declined confirmations are no-ops.
func (c *Cache) Remove(id domain.FavoriteID) bool {
	_, removed := c.remove(id)
	return removed
}

// remove reports whether id is still a favorite once the call is over, and
// whether this call removed it.
func (c *Cache) remove(id domain.FavoriteID) (present, removed bool) {
	c.mu.Lock()
	c.loadLocked()
	present = c.ids.Contains(id)
	c.mu.Unlock()
	if !present {
		return false, false
	}

	if !c.confirmer.Confirm(domain.ConfirmRequest{Kind: domain.ConfirmRemove, ID: id}) {
		c.logger.Debug("favorite removal declined", "id", id)
		return c.IsFavorite(id), false
	}

	c.mu.Lock()
	idx := c.ids.IndexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return false, false
	}
	c.ids = append(c.ids[:idx:idx], c.ids[idx+1:]...)
	if c.syncing {
		c.syncRemoved = append(c.syncRemoved, id)
	}
	snapshot := c.ids.Clone()
	enabled := c.state == domain.SyncEnabled
	c.mu.Unlock()

	c.persist(snapshot)
	c.logger.Debug("removed favorite", "id", id, "count", len(snapshot))
	c.notifyChanged()

	if enabled {
		c.dispatch(Task{Op: domain.OpRemove, ID: id, Run: func(ctx context.Context) error {
			return c.remote.Remove(ctx, id)
		}})
	}
	return false, true
}

// Toggle adds or removes id and returns whether it is a favorite afterwards
func (c *Cache) Toggle(id domain.FavoriteID) bool {
	if c.IsFavorite(id) {
		present, _ := c.remove(id)
		return present
	}
	c.Add(id)
	return true
}

// ClearAll empties the set after the confirmer approves and reports whether
// anything was cleared. When sync is enabled the server receives the empty
// set as a full replacement.
func (c *Cache) ClearAll() bool {
	c.mu.Lock()
	c.loadLocked()
	count := len(c.ids)
	c.mu.Unlock()
	if count == 0 {
		return false
	}
	if !c.confirmer.Confirm(domain.ConfirmRequest{Kind: domain.ConfirmClearAll, Count: count}) {
		c.logger.Debug("clearing favorites declined", "count", count)
		return false
	}

	c.mu.Lock()
	c.ids = domain.FavoriteSet{}
	if c.syncing {
		c.syncCleared = true
	}
	enabled := c.state == domain.SyncEnabled
	c.mu.Unlock()

	c.persist(domain.FavoriteSet{})
	c.logger.Info("cleared favorites", "count", count)
	c.notifyChanged()

	if enabled {
		c.dispatch(Task{Op: domain.OpReplaceAll, Run: func(ctx context.Context) error {
			return c.remote.ReplaceAll(ctx, domain.FavoriteSet{})
		}})
	}
	return true
}

// === Sync ===

// EnableSync turns sync on (login or startup with a session) and merges with
// the server. Calling it while already enabled just re-syncs.
func (c *Cache) EnableSync(ctx context.Context) error {
	c.setState(domain.SyncEnabled)
	return c.Sync(ctx)
}

// DisableSync turns sync off (logout or expired session). Remote calls already
// in flight are not cancelled.
func (c *Cache) DisableSync() {
	c.setState(domain.SyncDisabled)
}

// HandleSessionChange adapts session listeners to EnableSync / DisableSync
func (c *Cache) HandleSessionChange(ctx context.Context, authenticated bool) {
	if !authenticated {
		c.DisableSync()
		return
	}
	if err := c.EnableSync(ctx); err != nil {
		c.logger.Warn("favorites sync after login failed", "error", err)
	}
}

// Sync runs the merge protocol: fetch the server set, union it with the
// local one, push the union back when the server is missing anything, then
// adopt and persist the union. A failed push still adopts the union; the
// next Sync retries it. Calling Sync twice with no mutation in between
// leaves the set unchanged and pushes at most once.
//
// Mutations may run while the network calls are in flight. Additions are
// kept. Removals, and a ClearAll, are kept too: the ids they dropped are
// excluded from the server's contribution and the corrected set is pushed.
func (c *Cache) Sync(ctx context.Context) error {
	if c.State() != domain.SyncEnabled {
		return domain.ErrSyncDisabled
	}

	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	c.mu.Lock()
	c.syncing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.syncing = false
		c.syncRemoved = nil
		c.syncCleared = false
		c.mu.Unlock()
	}()

	remote, err := c.remote.FetchAll(ctx)
	c.notifyRemote(domain.RemoteResult{Op: domain.OpFetchAll, Count: len(remote), Err: err})
	if err != nil {
		c.handleRemoteError(domain.OpFetchAll, 0, err)
		return fmt.Errorf("fetch server favorites: %w", err)
	}

	local := c.GetAll()
	merged, changed := Merge(local, remote)

	var pushErr error
	if changed {
		pushErr = c.remote.ReplaceAll(ctx, merged)
		c.notifyRemote(domain.RemoteResult{Op: domain.OpReplaceAll, Count: len(merged), Err: pushErr})
		if pushErr != nil {
			c.handleRemoteError(domain.OpReplaceAll, 0, pushErr)
		}
	}

	// Fold the server's contribution into the current set rather than the
	// snapshot, so mutations made meanwhile survive.
	c.mu.Lock()
	contribution := remote
	switch {
	case c.syncCleared:
		contribution = nil
	case len(c.syncRemoved) > 0:
		contribution = Subtract(remote, c.syncRemoved)
	}
	reconcile := c.syncCleared || len(c.syncRemoved) > 0
	final, _ := Merge(c.ids, contribution)
	c.ids = final
	snapshot := final.Clone()
	c.mu.Unlock()

	c.persist(snapshot)
	c.notifyChanged()

	// The push above may have carried ids removed since, and the fetched
	// set may predate the dispatched removals.
	if reconcile && pushErr == nil {
		serverView := remote
		if changed {
			serverView = merged
		}
		if !snapshot.SameMembers(serverView) {
			changed = true
			pushErr = c.remote.ReplaceAll(ctx, snapshot)
			c.notifyRemote(domain.RemoteResult{Op: domain.OpReplaceAll, Count: len(snapshot), Err: pushErr})
			if pushErr != nil {
				c.handleRemoteError(domain.OpReplaceAll, 0, pushErr)
			}
		}
	}

	if pushErr != nil {
		return fmt.Errorf("push merged favorites: %w", pushErr)
	}
	c.logger.Info("favorites synced", "count", len(snapshot), "pushed", changed)
	return nil
}

// Wait blocks until every dispatched remote call has completed
func (c *Cache) Wait() {
	c.dispatcher.Wait()
}

// Close drains and stops the background dispatcher
func (c *Cache) Close() {
	c.dispatcher.Close()
}

// === Internals ===

// loadLocked merges the local store into ids once, keeping anything added
// before Initialize ran. c.mu must be held.
func (c *Cache) loadLocked() {
	if c.loaded {
		return
	}
	c.ids, _ = Merge(c.store.LoadFavorites().Dedupe(), c.ids)
	c.loaded = true
}

func (c *Cache) persist(ids domain.FavoriteSet) {
	if err := c.store.SaveFavorites(ids); err != nil {
		c.logger.Error("failed to persist favorites", "error", err, "count", len(ids))
	}
}

func (c *Cache) dispatch(task Task) {
	c.dispatcher.Submit(task, c.onRemoteDone)
}

func (c *Cache) onRemoteDone(res domain.RemoteResult) {
	if res.Err != nil {
		c.handleRemoteError(res.Op, res.ID, res.Err)
	}
	c.notifyRemote(res)
}

func (c *Cache) handleRemoteError(op domain.RemoteOp, id domain.FavoriteID, err error) {
	if errors.Is(err, domain.ErrSessionExpired) {
		c.logger.Warn("session expired, favorites sync disabled", "op", op)
		c.DisableSync()
		return
	}
	c.logger.Warn("remote favorites call failed", "op", op, "id", id, "error", err)
}

func (c *Cache) setState(state domain.SyncState) {
	c.mu.Lock()
	if c.state == state {
		c.mu.Unlock()
		return
	}
	c.state = state
	observers := append([]domain.FavoritesObserver(nil), c.observers...)
	c.mu.Unlock()

	c.logger.Info("favorites sync state changed", "state", state)
	for _, o := range observers {
		o.OnSyncStateChanged(state)
	}
}

func (c *Cache) notifyChanged() {
	c.mu.Lock()
	snapshot := c.ids.Clone()
	observers := append([]domain.FavoritesObserver(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o.OnFavoritesChanged(snapshot.Clone())
	}
}

func (c *Cache) notifyRemote(res domain.RemoteResult) {
	c.mu.Lock()
	observers := append([]domain.FavoritesObserver(nil), c.observers...)
	c.mu.Unlock()

	for _, o := range observers {
		o.OnRemoteResult(res)
	}
}
