package favorites

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/mmcdole/atelier/internal/domain"
)

func newTestCache(t *testing.T, store *memStore, remote *fakeRemote, authenticated bool, opts ...Option) *Cache {
	t.Helper()
	c := NewCache(store, remote, fakeSession(authenticated), quietLogger(), opts...)
	t.Cleanup(c.Close)
	return c
}

func TestInitialize_Unauthenticated(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{10, 20}}
	remote := &fakeRemote{server: domain.FavoriteSet{30}}
	c := newTestCache(t, store, remote, false)

	c.Initialize(context.Background())
	c.Wait()

	if got := c.GetAll(); !reflect.DeepEqual(got, domain.FavoriteSet{10, 20}) {
		t.Fatalf("GetAll = %v, want [10 20]", got)
	}
	if c.State() != domain.SyncDisabled {
		t.Fatalf("State = %v, want disabled", c.State())
	}
	if remote.fetchCount() != 0 || len(remote.replaceCalls()) != 0 {
		t.Fatal("no remote calls expected without a session")
	}
}

func TestInitialize_AuthenticatedMergesAndPushes(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{10}}
	remote := &fakeRemote{server: domain.FavoriteSet{20}}
	c := newTestCache(t, store, remote, true)

	c.Initialize(context.Background())

	want := domain.FavoriteSet{10, 20}
	if got := c.GetAll(); !reflect.DeepEqual(got, want) {
		t.Fatalf("GetAll = %v, want %v", got, want)
	}
	if got := store.stored(); !reflect.DeepEqual(got, want) {
		t.Fatalf("local store = %v, want %v", got, want)
	}
	replaces := remote.replaceCalls()
	if len(replaces) != 1 || !reflect.DeepEqual(replaces[0], want) {
		t.Fatalf("ReplaceAll calls = %v, want exactly one with %v", replaces, want)
	}
	if c.State() != domain.SyncEnabled {
		t.Fatalf("State = %v, want enabled", c.State())
	}
}

func TestInitialize_AuthenticatedNoPushWhenEqual(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{10}}
	remote := &fakeRemote{server: domain.FavoriteSet{10}}
	c := newTestCache(t, store, remote, true)

	c.Initialize(context.Background())

	if got := c.GetAll(); !reflect.DeepEqual(got, domain.FavoriteSet{10}) {
		t.Fatalf("GetAll = %v, want [10]", got)
	}
	if n := len(remote.replaceCalls()); n != 0 {
		t.Fatalf("ReplaceAll called %d times, want 0", n)
	}
}

func TestInitialize_FetchFailureKeepsLocal(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{1, 2}}
	remote := &fakeRemote{fetchErr: fmt.Errorf("%w: connection refused", domain.ErrNetwork)}
	c := newTestCache(t, store, remote, true)

	c.Initialize(context.Background())

	if got := c.GetAll(); !reflect.DeepEqual(got, domain.FavoriteSet{1, 2}) {
		t.Fatalf("GetAll = %v, want [1 2]", got)
	}
	if c.State() != domain.SyncEnabled {
		t.Fatal("a network failure should not disable sync")
	}
}

func TestAdd_Idempotent(t *testing.T) {
	store := &memStore{}
	c := newTestCache(t, store, &fakeRemote{}, false)
	c.Initialize(context.Background())

	c.Add(5)
	c.Add(5)
	c.Add(6)
	c.Add(5)

	if got := c.GetAll(); !reflect.DeepEqual(got, domain.FavoriteSet{5, 6}) {
		t.Fatalf("GetAll = %v, want [5 6]", got)
	}
	if c.GetCount() != 2 {
		t.Fatalf("GetCount = %d, want 2", c.GetCount())
	}
	if got := store.stored(); !reflect.DeepEqual(got, domain.FavoriteSet{5, 6}) {
		t.Fatalf("local store = %v, want [5 6]", got)
	}
}

func TestRemove_AbsentIsNoOp(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{1}}
	remote := &fakeRemote{}
	asked := false
	c := newTestCache(t, store, remote, true, WithConfirmer(domain.ConfirmFunc(func(domain.ConfirmRequest) bool {
		asked = true
		return true
	})))
	c.Initialize(context.Background())
	saves := store.saves

	if c.Remove(99) {
		t.Fatal("Remove of an absent id reported success")
	}
	c.Wait()

	if asked {
		t.Fatal("confirmer should not be asked for an absent id")
	}
	if store.saves != saves {
		t.Fatal("Remove of an absent id should not touch the local store")
	}
	if n := len(remote.removeCalls()); n != 0 {
		t.Fatalf("remote Remove called %d times, want 0", n)
	}
}

func TestToggle_TwiceRestoresMembership(t *testing.T) {
	c := newTestCache(t, &memStore{ids: domain.FavoriteSet{1}}, &fakeRemote{}, false)
	c.Initialize(context.Background())

	for _, id := range []domain.FavoriteID{1, 2} {
		before := c.IsFavorite(id)
		if got := c.Toggle(id); got == before {
			t.Fatalf("Toggle(%d) = %v, want %v", id, got, !before)
		}
		if got := c.Toggle(id); got != before {
			t.Fatalf("second Toggle(%d) = %v, want %v", id, got, before)
		}
		if c.IsFavorite(id) != before {
			t.Fatalf("membership of %d changed after two toggles", id)
		}
	}
}

func TestNoDuplicates(t *testing.T) {
	c := newTestCache(t, &memStore{}, &fakeRemote{}, false)
	c.Initialize(context.Background())

	for _, id := range []domain.FavoriteID{3, 1, 3, 2, 1, 1, 3} {
		c.Add(id)
	}
	seen := map[domain.FavoriteID]bool{}
	for _, id := range c.GetAll() {
		if seen[id] {
			t.Fatalf("duplicate %d in %v", id, c.GetAll())
		}
		seen[id] = true
	}
}

func TestMutations_DispatchWhenEnabled(t *testing.T) {
	remote := &fakeRemote{}
	c := newTestCache(t, &memStore{}, remote, true)
	c.Initialize(context.Background())

	c.Add(1)
	c.Add(2)
	c.Remove(1)
	c.Wait()

	if got := remote.addCalls(); len(got) != 2 {
		t.Fatalf("remote Add calls = %v, want 2 calls", got)
	}
	if got := remote.removeCalls(); !reflect.DeepEqual(got, []domain.FavoriteID{1}) {
		t.Fatalf("remote Remove calls = %v, want [1]", got)
	}
}

func TestMutations_NoDispatchWhenDisabled(t *testing.T) {
	remote := &fakeRemote{}
	c := newTestCache(t, &memStore{}, remote, false)
	c.Initialize(context.Background())

	c.Add(1)
	c.Remove(1)
	c.Add(2)
	c.ClearAll()
	c.Wait()

	if len(remote.addCalls())+len(remote.removeCalls())+len(remote.replaceCalls()) != 0 {
		t.Fatal("no remote calls expected while sync is disabled")
	}
}

func TestAdd_RemoteFailureKeepsLocalState(t *testing.T) {
	store := &memStore{}
	remote := &fakeRemote{addErr: fmt.Errorf("%w: timeout", domain.ErrNetwork)}
	obs := &recordingObserver{}
	c := newTestCache(t, store, remote, true, WithObserver(obs))
	c.Initialize(context.Background())

	c.Add(5)
	c.Wait()

	if !c.IsFavorite(5) {
		t.Fatal("5 should still be a favorite after the remote failure")
	}
	if !store.stored().Contains(5) {
		t.Fatal("5 should still be persisted after the remote failure")
	}

	var addResult *domain.RemoteResult
	for _, res := range obs.remoteResults() {
		if res.Op == domain.OpAdd {
			res := res
			addResult = &res
		}
	}
	if addResult == nil || addResult.ID != 5 || !errors.Is(addResult.Err, domain.ErrNetwork) {
		t.Fatalf("observer add result = %+v, want network error for id 5", addResult)
	}
}

func TestClearAll_EnabledPushesEmptySetEvenOnFailure(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{1, 2, 3}}
	remote := &fakeRemote{server: domain.FavoriteSet{1, 2, 3}}
	c := newTestCache(t, store, remote, true)
	c.Initialize(context.Background())

	remote.mu.Lock()
	remote.replaceErr = fmt.Errorf("%w: 500", domain.ErrServer)
	remote.mu.Unlock()

	if !c.ClearAll() {
		t.Fatal("ClearAll reported nothing cleared")
	}
	c.Wait()

	if c.GetCount() != 0 {
		t.Fatalf("GetCount = %d, want 0", c.GetCount())
	}
	if got := store.stored(); len(got) != 0 {
		t.Fatalf("local store = %v, want empty", got)
	}
	replaces := remote.replaceCalls()
	if len(replaces) != 1 || len(replaces[0]) != 0 {
		t.Fatalf("ReplaceAll calls = %v, want one empty replacement", replaces)
	}
}

func TestClearAll_EmptyIsNoOp(t *testing.T) {
	asked := false
	c := newTestCache(t, &memStore{}, &fakeRemote{}, false, WithConfirmer(domain.ConfirmFunc(func(domain.ConfirmRequest) bool {
		asked = true
		return true
	})))
	c.Initialize(context.Background())

	if c.ClearAll() {
		t.Fatal("ClearAll on an empty set reported success")
	}
	if asked {
		t.Fatal("confirmer should not be asked for an empty set")
	}
}

func TestConfirmer_DeclineKeepsFavorites(t *testing.T) {
	var requests []domain.ConfirmRequest
	decline := domain.ConfirmFunc(func(req domain.ConfirmRequest) bool {
		requests = append(requests, req)
		return false
	})
	store := &memStore{ids: domain.FavoriteSet{1, 2}}
	c := newTestCache(t, store, &fakeRemote{}, false, WithConfirmer(decline))
	c.Initialize(context.Background())

	if c.Remove(1) {
		t.Fatal("Remove succeeded despite declined confirmation")
	}
	if c.ClearAll() {
		t.Fatal("ClearAll succeeded despite declined confirmation")
	}
	if got := c.Toggle(2); !got {
		t.Fatal("Toggle should report 2 still a favorite after a declined removal")
	}

	if got := c.GetAll(); !reflect.DeepEqual(got, domain.FavoriteSet{1, 2}) {
		t.Fatalf("GetAll = %v, want [1 2]", got)
	}
	want := []domain.ConfirmRequest{
		{Kind: domain.ConfirmRemove, ID: 1},
		{Kind: domain.ConfirmClearAll, Count: 2},
		{Kind: domain.ConfirmRemove, ID: 2},
	}
	if !reflect.DeepEqual(requests, want) {
		t.Fatalf("confirm requests = %+v, want %+v", requests, want)
	}
}

func TestSync_Idempotent(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{1, 2}}
	remote := &fakeRemote{server: domain.FavoriteSet{2, 3}}
	c := newTestCache(t, store, remote, true)
	c.Initialize(context.Background())

	first := c.GetAll()
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	second := c.GetAll()

	if !reflect.DeepEqual(first, domain.FavoriteSet{1, 2, 3}) {
		t.Fatalf("set after initialize = %v, want [1 2 3]", first)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second sync changed the set: %v -> %v", first, second)
	}
	if n := len(remote.replaceCalls()); n != 1 {
		t.Fatalf("ReplaceAll called %d times over two syncs, want 1", n)
	}
}

func TestSync_PushFailureStillAdoptsUnion(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{1}}
	remote := &fakeRemote{
		server:     domain.FavoriteSet{2},
		replaceErr: fmt.Errorf("%w: 503", domain.ErrServer),
	}
	c := newTestCache(t, store, remote, true)
	c.Initialize(context.Background())

	if got := c.GetAll(); !reflect.DeepEqual(got, domain.FavoriteSet{1, 2}) {
		t.Fatalf("GetAll = %v, want [1 2]", got)
	}

	// Retried on the next sync once the server recovers.
	remote.mu.Lock()
	remote.replaceErr = nil
	remote.mu.Unlock()

	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	replaces := remote.replaceCalls()
	if len(replaces) != 2 || !reflect.DeepEqual(replaces[1], domain.FavoriteSet{1, 2}) {
		t.Fatalf("ReplaceAll calls = %v, want retry with [1 2]", replaces)
	}
}

func TestSync_ReportsPushError(t *testing.T) {
	remote := &fakeRemote{server: domain.FavoriteSet{}}
	c := newTestCache(t, &memStore{ids: domain.FavoriteSet{4}}, remote, false)
	c.Initialize(context.Background())

	if err := c.Sync(context.Background()); !errors.Is(err, domain.ErrSyncDisabled) {
		t.Fatalf("Sync while disabled = %v, want ErrSyncDisabled", err)
	}

	remote.replaceErr = fmt.Errorf("%w: 500", domain.ErrServer)
	err := c.EnableSync(context.Background())
	if !errors.Is(err, domain.ErrServer) {
		t.Fatalf("EnableSync error = %v, want ErrServer", err)
	}
}

func TestSessionExpired_DisablesSync(t *testing.T) {
	remote := &fakeRemote{}
	obs := &recordingObserver{}
	c := newTestCache(t, &memStore{}, remote, true, WithObserver(obs))
	c.Initialize(context.Background())

	remote.mu.Lock()
	remote.addErr = domain.ErrSessionExpired
	remote.mu.Unlock()

	c.Add(1)
	c.Wait()

	if c.State() != domain.SyncDisabled {
		t.Fatalf("State = %v, want disabled after session expiry", c.State())
	}
	if !c.IsFavorite(1) {
		t.Fatal("local favorite lost after session expiry")
	}

	c.Add(2)
	c.Wait()
	if n := len(remote.addCalls()); n != 1 {
		t.Fatalf("remote Add called %d times, want 1 (no calls after expiry)", n)
	}

	states := obs.syncStates()
	if len(states) != 2 || states[0] != domain.SyncEnabled || states[1] != domain.SyncDisabled {
		t.Fatalf("sync states = %v, want [enabled disabled]", states)
	}
}

func TestHandleSessionChange(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{7}}
	remote := &fakeRemote{server: domain.FavoriteSet{8}}
	c := newTestCache(t, store, remote, false)
	c.Initialize(context.Background())

	c.HandleSessionChange(context.Background(), true)
	if c.State() != domain.SyncEnabled {
		t.Fatal("login should enable sync")
	}
	if got := c.GetAll(); !reflect.DeepEqual(got, domain.FavoriteSet{7, 8}) {
		t.Fatalf("GetAll after login = %v, want [7 8]", got)
	}

	c.HandleSessionChange(context.Background(), false)
	if c.State() != domain.SyncDisabled {
		t.Fatal("logout should disable sync")
	}
	if got := c.GetAll(); !reflect.DeepEqual(got, domain.FavoriteSet{7, 8}) {
		t.Fatalf("logout should keep local favorites, got %v", got)
	}
}

func TestStorageFailureKeepsMemoryState(t *testing.T) {
	store := &memStore{err: fmt.Errorf("%w: disk full", domain.ErrStorage)}
	c := newTestCache(t, store, &fakeRemote{}, false)
	c.Initialize(context.Background())

	c.Add(3)
	if !c.IsFavorite(3) {
		t.Fatal("in-memory add should succeed when persisting fails")
	}
}

func TestObserver_NotifiedOnEveryMutation(t *testing.T) {
	obs := &recordingObserver{}
	c := newTestCache(t, &memStore{}, &fakeRemote{}, false, WithObserver(obs))
	c.Initialize(context.Background())
	base := obs.changeCount()

	c.Add(1)
	c.Add(1) // no-op, no notification
	c.Toggle(2)
	c.Remove(1)
	c.ClearAll()

	if got := obs.changeCount() - base; got != 4 {
		t.Fatalf("change notifications = %d, want 4", got)
	}
}

func TestGetAll_ReturnsCopy(t *testing.T) {
	c := newTestCache(t, &memStore{ids: domain.FavoriteSet{1, 2}}, &fakeRemote{}, false)
	c.Initialize(context.Background())

	got := c.GetAll()
	got[0] = 42
	if c.IsFavorite(42) {
		t.Fatal("mutating GetAll result leaked into the cache")
	}
}

// syncWhileHeld starts Sync with the server answer held, runs mutate while
// it waits, then releases it and returns Sync's result.
func syncWhileHeld(t *testing.T, c *Cache, remote *fakeRemote, mutate func()) error {
	t.Helper()
	started, release := remote.holdNextFetch()
	done := make(chan error, 1)
	go func() { done <- c.Sync(context.Background()) }()

	<-started
	mutate()
	close(release)

	err := <-done
	c.Wait()
	return err
}

func TestSync_AddDuringFetchIsKept(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{1}}
	remote := &fakeRemote{server: domain.FavoriteSet{1}}
	c := newTestCache(t, store, remote, true)
	c.Initialize(context.Background())

	if err := syncWhileHeld(t, c, remote, func() { c.Add(5) }); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}

	want := domain.FavoriteSet{1, 5}
	if got := c.GetAll(); !reflect.DeepEqual(got, want) {
		t.Fatalf("GetAll = %v, want %v", got, want)
	}
	if got := store.stored(); !reflect.DeepEqual(got, want) {
		t.Fatalf("local store = %v, want %v", got, want)
	}
	if got := remote.serverSet(); !got.SameMembers(want) {
		t.Fatalf("server = %v, want %v", got, want)
	}
}

func TestSync_RemoveDuringFetchSticks(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{1, 2, 3}}
	remote := &fakeRemote{server: domain.FavoriteSet{1, 2, 3}}
	c := newTestCache(t, store, remote, true)
	c.Initialize(context.Background())

	err := syncWhileHeld(t, c, remote, func() {
		if !c.Remove(2) {
			t.Error("Remove(2) during sync reported no removal")
		}
	})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}

	want := domain.FavoriteSet{1, 3}
	if got := c.GetAll(); !reflect.DeepEqual(got, want) {
		t.Fatalf("GetAll = %v, want %v", got, want)
	}
	if got := store.stored(); !reflect.DeepEqual(got, want) {
		t.Fatalf("local store = %v, want %v", got, want)
	}
	if got := remote.serverSet(); !got.SameMembers(want) {
		t.Fatalf("server = %v, want %v", got, want)
	}

	// A later sync has nothing left to reconcile.
	pushes := len(remote.replaceCalls())
	if err := c.Sync(context.Background()); err != nil {
		t.Fatalf("second Sync returned error: %v", err)
	}
	if got := c.GetAll(); !reflect.DeepEqual(got, want) {
		t.Fatalf("GetAll after second Sync = %v, want %v", got, want)
	}
	if len(remote.replaceCalls()) != pushes {
		t.Fatal("second Sync should not push")
	}
}

func TestSync_ClearAllDuringFetchSticks(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{1, 2}}
	remote := &fakeRemote{server: domain.FavoriteSet{2, 3}}
	c := newTestCache(t, store, remote, true)
	c.Initialize(context.Background())
	remote.setServer(domain.FavoriteSet{1, 2, 3, 4}) // 4 added from another device

	err := syncWhileHeld(t, c, remote, func() {
		if !c.ClearAll() {
			t.Error("ClearAll during sync reported nothing cleared")
		}
	})
	if err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}

	if got := c.GetAll(); len(got) != 0 {
		t.Fatalf("GetAll after ClearAll = %v, want empty", got)
	}
	if got := store.stored(); len(got) != 0 {
		t.Fatalf("local store after ClearAll = %v, want empty", got)
	}
	if got := remote.serverSet(); len(got) != 0 {
		t.Fatalf("server after ClearAll = %v, want empty", got)
	}
}

func TestAdd_BeforeInitializeKeepsStoredFavorites(t *testing.T) {
	store := &memStore{ids: domain.FavoriteSet{1, 2}}
	c := newTestCache(t, store, &fakeRemote{}, false)

	c.Add(3)
	c.Initialize(context.Background())

	want := domain.FavoriteSet{1, 2, 3}
	if got := c.GetAll(); !reflect.DeepEqual(got, want) {
		t.Fatalf("GetAll = %v, want %v", got, want)
	}
	if got := store.stored(); !reflect.DeepEqual(got, want) {
		t.Fatalf("local store = %v, want %v", got, want)
	}
}

func TestToggle_ReportsRemovalByAnotherCaller(t *testing.T) {
	var c *Cache
	asked := 0
	// The first confirmation races a removal of the same id and declines.
	confirmer := domain.ConfirmFunc(func(req domain.ConfirmRequest) bool {
		asked++
		if asked == 1 {
			c.Remove(req.ID)
			return false
		}
		return true
	})
	c = newTestCache(t, &memStore{ids: domain.FavoriteSet{7}}, &fakeRemote{}, false, WithConfirmer(confirmer))
	c.Initialize(context.Background())

	if c.Toggle(7) {
		t.Fatal("Toggle reported 7 as a favorite after it was removed")
	}
	if c.IsFavorite(7) {
		t.Fatal("7 should be gone")
	}
}
