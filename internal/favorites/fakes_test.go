package favorites

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/mmcdole/atelier/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory domain.FavoritesStore
type memStore struct {
	mu    sync.Mutex
	ids   domain.FavoriteSet
	saves int
	err   error
}

func (s *memStore) LoadFavorites() domain.FavoriteSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids.Clone()
}

func (s *memStore) SaveFavorites(ids domain.FavoriteSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.err != nil {
		return s.err
	}
	s.ids = ids.Clone()
	return nil
}

func (s *memStore) stored() domain.FavoriteSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ids.Clone()
}

// fakeRemote records calls and plays back configured results
type fakeRemote struct {
	mu sync.Mutex

	server domain.FavoriteSet

	fetchErr   error
	addErr     error
	removeErr  error
	replaceErr error

	fetches  int
	adds     []domain.FavoriteID
	removes  []domain.FavoriteID
	replaces []domain.FavoriteSet

	gate *fetchGate
}

// fetchGate holds one FetchAll response after the server set was read
type fetchGate struct {
	started chan struct{}
	release chan struct{}
}

// holdNextFetch makes the next FetchAll read the server set, signal started
// and wait for release before answering.
func (r *fakeRemote) holdNextFetch() (started <-chan struct{}, release chan<- struct{}) {
	g := &fetchGate{started: make(chan struct{}, 1), release: make(chan struct{})}
	r.mu.Lock()
	r.gate = g
	r.mu.Unlock()
	return g.started, g.release
}

func (r *fakeRemote) FetchAll(ctx context.Context) (domain.FavoriteSet, error) {
	r.mu.Lock()
	r.fetches++
	err := r.fetchErr
	snapshot := r.server.Clone()
	gate := r.gate
	r.gate = nil
	r.mu.Unlock()

	if gate != nil {
		gate.started <- struct{}{}
		<-gate.release
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *fakeRemote) serverSet() domain.FavoriteSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.server.Clone()
}

func (r *fakeRemote) setServer(ids domain.FavoriteSet) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.server = ids.Clone()
}

func (r *fakeRemote) Add(ctx context.Context, id domain.FavoriteID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adds = append(r.adds, id)
	if r.addErr != nil {
		return r.addErr
	}
	if !r.server.Contains(id) {
		r.server = append(r.server, id)
	}
	return nil
}

func (r *fakeRemote) Remove(ctx context.Context, id domain.FavoriteID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removes = append(r.removes, id)
	if r.removeErr != nil {
		return r.removeErr
	}
	if idx := r.server.IndexOf(id); idx >= 0 {
		r.server = append(r.server[:idx:idx], r.server[idx+1:]...)
	}
	return nil
}

func (r *fakeRemote) ReplaceAll(ctx context.Context, ids domain.FavoriteSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaces = append(r.replaces, ids.Clone())
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.server = ids.Clone()
	return nil
}

func (r *fakeRemote) replaceCalls() []domain.FavoriteSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FavoriteSet(nil), r.replaces...)
}

func (r *fakeRemote) addCalls() []domain.FavoriteID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FavoriteID(nil), r.adds...)
}

func (r *fakeRemote) removeCalls() []domain.FavoriteID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.FavoriteID(nil), r.removes...)
}

func (r *fakeRemote) fetchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}

type fakeSession bool

func (s fakeSession) IsAuthenticated() bool { return bool(s) }

// recordingObserver captures notifications
type recordingObserver struct {
	mu      sync.Mutex
	changes []domain.FavoriteSet
	states  []domain.SyncState
	results []domain.RemoteResult
}

func (o *recordingObserver) OnFavoritesChanged(ids domain.FavoriteSet) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changes = append(o.changes, ids)
}

func (o *recordingObserver) OnSyncStateChanged(state domain.SyncState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states = append(o.states, state)
}

func (o *recordingObserver) OnRemoteResult(res domain.RemoteResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, res)
}

func (o *recordingObserver) remoteResults() []domain.RemoteResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.RemoteResult(nil), o.results...)
}

func (o *recordingObserver) changeCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.changes)
}

func (o *recordingObserver) syncStates() []domain.SyncState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.SyncState(nil), o.states...)
}
