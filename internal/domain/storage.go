package domain

// RemoteOp names a call made against the favorites resource
type RemoteOp string

const (
	OpFetchAll   RemoteOp = "fetch_all"
	OpAdd        RemoteOp = "add"
	OpRemove     RemoteOp = "remove"
	OpReplaceAll RemoteOp = "replace_all"
)

// RemoteResult reports the outcome of a remote favorites call.
type RemoteResult struct {
	Op    RemoteOp
	ID    FavoriteID // zero for set-wide operations
	Count int        // set size for FetchAll / ReplaceAll
	Err   error
}

// FavoritesObserver receives favorites updates. Calls are synchronous and
// happen after the local state change has been applied.
type FavoritesObserver interface {
	OnFavoritesChanged(ids FavoriteSet)
	OnSyncStateChanged(state SyncState)
	OnRemoteResult(result RemoteResult)
}

// NoOpObserver discards updates (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnFavoritesChanged(FavoriteSet) {}
func (NoOpObserver) OnSyncStateChanged(SyncState) {}
func (NoOpObserver) OnRemoteResult(RemoteResult) {}
