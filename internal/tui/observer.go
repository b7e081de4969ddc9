package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/atelier/internal/domain"
)

// busMsg wraps messages that arrive from outside the Bubble Tea loop so the
// model knows to keep listening.
type busMsg struct {
	inner tea.Msg
}

// ChannelObserver adapts favorites, session and confirmation callbacks to a
// channel for Bubble Tea. It implements domain.FavoritesObserver and
// domain.Confirmer.
type ChannelObserver struct {
	ch   chan tea.Msg
	done chan struct{}
	once sync.Once
}

// NewChannelObserver creates an observer with the given buffer size
func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{
		ch:   make(chan tea.Msg, buffer),
		done: make(chan struct{}),
	}
}

// OnFavoritesChanged notifies the model (non-blocking if channel full).
// The model reads the set back from the cache, so a dropped update is
// covered by the next one.
func (o *ChannelObserver) OnFavoritesChanged(ids domain.FavoriteSet) {
	o.publish(FavoritesChangedMsg{IDs: ids.Clone()})
}

// OnSyncStateChanged notifies the model (non-blocking if channel full)
func (o *ChannelObserver) OnSyncStateChanged(state domain.SyncState) {
	o.publish(SyncStateMsg{State: state})
}

// OnRemoteResult notifies the model (non-blocking if channel full)
func (o *ChannelObserver) OnRemoteResult(result domain.RemoteResult) {
	o.publish(RemoteResultMsg{Result: result})
}

// OnSessionChanged is a session.Listener
func (o *ChannelObserver) OnSessionChanged(authenticated bool) {
	o.publish(SessionChangedMsg{Authenticated: authenticated})
}

// Close releases anyone blocked on the observer
func (o *ChannelObserver) Close() {
	o.once.Do(func() { close(o.done) })
}

func (o *ChannelObserver) publish(msg tea.Msg) {
	select {
	case o.ch <- msg:
	default: // Non-blocking if channel full
	}
}

// listen waits for the next message from outside the loop
func (o *ChannelObserver) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-o.ch:
			return busMsg{inner: msg}
		case <-o.done:
			return nil
		}
	}
}
