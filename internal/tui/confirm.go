package tui

import "github.com/mmcdole/atelier/internal/domain"

// Confirm asks the user through the confirm modal and blocks until they
// answer. It must not be called from the Bubble Tea loop itself; the
// favorites commands run in their own goroutines.
func (o *ChannelObserver) Confirm(req domain.ConfirmRequest) bool {
	reply := make(chan bool, 1)
	select {
	case o.ch <- ConfirmRequestMsg{Request: req, reply: reply}:
	case <-o.done:
		return false
	}

	select {
	case yes := <-reply:
		return yes
	case <-o.done:
		return false
	}
}
