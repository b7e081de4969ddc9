package domain

import "fmt"

// ConfirmKind identifies a destructive favorites action
type ConfirmKind int

const (
	ConfirmRemove ConfirmKind = iota
	ConfirmClearAll
)

// ConfirmRequest describes what is about to be removed.
type ConfirmRequest struct {
	Kind  ConfirmKind
	ID    FavoriteID // ConfirmRemove only
	Count int        // ConfirmClearAll only
}

// Prompt returns the question shown to the user
func (r ConfirmRequest) Prompt() string {
	if r.Kind == ConfirmClearAll {
		return fmt.Sprintf("Remove all %d favorites?", r.Count)
	}
	return fmt.Sprintf("Remove artwork %d from favorites?", r.ID)
}

// Confirmer asks the user to approve a destructive action.
// The favorites cache calls it without holding any lock.
type Confirmer interface {
	Confirm(req ConfirmRequest) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(req ConfirmRequest) bool

func (f ConfirmFunc) Confirm(req ConfirmRequest) bool { return f(req) }

// AlwaysConfirm approves every request
var AlwaysConfirm = ConfirmFunc(func(ConfirmRequest) bool { return true })
