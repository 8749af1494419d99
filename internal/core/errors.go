package core

import (
	"errors"

	"timesheet.service/internal/core/model"
)

var (
	// ErrDayLocked indicates an attempted create/edit/delete/submit on a
	// day or entry the lock policy marks locked. Nothing was mutated.
	ErrDayLocked = errors.New("day is locked for changes")
	// ErrNotOwner indicates the acting consultant does not own the entry.
	ErrNotOwner = errors.New("entry belongs to another consultant")
)

// TransitionError reports an illegal status change, such as approving an
// entry that was never submitted.
type TransitionError struct {
	Op     string
	From   model.EntryStatus
	Reason string
}

func (e *TransitionError) Error() string {
	msg := "cannot " + e.Op + " entry"
	if e.From != "" {
		msg += " in status " + string(e.From)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
