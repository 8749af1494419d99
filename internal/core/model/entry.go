package model

import (
	"time"
)

// EntryStatus is the workflow state of a time entry.
type EntryStatus string

const (
	StatusOpen      EntryStatus = "OPEN"
	StatusSubmitted EntryStatus = "SUBMITTED"
	StatusRejected  EntryStatus = "REJECTED"
	StatusApproved  EntryStatus = "APPROVED"
)

// MaxDayHours caps the sum of the three hour fields on a single entry.
const MaxDayHours = 24.0

// TimeEntry is one logged-hours record for a consultant, date and client.
type TimeEntry struct {
	ID           int64   `json:"id"`
	ConsultantID string  `json:"consultantId"`
	ClientID     string  `json:"clientId"`
	ProjectID    *string `json:"projectId,omitempty"`
	Task         string  `json:"task,omitempty"`
	EntryDate    Date    `json:"entryDate"`

	// Hours are split by who they are billable to. Each field is a
	// multiple of 0.5 and the three together never exceed MaxDayHours.
	ClientHours   float64 `json:"clientHours"`
	InternalHours float64 `json:"internalHours"`
	OtherHours    float64 `json:"otherHours"`

	// Notes are required when the entry has no project.
	Notes string `json:"notes,omitempty"`

	Status EntryStatus `json:"status"`
	Locked bool        `json:"locked"`

	// RejectionNotes is set exactly while Status is REJECTED.
	RejectionNotes *string `json:"rejectionNotes,omitempty"`

	CreatedOn time.Time `json:"createdOn"`
	UpdatedOn time.Time `json:"updatedOn"`
}

// TotalHours is the sum of the three hour buckets.
func (e *TimeEntry) TotalHours() float64 {
	return e.ClientHours + e.InternalHours + e.OtherHours
}

// CurrentlyLocked is the canonical lock predicate for a single entry. The
// explicit flag and the status-derived convention are collapsed here: an
// entry is locked when either says so.
func (e *TimeEntry) CurrentlyLocked() bool {
	return e.Locked || e.Status == StatusSubmitted || e.Status == StatusApproved
}

// LockConsistent reports whether the lock flag agrees with the status
// convention. A SUBMITTED or APPROVED entry is expected to carry the flag; a
// mismatch is a data-integrity problem the caller must report rather than
// silently repair.
func (e *TimeEntry) LockConsistent() bool {
	switch e.Status {
	case StatusSubmitted, StatusApproved:
		return e.Locked
	default:
		return true
	}
}

// Editable reports whether the status alone permits consultant edits.
func (e *TimeEntry) Editable() bool {
	return e.Status == StatusOpen || e.Status == StatusRejected
}
