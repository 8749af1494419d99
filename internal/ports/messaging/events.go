package messaging

import "time"

// Notification event types carried on the notification queue.
const (
	TypeRejection = "ENTRY_REJECTED"
	TypeReminder  = "SUBMIT_REMINDER"
)

// RejectionEvent is the JSON payload published when an approver rejects an
// entry. Delivery is fire-and-forget: the Reject transition never rolls
// back on a publish failure.
type RejectionEvent struct {
	EntryID        int64     `json:"entryId"`
	ConsultantID   string    `json:"consultantId"`
	ClientID       string    `json:"clientId"`
	ProjectID      *string   `json:"projectId,omitempty"`
	EntryDate      string    `json:"entryDate"`
	RejectionNotes string    `json:"rejectionNotes"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// ReminderEvent is the JSON payload published for consultants who still
// hold unsubmitted entries when a week is about to close.
type ReminderEvent struct {
	ConsultantID   string    `json:"consultantId"`
	WeekEnding     string    `json:"weekEnding"`
	PendingEntries int       `json:"pendingEntries"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// Envelope wraps one event with its type so a single queue can carry both.
type Envelope struct {
	Type      string          `json:"type"`
	Rejection *RejectionEvent `json:"rejection,omitempty"`
	Reminder  *ReminderEvent  `json:"reminder,omitempty"`
}
