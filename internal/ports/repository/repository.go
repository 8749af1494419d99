package repository

import (
	"context"
	"time"

	"timesheet.service/internal/core/model"
)

// ApprovalFilter narrows ApproveAll to one client and/or one consultant.
// Empty fields match everything.
type ApprovalFilter struct {
	ClientID     string
	ConsultantID string
}

// Repository is the entry store contract.
type Repository interface {
	GetEntry(ctx context.Context, id int64) (*model.TimeEntry, error)
	ListByConsultantDate(ctx context.Context, consultantID string, date model.Date) ([]model.TimeEntry, error)
	ListByConsultantMonth(ctx context.Context, consultantID string, year int, month time.Month) ([]model.TimeEntry, error)
	ListByDate(ctx context.Context, date model.Date) ([]model.TimeEntry, error)

	CreateEntry(ctx context.Context, e *model.TimeEntry) (int64, error)
	// UpdateEntry persists every mutable field of e. The row is only
	// written while its stored updated_on still equals expectedUpdatedOn;
	// otherwise ErrConflict is returned and nothing changes.
	UpdateEntry(ctx context.Context, e *model.TimeEntry, expectedUpdatedOn time.Time) error
	DeleteEntry(ctx context.Context, id int64) error

	// SubmitDay atomically moves every OPEN or REJECTED entry of the
	// consultant-day to SUBMITTED with the lock flag set and rejection
	// notes cleared, returning the ids transitioned. Zero ids is a valid
	// no-op.
	SubmitDay(ctx context.Context, consultantID string, date model.Date) ([]int64, error)
	// ApproveAll atomically moves every SUBMITTED entry on date matching
	// the filter to APPROVED, returning the count and the distinct
	// consultants whose entries were transitioned, so callers can drop
	// every affected projection.
	ApproveAll(ctx context.Context, date model.Date, filter ApprovalFilter) (int64, []string, error)
}
