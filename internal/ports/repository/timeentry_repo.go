package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"timesheet.service/internal/core/model"
)

// TimeEntryRepository is the concrete implementation for a PostgreSQL database.
type TimeEntryRepository struct {
	DB *sql.DB
}

// NewTimeEntryRepository creates a new instance.
func NewTimeEntryRepository(db *sql.DB) Repository {
	return &TimeEntryRepository{DB: db}
}

const entryColumns = `id, consultant_id, client_id, project_id, task, entry_date,
       client_hours, internal_hours, other_hours, notes,
       status, locked, rejection_notes, created_on, updated_on`

// scanEntry reads one row into a TimeEntry, converting the stored date
// column back to a pure calendar date.
func scanEntry(row interface{ Scan(...any) error }) (*model.TimeEntry, error) {
	var (
		e         model.TimeEntry
		entryDate time.Time
	)
	err := row.Scan(
		&e.ID, &e.ConsultantID, &e.ClientID, &e.ProjectID, &e.Task, &entryDate,
		&e.ClientHours, &e.InternalHours, &e.OtherHours, &e.Notes,
		&e.Status, &e.Locked, &e.RejectionNotes, &e.CreatedOn, &e.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	e.EntryDate = model.DateOf(entryDate)
	return &e, nil
}

// GetEntry fetches a complete time_entries record by its id.
func (r *TimeEntryRepository) GetEntry(ctx context.Context, id int64) (*model.TimeEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM time_entries WHERE id = $1`

	e, err := scanEntry(r.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying time entry %d: %w", id, err)
	}
	return e, nil
}

// ListByConsultantDate lists a consultant's entries for one calendar day.
func (r *TimeEntryRepository) ListByConsultantDate(ctx context.Context, consultantID string, date model.Date) ([]model.TimeEntry, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.consultant_id", consultantID))

	query := `SELECT ` + entryColumns + `
              FROM time_entries
              WHERE consultant_id = $1 AND entry_date = $2
              ORDER BY id`
	return r.listEntries(ctx, query, consultantID, date.String())
}

// ListByConsultantMonth lists a consultant's entries for a calendar month.
func (r *TimeEntryRepository) ListByConsultantMonth(ctx context.Context, consultantID string, year int, month time.Month) ([]model.TimeEntry, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.consultant_id", consultantID))

	first := model.Date{Year: year, Month: month, Day: 1}
	next := model.DateOf(first.Time(time.UTC).AddDate(0, 1, 0))

	query := `SELECT ` + entryColumns + `
              FROM time_entries
              WHERE consultant_id = $1 AND entry_date >= $2 AND entry_date < $3
              ORDER BY entry_date, id`
	return r.listEntries(ctx, query, consultantID, first.String(), next.String())
}

// ListByDate lists every consultant's entries for one day, for admin review.
func (r *TimeEntryRepository) ListByDate(ctx context.Context, date model.Date) ([]model.TimeEntry, error) {
	query := `SELECT ` + entryColumns + `
              FROM time_entries
              WHERE entry_date = $1
              ORDER BY consultant_id, id`
	return r.listEntries(ctx, query, date.String())
}

func (r *TimeEntryRepository) listEntries(ctx context.Context, query string, args ...any) ([]model.TimeEntry, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing time entries: %w", err)
	}
	defer rows.Close()

	var entries []model.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning time entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// CreateEntry inserts a new entry and returns its assigned id.
func (r *TimeEntryRepository) CreateEntry(ctx context.Context, e *model.TimeEntry) (int64, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.consultant_id", e.ConsultantID))

	var id int64
	query := `INSERT INTO time_entries
              (consultant_id, client_id, project_id, task, entry_date,
               client_hours, internal_hours, other_hours, notes,
               status, locked, rejection_notes, created_on, updated_on)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
              RETURNING id`

	err := r.DB.QueryRowContext(ctx, query,
		e.ConsultantID, e.ClientID, e.ProjectID, e.Task, e.EntryDate.String(),
		e.ClientHours, e.InternalHours, e.OtherHours, e.Notes,
		e.Status, e.Locked, e.RejectionNotes, e.CreatedOn, e.UpdatedOn,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting time entry: %w", err)
	}
	return id, nil
}

// UpdateEntry writes every mutable field, guarded by the updated_on check
// so two actors racing on the same row produce a detectable conflict rather
// than a silent last-write-wins.
func (r *TimeEntryRepository) UpdateEntry(ctx context.Context, e *model.TimeEntry, expectedUpdatedOn time.Time) error {
	query := `UPDATE time_entries
              SET client_id = $1, project_id = $2, task = $3, entry_date = $4,
                  client_hours = $5, internal_hours = $6, other_hours = $7, notes = $8,
                  status = $9, locked = $10, rejection_notes = $11, updated_on = $12
              WHERE id = $13 AND updated_on = $14`

	res, err := r.DB.ExecContext(ctx, query,
		e.ClientID, e.ProjectID, e.Task, e.EntryDate.String(),
		e.ClientHours, e.InternalHours, e.OtherHours, e.Notes,
		e.Status, e.Locked, e.RejectionNotes, e.UpdatedOn,
		e.ID, expectedUpdatedOn,
	)
	if err != nil {
		return fmt.Errorf("updating time entry %d: %w", e.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating time entry %d: %w", e.ID, err)
	}
	if affected == 0 {
		// Distinguish a missing row from a version mismatch.
		var exists bool
		if err := r.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM time_entries WHERE id = $1)`, e.ID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("checking time entry %d: %w", e.ID, err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}

// DeleteEntry removes a row permanently. There is no soft delete.
func (r *TimeEntryRepository) DeleteEntry(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM time_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting time entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting time entry %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SubmitDay transitions the whole consultant-day in one statement, so other
// actors never observe a half-submitted day.
func (r *TimeEntryRepository) SubmitDay(ctx context.Context, consultantID string, date model.Date) ([]int64, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.consultant_id", consultantID))

	query := `UPDATE time_entries
              SET status = $1, locked = TRUE, rejection_notes = NULL, updated_on = NOW()
              WHERE consultant_id = $2 AND entry_date = $3 AND status IN ($4, $5)
              RETURNING id`

	rows, err := r.DB.QueryContext(ctx, query,
		model.StatusSubmitted, consultantID, date.String(),
		model.StatusOpen, model.StatusRejected,
	)
	if err != nil {
		return nil, fmt.Errorf("submitting day %s: %w", date, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("submitting day %s: %w", date, err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ApproveAll transitions every SUBMITTED entry matching the filter in one
// statement, reporting how many rows moved and which consultants they
// belonged to.
func (r *TimeEntryRepository) ApproveAll(ctx context.Context, date model.Date, filter ApprovalFilter) (int64, []string, error) {
	query := `UPDATE time_entries
              SET status = $1, locked = TRUE, updated_on = NOW()
              WHERE entry_date = $2 AND status = $3
                AND ($4 = '' OR client_id = $4)
                AND ($5 = '' OR consultant_id = $5)
              RETURNING consultant_id`

	rows, err := r.DB.QueryContext(ctx, query,
		model.StatusApproved, date.String(), model.StatusSubmitted,
		filter.ClientID, filter.ConsultantID,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("approving day %s: %w", date, err)
	}
	defer rows.Close()

	var (
		count       int64
		consultants []string
		seen        = map[string]struct{}{}
	)
	for rows.Next() {
		var consultantID string
		if err := rows.Scan(&consultantID); err != nil {
			return 0, nil, fmt.Errorf("approving day %s: %w", date, err)
		}
		count++
		if _, ok := seen[consultantID]; !ok {
			seen[consultantID] = struct{}{}
			consultants = append(consultants, consultantID)
		}
	}
	return count, consultants, rows.Err()
}
