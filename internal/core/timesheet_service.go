package core

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"timesheet.service/internal/core/lock"
	"timesheet.service/internal/core/model"
	"timesheet.service/internal/ports/messaging"
	"timesheet.service/internal/ports/repository"
	"timesheet.service/internal/ports/settings"
)

// AggregateCache is the projection cache consumed by the service. A nil
// cache disables caching entirely.
type AggregateCache interface {
	GetMonth(ctx context.Context, consultantID string, year int, month time.Month) (model.MonthAggregate, bool)
	SetMonth(ctx context.Context, consultantID string, year int, month time.Month, agg model.MonthAggregate)
	InvalidateMonth(ctx context.Context, consultantID string, year int, month time.Month)
}

// TimesheetService owns the entry lifecycle: the status state machine, the
// lock policy gating every mutation, the bulk day operations and the
// calendar projection.
type TimesheetService struct {
	repo     repository.Repository
	producer messaging.Producer
	settings settings.Client
	cache    AggregateCache
	now      func() time.Time
}

// NewTimesheetService wires the service to its collaborators. cache may be
// nil.
func NewTimesheetService(repo repository.Repository, producer messaging.Producer, settingsClient settings.Client, cache AggregateCache) *TimesheetService {
	return &TimesheetService{
		repo:     repo,
		producer: producer,
		settings: settingsClient,
		cache:    cache,
		now:      storedNow,
	}
}

// storedNow is the service clock. timestamptz columns hold microseconds,
// so the clock is truncated to match: an updatedOn echoed back by a client
// must compare equal to the value the row actually stores.
func storedNow() time.Time {
	return time.Now().Truncate(time.Microsecond)
}

// EntryInput carries the consultant-editable fields of an entry.
type EntryInput struct {
	ClientID      string     `json:"clientId"`
	ProjectID     *string    `json:"projectId,omitempty"`
	Task          string     `json:"task,omitempty"`
	EntryDate     model.Date `json:"entryDate"`
	ClientHours   float64    `json:"clientHours"`
	InternalHours float64    `json:"internalHours"`
	OtherHours    float64    `json:"otherHours"`
	Notes         string     `json:"notes,omitempty"`
}

// DayView is a day's entries plus whether the day currently accepts edits.
type DayView struct {
	Date     model.Date        `json:"date"`
	Editable bool              `json:"editable"`
	Entries  []model.TimeEntry `json:"entries"`
}

// SubmitResult reports what a SubmitDay call transitioned. A zero count is
// informational, not an error.
type SubmitResult struct {
	Date     model.Date `json:"date"`
	Count    int        `json:"count"`
	EntryIDs []int64    `json:"entryIds,omitempty"`
}

// lockContext assembles a fresh lock evaluation context. The global flag is
// re-fetched on every call; lock decisions are never reused across
// requests.
func (s *TimesheetService) lockContext(ctx context.Context) lock.Context {
	return lock.Context{
		Now:            s.now(),
		CalendarLocked: s.settings.CalendarLocked(ctx),
	}
}

// reportIntegrity logs an entry whose lock flag disagrees with its status.
// The mismatch is surfaced, never silently normalized.
func reportIntegrity(ctx context.Context, e *model.TimeEntry) {
	if !e.LockConsistent() {
		log.Ctx(ctx).Error().
			Int64("entry_id", e.ID).
			Str("status", string(e.Status)).
			Bool("locked", e.Locked).
			Msg("Lock flag inconsistent with status")
	}
}

// Create logs a new entry in OPEN status for the given consultant.
func (s *TimesheetService) Create(ctx context.Context, consultantID string, in EntryInput) (*model.TimeEntry, error) {
	now := s.now()
	entry := &model.TimeEntry{
		ConsultantID:  consultantID,
		ClientID:      in.ClientID,
		ProjectID:     in.ProjectID,
		Task:          in.Task,
		EntryDate:     in.EntryDate,
		ClientHours:   in.ClientHours,
		InternalHours: in.InternalHours,
		OtherHours:    in.OtherHours,
		Notes:         in.Notes,
		Status:        model.StatusOpen,
		Locked:        false,
		CreatedOn:     now,
		UpdatedOn:     now,
	}

	if err := model.ValidateEntry(entry); err != nil {
		return nil, err
	}
	if lock.IsLocked(s.lockContext(ctx), entry.EntryDate, nil) {
		return nil, ErrDayLocked
	}

	id, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id

	s.invalidate(ctx, consultantID, entry.EntryDate)
	return entry, nil
}

// Update edits an entry's fields while it is OPEN or REJECTED and the day
// is unlocked. The status is left untouched. expectedUpdatedOn guards
// against a concurrent writer; pass the zero time to use the stored value.
func (s *TimesheetService) Update(ctx context.Context, consultantID string, id int64, in EntryInput, expectedUpdatedOn time.Time) (*model.TimeEntry, error) {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	reportIntegrity(ctx, entry)

	if entry.ConsultantID != consultantID {
		return nil, ErrNotOwner
	}
	if !entry.Editable() {
		return nil, &TransitionError{Op: "edit", From: entry.Status}
	}
	if lock.IsLocked(s.lockContext(ctx), entry.EntryDate, entry) {
		return nil, ErrDayLocked
	}
	if !expectedUpdatedOn.IsZero() && !expectedUpdatedOn.Equal(entry.UpdatedOn) {
		return nil, repository.ErrConflict
	}

	prevDate := entry.EntryDate
	prevUpdated := entry.UpdatedOn

	entry.ClientID = in.ClientID
	entry.ProjectID = in.ProjectID
	entry.Task = in.Task
	entry.EntryDate = in.EntryDate
	entry.ClientHours = in.ClientHours
	entry.InternalHours = in.InternalHours
	entry.OtherHours = in.OtherHours
	entry.Notes = in.Notes
	entry.UpdatedOn = s.now()

	if err := model.ValidateEntry(entry); err != nil {
		return nil, err
	}
	if !prevDate.Equal(entry.EntryDate) && lock.IsLocked(s.lockContext(ctx), entry.EntryDate, nil) {
		return nil, ErrDayLocked
	}

	if err := s.repo.UpdateEntry(ctx, entry, prevUpdated); err != nil {
		return nil, err
	}

	s.invalidate(ctx, consultantID, prevDate)
	s.invalidate(ctx, consultantID, entry.EntryDate)
	return entry, nil
}

// Delete removes an entry permanently. Owners may delete OPEN, SUBMITTED or
// REJECTED entries on non-future days; a privileged actor may delete any
// entry, APPROVED included, as an explicit override.
func (s *TimesheetService) Delete(ctx context.Context, consultantID string, id int64, privileged bool) error {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return err
	}
	reportIntegrity(ctx, entry)

	if !privileged {
		if entry.ConsultantID != consultantID {
			return ErrNotOwner
		}
		if entry.Status == model.StatusApproved {
			return &TransitionError{Op: "delete", From: entry.Status}
		}
		if entry.EntryDate.After(model.DateOf(s.now())) {
			return ErrDayLocked
		}
	} else if entry.Status == model.StatusApproved {
		log.Ctx(ctx).Warn().
			Int64("entry_id", id).
			Str("consultant_id", entry.ConsultantID).
			Msg("Approved entry deleted by privileged override")
	}

	if err := s.repo.DeleteEntry(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, entry.ConsultantID, entry.EntryDate)
	return nil
}

// Day returns a consultant's entries for one day together with the day's
// editability, so edit controls can be gated in one round trip.
func (s *TimesheetService) Day(ctx context.Context, consultantID string, date model.Date) (*DayView, error) {
	entries, err := s.repo.ListByConsultantDate(ctx, consultantID, date)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		reportIntegrity(ctx, &entries[i])
	}

	return &DayView{
		Date:     date,
		Editable: !lock.IsLocked(s.lockContext(ctx), date, nil),
		Entries:  entries,
	}, nil
}

// Month lists a consultant's entries for a calendar month.
func (s *TimesheetService) Month(ctx context.Context, consultantID string, year int, month time.Month) ([]model.TimeEntry, error) {
	return s.repo.ListByConsultantMonth(ctx, consultantID, year, month)
}

// AdminDay lists every consultant's entries for one day, for approver
// review.
func (s *TimesheetService) AdminDay(ctx context.Context, date model.Date) ([]model.TimeEntry, error) {
	entries, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		reportIntegrity(ctx, &entries[i])
	}
	return entries, nil
}

// SubmitDay submits every OPEN and REJECTED entry of the consultant-day as
// one atomic operation. Future days cannot be submitted.
func (s *TimesheetService) SubmitDay(ctx context.Context, consultantID string, date model.Date) (*SubmitResult, error) {
	if date.After(model.DateOf(s.now())) {
		return nil, ErrDayLocked
	}

	ids, err := s.repo.SubmitDay(ctx, consultantID, date)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		log.Ctx(ctx).Info().
			Str("consultant_id", consultantID).
			Str("date", date.String()).
			Msg("Submit day found no eligible entries")
	}

	s.invalidate(ctx, consultantID, date)
	return &SubmitResult{Date: date, Count: len(ids), EntryIDs: ids}, nil
}

// Approve moves a single SUBMITTED entry to APPROVED.
func (s *TimesheetService) Approve(ctx context.Context, id int64) (*model.TimeEntry, error) {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	reportIntegrity(ctx, entry)

	if entry.Status != model.StatusSubmitted {
		return nil, &TransitionError{Op: "approve", From: entry.Status, Reason: "only submitted entries can be approved"}
	}

	prevUpdated := entry.UpdatedOn
	entry.Status = model.StatusApproved
	entry.Locked = true
	entry.UpdatedOn = s.now()

	if err := s.repo.UpdateEntry(ctx, entry, prevUpdated); err != nil {
		return nil, err
	}

	s.invalidate(ctx, entry.ConsultantID, entry.EntryDate)
	return entry, nil
}

// ApproveAll approves every SUBMITTED entry on date matching the filter in
// one atomic operation and returns the count. Zero matches is a no-op.
// Every consultant whose entries moved gets their month projection dropped.
func (s *TimesheetService) ApproveAll(ctx context.Context, date model.Date, filter repository.ApprovalFilter) (int64, error) {
	count, consultants, err := s.repo.ApproveAll(ctx, date, filter)
	if err != nil {
		return 0, err
	}
	for _, consultantID := range consultants {
		s.invalidate(ctx, consultantID, date)
	}
	return count, nil
}

// Reject moves an entry to REJECTED with the given notes, clears its lock
// so the owner can revise, and publishes a notification. The notification
// is fire-and-forget: a publish failure never rolls the rejection back.
func (s *TimesheetService) Reject(ctx context.Context, id int64, notes string) (*model.TimeEntry, error) {
	if strings.TrimSpace(notes) == "" {
		return nil, &TransitionError{Op: "reject", Reason: "rejection notes are required"}
	}

	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	reportIntegrity(ctx, entry)

	if entry.Status == model.StatusRejected {
		return nil, &TransitionError{Op: "reject", From: entry.Status, Reason: "entry is already rejected"}
	}

	prevUpdated := entry.UpdatedOn
	entry.Status = model.StatusRejected
	entry.Locked = false
	entry.RejectionNotes = &notes
	entry.UpdatedOn = s.now()

	if err := s.repo.UpdateEntry(ctx, entry, prevUpdated); err != nil {
		return nil, err
	}

	s.invalidate(ctx, entry.ConsultantID, entry.EntryDate)

	event := messaging.RejectionEvent{
		EntryID:        entry.ID,
		ConsultantID:   entry.ConsultantID,
		ClientID:       entry.ClientID,
		ProjectID:      entry.ProjectID,
		EntryDate:      entry.EntryDate.String(),
		RejectionNotes: notes,
		OccurredAt:     s.now(),
	}
	if err := s.producer.PublishRejection(ctx, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("entry_id", entry.ID).Msg("Failed to publish rejection notification")
	}

	return entry, nil
}

// Unlock is the explicit admin action returning an APPROVED or REJECTED
// entry to OPEN, clearing the lock flag and any rejection notes.
func (s *TimesheetService) Unlock(ctx context.Context, id int64) (*model.TimeEntry, error) {
	entry, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	reportIntegrity(ctx, entry)

	if entry.Status != model.StatusApproved && entry.Status != model.StatusRejected {
		return nil, &TransitionError{Op: "unlock", From: entry.Status, Reason: "only approved or rejected entries can be unlocked"}
	}
	if !entry.Locked && entry.Status != model.StatusApproved {
		return nil, &TransitionError{Op: "unlock", From: entry.Status, Reason: "entry is not locked"}
	}

	prevUpdated := entry.UpdatedOn
	entry.Status = model.StatusOpen
	entry.Locked = false
	entry.RejectionNotes = nil
	entry.UpdatedOn = s.now()

	if err := s.repo.UpdateEntry(ctx, entry, prevUpdated); err != nil {
		return nil, err
	}

	s.invalidate(ctx, entry.ConsultantID, entry.EntryDate)
	return entry, nil
}

// MonthCalendar produces the per-day, per-status hour totals for a
// consultant's month, served from the projection cache when possible.
func (s *TimesheetService) MonthCalendar(ctx context.Context, consultantID string, year int, month time.Month) (model.MonthAggregate, error) {
	if s.cache != nil {
		if agg, ok := s.cache.GetMonth(ctx, consultantID, year, month); ok {
			return agg, nil
		}
	}

	entries, err := s.repo.ListByConsultantMonth(ctx, consultantID, year, month)
	if err != nil {
		return nil, err
	}
	agg := model.Aggregate(entries)

	if s.cache != nil {
		s.cache.SetMonth(ctx, consultantID, year, month, agg)
	}
	return agg, nil
}

// DayCalendar aggregates one day across all consultants for admin views.
func (s *TimesheetService) DayCalendar(ctx context.Context, date model.Date) (model.DayAggregate, error) {
	entries, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	agg := model.Aggregate(entries)[date.String()]
	if agg == nil {
		agg = model.DayAggregate{}
	}
	return agg, nil
}

// CalendarLocked exposes the global flag for admin views.
func (s *TimesheetService) CalendarLocked(ctx context.Context) bool {
	return s.settings.CalendarLocked(ctx)
}

// SetCalendarLocked flips the global flag via the settings collaborator.
func (s *TimesheetService) SetCalendarLocked(ctx context.Context, locked bool) error {
	return s.settings.SetCalendarLocked(ctx, locked)
}

func (s *TimesheetService) invalidate(ctx context.Context, consultantID string, date model.Date) {
	if s.cache != nil {
		s.cache.InvalidateMonth(ctx, consultantID, date.Year, date.Month)
	}
}
