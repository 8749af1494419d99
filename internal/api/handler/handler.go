package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"timesheet.service/internal/core"
	"timesheet.service/internal/core/model"
	"timesheet.service/internal/ports/repository"
)

// TimesheetService is the slice of the core service the handlers consume.
type TimesheetService interface {
	Create(ctx context.Context, consultantID string, in core.EntryInput) (*model.TimeEntry, error)
	Update(ctx context.Context, consultantID string, id int64, in core.EntryInput, expectedUpdatedOn time.Time) (*model.TimeEntry, error)
	Delete(ctx context.Context, consultantID string, id int64, privileged bool) error
	Day(ctx context.Context, consultantID string, date model.Date) (*core.DayView, error)
	Month(ctx context.Context, consultantID string, year int, month time.Month) ([]model.TimeEntry, error)
	SubmitDay(ctx context.Context, consultantID string, date model.Date) (*core.SubmitResult, error)
	MonthCalendar(ctx context.Context, consultantID string, year int, month time.Month) (model.MonthAggregate, error)

	AdminDay(ctx context.Context, date model.Date) ([]model.TimeEntry, error)
	DayCalendar(ctx context.Context, date model.Date) (model.DayAggregate, error)
	Approve(ctx context.Context, id int64) (*model.TimeEntry, error)
	ApproveAll(ctx context.Context, date model.Date, filter repository.ApprovalFilter) (int64, error)
	Reject(ctx context.Context, id int64, notes string) (*model.TimeEntry, error)
	Unlock(ctx context.Context, id int64) (*model.TimeEntry, error)
	CalendarLocked(ctx context.Context) bool
	SetCalendarLocked(ctx context.Context, locked bool) error
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *model.ValidationError
		transitionErr *core.TransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "validation failed",
			"problems": validationErr.Problems,
		})
	case errors.Is(err, core.ErrDayLocked):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error()})
	case errors.As(err, &transitionErr):
		writeJSON(w, http.StatusConflict, map[string]any{"error": transitionErr.Error()})
	case errors.Is(err, core.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, map[string]any{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict):
		writeJSON(w, http.StatusPreconditionFailed, map[string]any{"error": err.Error()})
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
	}
}

func parseDateParam(value string) (model.Date, error) {
	if value == "" {
		return model.Date{}, fmt.Errorf("date is required")
	}
	return model.ParseDate(value)
}

func parseMonthParam(value string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", value)
	}
	return t.Year(), t.Month(), nil
}
