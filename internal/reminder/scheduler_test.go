package reminder

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
	"timesheet.service/internal/core/model"
	"timesheet.service/internal/ports/messaging"
	"timesheet.service/internal/ports/repository"
)

// sweepRepo serves canned entries per date; the sweep only reads.
type sweepRepo struct {
	repository.Repository
	byDate map[string][]model.TimeEntry
}

func (r *sweepRepo) ListByDate(_ context.Context, date model.Date) ([]model.TimeEntry, error) {
	return r.byDate[date.String()], nil
}

type recordingProducer struct {
	reminders []messaging.ReminderEvent
	fail      error
}

func (p *recordingProducer) PublishRejection(context.Context, messaging.RejectionEvent) error {
	return nil
}

func (p *recordingProducer) PublishReminder(_ context.Context, event messaging.ReminderEvent) error {
	if p.fail != nil {
		return p.fail
	}
	p.reminders = append(p.reminders, event)
	return nil
}

// captureLog redirects the global logger into a buffer for the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRunSweepsClosingWeek(t *testing.T) {
	// Sunday 2026-08-16 at 18:00; the closing week is 08-10..08-16.
	sundayEvening := time.Date(2026, 8, 16, 18, 0, 0, 0, time.UTC)

	repo := &sweepRepo{byDate: map[string][]model.TimeEntry{
		"2026-08-11": {
			{ID: 1, ConsultantID: "consultant-1", Status: model.StatusOpen},
			{ID: 2, ConsultantID: "consultant-2", Status: model.StatusSubmitted, Locked: true},
		},
		"2026-08-13": {
			{ID: 3, ConsultantID: "consultant-1", Status: model.StatusRejected},
			{ID: 4, ConsultantID: "consultant-3", Status: model.StatusApproved, Locked: true},
		},
		// Outside the closing week, must be ignored.
		"2026-08-09": {
			{ID: 5, ConsultantID: "consultant-4", Status: model.StatusOpen},
		},
	}}
	producer := &recordingProducer{}

	s := NewScheduler(repo, producer)
	s.now = func() time.Time { return sundayEvening }

	require.NoError(t, s.Run(context.Background()))
	require.Len(t, producer.reminders, 1)

	event := producer.reminders[0]
	require.Equal(t, "consultant-1", event.ConsultantID)
	require.Equal(t, 2, event.PendingEntries)
	require.Equal(t, "2026-08-16", event.WeekEnding)
	require.Equal(t, sundayEvening, event.OccurredAt)
}

func TestRunNoPendingEntries(t *testing.T) {
	producer := &recordingProducer{}
	s := NewScheduler(&sweepRepo{byDate: map[string][]model.TimeEntry{}}, producer)
	s.now = func() time.Time { return time.Date(2026, 8, 16, 18, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Run(context.Background()))
	require.Empty(t, producer.reminders)
}

func TestRunLogsWithBareContext(t *testing.T) {
	// The cron trigger hands Run a context with no logger attached; the
	// sweep outcome must still reach the global logger.
	buf := captureLog(t)

	repo := &sweepRepo{byDate: map[string][]model.TimeEntry{
		"2026-08-11": {
			{ID: 1, ConsultantID: "consultant-1", Status: model.StatusOpen},
		},
	}}
	producer := &recordingProducer{fail: errors.New("queue unavailable")}

	s := NewScheduler(repo, producer)
	s.now = func() time.Time { return time.Date(2026, 8, 16, 18, 0, 0, 0, time.UTC) }

	require.NoError(t, s.Run(context.Background()))
	require.Contains(t, buf.String(), "Failed to publish reminder")
	require.Contains(t, buf.String(), "Reminder sweep completed")
}
