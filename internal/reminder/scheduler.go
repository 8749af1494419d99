// Package reminder nudges consultants who still hold unsubmitted entries
// when a week is about to close.
package reminder

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"timesheet.service/internal/core/lock"
	"timesheet.service/internal/core/model"
	"timesheet.service/internal/ports/messaging"
	"timesheet.service/internal/ports/repository"
)

// Scheduler runs the weekly sweep on a cron schedule. The week closes at
// Sunday 23:59:59; the sweep runs Sunday evening while consultants can
// still submit.
type Scheduler struct {
	repo     repository.Repository
	producer messaging.Producer
	cron     *cron.Cron
	now      func() time.Time
}

func NewScheduler(repo repository.Repository, producer messaging.Producer) *Scheduler {
	return &Scheduler{
		repo:     repo,
		producer: producer,
		cron:     cron.New(),
		now:      time.Now,
	}
}

// Start registers the Sunday 18:00 sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("0 18 * * 0", func() {
		if err := s.Run(context.Background()); err != nil {
			log.Error().Err(err).Msg("Reminder sweep failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Info().Msg("Reminder scheduler started (Sundays at 18:00)")
	return nil
}

// Stop halts the cron loop.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// Run sweeps the closing week and publishes one reminder per consultant
// still holding OPEN or REJECTED entries in it.
func (s *Scheduler) Run(ctx context.Context) error {
	now := s.now()
	cutoff := lock.WeekCutoff(model.DateOf(now), now.Location())
	weekEnd := model.DateOf(cutoff)
	weekStart := weekEnd.AddDays(-6)

	pending := map[string]int{}
	for day := weekStart; !day.After(weekEnd); day = day.AddDays(1) {
		entries, err := s.repo.ListByDate(ctx, day)
		if err != nil {
			return err
		}
		for i := range entries {
			if entries[i].Editable() {
				pending[entries[i].ConsultantID]++
			}
		}
	}

	for consultantID, count := range pending {
		event := messaging.ReminderEvent{
			ConsultantID:   consultantID,
			WeekEnding:     weekEnd.String(),
			PendingEntries: count,
			OccurredAt:     now,
		}
		if err := s.producer.PublishReminder(ctx, event); err != nil {
			// The cron invocation carries a bare context with no request
			// logger attached, so log through the global logger.
			log.Error().Err(err).Str("consultant_id", consultantID).Msg("Failed to publish reminder")
			continue
		}
	}

	log.Info().Int("consultants", len(pending)).Str("week_ending", weekEnd.String()).Msg("Reminder sweep completed")
	return nil
}
