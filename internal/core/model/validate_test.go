package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"timesheet.service/internal/core/model"
)

func validEntry() *model.TimeEntry {
	project := "PRJ-7"
	return &model.TimeEntry{
		ConsultantID: "consultant-1",
		ClientID:     "acme",
		ProjectID:    &project,
		EntryDate:    model.Date{Year: 2026, Month: time.August, Day: 12},
		ClientHours:  7.5,
		OtherHours:   0.5,
		Status:       model.StatusOpen,
	}
}

func TestValidateEntry_Valid(t *testing.T) {
	require.NoError(t, model.ValidateEntry(validEntry()))
}

func TestValidateEntry_Problems(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(e *model.TimeEntry)
		problem string
	}{
		{
			"missing date",
			func(e *model.TimeEntry) { e.EntryDate = model.Date{} },
			"entry date is required",
		},
		{
			"missing client",
			func(e *model.TimeEntry) { e.ClientID = "  " },
			"client id is required",
		},
		{
			"missing consultant",
			func(e *model.TimeEntry) { e.ConsultantID = "" },
			"consultant id is required",
		},
		{
			"notes required without project",
			func(e *model.TimeEntry) { e.ProjectID = nil },
			"notes are required when no project is selected",
		},
		{
			"negative hours",
			func(e *model.TimeEntry) { e.InternalHours = -0.5 },
			"internal hours cannot be negative",
		},
		{
			"quarter hours rejected",
			func(e *model.TimeEntry) { e.ClientHours = 1.25 },
			"client hours must be a multiple of 0.5",
		},
		{
			"zero total",
			func(e *model.TimeEntry) {
				e.ClientHours = 0
				e.InternalHours = 0
				e.OtherHours = 0
			},
			"total hours must be greater than zero",
		},
		{
			"over 24 hours",
			func(e *model.TimeEntry) {
				e.ClientHours = 20
				e.InternalHours = 5
			},
			"total hours cannot exceed 24",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := validEntry()
			tt.mutate(entry)
			err := model.ValidateEntry(entry)
			require.Error(t, err)
			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Problems, tt.problem)
		})
	}
}

func TestValidateEntry_CollectsEveryProblem(t *testing.T) {
	entry := &model.TimeEntry{ClientHours: -1}
	err := model.ValidateEntry(entry)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	require.GreaterOrEqual(t, len(verr.Problems), 3)
}

func TestValidateEntry_NoProjectWithNotesIsFine(t *testing.T) {
	entry := validEntry()
	entry.ProjectID = nil
	entry.Notes = "internal training"
	require.NoError(t, model.ValidateEntry(entry))
}

func TestCurrentlyLocked(t *testing.T) {
	require.False(t, (&model.TimeEntry{Status: model.StatusOpen}).CurrentlyLocked())
	require.False(t, (&model.TimeEntry{Status: model.StatusRejected}).CurrentlyLocked())
	require.True(t, (&model.TimeEntry{Status: model.StatusSubmitted, Locked: true}).CurrentlyLocked())
	require.True(t, (&model.TimeEntry{Status: model.StatusApproved, Locked: true}).CurrentlyLocked())

	// Either side of the convention alone is enough.
	require.True(t, (&model.TimeEntry{Status: model.StatusOpen, Locked: true}).CurrentlyLocked())
	require.True(t, (&model.TimeEntry{Status: model.StatusSubmitted}).CurrentlyLocked())
}

func TestLockConsistent(t *testing.T) {
	require.True(t, (&model.TimeEntry{Status: model.StatusOpen}).LockConsistent())
	require.True(t, (&model.TimeEntry{Status: model.StatusSubmitted, Locked: true}).LockConsistent())
	require.False(t, (&model.TimeEntry{Status: model.StatusSubmitted}).LockConsistent())
	require.False(t, (&model.TimeEntry{Status: model.StatusApproved}).LockConsistent())
}
