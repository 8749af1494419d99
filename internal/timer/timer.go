// Package timer accrues wall-clock elapsed time against a draft entry being
// edited. State is purely local: only the converted hour contribution ever
// reaches a persisted entry, applied to the draft's client hours at save
// time.
package timer

import (
	"math"
	"time"
)

// DraftKeyNew identifies the timer of a draft that has not been saved yet
// and therefore has no entry id.
const DraftKeyNew = "draft:new"

// State is the serializable timer value for one draft key. Transitions
// return a new value instead of mutating, which keeps persistence and
// rehydration trivial.
type State struct {
	Running        bool      `json:"running"`
	StartedAt      time.Time `json:"startedAt,omitempty"`
	ElapsedSeconds int64     `json:"elapsedSeconds"`
}

// Start begins accrual at now. Starting an already-running timer is a
// no-op: neither ElapsedSeconds nor StartedAt move.
func (s State) Start(now time.Time) State {
	if s.Running {
		return s
	}
	s.Running = true
	s.StartedAt = now
	return s
}

// Stop folds the current run into ElapsedSeconds and halts accrual. The run
// rounds up to whole seconds, so even a sub-second run accrues.
func (s State) Stop(now time.Time) State {
	if !s.Running {
		return s
	}
	s.ElapsedSeconds += int64(math.Ceil(now.Sub(s.StartedAt).Seconds()))
	s.Running = false
	s.StartedAt = time.Time{}
	return s
}

// Elapsed returns total accrued seconds as of now, including the live run
// when the timer is running. Used by the display tick; performs no I/O.
func (s State) Elapsed(now time.Time) int64 {
	if !s.Running {
		return s.ElapsedSeconds
	}
	return s.ElapsedSeconds + int64(now.Sub(s.StartedAt).Seconds())
}

// Hours converts accrued seconds to billable hours, rounding up to the
// nearest half hour. Any non-zero run credits at least 0.5h.
func (s State) Hours() float64 {
	return math.Ceil(float64(s.ElapsedSeconds)/3600*2) / 2
}

// MergeHours adds a timer's hour contribution to a draft's current client
// hours and rounds the sum to the nearest half hour (nearest here, unlike
// the round-up conversion of the timer itself).
func MergeHours(current, contribution float64) float64 {
	return math.Round((current+contribution)*2) / 2
}
