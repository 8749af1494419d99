// Package lock decides whether a calendar day is editable. The evaluator is
// a pure function of the values in Context plus the entry under inspection;
// it performs no I/O and must be re-evaluated on every request, never cached.
package lock

import (
	"time"

	"timesheet.service/internal/core/model"
)

// Context carries the two ambient inputs of a lock decision, threaded
// explicitly so the evaluation stays side-effect free.
type Context struct {
	// Now is the current moment at the time the decision is made.
	Now time.Time
	// CalendarLocked is the admin-controlled global flag enabling the
	// week-cutoff rule.
	CalendarLocked bool
}

// IsLocked reports whether edits on date are blocked. Rules apply in order:
//
//  1. A date strictly after today is locked unconditionally.
//  2. An entry that is itself locked (flag or SUBMITTED/APPROVED status)
//     stays locked until explicitly unlocked, regardless of date.
//  3. With the global flag off, week-based locking is disabled entirely.
//  4. With the flag on, the date locks once Now passes its week cutoff.
//
// Pass a nil entry when evaluating a whole day or a fresh draft.
func IsLocked(lc Context, date model.Date, entry *model.TimeEntry) bool {
	today := model.DateOf(lc.Now)
	if date.After(today) {
		return true
	}
	if entry != nil && entry.CurrentlyLocked() {
		return true
	}
	if !lc.CalendarLocked {
		return false
	}
	return lc.Now.After(WeekCutoff(date, lc.Now.Location()))
}

// WeekCutoff returns the end of date's week: the Sunday of the 7-day span
// containing date, at 23:59:59 in loc. Past that moment the whole week
// closes when the global flag is on.
func WeekCutoff(date model.Date, loc *time.Location) time.Time {
	daysToSunday := (7 - int(date.Weekday())) % 7
	sunday := date.AddDays(daysToSunday)
	return time.Date(sunday.Year, sunday.Month, sunday.Day, 23, 59, 59, 0, loc)
}
