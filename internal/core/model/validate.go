package model

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError collects the per-field problems found on an entry. It is
// raised before any storage call; nothing is persisted when it is returned.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid entry: " + strings.Join(e.Problems, "; ")
}

// entryRule is one declarative validation rule. It returns an empty string
// when the entry passes, otherwise a human-readable problem. Conditional
// requirements (notes only without a project) live here instead of being
// scattered across call sites.
type entryRule struct {
	name  string
	check func(e *TimeEntry) string
}

var entryRules = []entryRule{
	{"date", func(e *TimeEntry) string {
		if e.EntryDate.IsZero() {
			return "entry date is required"
		}
		return ""
	}},
	{"client", func(e *TimeEntry) string {
		if strings.TrimSpace(e.ConsultantID) == "" {
			return "consultant id is required"
		}
		if strings.TrimSpace(e.ClientID) == "" {
			return "client id is required"
		}
		return ""
	}},
	{"notes", func(e *TimeEntry) string {
		if e.ProjectID == nil && strings.TrimSpace(e.Notes) == "" {
			return "notes are required when no project is selected"
		}
		return ""
	}},
	{"hours", func(e *TimeEntry) string {
		for _, h := range []struct {
			label string
			value float64
		}{
			{"client hours", e.ClientHours},
			{"internal hours", e.InternalHours},
			{"other hours", e.OtherHours},
		} {
			if h.value < 0 {
				return h.label + " cannot be negative"
			}
			if !halfStep(h.value) {
				return h.label + " must be a multiple of 0.5"
			}
		}
		return ""
	}},
	{"total", func(e *TimeEntry) string {
		total := e.TotalHours()
		if total <= 0 {
			return "total hours must be greater than zero"
		}
		if total > MaxDayHours {
			return fmt.Sprintf("total hours cannot exceed %.0f", MaxDayHours)
		}
		return ""
	}},
}

// ValidateEntry runs the rule table against the entry and returns a
// *ValidationError carrying every failed rule, or nil.
func ValidateEntry(e *TimeEntry) error {
	var problems []string
	for _, r := range entryRules {
		if msg := r.check(e); msg != "" {
			problems = append(problems, msg)
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// halfStep reports whether h sits exactly on a 0.5-hour boundary. Halves are
// exactly representable in binary floating point, so doubling and checking
// for an integer is precise.
func halfStep(h float64) bool {
	doubled := h * 2
	return doubled == math.Trunc(doubled)
}
