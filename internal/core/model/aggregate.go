package model

// DayAggregate maps each status present on a calendar day to the summed
// hours of the entries in that status. An entry contributes to exactly one
// bucket.
type DayAggregate map[EntryStatus]float64

// MonthAggregate maps "YYYY-MM-DD" date keys to their day aggregates. It is
// derived on demand from stored entries and never persisted.
type MonthAggregate map[string]DayAggregate

// Aggregate buckets entries by calendar date and status. Grouping uses the
// entries' pure calendar dates, never timestamps.
func Aggregate(entries []TimeEntry) MonthAggregate {
	agg := MonthAggregate{}
	for i := range entries {
		e := &entries[i]
		key := e.EntryDate.String()
		day, ok := agg[key]
		if !ok {
			day = DayAggregate{}
			agg[key] = day
		}
		day[e.Status] += e.TotalHours()
	}
	return agg
}

// TotalFor sums every bucket of a single day.
func (d DayAggregate) TotalFor() float64 {
	var total float64
	for _, hours := range d {
		total += hours
	}
	return total
}
