package domain

import (
	"sort"
	"time"
)

// FallbackBookingWindowMonths bounds bookings when no exhibitions are
// loaded: the last bookable date falls this many months after today.
const FallbackBookingWindowMonths = 9

// IsDateSelectable reports whether a candidate visit date can be picked.
// A date is selectable iff it is not before today, the venue is not
// closed on it, and it falls before the exclusive last-bookable bound.
func IsDateSelectable(candidate, today time.Time, closed ClosedDates, lastBookableExclusive time.Time) bool {
	day := DayOf(candidate)
	if day.Before(DayOf(today)) {
		return false
	}
	if closed.Contains(day) {
		return false
	}
	if !day.Before(DayOf(lastBookableExclusive)) {
		return false
	}
	return true
}

// LastBookableExclusive returns the exclusive upper bound for visit
// dates: the day after the latest exhibition end date, or today plus
// the fallback window when no exhibitions are loaded.
func LastBookableExclusive(exhibitions []Exhibition, today time.Time) time.Time {
	if len(exhibitions) == 0 {
		return DayOf(today).AddDate(0, FallbackBookingWindowMonths, 0)
	}

	latest := DayOf(exhibitions[0].EndDate)
	for _, e := range exhibitions[1:] {
		if end := DayOf(e.EndDate); end.After(latest) {
			latest = end
		}
	}
	return latest.AddDate(0, 0, 1)
}

// ExhibitionTitleForDate returns the title of the first exhibition, in
// load order, whose inclusive date range contains the given date.
// Returns "" when the date is unset or no exhibition covers it. When
// ranges overlap the first listed exhibition wins; the list must be the
// load-order list, not a sorted copy.
func ExhibitionTitleForDate(date time.Time, exhibitions []Exhibition) string {
	if date.IsZero() {
		return ""
	}

	day := DayOf(date)
	for _, e := range exhibitions {
		if !day.Before(DayOf(e.StartDate)) && !day.After(DayOf(e.EndDate)) {
			return e.Title
		}
	}
	return ""
}

// SortedByStartDate returns a copy of the exhibitions ordered ascending
// by start date. Display only; title lookup depends on load order.
func SortedByStartDate(exhibitions []Exhibition) []Exhibition {
	sorted := make([]Exhibition, len(exhibitions))
	copy(sorted, exhibitions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})
	return sorted
}
