package domain

import (
	"testing"
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestIsDateSelectable(t *testing.T) {
	today := date(2026, time.March, 10)
	closed := ClosedDates{date(2026, time.March, 17), date(2026, time.December, 25)}
	bound := date(2026, time.June, 1)

	tests := []struct {
		name      string
		candidate time.Time
		want      bool
	}{
		{"today is selectable", today, true},
		{"tomorrow is selectable", date(2026, time.March, 11), true},
		{"yesterday is not selectable", date(2026, time.March, 9), false},
		{"closed date is not selectable", date(2026, time.March, 17), false},
		{"day before bound is selectable", date(2026, time.May, 31), true},
		{"bound itself is not selectable", bound, false},
		{"after bound is not selectable", date(2026, time.June, 2), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDateSelectable(tt.candidate, today, closed, bound); got != tt.want {
				t.Errorf("IsDateSelectable(%v) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestIsDateSelectable_ClosedWinsOverWindow(t *testing.T) {
	today := date(2026, time.March, 10)
	closed := ClosedDates{date(2026, time.April, 1)}
	bound := date(2026, time.June, 1)

	// Inside the bookable window in every other respect
	if IsDateSelectable(date(2026, time.April, 1), today, closed, bound) {
		t.Error("closed date should never be selectable, regardless of exhibition windows")
	}
}

func TestIsDateSelectable_TimeOfDayIgnored(t *testing.T) {
	today := time.Date(2026, time.March, 10, 23, 45, 0, 0, time.UTC)
	candidate := time.Date(2026, time.March, 10, 0, 1, 0, 0, time.UTC)
	bound := date(2026, time.June, 1)

	if !IsDateSelectable(candidate, today, nil, bound) {
		t.Error("same calendar day should be selectable whatever the clock says")
	}
}

func TestLastBookableExclusive(t *testing.T) {
	today := date(2026, time.March, 10)

	t.Run("day after latest exhibition end", func(t *testing.T) {
		exhibitions := []Exhibition{
			{Title: "Silk Roads", StartDate: date(2026, time.January, 5), EndDate: date(2026, time.April, 20)},
			{Title: "Light and Shadow", StartDate: date(2026, time.February, 1), EndDate: date(2026, time.August, 31)},
			{Title: "Clay", StartDate: date(2026, time.March, 1), EndDate: date(2026, time.May, 15)},
		}

		got := LastBookableExclusive(exhibitions, today)
		want := date(2026, time.September, 1)
		if !got.Equal(want) {
			t.Errorf("LastBookableExclusive() = %v, want %v", got, want)
		}
	})

	t.Run("fallback window when no exhibitions loaded", func(t *testing.T) {
		got := LastBookableExclusive(nil, today)
		want := date(2026, time.December, 10)
		if !got.Equal(want) {
			t.Errorf("LastBookableExclusive() = %v, want %v", got, want)
		}
	})
}

func TestExhibitionTitleForDate(t *testing.T) {
	exhibitions := []Exhibition{
		{Title: "Silk Roads", StartDate: date(2026, time.January, 5), EndDate: date(2026, time.April, 20)},
		{Title: "Light and Shadow", StartDate: date(2026, time.March, 1), EndDate: date(2026, time.August, 31)},
	}

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"inside first range", date(2026, time.February, 10), "Silk Roads"},
		{"overlap resolves to first in load order", date(2026, time.March, 15), "Silk Roads"},
		{"inside second range only", date(2026, time.May, 1), "Light and Shadow"},
		{"start date is inclusive", date(2026, time.January, 5), "Silk Roads"},
		{"end date is inclusive", date(2026, time.August, 31), "Light and Shadow"},
		{"outside all ranges", date(2026, time.December, 1), ""},
		{"zero date", time.Time{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExhibitionTitleForDate(tt.date, exhibitions); got != tt.want {
				t.Errorf("ExhibitionTitleForDate(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestSortedByStartDate(t *testing.T) {
	exhibitions := []Exhibition{
		{Title: "Later", StartDate: date(2026, time.March, 1), EndDate: date(2026, time.August, 31)},
		{Title: "Earlier", StartDate: date(2026, time.January, 5), EndDate: date(2026, time.April, 20)},
	}

	sorted := SortedByStartDate(exhibitions)

	if sorted[0].Title != "Earlier" || sorted[1].Title != "Later" {
		t.Errorf("SortedByStartDate() order = [%s %s], want [Earlier Later]", sorted[0].Title, sorted[1].Title)
	}

	// The load-order list must be left untouched: title lookup depends on it
	if exhibitions[0].Title != "Later" {
		t.Error("SortedByStartDate() must not reorder the original list")
	}
}
