package calendar

import (
	"time"
)

// DateKey is the YYYY-MM-DD form used to compare calendar dates.
func DateKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// MonthRange returns [first day, first day of next month) in UTC.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func DaysInMonth(year int, month time.Month) int {
	start, end := MonthRange(year, month)
	return int(end.Sub(start).Hours() / 24)
}

// WorkingCalendar is the resolved working-day set of one month.
type WorkingCalendar struct {
	Year        int
	Month       time.Month
	WeekendMask WeekendMask
	dates       []time.Time
	lookup      map[string]struct{}
}

func (c WorkingCalendar) WorkingDays() int {
	return len(c.dates)
}

// Dates returns the working dates in ascending order.
func (c WorkingCalendar) Dates() []time.Time {
	out := make([]time.Time, len(c.dates))
	copy(out, c.dates)
	return out
}

func (c WorkingCalendar) IsWorkingDay(t time.Time) bool {
	_, ok := c.lookup[DateKey(t)]
	return ok
}

// Contains reports whether t falls inside the calendar's month.
func (c WorkingCalendar) Contains(t time.Time) bool {
	return t.Year() == c.Year && t.Month() == c.Month
}

// WorkingDays walks every day of the month and keeps the days that are
// neither in the weekend mask nor a non-optional holiday.
func WorkingDays(year int, month time.Month, mask WeekendMask, holidays []Holiday) WorkingCalendar {
	closed := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		if h.IsOptional {
			continue
		}
		closed[DateKey(h.Date)] = struct{}{}
	}

	cal := WorkingCalendar{
		Year:        year,
		Month:       month,
		WeekendMask: mask,
		lookup:      make(map[string]struct{}),
	}
	start, end := MonthRange(year, month)
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		if mask.Contains(day.Weekday()) {
			continue
		}
		key := DateKey(day)
		if _, isHoliday := closed[key]; isHoliday {
			continue
		}
		cal.dates = append(cal.dates, day)
		cal.lookup[key] = struct{}{}
	}
	return cal
}
