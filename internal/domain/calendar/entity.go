package calendar

import "time"

// Holiday is an organization-scoped date. Optional holidays stay working days.
type Holiday struct {
	ID             string
	OrganizationID string
	Date           time.Time
	Name           string
	IsOptional     bool
}

// OrganizationSettings carries the per-tenant payroll calendar settings.
type OrganizationSettings struct {
	OrganizationID string
	WeekendMask    WeekendMask
	Timezone       string
}

// WeekendMask is the set of weekdays (Sunday=0) that are never working days.
type WeekendMask []time.Weekday

var DefaultWeekendMask = WeekendMask{time.Sunday, time.Saturday}

func NewWeekendMask(days []int) WeekendMask {
	mask := make(WeekendMask, 0, len(days))
	for _, d := range days {
		if d >= 0 && d <= 6 {
			mask = append(mask, time.Weekday(d))
		}
	}
	return mask
}

func (m WeekendMask) Contains(d time.Weekday) bool {
	for _, w := range m {
		if w == d {
			return true
		}
	}
	return false
}

func (m WeekendMask) Ints() []int {
	out := make([]int, len(m))
	for i, d := range m {
		out[i] = int(d)
	}
	return out
}
