package leave

import (
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/calendar"
)

// Reconciliation splits approved leave inside one month into paid and unpaid
// working days.
type Reconciliation struct {
	PaidLeaveDays   int
	UnpaidLeaveDays int
}

// Reconcile walks every approved request clipped to the calendar's month and
// counts each working date once. A date covered by both a paid and an unpaid
// request counts as paid.
func Reconcile(requests []Request, cal calendar.WorkingCalendar) Reconciliation {
	monthStart, monthEnd := calendar.MonthRange(cal.Year, cal.Month)
	covered := make(map[string]bool) // date -> paid

	for _, r := range requests {
		if r.Status != StatusApproved {
			continue
		}
		from := r.StartDate
		if from.Before(monthStart) {
			from = monthStart
		}
		to := r.EndDate
		if !to.Before(monthEnd) {
			to = monthEnd.AddDate(0, 0, -1)
		}

		for day := dateOnly(from); !day.After(to); day = day.AddDate(0, 0, 1) {
			if !cal.IsWorkingDay(day) {
				continue
			}
			key := calendar.DateKey(day)
			covered[key] = covered[key] || r.IsPaid
		}
	}

	var rec Reconciliation
	for _, paid := range covered {
		if paid {
			rec.PaidLeaveDays++
		} else {
			rec.UnpaidLeaveDays++
		}
	}
	return rec
}
