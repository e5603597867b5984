package leave

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/calendar"
	"github.com/stretchr/testify/assert"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func approved(start, end time.Time, paid bool) Request {
	return Request{Status: StatusApproved, StartDate: start, EndDate: end, IsPaid: paid}
}

func september(holidays ...calendar.Holiday) calendar.WorkingCalendar {
	return calendar.WorkingDays(2025, time.September, calendar.DefaultWeekendMask, holidays)
}

func TestReconcile_SkipsWeekendsAndHolidays(t *testing.T) {
	// Fri 5th .. Tue 9th: Sat/Sun skipped, Mon 8th is a holiday.
	cal := september(calendar.Holiday{Date: day(time.September, 8)})
	rec := Reconcile([]Request{approved(day(time.September, 5), day(time.September, 9), true)}, cal)
	assert.Equal(t, Reconciliation{PaidLeaveDays: 2}, rec)
}

func TestReconcile_OptionalHolidayStillCounts(t *testing.T) {
	cal := september(calendar.Holiday{Date: day(time.September, 8), IsOptional: true})
	rec := Reconcile([]Request{approved(day(time.September, 8), day(time.September, 8), false)}, cal)
	assert.Equal(t, Reconciliation{UnpaidLeaveDays: 1}, rec)
}

func TestReconcile_ClipsToMonth(t *testing.T) {
	// Aug 28 .. Sep 2: only Mon 1st and Tue 2nd fall in September.
	rec := Reconcile([]Request{approved(day(time.August, 28), day(time.September, 2), true)}, september())
	assert.Equal(t, 2, rec.PaidLeaveDays)

	// Sep 29 .. Oct 3: Mon 29th and Tue 30th.
	rec = Reconcile([]Request{approved(day(time.September, 29), day(time.October, 3), false)}, september())
	assert.Equal(t, 2, rec.UnpaidLeaveDays)
}

func TestReconcile_DeduplicatesOverlaps(t *testing.T) {
	requests := []Request{
		approved(day(time.September, 1), day(time.September, 3), true),
		approved(day(time.September, 2), day(time.September, 4), true),
	}
	rec := Reconcile(requests, september())
	assert.Equal(t, 4, rec.PaidLeaveDays)
}

func TestReconcile_PaidWinsOnOverlap(t *testing.T) {
	requests := []Request{
		approved(day(time.September, 1), day(time.September, 2), false),
		approved(day(time.September, 2), day(time.September, 3), true),
	}
	rec := Reconcile(requests, september())
	assert.Equal(t, Reconciliation{PaidLeaveDays: 2, UnpaidLeaveDays: 1}, rec)
}

func TestReconcile_IgnoresNonApproved(t *testing.T) {
	pending := approved(day(time.September, 1), day(time.September, 5), true)
	pending.Status = StatusPending
	cancelled := pending
	cancelled.Status = StatusCancelled

	rec := Reconcile([]Request{pending, cancelled}, september())
	assert.Equal(t, Reconciliation{}, rec)
}

func TestInclusiveDays(t *testing.T) {
	assert.Equal(t, 1, InclusiveDays(day(time.September, 1), day(time.September, 1)))
	assert.Equal(t, 5, InclusiveDays(day(time.September, 1), day(time.September, 5)))
	assert.Equal(t, 5, InclusiveDays(day(time.August, 30), day(time.September, 3)))
	assert.Equal(t, 0, InclusiveDays(day(time.September, 2), day(time.September, 1)))
}

func TestCreateLeaveRequest_Validate(t *testing.T) {
	valid := CreateLeaveRequest{
		LeaveTypeID: "8f14e45f-ceea-4e7a-9b1c-2d4c3b1a0e11",
		StartDate:   "2025-09-01",
		EndDate:     "2025-09-03",
	}
	assert.NoError(t, valid.Validate())
	start, end := valid.Dates()
	assert.Equal(t, day(time.September, 1), start)
	assert.Equal(t, day(time.September, 3), end)

	reversed := valid
	reversed.StartDate, reversed.EndDate = "2025-09-03", "2025-09-01"
	assert.Error(t, reversed.Validate())

	badID := valid
	badID.LeaveTypeID = "annual"
	assert.Error(t, badID.Validate())

	badDate := valid
	badDate.StartDate = "01/09/2025"
	assert.Error(t, badDate.Validate())
}
