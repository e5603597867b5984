package salary

import (
	"github.com/shopspring/decimal"
)

// AttendancePercentage is (present + half/2) / workingDays * 100, rounded to
// 2 places, or 0 for a month without working days.
func AttendancePercentage(workingDays, presentDays, halfDayCount int) decimal.Decimal {
	if workingDays <= 0 {
		return decimal.Zero
	}
	effective := decimal.NewFromInt(int64(presentDays)).
		Add(decimal.NewFromInt(int64(halfDayCount)).Div(two))
	return effective.Mul(hundred).Div(decimal.NewFromInt(int64(workingDays))).Round(2)
}

// MonthOverMonth compares net salary with the previous period. Percent is
// nil when the previous net is zero.
func MonthOverMonth(current decimal.Decimal, previous *Record) *MonthOverMonthResponse {
	if previous == nil {
		return nil
	}
	delta := current.Sub(previous.NetSalary).Round(2)
	resp := &MonthOverMonthResponse{
		PreviousRecordID:  previous.ID,
		PreviousNetSalary: previous.NetSalary,
		Delta:             delta,
	}
	if !previous.NetSalary.IsZero() {
		pct := delta.Mul(hundred).Div(previous.NetSalary).Round(2)
		resp.DeltaPercent = &pct
	}
	return resp
}
