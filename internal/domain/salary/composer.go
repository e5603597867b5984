package salary

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	two     = decimal.NewFromInt(2)
)

// ErrInvalidComposition marks inputs the composer refuses to compute.
var ErrInvalidComposition = errors.New("invalid salary composition input")

// Inputs are the attendance and leave facts for one period.
type Inputs struct {
	WorkingDays     int
	PresentDays     int
	HalfDayCount    int
	PaidLeaveDays   int
	UnpaidLeaveDays int
}

type Composition struct {
	Allowances       map[string]decimal.Decimal
	Deductions       map[string]decimal.Decimal
	PerDaySalary     decimal.Decimal
	AbsentDays       decimal.Decimal
	AbsenceDeduction decimal.Decimal
	TotalAllowances  decimal.Decimal
	TotalDeductions  decimal.Decimal
	Tax              decimal.Decimal
	NetSalary        decimal.Decimal
}

// Compose computes allowances, deductions and net salary. Component amounts
// are rounded to 2 places; per-day salary keeps full precision. Unpaid leave
// is not subtracted from absent days since it is already missing from
// present days.
func Compose(p Profile, in Inputs) (Composition, error) {
	if err := checkInputs(p, in); err != nil {
		return Composition{}, err
	}

	base := p.BaseSalary

	allowances := map[string]decimal.Decimal{
		AllowanceHRA: percentOf(base, p.HRAPercent),
		AllowanceDA:  percentOf(base, p.DAPercent),
		AllowanceTA:  percentOf(base, p.TAPercent),
	}
	for k, v := range p.AdditionalAllowances {
		allowances[k] = v.Round(2)
	}

	perDay := decimal.Zero
	if in.WorkingDays > 0 {
		perDay = base.Div(decimal.NewFromInt(int64(in.WorkingDays)))
	}

	absentDays := AbsentDays(in)
	absence := absentDays.Mul(perDay).Round(2)

	deductions := map[string]decimal.Decimal{
		DeductionPF:        percentOf(base, p.PFPercent),
		DeductionInsurance: p.Insurance.Round(2),
		DeductionTax:       percentOf(base, p.TaxPercent),
		DeductionAbsence:   absence,
	}
	for k, v := range p.AdditionalDeductions {
		deductions[k] = v.Round(2)
	}

	totalAllowances := sum(allowances)
	totalDeductions := sum(deductions)
	net := base.Add(totalAllowances).Sub(totalDeductions)
	if net.IsNegative() {
		net = decimal.Zero
	}

	return Composition{
		Allowances:       allowances,
		Deductions:       deductions,
		PerDaySalary:     perDay,
		AbsentDays:       absentDays,
		AbsenceDeduction: absence,
		TotalAllowances:  totalAllowances,
		TotalDeductions:  totalDeductions,
		Tax:              deductions[DeductionTax],
		NetSalary:        net.Round(2),
	}, nil
}

// AbsentDays is max(0, working - present - halfDays/2 - paidLeave).
func AbsentDays(in Inputs) decimal.Decimal {
	absent := decimal.NewFromInt(int64(in.WorkingDays)).
		Sub(decimal.NewFromInt(int64(in.PresentDays))).
		Sub(decimal.NewFromInt(int64(in.HalfDayCount)).Div(two)).
		Sub(decimal.NewFromInt(int64(in.PaidLeaveDays)))
	if absent.IsNegative() {
		return decimal.Zero
	}
	return absent
}

func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred).Round(2)
}

func sum(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

func checkInputs(p Profile, in Inputs) error {
	switch {
	case p.BaseSalary.IsNegative():
		return fmt.Errorf("%w: negative base salary %s", ErrInvalidComposition, p.BaseSalary)
	case p.Insurance.IsNegative():
		return fmt.Errorf("%w: negative insurance %s", ErrInvalidComposition, p.Insurance)
	case in.WorkingDays < 0, in.PresentDays < 0, in.HalfDayCount < 0, in.PaidLeaveDays < 0, in.UnpaidLeaveDays < 0:
		return fmt.Errorf("%w: negative day count %+v", ErrInvalidComposition, in)
	}

	pcts := map[string]decimal.Decimal{
		"hra": p.HRAPercent, "da": p.DAPercent, "ta": p.TAPercent,
		"pf": p.PFPercent, "tax": p.TaxPercent,
	}
	for name, pct := range pcts {
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s percentage %s out of range", ErrInvalidComposition, name, pct)
		}
	}
	for k, v := range p.AdditionalAllowances {
		if v.IsNegative() {
			return fmt.Errorf("%w: negative additional allowance %q", ErrInvalidComposition, k)
		}
	}
	for k, v := range p.AdditionalDeductions {
		if v.IsNegative() {
			return fmt.Errorf("%w: negative additional deduction %q", ErrInvalidComposition, k)
		}
	}
	return nil
}
