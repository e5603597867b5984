package salary

import (
	"testing"

	"github.com/brianvoe/gofakeit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func profileWithBase(base string) Profile {
	p := DefaultProfile("user-1")
	p.BaseSalary = d(base)
	return p
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func TestCompose_FullPresence(t *testing.T) {
	c, err := Compose(profileWithBase("30000"), Inputs{WorkingDays: 22, PresentDays: 22})
	require.NoError(t, err)

	assertDecimal(t, "12000", c.Allowances[AllowanceHRA])
	assertDecimal(t, "3000", c.Allowances[AllowanceDA])
	assertDecimal(t, "3000", c.Allowances[AllowanceTA])
	assertDecimal(t, "18000", c.TotalAllowances)

	assertDecimal(t, "3600", c.Deductions[DeductionPF])
	assertDecimal(t, "1000", c.Deductions[DeductionInsurance])
	assertDecimal(t, "3000", c.Deductions[DeductionTax])
	assertDecimal(t, "0", c.Deductions[DeductionAbsence])
	assertDecimal(t, "7600", c.TotalDeductions)

	assertDecimal(t, "3000", c.Tax)
	assertDecimal(t, "40400", c.NetSalary)
}

func TestCompose_TwoAbsentDays(t *testing.T) {
	c, err := Compose(profileWithBase("30000"), Inputs{WorkingDays: 22, PresentDays: 20})
	require.NoError(t, err)

	assertDecimal(t, "2", c.AbsentDays)
	assertDecimal(t, "2727.27", c.AbsenceDeduction)
	assertDecimal(t, "2727.27", c.Deductions[DeductionAbsence])
	assertDecimal(t, "37672.73", c.NetSalary)
}

func TestCompose_HalfDaysAndPaidLeave(t *testing.T) {
	// 22 - 18 - 2/2 - 2 = 1 absent day
	c, err := Compose(profileWithBase("22000"), Inputs{WorkingDays: 22, PresentDays: 18, HalfDayCount: 2, PaidLeaveDays: 2})
	require.NoError(t, err)
	assertDecimal(t, "1", c.AbsentDays)
	assertDecimal(t, "1000", c.AbsenceDeduction)
}

func TestCompose_UnpaidLeaveIsNotSubtracted(t *testing.T) {
	c, err := Compose(profileWithBase("22000"), Inputs{WorkingDays: 22, PresentDays: 20, UnpaidLeaveDays: 2})
	require.NoError(t, err)
	assertDecimal(t, "2", c.AbsentDays)
}

func TestCompose_AbsentDaysClampedAtZero(t *testing.T) {
	c, err := Compose(profileWithBase("30000"), Inputs{WorkingDays: 20, PresentDays: 21, PaidLeaveDays: 3})
	require.NoError(t, err)
	assertDecimal(t, "0", c.AbsentDays)
	assertDecimal(t, "40400", c.NetSalary)
}

func TestCompose_ZeroWorkingDays(t *testing.T) {
	c, err := Compose(profileWithBase("30000"), Inputs{WorkingDays: 0})
	require.NoError(t, err)
	assertDecimal(t, "0", c.PerDaySalary)
	assertDecimal(t, "0", c.AbsenceDeduction)
	assertDecimal(t, "40400", c.NetSalary)
}

func TestCompose_AdditionalMapsMerge(t *testing.T) {
	p := profileWithBase("30000")
	p.AdditionalAllowances = map[string]decimal.Decimal{"meal": d("500")}
	p.AdditionalDeductions = map[string]decimal.Decimal{"loan": d("1500"), DeductionTax: d("2500")}

	c, err := Compose(p, Inputs{WorkingDays: 22, PresentDays: 22})
	require.NoError(t, err)

	assertDecimal(t, "500", c.Allowances["meal"])
	assertDecimal(t, "1500", c.Deductions["loan"])
	// later keys win, and tax follows the final deductions map
	assertDecimal(t, "2500", c.Tax)
	// 30000 + 18500 - (3600 + 1000 + 2500 + 0 + 1500)
	assertDecimal(t, "39900", c.NetSalary)
}

func TestCompose_NetFlooredAtZero(t *testing.T) {
	p := profileWithBase("1000")
	p.AdditionalDeductions = map[string]decimal.Decimal{"penalty": d("99999")}

	c, err := Compose(p, Inputs{WorkingDays: 22})
	require.NoError(t, err)
	assertDecimal(t, "0", c.NetSalary)
}

func TestCompose_RejectsBadInput(t *testing.T) {
	cases := map[string]func(p *Profile, in *Inputs){
		"negative base":        func(p *Profile, in *Inputs) { p.BaseSalary = d("-1") },
		"negative insurance":   func(p *Profile, in *Inputs) { p.Insurance = d("-1") },
		"percentage above 100": func(p *Profile, in *Inputs) { p.HRAPercent = d("101") },
		"negative working":     func(p *Profile, in *Inputs) { in.WorkingDays = -1 },
		"negative present":     func(p *Profile, in *Inputs) { in.PresentDays = -3 },
		"negative extra":       func(p *Profile, in *Inputs) { p.AdditionalAllowances = map[string]decimal.Decimal{"x": d("-5")} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := profileWithBase("30000")
			in := Inputs{WorkingDays: 22, PresentDays: 22}
			mutate(&p, &in)

			_, err := Compose(p, in)
			assert.ErrorIs(t, err, ErrInvalidComposition)
		})
	}
}

func TestCompose_NetNeverNegative(t *testing.T) {
	gofakeit.Seed(7)
	for i := 0; i < 500; i++ {
		p := DefaultProfile("user")
		p.BaseSalary = decimal.NewFromFloat(gofakeit.Float64Range(0, 200000)).Round(2)
		p.HRAPercent = decimal.NewFromInt(int64(gofakeit.Number(0, 100)))
		p.PFPercent = decimal.NewFromInt(int64(gofakeit.Number(0, 100)))
		p.TaxPercent = decimal.NewFromInt(int64(gofakeit.Number(0, 100)))
		p.Insurance = decimal.NewFromInt(int64(gofakeit.Number(0, 50000)))
		p.AdditionalDeductions = map[string]decimal.Decimal{
			"extra": decimal.NewFromInt(int64(gofakeit.Number(0, 300000))),
		}

		wd := gofakeit.Number(0, 31)
		in := Inputs{
			WorkingDays:   wd,
			PresentDays:   gofakeit.Number(0, 31),
			HalfDayCount:  gofakeit.Number(0, 10),
			PaidLeaveDays: gofakeit.Number(0, 10),
		}

		c, err := Compose(p, in)
		require.NoError(t, err)
		assert.False(t, c.NetSalary.IsNegative(), "net %s for %+v", c.NetSalary, in)
		assert.False(t, c.AbsentDays.IsNegative())
		assert.True(t, c.AbsenceDeduction.LessThanOrEqual(p.BaseSalary.Add(d("0.01"))))
	}
}

func TestAttendancePercentage(t *testing.T) {
	assertDecimal(t, "100", AttendancePercentage(22, 22, 0))
	assertDecimal(t, "95.45", AttendancePercentage(22, 20, 2))
	assertDecimal(t, "0", AttendancePercentage(0, 5, 1))
}

func TestMonthOverMonth(t *testing.T) {
	assert.Nil(t, MonthOverMonth(d("100"), nil))

	mom := MonthOverMonth(d("37672.73"), &Record{ID: "prev", NetSalary: d("40400")})
	require.NotNil(t, mom)
	assertDecimal(t, "-2727.27", mom.Delta)
	require.NotNil(t, mom.DeltaPercent)
	assertDecimal(t, "-6.75", *mom.DeltaPercent)

	zero := MonthOverMonth(d("100"), &Record{ID: "prev", NetSalary: decimal.Zero})
	require.NotNil(t, zero)
	assert.Nil(t, zero.DeltaPercent)
}

func TestPreviousPeriod(t *testing.T) {
	m, y := PreviousPeriod(1, 2025)
	assert.Equal(t, 12, m)
	assert.Equal(t, 2024, y)

	m, y = PreviousPeriod(7, 2025)
	assert.Equal(t, 6, m)
	assert.Equal(t, 2025, y)
}

func TestUpdateProfileRequest_Validate(t *testing.T) {
	neg := d("-1")
	over := d("100.5")
	ok := d("15")

	assert.NoError(t, (&UpdateProfileRequest{HRAPercent: &ok}).Validate())
	assert.Error(t, (&UpdateProfileRequest{BaseSalary: &neg}).Validate())
	assert.Error(t, (&UpdateProfileRequest{TaxPercent: &over}).Validate())
	assert.Error(t, (&UpdateProfileRequest{AdditionalDeductions: map[string]decimal.Decimal{DeductionAbsence: d("1")}}).Validate())
	assert.Error(t, (&UpdateProfileRequest{AdditionalAllowances: map[string]decimal.Decimal{"meal": neg}}).Validate())
}

func TestGenerateSalaryRequest_Validate(t *testing.T) {
	req := GenerateSalaryRequest{UserID: "8f14e45f-ceea-4e7a-9b1c-2d4c3b1a0e11", Month: 9, Year: 2025}
	assert.NoError(t, req.Validate())

	bad := GenerateSalaryRequest{UserID: "nope", Month: 13, Year: 1999}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_id")
	assert.Contains(t, err.Error(), "month")
	assert.Contains(t, err.Error(), "year")
}
