package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

// Allowance and deduction keys written by the composer.
const (
	AllowanceHRA = "hra"
	AllowanceDA  = "da"
	AllowanceTA  = "ta"

	DeductionPF        = "pf"
	DeductionInsurance = "insurance"
	DeductionTax       = "tax"
	DeductionAbsence   = "absence"
)

// Default profile parameters, applied when a user has no stored profile.
var (
	DefaultHRAPercent = decimal.NewFromInt(40)
	DefaultDAPercent  = decimal.NewFromInt(10)
	DefaultTAPercent  = decimal.NewFromInt(10)
	DefaultPFPercent  = decimal.NewFromInt(12)
	DefaultTaxPercent = decimal.NewFromInt(10)
	DefaultInsurance  = decimal.NewFromInt(1000)
)

// Profile holds the per-employee salary parameters. Percentages are percent
// of BaseSalary.
type Profile struct {
	UserID               string
	BaseSalary           decimal.Decimal
	HRAPercent           decimal.Decimal
	DAPercent            decimal.Decimal
	TAPercent            decimal.Decimal
	PFPercent            decimal.Decimal
	TaxPercent           decimal.Decimal
	Insurance            decimal.Decimal
	AdditionalAllowances map[string]decimal.Decimal
	AdditionalDeductions map[string]decimal.Decimal
	UpdatedBy            *string
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// IsDefault is set when no row exists and the defaults were applied.
	IsDefault bool
}

func DefaultProfile(userID string) Profile {
	return Profile{
		UserID:               userID,
		BaseSalary:           decimal.Zero,
		HRAPercent:           DefaultHRAPercent,
		DAPercent:            DefaultDAPercent,
		TAPercent:            DefaultTAPercent,
		PFPercent:            DefaultPFPercent,
		TaxPercent:           DefaultTaxPercent,
		Insurance:            DefaultInsurance,
		AdditionalAllowances: map[string]decimal.Decimal{},
		AdditionalDeductions: map[string]decimal.Decimal{},
		IsDefault:            true,
	}
}

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
)

// Record is the persisted salary of one user for one period. It is unique
// per (UserID, Month, Year) and is never recomputed in place.
type Record struct {
	ID             string
	UserID         string
	OrganizationID string
	Month          int
	Year           int
	BasicSalary    decimal.Decimal
	Allowances     map[string]decimal.Decimal
	Deductions     map[string]decimal.Decimal
	Tax            decimal.Decimal
	NetSalary      decimal.Decimal
	Status         Status
	GeneratedBy    string

	// Payment metadata, set once by payment completion
	Incentive   *decimal.Decimal
	Bonus       *decimal.Decimal
	PaymentMode *string
	PaymentRef  *string
	ProcessedAt *time.Time
	Remarks     *string
	PaidBy      *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r Record) IsPaid() bool {
	return r.Status == StatusPaid
}

// Period returns the record's month as a time.Month.
func (r Record) Period() time.Month {
	return time.Month(r.Month)
}

// PreviousPeriod returns the month/year before (month, year).
func PreviousPeriod(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// GeneratedEvent is the payload of the salary.generated outbox event.
type GeneratedEvent struct {
	RecordID    string `json:"record_id"`
	UserID      string `json:"user_id"`
	Month       int    `json:"month"`
	Year        int    `json:"year"`
	NetSalary   string `json:"net_salary"`
	GeneratedBy string `json:"generated_by"`
}

// PaidEvent is the payload of the salary.paid outbox event.
type PaidEvent struct {
	RecordID    string    `json:"record_id"`
	UserID      string    `json:"user_id"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	NetSalary   string    `json:"net_salary"`
	PaymentMode string    `json:"payment_mode"`
	PaymentRef  string    `json:"payment_ref,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}
