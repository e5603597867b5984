package salary

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const maxStatusBatch = 200

// PaymentModes accepted by payment completion.
var PaymentModes = []string{"bank_transfer", "cash", "cheque"}

type GenerateSalaryRequest struct {
	UserID string `json:"user_id"`
	Month  int    `json:"month"`
	Year   int    `json:"year"`
}

func (r *GenerateSalaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs.Add("user_id", "user_id is required")
	} else if !validator.IsValidUUID(r.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	validator.ValidatePeriod(&errs, "month", r.Month, "year", r.Year)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PayslipFilter struct {
	UserID string `json:"user_id"`
	Month  *int   `json:"month,omitempty"`
	Year   *int   `json:"year,omitempty"`
}

func (f *PayslipFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.UserID) {
		errs.Add("user_id", "user_id is required")
	} else if !validator.IsValidUUID(f.UserID) {
		errs.Add("user_id", "user_id must be a valid UUID")
	}
	if f.Month != nil && !validator.IsValidMonth(*f.Month) {
		errs.Add("month", "month must be between 1 and 12")
	}
	if f.Year != nil && !validator.IsValidYear(*f.Year) {
		errs.Add("year", "year must be between 2000 and 2100")
	}

	return errs.Err()
}

type GenerationStatusRequest struct {
	UserIDs []string `json:"user_ids"`
	Month   int      `json:"month"`
	Year    int      `json:"year"`
}

func (r *GenerationStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	switch {
	case len(r.UserIDs) == 0:
		errs.Add("user_ids", "user_ids must not be empty")
	case len(r.UserIDs) > maxStatusBatch:
		errs.Add("user_ids", "user_ids must not exceed 200 entries")
	default:
		for _, id := range r.UserIDs {
			if !validator.IsValidUUID(id) {
				errs.Add("user_ids", "user_ids must contain valid UUIDs")
				break
			}
		}
	}
	validator.ValidatePeriod(&errs, "month", r.Month, "year", r.Year)

	return errs.Err()
}

type GenerationStatus struct {
	Generated bool    `json:"generated"`
	Status    *Status `json:"status,omitempty"`
	RecordID  *string `json:"record_id,omitempty"`
}

type CompletePaymentRequest struct {
	PaymentMode string           `json:"payment_mode"`
	PaymentRef  *string          `json:"payment_ref,omitempty"`
	Incentive   *decimal.Decimal `json:"incentive,omitempty"`
	Bonus       *decimal.Decimal `json:"bonus,omitempty"`
	Remarks     *string          `json:"remarks,omitempty"`
}

func (r *CompletePaymentRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.PaymentMode, PaymentModes) {
		errs.Add("payment_mode", "payment_mode must be one of bank_transfer, cash, cheque")
	}
	if r.PaymentRef != nil && len(*r.PaymentRef) > 255 {
		errs.Add("payment_ref", "payment_ref must not exceed 255 characters")
	}
	if r.Incentive != nil && r.Incentive.IsNegative() {
		errs.Add("incentive", "incentive must not be negative")
	}
	if r.Bonus != nil && r.Bonus.IsNegative() {
		errs.Add("bonus", "bonus must not be negative")
	}
	if r.Remarks != nil && len(*r.Remarks) > 1000 {
		errs.Add("remarks", "remarks must not exceed 1000 characters")
	}

	return errs.Err()
}

// UpdateProfileRequest replaces the fields that are set.
type UpdateProfileRequest struct {
	BaseSalary           *decimal.Decimal           `json:"base_salary,omitempty"`
	HRAPercent           *decimal.Decimal           `json:"hra_percent,omitempty"`
	DAPercent            *decimal.Decimal           `json:"da_percent,omitempty"`
	TAPercent            *decimal.Decimal           `json:"ta_percent,omitempty"`
	PFPercent            *decimal.Decimal           `json:"pf_percent,omitempty"`
	TaxPercent           *decimal.Decimal           `json:"tax_percent,omitempty"`
	Insurance            *decimal.Decimal           `json:"insurance,omitempty"`
	AdditionalAllowances map[string]decimal.Decimal `json:"additional_allowances,omitempty"`
	AdditionalDeductions map[string]decimal.Decimal `json:"additional_deductions,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs.Add("base_salary", "base_salary must not be negative")
	}
	if r.Insurance != nil && r.Insurance.IsNegative() {
		errs.Add("insurance", "insurance must not be negative")
	}

	percentages := []struct {
		field string
		value *decimal.Decimal
	}{
		{"hra_percent", r.HRAPercent},
		{"da_percent", r.DAPercent},
		{"ta_percent", r.TAPercent},
		{"pf_percent", r.PFPercent},
		{"tax_percent", r.TaxPercent},
	}
	for _, p := range percentages {
		if p.value != nil && !validator.IsValidPercentage(*p.value) {
			errs.Add(p.field, p.field+" must be between 0 and 100")
		}
	}

	validateAmounts(&errs, "additional_allowances", r.AdditionalAllowances)
	validateAmounts(&errs, "additional_deductions", r.AdditionalDeductions)

	return errs.Err()
}

// reservedKeys would silently replace composer-computed components.
var reservedKeys = map[string][]string{
	"additional_allowances": {AllowanceHRA, AllowanceDA, AllowanceTA},
	"additional_deductions": {DeductionPF, DeductionInsurance, DeductionTax, DeductionAbsence},
}

func validateAmounts(errs *validator.ValidationErrors, field string, amounts map[string]decimal.Decimal) {
	for k, v := range amounts {
		if validator.IsEmpty(k) {
			errs.Add(field, field+" keys must not be empty")
			continue
		}
		if validator.IsInSlice(k, reservedKeys[field]) {
			errs.Add(field, field+" must not override "+k)
		}
		if v.IsNegative() {
			errs.Add(field, field+" amounts must not be negative")
		}
	}
}

// Apply returns p with the request's fields replacing its own.
func (r *UpdateProfileRequest) Apply(p Profile) Profile {
	set := func(dst *decimal.Decimal, src *decimal.Decimal) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.BaseSalary, r.BaseSalary)
	set(&p.HRAPercent, r.HRAPercent)
	set(&p.DAPercent, r.DAPercent)
	set(&p.TAPercent, r.TAPercent)
	set(&p.PFPercent, r.PFPercent)
	set(&p.TaxPercent, r.TaxPercent)
	set(&p.Insurance, r.Insurance)
	if r.AdditionalAllowances != nil {
		p.AdditionalAllowances = r.AdditionalAllowances
	}
	if r.AdditionalDeductions != nil {
		p.AdditionalDeductions = r.AdditionalDeductions
	}
	p.IsDefault = false
	return p
}

type ProfileResponse struct {
	UserID               string                     `json:"user_id"`
	BaseSalary           decimal.Decimal            `json:"base_salary"`
	HRAPercent           decimal.Decimal            `json:"hra_percent"`
	DAPercent            decimal.Decimal            `json:"da_percent"`
	TAPercent            decimal.Decimal            `json:"ta_percent"`
	PFPercent            decimal.Decimal            `json:"pf_percent"`
	TaxPercent           decimal.Decimal            `json:"tax_percent"`
	Insurance            decimal.Decimal            `json:"insurance"`
	AdditionalAllowances map[string]decimal.Decimal `json:"additional_allowances"`
	AdditionalDeductions map[string]decimal.Decimal `json:"additional_deductions"`
	IsDefault            bool                       `json:"is_default"`
	UpdatedAt            *time.Time                 `json:"updated_at,omitempty"`
}

func NewProfileResponse(p Profile) ProfileResponse {
	resp := ProfileResponse{
		UserID:               p.UserID,
		BaseSalary:           p.BaseSalary,
		HRAPercent:           p.HRAPercent,
		DAPercent:            p.DAPercent,
		TAPercent:            p.TAPercent,
		PFPercent:            p.PFPercent,
		TaxPercent:           p.TaxPercent,
		Insurance:            p.Insurance,
		AdditionalAllowances: p.AdditionalAllowances,
		AdditionalDeductions: p.AdditionalDeductions,
		IsDefault:            p.IsDefault,
	}
	if !p.UpdatedAt.IsZero() {
		resp.UpdatedAt = &p.UpdatedAt
	}
	return resp
}

type SalaryRecordResponse struct {
	ID          string                     `json:"id"`
	UserID      string                     `json:"user_id"`
	Month       int                        `json:"month"`
	Year        int                        `json:"year"`
	BasicSalary decimal.Decimal            `json:"basic_salary"`
	Allowances  map[string]decimal.Decimal `json:"allowances"`
	Deductions  map[string]decimal.Decimal `json:"deductions"`
	Tax         decimal.Decimal            `json:"tax"`
	NetSalary   decimal.Decimal            `json:"net_salary"`
	Status      Status                     `json:"status"`
	Incentive   *decimal.Decimal           `json:"incentive,omitempty"`
	Bonus       *decimal.Decimal           `json:"bonus,omitempty"`
	PaymentMode *string                    `json:"payment_mode,omitempty"`
	PaymentRef  *string                    `json:"payment_ref,omitempty"`
	ProcessedAt *time.Time                 `json:"processed_at,omitempty"`
	Remarks     *string                    `json:"remarks,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
}

func NewSalaryRecordResponse(r Record) SalaryRecordResponse {
	return SalaryRecordResponse{
		ID:          r.ID,
		UserID:      r.UserID,
		Month:       r.Month,
		Year:        r.Year,
		BasicSalary: r.BasicSalary,
		Allowances:  r.Allowances,
		Deductions:  r.Deductions,
		Tax:         r.Tax,
		NetSalary:   r.NetSalary,
		Status:      r.Status,
		Incentive:   r.Incentive,
		Bonus:       r.Bonus,
		PaymentMode: r.PaymentMode,
		PaymentRef:  r.PaymentRef,
		ProcessedAt: r.ProcessedAt,
		Remarks:     r.Remarks,
		CreatedAt:   r.CreatedAt,
	}
}

type MonthOverMonthResponse struct {
	PreviousRecordID  string           `json:"previous_record_id"`
	PreviousNetSalary decimal.Decimal  `json:"previous_net_salary"`
	Delta             decimal.Decimal  `json:"delta"`
	DeltaPercent      *decimal.Decimal `json:"delta_percent,omitempty"`
}

type AttendanceFacts struct {
	WorkingDays     int             `json:"working_days"`
	PresentDays     int             `json:"present_days"`
	HalfDayCount    int             `json:"half_day_count"`
	PaidLeaveDays   int             `json:"paid_leave_days"`
	UnpaidLeaveDays int             `json:"unpaid_leave_days"`
	AbsentDays      decimal.Decimal `json:"absent_days"`
}

type SalaryStatisticsResponse struct {
	Record               SalaryRecordResponse    `json:"record"`
	Facts                AttendanceFacts         `json:"facts"`
	AttendancePercentage decimal.Decimal         `json:"attendance_percentage"`
	MonthOverMonth       *MonthOverMonthResponse `json:"month_over_month,omitempty"`
	YearToDateNet        decimal.Decimal         `json:"year_to_date_net"`
}
