package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const constraintSalaryPeriod = "uk_salary_records_user_period"

// ========== PROFILES ==========

type salaryProfileRepositoryImpl struct {
	db *database.DB
}

func NewSalaryProfileRepository(db *database.DB) salary.ProfileRepository {
	return &salaryProfileRepositoryImpl{db: db}
}

const profileColumns = `user_id, base_salary, hra_percent, da_percent, ta_percent, pf_percent, tax_percent,
	insurance, additional_allowances, additional_deductions, updated_by, created_at, updated_at`

func scanProfile(row pgx.Row) (salary.Profile, error) {
	var (
		p                      salary.Profile
		allowances, deductions []byte
	)
	err := row.Scan(
		&p.UserID, &p.BaseSalary, &p.HRAPercent, &p.DAPercent, &p.TAPercent, &p.PFPercent, &p.TaxPercent,
		&p.Insurance, &allowances, &deductions, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return salary.Profile{}, err
	}
	if p.AdditionalAllowances, err = decodeAmounts(allowances); err != nil {
		return salary.Profile{}, err
	}
	if p.AdditionalDeductions, err = decodeAmounts(deductions); err != nil {
		return salary.Profile{}, err
	}
	return p, nil
}

// GetByUserID implements salary.ProfileRepository.
func (r *salaryProfileRepositoryImpl) GetByUserID(ctx context.Context, userID string) (salary.Profile, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + profileColumns + ` FROM salary_profiles WHERE user_id = $1`

	p, err := scanProfile(q.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return salary.Profile{}, salary.ErrProfileNotFound
	}
	if err != nil {
		return salary.Profile{}, fmt.Errorf("failed to get salary profile: %w", err)
	}
	return p, nil
}

// Upsert implements salary.ProfileRepository.
func (r *salaryProfileRepositoryImpl) Upsert(ctx context.Context, p salary.Profile) (salary.Profile, error) {
	q := GetQuerier(ctx, r.db)

	allowances, err := encodeAmounts(p.AdditionalAllowances)
	if err != nil {
		return salary.Profile{}, err
	}
	deductions, err := encodeAmounts(p.AdditionalDeductions)
	if err != nil {
		return salary.Profile{}, err
	}

	query := `
		INSERT INTO salary_profiles (
			user_id, base_salary, hra_percent, da_percent, ta_percent, pf_percent, tax_percent,
			insurance, additional_allowances, additional_deductions, updated_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			base_salary = EXCLUDED.base_salary,
			hra_percent = EXCLUDED.hra_percent,
			da_percent = EXCLUDED.da_percent,
			ta_percent = EXCLUDED.ta_percent,
			pf_percent = EXCLUDED.pf_percent,
			tax_percent = EXCLUDED.tax_percent,
			insurance = EXCLUDED.insurance,
			additional_allowances = EXCLUDED.additional_allowances,
			additional_deductions = EXCLUDED.additional_deductions,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING ` + profileColumns

	saved, err := scanProfile(q.QueryRow(ctx, query,
		p.UserID, p.BaseSalary, p.HRAPercent, p.DAPercent, p.TAPercent, p.PFPercent, p.TaxPercent,
		p.Insurance, allowances, deductions, p.UpdatedBy,
	))
	if err != nil {
		return salary.Profile{}, fmt.Errorf("failed to upsert salary profile: %w", err)
	}
	return saved, nil
}

// ========== RECORDS ==========

type salaryRecordRepositoryImpl struct {
	db *database.DB
}

func NewSalaryRecordRepository(db *database.DB) salary.RecordRepository {
	return &salaryRecordRepositoryImpl{db: db}
}

const recordColumns = `id, user_id, organization_id, month, year, basic_salary, allowances, deductions,
	tax, net_salary, status, generated_by, incentive, bonus, payment_mode, payment_ref,
	processed_at, remarks, paid_by, created_at, updated_at`

func scanRecord(row pgx.Row) (salary.Record, error) {
	var (
		rec                    salary.Record
		allowances, deductions []byte
	)
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.OrganizationID, &rec.Month, &rec.Year, &rec.BasicSalary,
		&allowances, &deductions, &rec.Tax, &rec.NetSalary, &rec.Status, &rec.GeneratedBy,
		&rec.Incentive, &rec.Bonus, &rec.PaymentMode, &rec.PaymentRef,
		&rec.ProcessedAt, &rec.Remarks, &rec.PaidBy, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return salary.Record{}, err
	}
	if rec.Allowances, err = decodeAmounts(allowances); err != nil {
		return salary.Record{}, err
	}
	if rec.Deductions, err = decodeAmounts(deductions); err != nil {
		return salary.Record{}, err
	}
	return rec, nil
}

func collectRecords(rows pgx.Rows) ([]salary.Record, error) {
	defer rows.Close()

	var records []salary.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate salary records: %w", err)
	}
	return records, nil
}

// Create implements salary.RecordRepository.
func (r *salaryRecordRepositoryImpl) Create(ctx context.Context, rec salary.Record) (salary.Record, error) {
	q := GetQuerier(ctx, r.db)

	allowances, err := encodeAmounts(rec.Allowances)
	if err != nil {
		return salary.Record{}, err
	}
	deductions, err := encodeAmounts(rec.Deductions)
	if err != nil {
		return salary.Record{}, err
	}

	query := `
		INSERT INTO salary_records (
			id, user_id, organization_id, month, year, basic_salary, allowances, deductions,
			tax, net_salary, status, generated_by, created_at, updated_at
		) VALUES (
			gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, NOW(), NOW()
		) RETURNING ` + recordColumns

	created, err := scanRecord(q.QueryRow(ctx, query,
		rec.UserID, rec.OrganizationID, rec.Month, rec.Year, rec.BasicSalary, allowances, deductions,
		rec.Tax, rec.NetSalary, rec.Status, rec.GeneratedBy,
	))
	if err != nil {
		if database.IsUniqueViolation(err, constraintSalaryPeriod) {
			return salary.Record{}, salary.ErrAlreadyGenerated
		}
		return salary.Record{}, fmt.Errorf("failed to create salary record: %w", err)
	}
	return created, nil
}

// GetByID implements salary.RecordRepository.
func (r *salaryRecordRepositoryImpl) GetByID(ctx context.Context, id string, organizationID string) (salary.Record, error) {
	return r.getOne(ctx, `SELECT `+recordColumns+` FROM salary_records WHERE id = $1 AND organization_id = $2`, id, organizationID)
}

// GetForUpdate implements salary.RecordRepository.
func (r *salaryRecordRepositoryImpl) GetForUpdate(ctx context.Context, id string, organizationID string) (salary.Record, error) {
	return r.getOne(ctx, `SELECT `+recordColumns+` FROM salary_records WHERE id = $1 AND organization_id = $2 FOR UPDATE`, id, organizationID)
}

// GetByPeriod implements salary.RecordRepository.
func (r *salaryRecordRepositoryImpl) GetByPeriod(ctx context.Context, userID string, month, year int) (salary.Record, error) {
	return r.getOne(ctx, `SELECT `+recordColumns+` FROM salary_records WHERE user_id = $1 AND month = $2 AND year = $3`, userID, month, year)
}

func (r *salaryRecordRepositoryImpl) getOne(ctx context.Context, query string, args ...interface{}) (salary.Record, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanRecord(q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return salary.Record{}, salary.ErrRecordNotFound
	}
	if err != nil {
		return salary.Record{}, fmt.Errorf("failed to get salary record: %w", err)
	}
	return rec, nil
}

// List implements salary.RecordRepository.
func (r *salaryRecordRepositoryImpl) List(ctx context.Context, userID string, month, year *int) ([]salary.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM salary_records
		WHERE user_id = $1
			AND ($2::int IS NULL OR month = $2)
			AND ($3::int IS NULL OR year = $3)
		ORDER BY year DESC, month DESC
	`

	rows, err := q.Query(ctx, query, userID, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary records: %w", err)
	}
	return collectRecords(rows)
}

// ListByPeriod implements salary.RecordRepository.
func (r *salaryRecordRepositoryImpl) ListByPeriod(ctx context.Context, userIDs []string, month, year int) ([]salary.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + recordColumns + `
		FROM salary_records
		WHERE user_id = ANY($1) AND month = $2 AND year = $3
	`

	rows, err := q.Query(ctx, query, userIDs, month, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list salary records by period: %w", err)
	}
	return collectRecords(rows)
}

// SumNetForYear implements salary.RecordRepository.
func (r *salaryRecordRepositoryImpl) SumNetForYear(ctx context.Context, userID string, year, throughMonth int) (decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(net_salary), 0)
		FROM salary_records
		WHERE user_id = $1 AND year = $2 AND month <= $3
	`

	var total decimal.Decimal
	if err := q.QueryRow(ctx, query, userID, year, throughMonth).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum year-to-date salary: %w", err)
	}
	return total, nil
}

// MarkPaid implements salary.RecordRepository.
func (r *salaryRecordRepositoryImpl) MarkPaid(ctx context.Context, rec salary.Record) (salary.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE salary_records
		SET status = $2, incentive = $3, bonus = $4, payment_mode = $5, payment_ref = $6,
			processed_at = $7, remarks = $8, paid_by = $9, updated_at = NOW()
		WHERE id = $1 AND status = $10
		RETURNING ` + recordColumns

	updated, err := scanRecord(q.QueryRow(ctx, query,
		rec.ID, salary.StatusPaid, rec.Incentive, rec.Bonus, rec.PaymentMode, rec.PaymentRef,
		rec.ProcessedAt, rec.Remarks, rec.PaidBy, salary.StatusPending,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return salary.Record{}, salary.ErrAlreadyPaid
	}
	if err != nil {
		return salary.Record{}, fmt.Errorf("failed to mark salary record paid: %w", err)
	}
	return updated, nil
}

func encodeAmounts(m map[string]decimal.Decimal) ([]byte, error) {
	if m == nil {
		m = map[string]decimal.Decimal{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode amounts: %w", err)
	}
	return data, nil
}

func decodeAmounts(data []byte) (map[string]decimal.Decimal, error) {
	m := map[string]decimal.Decimal{}
	if len(data) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode amounts: %w", err)
	}
	return m, nil
}
