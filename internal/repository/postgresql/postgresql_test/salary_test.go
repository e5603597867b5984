package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(userID, orgID, generatedBy string, month, year int, net int64) salary.Record {
	return salary.Record{
		UserID:         userID,
		OrganizationID: orgID,
		Month:          month,
		Year:           year,
		BasicSalary:    decimal.NewFromInt(30000),
		Allowances:     map[string]decimal.Decimal{"hra": decimal.NewFromInt(12000)},
		Deductions:     map[string]decimal.Decimal{"pf": decimal.NewFromInt(3600)},
		Tax:            decimal.NewFromInt(3000),
		NetSalary:      decimal.NewFromInt(net),
		Status:         salary.StatusPending,
		GeneratedBy:    generatedBy,
	}
}

func TestSalaryRecordRepository_ConcurrentGeneration(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewSalaryRecordRepository(testDB)
	tx := postgresql.NewTransactor(testDB)
	outboxRepo := postgresql.NewOutboxRepository(testDB)

	orgID := createOrganization(t, ctx, "Acme")
	hrID := createUser(t, ctx, orgID, "hr@acme.test", "hr", nil)
	employeeID := createUser(t, ctx, orgID, "employee@acme.test", "employee", nil)

	const workers = 2
	var (
		wg        sync.WaitGroup
		start     = make(chan struct{})
		successes int
		conflicts int
		mu        sync.Mutex
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
				created, err := repo.Create(ctx, newRecord(employeeID, orgID, hrID, 1, 2024, 40400))
				if err != nil {
					return err
				}
				event, err := outbox.NewEvent(outbox.AggregateSalaryRecord, created.ID, outbox.EventSalaryGenerated, map[string]string{"record_id": created.ID})
				if err != nil {
					return err
				}
				return outboxRepo.Create(ctx, event)
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, salary.ErrAlreadyGenerated):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)

	var records, events int
	require.NoError(t, testDB.QueryRow(ctx, `SELECT COUNT(*) FROM salary_records WHERE user_id = $1`, employeeID).Scan(&records))
	require.NoError(t, testDB.QueryRow(ctx, `SELECT COUNT(*) FROM outbox_events WHERE event_type = $1`, outbox.EventSalaryGenerated).Scan(&events))
	assert.Equal(t, 1, records)
	assert.Equal(t, 1, events, "the losing transaction must not leave an event behind")
}

func TestSalaryRecordRepository_Queries(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewSalaryRecordRepository(testDB)

	orgID := createOrganization(t, ctx, "Acme")
	otherOrg := createOrganization(t, ctx, "Globex")
	hrID := createUser(t, ctx, orgID, "hr@acme.test", "hr", nil)
	employeeID := createUser(t, ctx, orgID, "employee@acme.test", "employee", nil)

	jan, err := repo.Create(ctx, newRecord(employeeID, orgID, hrID, 1, 2024, 40400))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newRecord(employeeID, orgID, hrID, 2, 2024, 37000))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newRecord(employeeID, orgID, hrID, 3, 2024, 41000))
	require.NoError(t, err)

	t.Run("amount maps round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, jan.ID, orgID)
		require.NoError(t, err)
		assert.True(t, got.Allowances["hra"].Equal(decimal.NewFromInt(12000)))
		assert.True(t, got.NetSalary.Equal(decimal.NewFromInt(40400)))
	})

	t.Run("other organization cannot read", func(t *testing.T) {
		_, err := repo.GetByID(ctx, jan.ID, otherOrg)
		assert.ErrorIs(t, err, salary.ErrRecordNotFound)
	})

	t.Run("year to date", func(t *testing.T) {
		sum, err := repo.SumNetForYear(ctx, employeeID, 2024, 2)
		require.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(77400)), sum.String())
	})

	t.Run("list filters", func(t *testing.T) {
		year := 2024
		month := 2
		all, err := repo.List(ctx, employeeID, nil, &year)
		require.NoError(t, err)
		assert.Len(t, all, 3)

		feb, err := repo.List(ctx, employeeID, &month, &year)
		require.NoError(t, err)
		require.Len(t, feb, 1)
		assert.Equal(t, 2, feb[0].Month)
	})

	t.Run("by period", func(t *testing.T) {
		records, err := repo.ListByPeriod(ctx, []string{employeeID, hrID}, 1, 2024)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, jan.ID, records[0].ID)
	})
}

func TestSalaryRecordRepository_MarkPaidOnce(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewSalaryRecordRepository(testDB)

	orgID := createOrganization(t, ctx, "Acme")
	hrID := createUser(t, ctx, orgID, "hr@acme.test", "hr", nil)
	employeeID := createUser(t, ctx, orgID, "employee@acme.test", "employee", nil)

	rec, err := repo.Create(ctx, newRecord(employeeID, orgID, hrID, 1, 2024, 40400))
	require.NoError(t, err)

	mode := "bank_transfer"
	rec.PaymentMode = &mode
	rec.PaidBy = &hrID
	paid, err := repo.MarkPaid(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, salary.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaymentMode)
	assert.Equal(t, mode, *paid.PaymentMode)

	_, err = repo.MarkPaid(ctx, rec)
	assert.ErrorIs(t, err, salary.ErrAlreadyPaid)
}

func TestSalaryProfileRepository_Upsert(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := postgresql.NewSalaryProfileRepository(testDB)

	orgID := createOrganization(t, ctx, "Acme")
	employeeID := createUser(t, ctx, orgID, "employee@acme.test", "employee", nil)

	_, err := repo.GetByUserID(ctx, employeeID)
	require.ErrorIs(t, err, salary.ErrProfileNotFound)

	profile := salary.DefaultProfile(employeeID)
	profile.BaseSalary = decimal.NewFromInt(30000)
	profile.AdditionalAllowances = map[string]decimal.Decimal{"meal": decimal.NewFromInt(500)}

	saved, err := repo.Upsert(ctx, profile)
	require.NoError(t, err)
	assert.False(t, saved.IsDefault)
	assert.True(t, saved.BaseSalary.Equal(decimal.NewFromInt(30000)))

	profile.BaseSalary = decimal.NewFromInt(32000)
	_, err = repo.Upsert(ctx, profile)
	require.NoError(t, err)

	got, err := repo.GetByUserID(ctx, employeeID)
	require.NoError(t, err)
	assert.True(t, got.BaseSalary.Equal(decimal.NewFromInt(32000)))
	assert.True(t, got.AdditionalAllowances["meal"].Equal(decimal.NewFromInt(500)))
}
