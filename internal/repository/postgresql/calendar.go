package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) calendar.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// ListHolidays implements calendar.HolidayRepository.
func (r *holidayRepositoryImpl) ListHolidays(ctx context.Context, organizationID string, from, to time.Time) ([]calendar.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, holiday_date, name, is_optional
		FROM holidays
		WHERE organization_id = $1 AND holiday_date >= $2 AND holiday_date < $3
		ORDER BY holiday_date
	`

	rows, err := q.Query(ctx, query, organizationID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []calendar.Holiday
	for rows.Next() {
		var h calendar.Holiday
		if err := rows.Scan(&h.ID, &h.OrganizationID, &h.Date, &h.Name, &h.IsOptional); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holidays: %w", err)
	}
	return holidays, nil
}

type settingsRepositoryImpl struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) calendar.SettingsRepository {
	return &settingsRepositoryImpl{db: db}
}

// GetSettings implements calendar.SettingsRepository.
func (r *settingsRepositoryImpl) GetSettings(ctx context.Context, organizationID string) (calendar.OrganizationSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT organization_id, weekend_mask, timezone
		FROM organization_settings
		WHERE organization_id = $1
	`

	var (
		settings calendar.OrganizationSettings
		mask     []int32
	)
	err := q.QueryRow(ctx, query, organizationID).Scan(&settings.OrganizationID, &mask, &settings.Timezone)
	if errors.Is(err, pgx.ErrNoRows) {
		return calendar.OrganizationSettings{}, calendar.ErrSettingsNotFound
	}
	if err != nil {
		return calendar.OrganizationSettings{}, fmt.Errorf("failed to get organization settings: %w", err)
	}

	days := make([]int, len(mask))
	for i, d := range mask {
		days[i] = int(d)
	}
	settings.WeekendMask = calendar.NewWeekendMask(days)
	return settings, nil
}
