package calendar

import (
	"context"
	"time"
)

type HolidayRepository interface {
	// ListHolidays returns holidays of organizationID dated in [from, to).
	ListHolidays(ctx context.Context, organizationID string, from, to time.Time) ([]Holiday, error)
}

type SettingsRepository interface {
	// GetSettings returns ErrSettingsNotFound when the organization has no row.
	GetSettings(ctx context.Context, organizationID string) (OrganizationSettings, error)
}
