package salary

import (
	"context"

	"github.com/shopspring/decimal"
)

type ProfileRepository interface {
	// GetByUserID returns ErrProfileNotFound when the user has no profile.
	GetByUserID(ctx context.Context, userID string) (Profile, error)
	Upsert(ctx context.Context, profile Profile) (Profile, error)
}

type RecordRepository interface {
	// Create inserts without reading first; a duplicate period yields
	// ErrAlreadyGenerated.
	Create(ctx context.Context, record Record) (Record, error)
	GetByID(ctx context.Context, id string, organizationID string) (Record, error)
	GetForUpdate(ctx context.Context, id string, organizationID string) (Record, error)
	GetByPeriod(ctx context.Context, userID string, month, year int) (Record, error)
	// List returns a user's records newest period first.
	List(ctx context.Context, userID string, month, year *int) ([]Record, error)
	// ListByPeriod returns the records of userIDs for one period.
	ListByPeriod(ctx context.Context, userIDs []string, month, year int) ([]Record, error)
	// SumNetForYear sums net salary of months 1..throughMonth of year.
	SumNetForYear(ctx context.Context, userID string, year, throughMonth int) (decimal.Decimal, error)
	MarkPaid(ctx context.Context, record Record) (Record, error)
}
