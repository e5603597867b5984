package attendance

import (
	"context"
	"time"
)

// SessionRepository stores attendance sessions. Every read is scoped to the
// caller's organization.
type SessionRepository interface {
	// Create numbers the session after the user's existing sessions on the
	// same work date. A concurrent open session yields ErrOngoingSession.
	Create(ctx context.Context, session Session) (Session, error)

	// GetOpenSession returns the user's most recently started open session,
	// on any work date, or ErrNoOpenSession when the user has none.
	GetOpenSession(ctx context.Context, userID string) (Session, error)

	// GetOpenSessionOn is GetOpenSession restricted to one work date.
	GetOpenSessionOn(ctx context.Context, userID string, workDate time.Time) (Session, error)

	GetByID(ctx context.Context, id string, organizationID string) (Session, error)

	// Close stamps check-out on an open session and returns the updated row.
	Close(ctx context.Context, id string, checkOut time.Time) (Session, error)

	MarkVerified(ctx context.Context, id string, verifierID string, at time.Time) (Session, error)

	// ListByUser returns sessions with work dates in [from, to).
	ListByUser(ctx context.Context, userID string, from, to time.Time, verifiedOnly bool) ([]Session, error)
}
