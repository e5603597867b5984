package outbox

import "context"

type Repository interface {
	// Create joins the caller's transaction when ctx carries one.
	Create(ctx context.Context, event Event) error
	// ListPending returns pending and failed events whose retry time has come.
	ListPending(ctx context.Context, limit int) ([]Event, error)
	MarkSent(ctx context.Context, id string) error
	// MarkFailed bumps retry_count and schedules the next attempt.
	MarkFailed(ctx context.Context, id string, reason string) error
}
