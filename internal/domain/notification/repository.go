package notification

import (
	"context"
)

// Repository persists rendered notifications. CreateBatch is the worker
// path; Create is used when the queue is full.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, batch []*Notification) error
}
