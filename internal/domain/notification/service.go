package notification

import (
	"context"
)

// Service accepts notifications for asynchronous delivery.
type Service interface {
	Notify(ctx context.Context, userID string, templateID string, vars map[string]string) error
	Stop()
}
