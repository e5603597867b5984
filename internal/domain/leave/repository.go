package leave

import (
	"context"
	"time"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	GetByID(ctx context.Context, id string, organizationID string) (LeaveType, error)
}

// BalanceRepository - interface for leave_balances table
type BalanceRepository interface {
	// GetForUpdate locks the balance row for the rest of the transaction.
	GetForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (Balance, error)
	AdjustUsed(ctx context.Context, id string, delta int) (Balance, error)
}

// RequestRepository - interface for leave_requests table
type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string, organizationID string) (Request, error)
	// GetForUpdate locks the request row for the rest of the transaction.
	GetForUpdate(ctx context.Context, id string, organizationID string) (Request, error)
	UpdateStatus(ctx context.Context, request Request) error
	// ListApproved returns APPROVED requests of userID intersecting [from, to),
	// with IsPaid joined from the leave type.
	ListApproved(ctx context.Context, userID string, from, to time.Time) ([]Request, error)
}
