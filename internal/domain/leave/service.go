package leave

import (
	"context"
)

type LeaveService interface {
	CreateLeaveRequest(ctx context.Context, requesterID string, req CreateLeaveRequest) (LeaveRequestResponse, error)
	ApproveLeaveRequest(ctx context.Context, requesterID string, requestID string) (LeaveRequestResponse, error)
	RejectLeaveRequest(ctx context.Context, requesterID string, requestID string, req RejectLeaveRequest) (LeaveRequestResponse, error)
	CancelLeaveRequest(ctx context.Context, requesterID string, requestID string) (LeaveRequestResponse, error)
}
