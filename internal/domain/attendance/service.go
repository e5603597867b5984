package attendance

import "context"

type AttendanceService interface {
	CheckIn(ctx context.Context, requesterID string) (SessionResponse, error)
	CheckOut(ctx context.Context, requesterID string) (CheckOutResponse, error)
	GetMyAttendance(ctx context.Context, requesterID string, filter MonthFilter) (MonthlyAttendanceResponse, error)
	VerifySession(ctx context.Context, requesterID string, sessionID string) (SessionResponse, error)
}
