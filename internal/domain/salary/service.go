package salary

import "context"

type SalaryService interface {
	GenerateSalary(ctx context.Context, requesterID string, req GenerateSalaryRequest) (SalaryRecordResponse, error)
	GetPayslips(ctx context.Context, requesterID string, filter PayslipFilter) ([]SalaryRecordResponse, error)
	GetSalaryStatistics(ctx context.Context, requesterID string, recordID string) (SalaryStatisticsResponse, error)
	CheckGenerationStatus(ctx context.Context, requesterID string, req GenerationStatusRequest) (map[string]GenerationStatus, error)
	CompletePayment(ctx context.Context, requesterID string, recordID string, req CompletePaymentRequest) (SalaryRecordResponse, error)
	GetProfile(ctx context.Context, requesterID string, userID string) (ProfileResponse, error)
	UpdateProfile(ctx context.Context, requesterID string, userID string, req UpdateProfileRequest) (ProfileResponse, error)
}

// Notifier dispatches user notifications; delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, userID string, templateID string, vars map[string]string) error
}
