package leave

import (
	"time"
)

// LeaveType entity
type LeaveType struct {
	ID             string
	OrganizationID string
	Name           string
	IsPaid         bool
	AnnualLimit    int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Balance tracks the days of one leave type a user may still take in a year.
type Balance struct {
	ID          string
	UserID      string
	LeaveTypeID string
	Year        int
	TotalDays   int
	UsedDays    int
	UpdatedAt   time.Time
}

func (b Balance) Remaining() int {
	return b.TotalDays - b.UsedDays
}

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

type Request struct {
	ID              string
	UserID          string
	OrganizationID  string
	LeaveTypeID     string
	StartDate       time.Time
	EndDate         time.Time
	NumberOfDays    int
	Reason          string
	Status          Status
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string
	CancelledAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Joined from leave_types
	IsPaid        bool
	LeaveTypeName string
}

// InclusiveDays counts calendar days from start to end, same day = 1.
func InclusiveDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// BalanceYear is the year a request is charged against.
func (r Request) BalanceYear() int {
	return r.StartDate.Year()
}

func (r Request) IsCancellable() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// ApprovedEvent is the payload of the leave.approved outbox event.
type ApprovedEvent struct {
	RequestID     string `json:"request_id"`
	UserID        string `json:"user_id"`
	LeaveTypeID   string `json:"leave_type_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	NumberOfDays  int    `json:"number_of_days"`
	ApprovedBy    string `json:"approved_by"`
	RemainingDays int    `json:"remaining_days"`
}
