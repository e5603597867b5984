package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

// GetByID implements leave.LeaveTypeRepository.
func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string, organizationID string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, name, is_paid, annual_limit, created_at, updated_at
		FROM leave_types
		WHERE id = $1 AND organization_id = $2
	`

	var lt leave.LeaveType
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&lt.ID, &lt.OrganizationID, &lt.Name, &lt.IsPaid, &lt.AnnualLimit, &lt.CreatedAt, &lt.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	if err != nil {
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type: %w", err)
	}
	return lt, nil
}

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

// GetForUpdate implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetForUpdate(ctx context.Context, userID, leaveTypeID string, year int) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, leave_type_id, year, total_days, used_days, updated_at
		FROM leave_balances
		WHERE user_id = $1 AND leave_type_id = $2 AND year = $3
		FOR UPDATE
	`

	var b leave.Balance
	err := q.QueryRow(ctx, query, userID, leaveTypeID, year).Scan(
		&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year, &b.TotalDays, &b.UsedDays, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to lock leave balance: %w", err)
	}
	return b, nil
}

// AdjustUsed implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) AdjustUsed(ctx context.Context, id string, delta int) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET used_days = used_days + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, leave_type_id, year, total_days, used_days, updated_at
	`

	var b leave.Balance
	err := q.QueryRow(ctx, query, id, delta).Scan(
		&b.ID, &b.UserID, &b.LeaveTypeID, &b.Year, &b.TotalDays, &b.UsedDays, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	if database.ConstraintViolation(err, database.CheckViolation, "") {
		return leave.Balance{}, leave.ErrInsufficientBalance
	}
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to adjust leave balance: %w", err)
	}
	return b, nil
}

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestSelect = `
	SELECT lr.id, lr.user_id, lr.organization_id, lr.leave_type_id, lr.start_date, lr.end_date,
		lr.number_of_days, lr.reason, lr.status, lr.approved_by, lr.approved_at,
		lr.rejected_by, lr.rejected_at, lr.rejection_reason, lr.cancelled_at,
		lr.created_at, lr.updated_at, lt.is_paid, lt.name
	FROM leave_requests lr
	INNER JOIN leave_types lt ON lt.id = lr.leave_type_id
`

func scanLeaveRequest(row pgx.Row) (leave.Request, error) {
	var lr leave.Request
	err := row.Scan(
		&lr.ID,
		&lr.UserID,
		&lr.OrganizationID,
		&lr.LeaveTypeID,
		&lr.StartDate,
		&lr.EndDate,
		&lr.NumberOfDays,
		&lr.Reason,
		&lr.Status,
		&lr.ApprovedBy,
		&lr.ApprovedAt,
		&lr.RejectedBy,
		&lr.RejectedAt,
		&lr.RejectionReason,
		&lr.CancelledAt,
		&lr.CreatedAt,
		&lr.UpdatedAt,
		&lr.IsPaid,
		&lr.LeaveTypeName,
	)
	return lr, err
}

// Create implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, user_id, organization_id, leave_type_id,
			start_date, end_date, number_of_days, reason, status,
			created_at, updated_at
		) VALUES (
			gen_random_uuid(), $1, $2, $3,
			$4, $5, $6, $7, $8,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.UserID, request.OrganizationID, request.LeaveTypeID,
		request.StartDate, request.EndDate, request.NumberOfDays, request.Reason, request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return request, nil
}

// GetByID implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string, organizationID string) (leave.Request, error) {
	return r.get(ctx, leaveRequestSelect+` WHERE lr.id = $1 AND lr.organization_id = $2`, id, organizationID)
}

// GetForUpdate implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) GetForUpdate(ctx context.Context, id string, organizationID string) (leave.Request, error) {
	return r.get(ctx, leaveRequestSelect+` WHERE lr.id = $1 AND lr.organization_id = $2 FOR UPDATE OF lr`, id, organizationID)
}

func (r *leaveRequestRepositoryImpl) get(ctx context.Context, query string, id, organizationID string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	lr, err := scanLeaveRequest(q.QueryRow(ctx, query, id, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}
	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return lr, nil
}

// UpdateStatus implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, request leave.Request) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $2, approved_by = $3, approved_at = $4,
			rejected_by = $5, rejected_at = $6, rejection_reason = $7,
			cancelled_at = $8, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		request.ID, request.Status, request.ApprovedBy, request.ApprovedAt,
		request.RejectedBy, request.RejectedAt, request.RejectionReason,
		request.CancelledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request status: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// ListApproved implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) ListApproved(ctx context.Context, userID string, from, to time.Time) ([]leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveRequestSelect + `
		WHERE lr.user_id = $1 AND lr.status = $2
			AND lr.start_date < $4 AND lr.end_date >= $3
		ORDER BY lr.start_date
	`

	rows, err := q.Query(ctx, query, userID, leave.StatusApproved, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved leave: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		lr, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, lr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leave requests: %w", err)
	}
	return requests, nil
}
