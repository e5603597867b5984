package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const (
	constraintOpenSession   = "uk_attendance_open_session"
	constraintSessionNumber = "uk_attendance_session_number"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.SessionRepository {
	return &attendanceRepositoryImpl{db: db}
}

const sessionColumns = `id, user_id, organization_id, work_date, session_number, check_in, check_out,
	verified, verified_by, verified_at, created_at, updated_at`

func scanSession(row pgx.Row) (attendance.Session, error) {
	var s attendance.Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.OrganizationID,
		&s.WorkDate,
		&s.SessionNumber,
		&s.CheckIn,
		&s.CheckOut,
		&s.Verified,
		&s.VerifiedBy,
		&s.VerifiedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

// Create implements attendance.SessionRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_sessions (
			id, user_id, organization_id, work_date, session_number, check_in,
			verified, created_at, updated_at
		)
		SELECT gen_random_uuid(), $1, $2, $3::date, COALESCE(MAX(session_number), 0) + 1, $4,
			FALSE, NOW(), NOW()
		FROM attendance_sessions
		WHERE user_id = $1 AND work_date = $3::date
		RETURNING ` + sessionColumns

	created, err := scanSession(q.QueryRow(ctx, query, s.UserID, s.OrganizationID, s.WorkDate, s.CheckIn))
	if err != nil {
		if database.IsUniqueViolation(err, constraintOpenSession) || database.IsUniqueViolation(err, constraintSessionNumber) {
			return attendance.Session{}, attendance.ErrOngoingSession
		}
		return attendance.Session{}, fmt.Errorf("failed to create attendance session: %w", err)
	}
	return created, nil
}

// GetOpenSession implements attendance.SessionRepository.
func (r *attendanceRepositoryImpl) GetOpenSession(ctx context.Context, userID string) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE user_id = $1 AND check_out IS NULL
		ORDER BY check_in DESC
		LIMIT 1
	`

	s, err := scanSession(q.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.Session{}, attendance.ErrNoOpenSession
	}
	if err != nil {
		return attendance.Session{}, fmt.Errorf("failed to get open session: %w", err)
	}
	return s, nil
}

// GetOpenSessionOn implements attendance.SessionRepository.
func (r *attendanceRepositoryImpl) GetOpenSessionOn(ctx context.Context, userID string, workDate time.Time) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE user_id = $1 AND work_date = $2::date AND check_out IS NULL
	`

	s, err := scanSession(q.QueryRow(ctx, query, userID, workDate))
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.Session{}, attendance.ErrNoOpenSession
	}
	if err != nil {
		return attendance.Session{}, fmt.Errorf("failed to get open session: %w", err)
	}
	return s, nil
}

// GetByID implements attendance.SessionRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string, organizationID string) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sessionColumns + ` FROM attendance_sessions WHERE id = $1 AND organization_id = $2`

	s, err := scanSession(q.QueryRow(ctx, query, id, organizationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	if err != nil {
		return attendance.Session{}, fmt.Errorf("failed to get attendance session: %w", err)
	}
	return s, nil
}

// Close implements attendance.SessionRepository.
func (r *attendanceRepositoryImpl) Close(ctx context.Context, id string, checkOut time.Time) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET check_out = $2, updated_at = NOW()
		WHERE id = $1 AND check_out IS NULL
		RETURNING ` + sessionColumns

	s, err := scanSession(q.QueryRow(ctx, query, id, checkOut))
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.Session{}, attendance.ErrNoOpenSession
	}
	if err != nil {
		return attendance.Session{}, fmt.Errorf("failed to close attendance session: %w", err)
	}
	return s, nil
}

// MarkVerified implements attendance.SessionRepository.
func (r *attendanceRepositoryImpl) MarkVerified(ctx context.Context, id string, verifierID string, at time.Time) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendance_sessions
		SET verified = TRUE, verified_by = $2, verified_at = $3, updated_at = NOW()
		WHERE id = $1 AND verified = FALSE AND check_out IS NOT NULL
		RETURNING ` + sessionColumns

	s, err := scanSession(q.QueryRow(ctx, query, id, verifierID, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.Session{}, attendance.ErrSessionAlreadyFinal
	}
	if err != nil {
		return attendance.Session{}, fmt.Errorf("failed to verify attendance session: %w", err)
	}
	return s, nil
}

// ListByUser implements attendance.SessionRepository.
func (r *attendanceRepositoryImpl) ListByUser(ctx context.Context, userID string, from, to time.Time, verifiedOnly bool) ([]attendance.Session, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + sessionColumns + `
		FROM attendance_sessions
		WHERE user_id = $1 AND work_date >= $2 AND work_date < $3
			AND (NOT $4::boolean OR verified = TRUE)
		ORDER BY work_date, session_number
	`

	rows, err := q.Query(ctx, query, userID, from, to, verifiedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance sessions: %w", err)
	}
	return sessions, nil
}
