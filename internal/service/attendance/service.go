package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/service/access"
	"go.uber.org/zap"
)

type AttendanceServiceImpl struct {
	guard    *access.Guard
	sessions attendance.SessionRepository
	settings calendar.SettingsRepository
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttendanceService builds the session service. location is used for work
// dates when the organization has no timezone of its own.
func NewAttendanceService(
	guard *access.Guard,
	sessions attendance.SessionRepository,
	settings calendar.SettingsRepository,
	location *time.Location,
	logger ...*zap.Logger,
) attendance.AttendanceService {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	if location == nil {
		location = time.UTC
	}
	return &AttendanceServiceImpl{
		guard:    guard,
		sessions: sessions,
		settings: settings,
		location: location,
		logger:   l,
		now:      time.Now,
	}
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, requesterID string) (attendance.SessionResponse, error) {
	requester, _, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	now := s.now()
	day := workDate(now, s.locationOf(ctx, requester))

	// A session left open on an earlier date does not block today.
	_, err = s.sessions.GetOpenSessionOn(ctx, requester.ID, day)
	switch {
	case err == nil:
		return attendance.SessionResponse{}, attendance.ErrOngoingSession
	case !errors.Is(err, attendance.ErrNoOpenSession):
		return attendance.SessionResponse{}, apperror.Storage(err)
	}

	created, err := s.sessions.Create(ctx, attendance.Session{
		UserID:         requester.ID,
		OrganizationID: requester.OrganizationID,
		WorkDate:       day,
		CheckIn:        now.UTC(),
	})
	if err != nil {
		return attendance.SessionResponse{}, apperror.Storage(err)
	}

	s.logger.Info("checked in",
		zap.String("user_id", requester.ID),
		zap.String("session_id", created.ID),
		zap.Int("session_number", created.SessionNumber),
	)
	return attendance.NewSessionResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, requesterID string) (attendance.CheckOutResponse, error) {
	requester, _, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return attendance.CheckOutResponse{}, err
	}

	// Check-out closes the latest open session, which may belong to an
	// earlier work date if the user never checked out of it.
	open, err := s.sessions.GetOpenSession(ctx, requester.ID)
	if err != nil {
		return attendance.CheckOutResponse{}, apperror.Storage(err)
	}

	now := s.now().UTC()
	if _, err := attendance.SessionDuration(open.CheckIn, now); err != nil {
		return attendance.CheckOutResponse{}, err
	}

	closed, err := s.sessions.Close(ctx, open.ID, now)
	if err != nil {
		return attendance.CheckOutResponse{}, apperror.Storage(err)
	}

	day := closed.WorkDate
	sameDay, err := s.sessions.ListByUser(ctx, requester.ID, day, day.AddDate(0, 0, 1), false)
	if err != nil {
		return attendance.CheckOutResponse{}, apperror.Storage(err)
	}

	resp := attendance.CheckOutResponse{
		Session:     attendance.NewSessionResponse(closed),
		DailyStatus: attendance.StatusAbsent,
	}
	if days := attendance.AggregateDays(sameDay); len(days) > 0 {
		resp.DailyStatus = days[0].Status
		resp.DailyTotalMinutes = int(days[0].Total / time.Minute)
	}

	s.logger.Info("checked out",
		zap.String("user_id", requester.ID),
		zap.String("session_id", closed.ID),
		zap.String("daily_status", string(resp.DailyStatus)),
	)
	return resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, requesterID string, filter attendance.MonthFilter) (attendance.MonthlyAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.MonthlyAttendanceResponse{}, err
	}

	requester, _, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return attendance.MonthlyAttendanceResponse{}, err
	}

	from, to := calendar.MonthRange(filter.Year, time.Month(filter.Month))
	sessions, err := s.sessions.ListByUser(ctx, requester.ID, from, to, false)
	if err != nil {
		return attendance.MonthlyAttendanceResponse{}, apperror.Storage(err)
	}
	return attendance.NewMonthlyAttendanceResponse(filter.Year, filter.Month, sessions), nil
}

// VerifySession implements attendance.AttendanceService. Only completed
// sessions can be verified and nobody verifies their own.
func (s *AttendanceServiceImpl) VerifySession(ctx context.Context, requesterID string, sessionID string) (attendance.SessionResponse, error) {
	requester, granted, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	session, err := s.sessions.GetByID(ctx, sessionID, requester.OrganizationID)
	if err != nil {
		return attendance.SessionResponse{}, apperror.Storage(err)
	}
	if session.UserID == requester.ID {
		return attendance.SessionResponse{}, attendance.ErrSelfVerification
	}

	owner, err := s.guard.Target(ctx, requester, session.UserID)
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	subjects := access.Subjects{Requester: requester, Target: owner, Granted: granted}
	if !subjects.Allows(user.ScopeVerifyAttendance) {
		return attendance.SessionResponse{}, apperror.ErrUnauthorized
	}

	if session.IsOpen() {
		return attendance.SessionResponse{}, attendance.ErrSessionStillOpen
	}
	if session.Verified {
		return attendance.SessionResponse{}, attendance.ErrSessionAlreadyFinal
	}

	verified, err := s.sessions.MarkVerified(ctx, session.ID, requester.ID, s.now().UTC())
	if err != nil {
		return attendance.SessionResponse{}, apperror.Storage(err)
	}

	s.logger.Info("session verified",
		zap.String("session_id", verified.ID),
		zap.String("user_id", verified.UserID),
		zap.String("verified_by", requester.ID),
	)
	return attendance.NewSessionResponse(verified), nil
}

// locationOf prefers the organization's timezone over the configured one.
func (s *AttendanceServiceImpl) locationOf(ctx context.Context, u user.User) *time.Location {
	settings, err := s.settings.GetSettings(ctx, u.OrganizationID)
	if err != nil || settings.Timezone == "" {
		return s.location
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		s.logger.Warn("unknown organization timezone",
			zap.String("organization_id", u.OrganizationID),
			zap.String("timezone", settings.Timezone),
		)
		return s.location
	}
	return loc
}

// workDate is the calendar date of t in loc, as UTC midnight.
func workDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
