package salary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/service/access"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const statsKeyPrefix = "salary:stats:"

func StatsCacheKey(recordID string) string {
	return statsKeyPrefix + recordID
}

type Repositories struct {
	Profiles salary.ProfileRepository
	Records  salary.RecordRepository
	Holidays calendar.HolidayRepository
	Settings calendar.SettingsRepository
	Sessions attendance.SessionRepository
	Leaves   leave.RequestRepository
	Users    user.UserRepository
	Outbox   outbox.Repository
}

type Options struct {
	StatsTTL           time.Duration
	DefaultWeekendMask calendar.WeekendMask
}

type SalaryServiceImpl struct {
	tx     database.Transactor
	guard  *access.Guard
	repos  Repositories
	rdb    redis.Cmdable
	opts   Options
	sf     singleflight.Group
	logger *zap.Logger
	now    func() time.Time
}

var _ salary.SalaryService = (*SalaryServiceImpl)(nil)

// NewSalaryService wires the salary engine. rdb may be nil, which disables
// the statistics cache.
func NewSalaryService(
	tx database.Transactor,
	guard *access.Guard,
	repos Repositories,
	rdb redis.Cmdable,
	opts Options,
	logger ...*zap.Logger,
) *SalaryServiceImpl {
	l := zap.L().Named("salary.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salary.service")
	}
	if opts.DefaultWeekendMask == nil {
		opts.DefaultWeekendMask = calendar.DefaultWeekendMask
	}
	if opts.StatsTTL <= 0 {
		opts.StatsTTL = 5 * time.Minute
	}
	return &SalaryServiceImpl{
		tx:     tx,
		guard:  guard,
		repos:  repos,
		rdb:    rdb,
		opts:   opts,
		logger: l,
		now:    time.Now,
	}
}

// GenerateSalary implements salary.SalaryService.
func (s *SalaryServiceImpl) GenerateSalary(ctx context.Context, requesterID string, req salary.GenerateSalaryRequest) (salary.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	subjects, err := s.guard.Authorize(ctx, requesterID, req.UserID, user.ScopeGenerateSalary)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	target := subjects.Target

	facts, err := s.loadFacts(ctx, target, req.Month, req.Year, true)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	composition, err := salary.Compose(facts.profile, facts.inputs())
	if err != nil {
		return salary.SalaryRecordResponse{}, apperror.Computation(target.ID, req.Month, req.Year, err)
	}

	record := salary.Record{
		UserID:         target.ID,
		OrganizationID: target.OrganizationID,
		Month:          req.Month,
		Year:           req.Year,
		BasicSalary:    facts.profile.BaseSalary.Round(2),
		Allowances:     composition.Allowances,
		Deductions:     composition.Deductions,
		Tax:            composition.Tax,
		NetSalary:      composition.NetSalary,
		Status:         salary.StatusPending,
		GeneratedBy:    subjects.Requester.ID,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := s.repos.Records.Create(ctx, record)
		if err != nil {
			return err
		}
		record = created

		event, err := outbox.NewEvent(outbox.AggregateSalaryRecord, created.ID, outbox.EventSalaryGenerated, salary.GeneratedEvent{
			RecordID:    created.ID,
			UserID:      created.UserID,
			Month:       created.Month,
			Year:        created.Year,
			NetSalary:   created.NetSalary.StringFixed(2),
			GeneratedBy: created.GeneratedBy,
		})
		if err != nil {
			return err
		}
		return s.repos.Outbox.Create(ctx, event)
	})
	if err != nil {
		if errors.Is(err, salary.ErrAlreadyGenerated) {
			s.logger.Info("salary already generated",
				zap.String("user_id", target.ID),
				zap.Int("month", req.Month),
				zap.Int("year", req.Year),
			)
			return salary.SalaryRecordResponse{}, salary.ErrAlreadyGenerated
		}
		s.logger.Error("failed to persist salary record",
			zap.String("user_id", target.ID),
			zap.Int("month", req.Month),
			zap.Int("year", req.Year),
			zap.Error(err),
		)
		return salary.SalaryRecordResponse{}, apperror.Storage(err)
	}

	s.logger.Info("salary generated",
		zap.String("record_id", record.ID),
		zap.String("user_id", target.ID),
		zap.String("requester_id", requesterID),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.Int("working_days", facts.calendar.WorkingDays()),
		zap.String("net_salary", record.NetSalary.StringFixed(2)),
	)
	return salary.NewSalaryRecordResponse(record), nil
}

// GetPayslips implements salary.SalaryService.
func (s *SalaryServiceImpl) GetPayslips(ctx context.Context, requesterID string, filter salary.PayslipFilter) ([]salary.SalaryRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.guard.Authorize(ctx, requesterID, filter.UserID, user.ScopeViewSalarySlip); err != nil {
		return nil, err
	}

	records, err := s.repos.Records.List(ctx, filter.UserID, filter.Month, filter.Year)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	resp := make([]salary.SalaryRecordResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, salary.NewSalaryRecordResponse(r))
	}
	return resp, nil
}

// CheckGenerationStatus implements salary.SalaryService. The whole call is
// rejected when any requested user is outside the requester's reach.
func (s *SalaryServiceImpl) CheckGenerationStatus(ctx context.Context, requesterID string, req salary.GenerationStatusRequest) (map[string]salary.GenerationStatus, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	requester, granted, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	ids := dedupe(req.UserIDs)
	targets, err := s.repos.Users.ListByIDs(ctx, requester.OrganizationID, ids)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if len(targets) != len(ids) {
		return nil, apperror.ErrUnauthorized
	}
	for _, target := range targets {
		subjects := access.Subjects{Requester: requester, Target: target, Granted: granted}
		if !subjects.Allows(user.ScopeGenerateSalary, user.ScopeViewSalarySlip) {
			return nil, apperror.ErrUnauthorized
		}
	}

	records, err := s.repos.Records.ListByPeriod(ctx, ids, req.Month, req.Year)
	if err != nil {
		return nil, apperror.Storage(err)
	}

	result := make(map[string]salary.GenerationStatus, len(ids))
	for _, id := range ids {
		result[id] = salary.GenerationStatus{Generated: false}
	}
	for _, r := range records {
		status := r.Status
		recordID := r.ID
		result[r.UserID] = salary.GenerationStatus{Generated: true, Status: &status, RecordID: &recordID}
	}
	return result, nil
}

// CompletePayment implements salary.SalaryService.
func (s *SalaryServiceImpl) CompletePayment(ctx context.Context, requesterID string, recordID string, req salary.CompletePaymentRequest) (salary.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.SalaryRecordResponse{}, err
	}

	requester, granted, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	existing, err := s.repos.Records.GetByID(ctx, recordID, requester.OrganizationID)
	if err != nil {
		return salary.SalaryRecordResponse{}, apperror.Storage(err)
	}
	target, err := s.guard.Target(ctx, requester, existing.UserID)
	if err != nil {
		return salary.SalaryRecordResponse{}, err
	}
	subjects := access.Subjects{Requester: requester, Target: target, Granted: granted}
	if !subjects.Allows(user.ScopePaySalary) {
		return salary.SalaryRecordResponse{}, apperror.ErrUnauthorized
	}

	var paid salary.Record
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := s.repos.Records.GetForUpdate(ctx, recordID, requester.OrganizationID)
		if err != nil {
			return err
		}
		if locked.IsPaid() {
			return salary.ErrAlreadyPaid
		}

		processedAt := s.now().UTC()
		paymentMode := req.PaymentMode
		locked.PaymentMode = &paymentMode
		locked.PaymentRef = req.PaymentRef
		locked.Incentive = req.Incentive
		locked.Bonus = req.Bonus
		locked.Remarks = req.Remarks
		locked.ProcessedAt = &processedAt
		locked.PaidBy = &requester.ID

		paid, err = s.repos.Records.MarkPaid(ctx, locked)
		if err != nil {
			return err
		}

		payload := salary.PaidEvent{
			RecordID:    paid.ID,
			UserID:      paid.UserID,
			Month:       paid.Month,
			Year:        paid.Year,
			NetSalary:   paid.NetSalary.StringFixed(2),
			PaymentMode: paymentMode,
			ProcessedAt: processedAt,
		}
		if req.PaymentRef != nil {
			payload.PaymentRef = *req.PaymentRef
		}
		event, err := outbox.NewEvent(outbox.AggregateSalaryRecord, paid.ID, outbox.EventSalaryPaid, payload)
		if err != nil {
			return err
		}
		return s.repos.Outbox.Create(ctx, event)
	})
	if err != nil {
		return salary.SalaryRecordResponse{}, apperror.Storage(err)
	}

	s.invalidateStats(ctx, paid.ID)
	s.logger.Info("salary paid",
		zap.String("record_id", paid.ID),
		zap.String("user_id", paid.UserID),
		zap.String("paid_by", requester.ID),
		zap.Int("month", paid.Month),
		zap.Int("year", paid.Year),
	)
	return salary.NewSalaryRecordResponse(paid), nil
}

// GetProfile implements salary.SalaryService.
func (s *SalaryServiceImpl) GetProfile(ctx context.Context, requesterID string, userID string) (salary.ProfileResponse, error) {
	if _, err := s.guard.Authorize(ctx, requesterID, userID, user.ScopeViewSalarySlip, user.ScopeManageSalaryProfile); err != nil {
		return salary.ProfileResponse{}, err
	}

	profile, err := s.profileOrDefault(ctx, userID)
	if err != nil {
		return salary.ProfileResponse{}, apperror.Storage(err)
	}
	return salary.NewProfileResponse(profile), nil
}

// UpdateProfile implements salary.SalaryService.
func (s *SalaryServiceImpl) UpdateProfile(ctx context.Context, requesterID string, userID string, req salary.UpdateProfileRequest) (salary.ProfileResponse, error) {
	if err := req.Validate(); err != nil {
		return salary.ProfileResponse{}, err
	}

	subjects, err := s.guard.Authorize(ctx, requesterID, userID, user.ScopeManageSalaryProfile)
	if err != nil {
		return salary.ProfileResponse{}, err
	}

	var saved salary.Profile
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := s.profileOrDefault(ctx, userID)
		if err != nil {
			return err
		}
		updated := req.Apply(current)
		updated.UserID = userID
		updated.UpdatedBy = &subjects.Requester.ID

		saved, err = s.repos.Profiles.Upsert(ctx, updated)
		return err
	})
	if err != nil {
		return salary.ProfileResponse{}, apperror.Storage(err)
	}

	s.logger.Info("salary profile updated",
		zap.String("user_id", userID),
		zap.String("updated_by", subjects.Requester.ID),
	)
	return salary.NewProfileResponse(saved), nil
}

func (s *SalaryServiceImpl) profileOrDefault(ctx context.Context, userID string) (salary.Profile, error) {
	profile, err := s.repos.Profiles.GetByUserID(ctx, userID)
	if errors.Is(err, salary.ErrProfileNotFound) {
		return salary.DefaultProfile(userID), nil
	}
	if err != nil {
		return salary.Profile{}, fmt.Errorf("failed to load salary profile: %w", err)
	}
	return profile, nil
}

func (s *SalaryServiceImpl) invalidateStats(ctx context.Context, recordID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, StatsCacheKey(recordID)).Err(); err != nil {
		s.logger.Warn("failed to invalidate salary statistics cache",
			zap.String("record_id", recordID),
			zap.Error(err),
		)
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
