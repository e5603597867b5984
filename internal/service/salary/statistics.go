package salary

import (
	"context"
	"errors"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cache"
	"github.com/cmlabs-hris/hris-payroll-go/internal/service/access"
	"go.uber.org/zap"
)

// GetSalaryStatistics implements salary.SalaryService. Access is decided
// before the cache is consulted.
func (s *SalaryServiceImpl) GetSalaryStatistics(ctx context.Context, requesterID string, recordID string) (salary.SalaryStatisticsResponse, error) {
	requester, granted, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return salary.SalaryStatisticsResponse{}, err
	}
	record, err := s.repos.Records.GetByID(ctx, recordID, requester.OrganizationID)
	if err != nil {
		return salary.SalaryStatisticsResponse{}, apperror.Storage(err)
	}
	target, err := s.guard.Target(ctx, requester, record.UserID)
	if err != nil {
		return salary.SalaryStatisticsResponse{}, err
	}
	subjects := access.Subjects{Requester: requester, Target: target, Granted: granted}
	if !subjects.Allows(user.ScopeViewSalarySlip) {
		return salary.SalaryStatisticsResponse{}, apperror.ErrUnauthorized
	}

	key := StatsCacheKey(record.ID)
	if s.rdb != nil {
		var cached salary.SalaryStatisticsResponse
		found, err := cache.GetJSON(ctx, s.rdb, key, &cached)
		if err != nil {
			s.logger.Warn("salary statistics cache read failed", zap.String("key", key), zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	// The computation is shared by every waiter on key, so it must not stop
	// when the caller that started it goes away.
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		ctx := context.WithoutCancel(ctx)
		resp, err := s.computeStatistics(ctx, target, record)
		if err != nil {
			return nil, err
		}
		if s.rdb != nil {
			if err := cache.SetJSON(ctx, s.rdb, key, resp, s.opts.StatsTTL); err != nil {
				s.logger.Warn("salary statistics cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return resp, nil
	})
	if err != nil {
		return salary.SalaryStatisticsResponse{}, err
	}
	return v.(salary.SalaryStatisticsResponse), nil
}

func (s *SalaryServiceImpl) computeStatistics(ctx context.Context, target user.User, record salary.Record) (salary.SalaryStatisticsResponse, error) {
	facts, err := s.loadFacts(ctx, target, record.Month, record.Year, false)
	if err != nil {
		return salary.SalaryStatisticsResponse{}, err
	}

	prevMonth, prevYear := salary.PreviousPeriod(record.Month, record.Year)
	var previous *salary.Record
	prev, err := s.repos.Records.GetByPeriod(ctx, record.UserID, prevMonth, prevYear)
	switch {
	case err == nil:
		previous = &prev
	case errors.Is(err, salary.ErrRecordNotFound):
	default:
		return salary.SalaryStatisticsResponse{}, apperror.Storage(err)
	}

	ytd, err := s.repos.Records.SumNetForYear(ctx, record.UserID, record.Year, record.Month)
	if err != nil {
		return salary.SalaryStatisticsResponse{}, apperror.Storage(err)
	}

	in := facts.inputs()
	return salary.SalaryStatisticsResponse{
		Record:               salary.NewSalaryRecordResponse(record),
		Facts:                facts.attendanceFacts(),
		AttendancePercentage: salary.AttendancePercentage(in.WorkingDays, in.PresentDays, in.HalfDayCount),
		MonthOverMonth:       salary.MonthOverMonth(record.NetSalary, previous),
		YearToDateNet:        ytd.Round(2),
	}, nil
}
