package salary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/salary"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"golang.org/x/sync/errgroup"
)

// periodFacts is everything one period's composition reads.
type periodFacts struct {
	profile        salary.Profile
	calendar       calendar.WorkingCalendar
	summary        attendance.Summary
	reconciliation leave.Reconciliation
}

func (f periodFacts) inputs() salary.Inputs {
	return salary.Inputs{
		WorkingDays:     f.calendar.WorkingDays(),
		PresentDays:     f.summary.PresentDays,
		HalfDayCount:    f.summary.HalfDayCount,
		PaidLeaveDays:   f.reconciliation.PaidLeaveDays,
		UnpaidLeaveDays: f.reconciliation.UnpaidLeaveDays,
	}
}

func (f periodFacts) attendanceFacts() salary.AttendanceFacts {
	in := f.inputs()
	return salary.AttendanceFacts{
		WorkingDays:     in.WorkingDays,
		PresentDays:     in.PresentDays,
		HalfDayCount:    in.HalfDayCount,
		PaidLeaveDays:   in.PaidLeaveDays,
		UnpaidLeaveDays: in.UnpaidLeaveDays,
		AbsentDays:      salary.AbsentDays(in),
	}
}

// loadFacts fetches the target's period inputs concurrently. The profile is
// only read when withProfile is set.
func (s *SalaryServiceImpl) loadFacts(ctx context.Context, target user.User, month, year int, withProfile bool) (periodFacts, error) {
	from, to := calendar.MonthRange(year, time.Month(month))

	var (
		facts    periodFacts
		mask     = s.opts.DefaultWeekendMask
		holidays []calendar.Holiday
		sessions []attendance.Session
		approved []leave.Request
	)

	g, gctx := errgroup.WithContext(ctx)
	if withProfile {
		g.Go(func() error {
			p, err := s.profileOrDefault(gctx, target.ID)
			if err != nil {
				return err
			}
			facts.profile = p
			return nil
		})
	}
	g.Go(func() error {
		settings, err := s.repos.Settings.GetSettings(gctx, target.OrganizationID)
		if errors.Is(err, calendar.ErrSettingsNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load organization settings: %w", err)
		}
		if len(settings.WeekendMask) > 0 {
			mask = settings.WeekendMask
		}
		return nil
	})
	g.Go(func() error {
		var err error
		holidays, err = s.repos.Holidays.ListHolidays(gctx, target.OrganizationID, from, to)
		if err != nil {
			return fmt.Errorf("failed to load holidays: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sessions, err = s.repos.Sessions.ListByUser(gctx, target.ID, from, to, true)
		if err != nil {
			return fmt.Errorf("failed to load attendance sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		approved, err = s.repos.Leaves.ListApproved(gctx, target.ID, from, to)
		if err != nil {
			return fmt.Errorf("failed to load approved leave: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return periodFacts{}, apperror.Storage(err)
	}

	facts.calendar = calendar.WorkingDays(year, time.Month(month), mask, holidays)
	facts.summary = attendance.Summarize(sessions, year, time.Month(month))
	facts.reconciliation = leave.Reconcile(approved, facts.calendar)
	return facts, nil
}
