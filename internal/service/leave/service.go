package leave

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/outbox"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/service/access"
	"go.uber.org/zap"
)

type LeaveServiceImpl struct {
	tx       database.Transactor
	guard    *access.Guard
	types    leave.LeaveTypeRepository
	balances leave.BalanceRepository
	requests leave.RequestRepository
	outbox   outbox.Repository
	logger   *zap.Logger
	now      func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	guard *access.Guard,
	types leave.LeaveTypeRepository,
	balances leave.BalanceRepository,
	requests leave.RequestRepository,
	outboxRepo outbox.Repository,
	logger ...*zap.Logger,
) leave.LeaveService {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &LeaveServiceImpl{
		tx:       tx,
		guard:    guard,
		types:    types,
		balances: balances,
		requests: requests,
		outbox:   outboxRepo,
		logger:   l,
		now:      time.Now,
	}
}

// CreateLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, requesterID string, req leave.CreateLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	requester, _, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	leaveType, err := s.types.GetByID(ctx, req.LeaveTypeID, requester.OrganizationID)
	if err != nil {
		return leave.LeaveRequestResponse{}, apperror.Storage(err)
	}

	start, end := req.Dates()
	created, err := s.requests.Create(ctx, leave.Request{
		UserID:         requester.ID,
		OrganizationID: requester.OrganizationID,
		LeaveTypeID:    leaveType.ID,
		StartDate:      start,
		EndDate:        end,
		NumberOfDays:   leave.InclusiveDays(start, end),
		Reason:         req.Reason,
		Status:         leave.StatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, apperror.Storage(err)
	}
	created.IsPaid = leaveType.IsPaid
	created.LeaveTypeName = leaveType.Name

	s.logger.Info("leave request created",
		zap.String("request_id", created.ID),
		zap.String("user_id", created.UserID),
		zap.Int("number_of_days", created.NumberOfDays),
	)
	return leave.NewLeaveRequestResponse(created), nil
}

// ApproveLeaveRequest implements leave.LeaveService. The request, its balance
// and the outbox event change in one transaction.
func (s *LeaveServiceImpl) ApproveLeaveRequest(ctx context.Context, requesterID string, requestID string) (leave.LeaveRequestResponse, error) {
	reviewer, err := s.authorizeReview(ctx, requesterID, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var approved leave.Request
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requests.GetForUpdate(ctx, requestID, reviewer.OrganizationID)
		if err != nil {
			return err
		}
		if request.Status != leave.StatusPending {
			return leave.ErrNotPending
		}

		balance, err := s.balances.GetForUpdate(ctx, request.UserID, request.LeaveTypeID, request.BalanceYear())
		if err != nil {
			return err
		}
		if balance.Remaining() < request.NumberOfDays {
			return leave.ErrInsufficientBalance
		}
		balance, err = s.balances.AdjustUsed(ctx, balance.ID, request.NumberOfDays)
		if err != nil {
			return err
		}

		at := s.now().UTC()
		request.Status = leave.StatusApproved
		request.ApprovedBy = &reviewer.ID
		request.ApprovedAt = &at
		if err := s.requests.UpdateStatus(ctx, request); err != nil {
			return err
		}
		approved = request

		event, err := outbox.NewEvent(outbox.AggregateLeaveRequest, request.ID, outbox.EventLeaveApproved, leave.ApprovedEvent{
			RequestID:     request.ID,
			UserID:        request.UserID,
			LeaveTypeID:   request.LeaveTypeID,
			StartDate:     calendar.DateKey(request.StartDate),
			EndDate:       calendar.DateKey(request.EndDate),
			NumberOfDays:  request.NumberOfDays,
			ApprovedBy:    reviewer.ID,
			RemainingDays: balance.Remaining(),
		})
		if err != nil {
			return err
		}
		return s.outbox.Create(ctx, event)
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, apperror.Storage(err)
	}

	s.logger.Info("leave request approved",
		zap.String("request_id", approved.ID),
		zap.String("user_id", approved.UserID),
		zap.String("approved_by", reviewer.ID),
		zap.Int("number_of_days", approved.NumberOfDays),
	)
	return leave.NewLeaveRequestResponse(approved), nil
}

// RejectLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) RejectLeaveRequest(ctx context.Context, requesterID string, requestID string, req leave.RejectLeaveRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	reviewer, err := s.authorizeReview(ctx, requesterID, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var rejected leave.Request
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requests.GetForUpdate(ctx, requestID, reviewer.OrganizationID)
		if err != nil {
			return err
		}
		if request.Status != leave.StatusPending {
			return leave.ErrNotPending
		}

		at := s.now().UTC()
		reason := req.Reason
		request.Status = leave.StatusRejected
		request.RejectedBy = &reviewer.ID
		request.RejectedAt = &at
		request.RejectionReason = &reason
		if err := s.requests.UpdateStatus(ctx, request); err != nil {
			return err
		}
		rejected = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, apperror.Storage(err)
	}

	s.logger.Info("leave request rejected",
		zap.String("request_id", rejected.ID),
		zap.String("rejected_by", reviewer.ID),
	)
	return leave.NewLeaveRequestResponse(rejected), nil
}

// CancelLeaveRequest implements leave.LeaveService. Cancelling an approved
// request gives its days back to the balance.
func (s *LeaveServiceImpl) CancelLeaveRequest(ctx context.Context, requesterID string, requestID string) (leave.LeaveRequestResponse, error) {
	requester, _, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var cancelled leave.Request
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requests.GetForUpdate(ctx, requestID, requester.OrganizationID)
		if err != nil {
			return err
		}
		if request.UserID != requester.ID {
			return leave.ErrNotOwner
		}
		if !request.IsCancellable() {
			return leave.ErrNotCancellable
		}

		if request.Status == leave.StatusApproved {
			balance, err := s.balances.GetForUpdate(ctx, request.UserID, request.LeaveTypeID, request.BalanceYear())
			if err != nil {
				return err
			}
			if _, err := s.balances.AdjustUsed(ctx, balance.ID, -request.NumberOfDays); err != nil {
				return err
			}
		}

		at := s.now().UTC()
		request.Status = leave.StatusCancelled
		request.CancelledAt = &at
		if err := s.requests.UpdateStatus(ctx, request); err != nil {
			return err
		}
		cancelled = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, apperror.Storage(err)
	}

	s.logger.Info("leave request cancelled",
		zap.String("request_id", cancelled.ID),
		zap.String("user_id", cancelled.UserID),
	)
	return leave.NewLeaveRequestResponse(cancelled), nil
}

// authorizeReview loads the reviewer and checks they may decide on the
// request's owner. Nobody reviews their own request.
func (s *LeaveServiceImpl) authorizeReview(ctx context.Context, requesterID, requestID string) (user.User, error) {
	reviewer, granted, err := s.guard.Requester(ctx, requesterID)
	if err != nil {
		return user.User{}, err
	}
	request, err := s.requests.GetByID(ctx, requestID, reviewer.OrganizationID)
	if err != nil {
		return user.User{}, apperror.Storage(err)
	}
	if request.UserID == reviewer.ID {
		return user.User{}, leave.ErrSelfApproval
	}
	owner, err := s.guard.Target(ctx, reviewer, request.UserID)
	if err != nil {
		return user.User{}, err
	}
	subjects := access.Subjects{Requester: reviewer, Target: owner, Granted: granted}
	if !subjects.Allows(user.ScopeApproveLeave) {
		return user.User{}, apperror.ErrUnauthorized
	}
	return reviewer, nil
}
