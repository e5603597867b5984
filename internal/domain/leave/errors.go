package leave

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrLeaveRequestNotFound = apperror.New(apperror.CodeNotFound, "leave request not found", http.StatusNotFound)
	ErrLeaveTypeNotFound    = apperror.New(apperror.CodeNotFound, "leave type not found", http.StatusNotFound)
	ErrBalanceNotFound      = apperror.New(apperror.CodeNotFound, "leave balance not found", http.StatusNotFound)

	ErrInsufficientBalance = apperror.New(apperror.CodeInsufficientBalance, "insufficient leave balance", http.StatusUnprocessableEntity)
	ErrNotPending          = apperror.New(apperror.CodeInvalidState, "leave request is no longer pending", http.StatusConflict)
	ErrNotCancellable      = apperror.New(apperror.CodeInvalidState, "leave request cannot be cancelled", http.StatusConflict)

	ErrSelfApproval = apperror.New(apperror.CodeUnauthorized, "you cannot review your own leave request", http.StatusForbidden)
	ErrNotOwner     = apperror.New(apperror.CodeUnauthorized, "only the requester can cancel a leave request", http.StatusForbidden)
)
