package attendance

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	// Check-in / check-out
	ErrOngoingSession  = apperror.New(apperror.CodeInvalidSession, "ongoing session", http.StatusConflict)
	ErrInvalidSession  = apperror.New(apperror.CodeInvalidSession, "check-out must be after check-in", http.StatusConflict)
	ErrNoOpenSession   = apperror.New(apperror.CodeInvalidSession, "no ongoing session to check out", http.StatusConflict)
	ErrSessionTooShort = apperror.New(apperror.CodeSessionTooShort, "session must last at least 30 minutes", http.StatusUnprocessableEntity)

	// Verification
	ErrSessionNotFound     = apperror.New(apperror.CodeNotFound, "attendance session not found", http.StatusNotFound)
	ErrSessionStillOpen    = apperror.New(apperror.CodeInvalidState, "an open session cannot be verified", http.StatusConflict)
	ErrSessionAlreadyFinal = apperror.New(apperror.CodeInvalidState, "attendance session is already verified", http.StatusConflict)
	ErrSelfVerification    = apperror.New(apperror.CodeUnauthorized, "you cannot verify your own attendance", http.StatusForbidden)
)
