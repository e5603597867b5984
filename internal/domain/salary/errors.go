package salary

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrAlreadyGenerated = apperror.New(apperror.CodeAlreadyGenerated, "salary already generated for this period", http.StatusConflict)
	ErrRecordNotFound   = apperror.New(apperror.CodeNotFound, "salary record not found", http.StatusNotFound)
	ErrProfileNotFound  = apperror.New(apperror.CodeNotFound, "salary profile not found", http.StatusNotFound)
	ErrAlreadyPaid      = apperror.New(apperror.CodeInvalidState, "salary record is already paid", http.StatusConflict)
)
