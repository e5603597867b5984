package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"go.uber.org/zap"
)

// HandleError maps service errors to HTTP responses. Causes are logged,
// never rendered.
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if appErr, ok := apperror.As(err); ok {
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			zap.L().Named("http.error").Error(appErr.Message,
				zap.String("code", appErr.Code),
				zap.Error(appErr.Err),
			)
		}
		Error(w, appErr.HTTPStatus, appErr.Code, appErr.Message)
		return
	}

	zap.L().Named("http.error").Error("unhandled error", zap.Error(err))
	Error(w, http.StatusInternalServerError, apperror.CodeInternal, "An unexpected error occurred")
}

// Error writes an error envelope with an explicit status and code.
func Error(w http.ResponseWriter, status int, code, message string) {
	writeError(w, status, ErrorDetail{Code: code, Message: message})
}
