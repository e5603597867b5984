package calendar

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrSettingsNotFound = apperror.New(apperror.CodeNotFound, "organization settings not found", http.StatusNotFound)
)
