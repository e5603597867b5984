package user

import (
	"net/http"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/apperror"
)

var (
	ErrUserNotFound = apperror.New(apperror.CodeNotFound, "user not found", http.StatusNotFound)
)
