package apperror

import "net/http"

var (
	ErrUnauthenticated = New(CodeUnauthenticated, "authentication required", http.StatusUnauthorized)
	ErrUnauthorized    = New(CodeUnauthorized, "you are not allowed to perform this action", http.StatusForbidden)
	ErrTooManyRequests = New(CodeTooManyRequests, "too many requests, please retry later", http.StatusTooManyRequests)
	ErrInternal        = New(CodeInternal, "an unexpected error occurred", http.StatusInternalServerError)
)
