package apperror

const (
	// Client errors (4xx)
	CodeBadRequest          = "BAD_REQUEST"
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeInvalidState        = "INVALID_STATE"
	CodeAlreadyGenerated    = "ALREADY_GENERATED"
	CodeInvalidSession      = "INVALID_SESSION"
	CodeSessionTooShort     = "SESSION_TOO_SHORT"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	CodeComputation = "COMPUTATION_ERROR"
	CodeStorage     = "STORAGE_ERROR"
	CodeInternal    = "INTERNAL_ERROR"
)
