package errors

// Common error codes shared across the service.
const (
	ErrInternal          = "INTERNAL"
	ErrValidation        = "VALIDATION"
	ErrNotFound          = "NOT_FOUND"
	ErrUnauthenticated   = "UNAUTHENTICATED"
	ErrUnauthorized      = "UNAUTHORIZED"
	ErrInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrInvalidOTP        = "INVALID_OTP"
	ErrExpired           = "EXPIRED"
	ErrAlreadyProcessed  = "ALREADY_PROCESSED"
)
