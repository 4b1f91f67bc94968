package entity

import "errors"

// Domain errors
var (
	// Pipeline errors
	ErrValidation         = errors.New("validation error")
	ErrExtraction         = errors.New("content extraction failed")
	ErrSchema             = errors.New("generated content does not match schema")
	ErrRender             = errors.New("presentation rendering failed")
	ErrUnknownDesignStyle = errors.New("unknown design style")

	// Job errors
	ErrJobNotFound = errors.New("job not found")
	ErrJobNotReady = errors.New("presentation not ready")
	ErrFileMissing = errors.New("presentation file not found")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrQuotaExceeded     = errors.New("usage limit reached")
	ErrInvalidPlan       = errors.New("invalid plan")
	ErrPaymentRequired   = errors.New("payment integration required for paid plans")
	ErrInvalidAdminLogin = errors.New("invalid admin password")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)
