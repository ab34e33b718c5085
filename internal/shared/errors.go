package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication & authorization errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrForbidden        = fmt.Errorf("forbidden")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Persistence errors
	ErrNotFound       = fmt.Errorf("record not found")
	ErrDuplicate      = fmt.Errorf("record already exists")
	ErrFounderExists  = fmt.Errorf("founder with this email already exists")
	ErrTagExists      = fmt.Errorf("tag already exists")
	ErrStorageFailure = fmt.Errorf("storage failure")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrUnsupportedType = fmt.Errorf("unsupported content type")
)
