package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrNotAuthenticated = fmt.Errorf("not signed in")
	ErrUnauthorized     = fmt.Errorf("invalid credentials")

	// API errors
	//
	// The gateway maps HTTP status codes onto these exactly once so callers
	// never inspect status codes themselves. ErrNotFound doubles as the
	// "absent" outcome for lookups where absence is an expected state.
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrNotFound           = fmt.Errorf("not found")
	ErrConflict           = fmt.Errorf("already exists")
	ErrTimeout            = fmt.Errorf("request timed out")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
