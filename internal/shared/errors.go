package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed = fmt.Errorf("authentication failed")

	// External API errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrRateLimited        = fmt.Errorf("rate limit exceeded")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Persistence errors
	ErrNotFound = fmt.Errorf("resource not found")
	ErrConflict = fmt.Errorf("resource already exists")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)

// APIError carries the status code and response body of a non-2xx reply
// from the catalog API that is neither auth, rate-limit nor server failure.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: status %d - %s", e.StatusCode, e.Body)
}

// Unwrap lets callers match with errors.Is(err, ErrAPIRequest).
func (e *APIError) Unwrap() error {
	return ErrAPIRequest
}
