package aposclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types
var (
	// ErrNoSession indicates a request that requires authentication was made
	// before Login succeeded and without an API key configured.
	ErrNoSession = errors.New("no active session")

	// ErrLoginFailed indicates the login endpoint rejected the credentials.
	ErrLoginFailed = errors.New("login failed")
)

// APIError represents a non-2xx response from the CMS API.
type APIError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// NotFound reports whether the API said the target does not exist.
func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}
