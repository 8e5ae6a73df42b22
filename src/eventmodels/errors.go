package eventmodels

import (
	"errors"
	"fmt"
)

var (
	ErrMissingApiKeys               = errors.New("ETRADE_API_KEY and ETRADE_API_SECRET environment variables are required")
	ErrSessionNotFound              = errors.New("invalid or expired session")
	ErrSessionNotAuthenticated      = errors.New("session not authenticated")
	ErrInvalidOrderParams           = errors.New("invalid order params")
	ErrPreviewFailed                = errors.New("order preview did not return a previewId")
	ErrEmptyResponse                = errors.New("broker returned an empty response body")
	ErrAuthenticationFailed         = errors.New("authentication failed")
	ErrAccessTokenRequestIncomplete = errors.New("sessionId and verifierCode are required")
)

// UpstreamHttpError is a transport or non-2xx failure from the broker. A zero
// StatusCode means the request never got a response.
type UpstreamHttpError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
	Cause      error
}

func (e *UpstreamHttpError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Cause)
	}

	if e.Body != "" {
		return fmt.Sprintf("%s %s: %s: %s", e.Method, e.URL, e.Status, e.Body)
	}

	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)
}

func (e *UpstreamHttpError) Unwrap() error {
	return e.Cause
}

// IsAuthFailure reports whether err should be treated as a failed
// authentication on a read path: a session lookup error or any upstream
// HTTP error.
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionNotAuthenticated) {
		return true
	}

	var upstreamErr *UpstreamHttpError
	return errors.As(err, &upstreamErr)
}
