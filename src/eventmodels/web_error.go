package eventmodels

import (
	"errors"
	"net/http"
)

type WebError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *WebError) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}

	return e.Message
}

func (e *WebError) Unwrap() error {
	return e.Cause
}

func NewWebError(statusCode int, message string, cause error) *WebError {
	return &WebError{
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// StatusCodeOf returns the status carried by a WebError anywhere in err's
// chain, or fallback when there is none.
func StatusCodeOf(err error, fallback int) int {
	var webErr *WebError
	if errors.As(err, &webErr) {
		return webErr.StatusCode
	}

	if fallback == 0 {
		return http.StatusInternalServerError
	}

	return fallback
}
