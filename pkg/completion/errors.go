package completion

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// TransientError marks a failure that might succeed if the caller retries.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string { return e.err.Error() }
func (e *TransientError) Unwrap() error { return e.err }

// FatalError marks a failure that will not succeed on retry (bad key, bad request).
type FatalError struct {
	err error
}

func (e *FatalError) Error() string { return e.err.Error() }
func (e *FatalError) Unwrap() error { return e.err }

// IsTransient reports whether err was classified as retryable.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal reports whether err was classified as permanent.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// classify wraps upstream errors by HTTP status. Anything without a status
// (transport faults, cancellations) is transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	switch {
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return &TransientError{err: err}
	case status >= http.StatusBadRequest:
		return &FatalError{err: err}
	default:
		return &TransientError{err: err}
	}
}
