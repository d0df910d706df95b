package tools

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Failure kinds surfaced by the HTTP-backed adapters.
var (
	// ErrTransport marks a failure to reach the upstream service.
	ErrTransport = errors.New("transport failure")
	// ErrTimeout marks a transport failure caused by a deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrInvalidInput marks rejected arguments or an unusable upstream response.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError is a descriptive, non-fatal failure. It is meant to be
// shown to the user or the model rather than treated as an outage.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// DescribeFailure renders a validation error the way the weather lookup
// reports it. Other errors are rendered with their message.
func DescribeFailure(err error) string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return "Error from system: " + verr.Message
	}
	return err.Error()
}

// serviceError reports a failed call to an upstream service.
type serviceError struct {
	kind    error
	timeout bool
	message string
	err     error
}

func (e *serviceError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.message + ": " + e.err.Error()
}

func (e *serviceError) Unwrap() []error {
	errs := []error{e.kind}
	if e.timeout {
		errs = append(errs, ErrTimeout)
	}
	if e.err != nil {
		errs = append(errs, e.err)
	}
	return errs
}

func transportError(message string, err error) error {
	return &serviceError{kind: ErrTransport, timeout: isTimeout(err), message: message, err: err}
}

func invalidInput(err error) error {
	return &serviceError{kind: ErrInvalidInput, message: "Invalid input", err: err}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// rejectedRequest reports whether status means the service was reached but
// refused the request itself. Auth, timeout and throttling statuses are
// reported as outages.
func rejectedRequest(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return status >= 400 && status < 500
}
