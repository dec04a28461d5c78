package helpers

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"unblocker/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type UnblockerError struct {
	Message string
	Cause   error
}

func (e *UnblockerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UnblockerError) Unwrap() error {
	return e.Cause
}

// InvalidURLError: bad scheme or syntax. Reported before any method runs.
type InvalidURLError struct {
	UnblockerError
	URL string
}

// MethodNotAvailableError: the selected method id is not an enabled method.
type MethodNotAvailableError struct {
	UnblockerError
	MethodID string
}

// MethodTimeoutError: a single attempt exceeded its timeout.
type MethodTimeoutError struct {
	UnblockerError
	MethodID string
	Timeout  time.Duration
}

// TransportError: network or HTTP failure of a single attempt.
// StatusCode is 0 when no response was received.
type TransportError struct {
	UnblockerError
	MethodID   string
	StatusCode int
}

// AllMethodsFailedError is terminal: every configured attempt failed.
type AllMethodsFailedError struct {
	UnblockerError
	Methods  []string
	Attempts int
}

type ConfigurationError struct{ UnblockerError }

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewInvalidURLError(raw string, cause error) *InvalidURLError {
	return &InvalidURLError{
		UnblockerError: UnblockerError{Message: fmt.Sprintf("invalid url %q", raw), Cause: cause},
		URL:            raw,
	}
}

func NewMethodNotAvailableError(id string) *MethodNotAvailableError {
	return &MethodNotAvailableError{
		UnblockerError: UnblockerError{Message: fmt.Sprintf("proxy method %q not available", id)},
		MethodID:       id,
	}
}

func NewMethodTimeoutError(id string, timeout time.Duration) *MethodTimeoutError {
	return &MethodTimeoutError{
		UnblockerError: UnblockerError{Message: fmt.Sprintf("method %s timed out after %v", id, timeout)},
		MethodID:       id,
		Timeout:        timeout,
	}
}

func NewTransportError(id string, status int, cause error) *TransportError {
	msg := fmt.Sprintf("method %s transport failure", id)
	if status != 0 {
		msg = fmt.Sprintf("method %s got HTTP %d", id, status)
	}
	return &TransportError{
		UnblockerError: UnblockerError{Message: msg, Cause: cause},
		MethodID:       id,
		StatusCode:     status,
	}
}

func NewAllMethodsFailedError(methods []string, attempts int, last error) *AllMethodsFailedError {
	return &AllMethodsFailedError{
		UnblockerError: UnblockerError{
			Message: fmt.Sprintf("all proxy methods failed (%s) after %d attempts", strings.Join(methods, ", "), attempts),
			Cause:   last,
		},
		Methods:  methods,
		Attempts: attempts,
	}
}

func NewConfigurationError(msg string, cause error) *ConfigurationError {
	return &ConfigurationError{UnblockerError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------

// Reason returns the taxonomy name of err, used in API payloads and history.
func Reason(err error) string {
	var (
		invalid     *InvalidURLError
		unavailable *MethodNotAvailableError
		timeout     *MethodTimeoutError
		transport   *TransportError
		allFailed   *AllMethodsFailedError
		cfg         *ConfigurationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &allFailed):
		return "AllMethodsFailed"
	case errors.As(err, &invalid):
		return "InvalidUrl"
	case errors.As(err, &unavailable):
		return "MethodNotAvailable"
	case errors.As(err, &timeout):
		return "MethodTimeout"
	case errors.As(err, &transport):
		return "TransportError"
	case errors.As(err, &cfg):
		return "ConfigurationError"
	default:
		return "Unknown"
	}
}

// -----------------------------------------------------------------------------
// Error Handler
// -----------------------------------------------------------------------------

// ErrorHandler logs non-fatal errors from background work and keeps a count.
type ErrorHandler struct {
	Logger     *logger.Logger
	ErrorCount int
	mu         sync.Mutex
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{
		Logger: log.Named("ErrorHandler"),
	}
}

// -----------------------------------------------------------------------------

// Count returns the number of errors handled so far
func (e *ErrorHandler) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ErrorCount
}

// -----------------------------------------------------------------------------

func (e *ErrorHandler) Handle(err error, context string) {
	if err != nil {
		e.mu.Lock()
		e.ErrorCount++
		e.mu.Unlock()
		e.Logger.Error("Error in %s: %v", context, err)
	}
}
