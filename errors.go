package avakit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kind sentinels. Structured error types below match these through
// errors.Is, so callers can branch on the kind without knowing the concrete
// type.
var (
	// ErrInvalidConfig is returned when required configuration fields are
	// missing or malformed.
	ErrInvalidConfig = errors.New("avakit: invalid configuration")

	// ErrAuthentication is returned when the backend rejects the credential
	// (HTTP 401/403).
	ErrAuthentication = errors.New("avakit: authentication failed")

	// ErrRateLimited is returned when the backend throttles the caller
	// (HTTP 429).
	ErrRateLimited = errors.New("avakit: rate limit exceeded")

	// ErrValidation is returned when the backend (or the SDK, pre-flight)
	// rejects the request payload (HTTP 400/422).
	ErrValidation = errors.New("avakit: request validation failed")

	// ErrNotFound is returned when the requested resource does not exist
	// (HTTP 404).
	ErrNotFound = errors.New("avakit: resource not found")

	// ErrServer is returned for backend-side failures (HTTP 5xx).
	ErrServer = errors.New("avakit: server error")

	// ErrAPI matches every non-2xx backend response, including the more
	// specific kinds above.
	ErrAPI = errors.New("avakit: api error")

	// ErrNetwork is returned when no HTTP response was obtained at all.
	ErrNetwork = errors.New("avakit: network failure")

	// ErrHealthCheck is returned when the unauthenticated health probe fails
	// for any reason.
	ErrHealthCheck = errors.New("avakit: health check failed")

	// ErrConnectionSetup is returned when a session cannot be connected:
	// missing transport credential/URL, or the transport dial failed.
	ErrConnectionSetup = errors.New("avakit: connection setup failed")

	// ErrAlreadyConnected is returned by Connect while a connection attempt
	// is in flight or already established.
	ErrAlreadyConnected = errors.New("avakit: session already connected")

	// ErrNotConnected is returned by operations that require an active
	// transport connection.
	ErrNotConnected = errors.New("avakit: session not connected")

	// ErrMessaging is returned when a send over the reliable data channel
	// fails. The connection state is unchanged.
	ErrMessaging = errors.New("avakit: message send failed")
)

// ConfigError reports which configuration field is invalid.
type ConfigError struct {
	Field   string
	Value   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("avakit: invalid config field %q (value: %q): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("avakit: invalid config field %q: %s", e.Field, e.Message)
}

// Is matches ConfigError against ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a configuration error for a single field.
func NewConfigError(field, value, message string) *ConfigError {
	return &ConfigError{Field: field, Value: value, Message: message}
}

// APIError is a non-2xx response from the avatar backend. Message carries the
// server-provided text when the error payload parsed, otherwise the raw body.
type APIError struct {
	Status    int    // HTTP status code
	Code      string // server-side error code, if any
	Message   string // human-readable message
	Operation string // the gateway operation that failed
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("avakit: %s failed with status %d (%s): %s", e.Operation, e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("avakit: %s failed with status %d: %s", e.Operation, e.Status, e.Message)
}

// Is maps the HTTP status onto the error kind sentinels. Every APIError
// matches ErrAPI.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAPI:
		return true
	case ErrAuthentication:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	case ErrValidation:
		return e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServer:
		return e.Status >= 500
	}
	return false
}

// NewAPIError creates an APIError for a gateway operation.
func NewAPIError(operation string, status int, code, message string) *APIError {
	return &APIError{Operation: operation, Status: status, Code: code, Message: message}
}

// apiErrorFromBody builds an APIError from a non-2xx response body. Bodies of
// the form {"error":{"code":...,"message":...}} are parsed; anything else is
// used verbatim as the message.
func apiErrorFromBody(operation string, status int, body []byte) *APIError {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		return NewAPIError(operation, status, payload.Error.Code, payload.Error.Message)
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return NewAPIError(operation, status, "", msg)
}

// NetworkError wraps a transport-level HTTP failure where no response was
// obtained.
type NetworkError struct {
	Operation string
	Cause     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("avakit: %s failed: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error { return e.Cause }

// Is matches NetworkError against ErrNetwork.
func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// NewNetworkError creates a network error for a gateway operation.
func NewNetworkError(operation string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Cause: cause}
}

// HealthCheckError wraps any failure of the health probe.
type HealthCheckError struct {
	Cause error
}

func (e *HealthCheckError) Error() string {
	return fmt.Sprintf("avakit: health check failed: %v", e.Cause)
}

// Unwrap returns the underlying error.
func (e *HealthCheckError) Unwrap() error { return e.Cause }

// Is matches HealthCheckError against ErrHealthCheck.
func (e *HealthCheckError) Is(target error) bool { return target == ErrHealthCheck }

// ConnectionSetupError reports a failed session connect: either the session
// carried no usable transport credential, or the transport dial failed.
type ConnectionSetupError struct {
	SessionID string
	Reason    string
	Cause     error
}

func (e *ConnectionSetupError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("avakit: connect session %q: %s: %v", e.SessionID, e.Reason, e.Cause)
	}
	return fmt.Sprintf("avakit: connect session %q: %s", e.SessionID, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ConnectionSetupError) Unwrap() error { return e.Cause }

// Is matches ConnectionSetupError against ErrConnectionSetup.
func (e *ConnectionSetupError) Is(target error) bool { return target == ErrConnectionSetup }

// NewConnectionSetupError creates a connection-setup error for a session.
func NewConnectionSetupError(sessionID, reason string, cause error) *ConnectionSetupError {
	return &ConnectionSetupError{SessionID: sessionID, Reason: reason, Cause: cause}
}

// MessagingError reports a failed send over the reliable data channel.
type MessagingError struct {
	SessionID string
	Cause     error
}

func (e *MessagingError) Error() string {
	return fmt.Sprintf("avakit: send message on session %q: %v", e.SessionID, e.Cause)
}

// Unwrap returns the underlying error.
func (e *MessagingError) Unwrap() error { return e.Cause }

// Is matches MessagingError against ErrMessaging.
func (e *MessagingError) Is(target error) bool { return target == ErrMessaging }

// NewMessagingError creates a messaging error for a session.
func NewMessagingError(sessionID string, cause error) *MessagingError {
	return &MessagingError{SessionID: sessionID, Cause: cause}
}
