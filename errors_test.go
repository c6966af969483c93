package avakit

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestAPIErrorFormat(t *testing.T) {
	err := NewAPIError("create_session", 422, "invalid_avatar", "avatar not active")
	msg := err.Error()
	for _, want := range []string{"create_session", "422", "invalid_avatar", "avatar not active"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message %q missing %q", msg, want)
		}
	}

	// No code: the code segment is omitted entirely.
	err = NewAPIError("health", 503, "", "unavailable")
	if strings.Contains(err.Error(), "()") {
		t.Errorf("empty code rendered: %q", err.Error())
	}
}

func TestAPIErrorKindMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{401, ErrAuthentication},
		{403, ErrAuthentication},
		{429, ErrRateLimited},
		{400, ErrValidation},
		{422, ErrValidation},
		{404, ErrNotFound},
		{500, ErrServer},
		{503, ErrServer},
	}

	for _, tt := range tests {
		err := NewAPIError("op", tt.status, "", "msg")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: expected match for %v", tt.status, tt.want)
		}
		if !errors.Is(err, ErrAPI) {
			t.Errorf("status %d: every APIError must match ErrAPI", tt.status)
		}
	}

	// A status outside the mapped set matches only the generic kind.
	teapot := NewAPIError("op", 418, "", "msg")
	if !errors.Is(teapot, ErrAPI) {
		t.Error("418 must match ErrAPI")
	}
	for _, kind := range []error{ErrAuthentication, ErrRateLimited, ErrValidation, ErrNotFound, ErrServer} {
		if errors.Is(teapot, kind) {
			t.Errorf("418 must not match %v", kind)
		}
	}
}

func TestAPIErrorFromBody(t *testing.T) {
	err := apiErrorFromBody("op", 400, []byte(`{"error":{"code":"bad_input","message":"missing field"}}`))
	if err.Code != "bad_input" || err.Message != "missing field" {
		t.Errorf("parsed error = %+v", err)
	}

	// Non-JSON bodies are carried verbatim.
	err = apiErrorFromBody("op", 502, []byte("bad gateway upstream"))
	if err.Message != "bad gateway upstream" {
		t.Errorf("raw body message = %q", err.Message)
	}

	// Empty bodies fall back to the standard status text.
	err = apiErrorFromBody("op", 404, nil)
	if err.Message != "Not Found" {
		t.Errorf("fallback message = %q", err.Message)
	}
}

func TestErrorUnwrapChains(t *testing.T) {
	cause := errors.New("dial tcp: refused")

	netErr := NewNetworkError("list_avatars", cause)
	if !errors.Is(netErr, ErrNetwork) {
		t.Error("NetworkError must match ErrNetwork")
	}
	if !errors.Is(netErr, cause) {
		t.Error("NetworkError must unwrap to its cause")
	}

	healthErr := &HealthCheckError{Cause: netErr}
	if !errors.Is(healthErr, ErrHealthCheck) {
		t.Error("HealthCheckError must match ErrHealthCheck")
	}
	if !errors.Is(healthErr, ErrNetwork) {
		t.Error("HealthCheckError must unwrap through to ErrNetwork")
	}

	setupErr := NewConnectionSetupError("s1", "dial failed", cause)
	if !errors.Is(setupErr, ErrConnectionSetup) || !errors.Is(setupErr, cause) {
		t.Error("ConnectionSetupError kind/unwrap broken")
	}
	if !strings.Contains(setupErr.Error(), "s1") {
		t.Errorf("setup error missing session id: %q", setupErr.Error())
	}

	msgErr := NewMessagingError("s1", cause)
	if !errors.Is(msgErr, ErrMessaging) || !errors.Is(msgErr, cause) {
		t.Error("MessagingError kind/unwrap broken")
	}

	cfgErr := NewConfigError("BaseURL", "", "cannot be empty")
	if !errors.Is(cfgErr, ErrInvalidConfig) {
		t.Error("ConfigError must match ErrInvalidConfig")
	}
}

func TestValidationSentinelWrapping(t *testing.T) {
	err := CreateSessionRequest{}.validate()
	if !errors.Is(err, ErrValidation) {
		t.Errorf("local validation must match ErrValidation, got %v", err)
	}

	wrapped := fmt.Errorf("context: %w", err)
	if !errors.Is(wrapped, ErrValidation) {
		t.Error("wrapping must preserve the kind")
	}
}
