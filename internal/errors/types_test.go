package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestError(t *testing.T) {
	err := New(ErrorTypeValidation, "test error")
	if err.Type != ErrorTypeValidation {
		t.Errorf("Expected type %s, got %s", ErrorTypeValidation, err.Type)
	}
	if err.Message != "test error" {
		t.Errorf("Expected message 'test error', got '%s'", err.Message)
	}

	cause := fmt.Errorf("underlying error")
	wrapped := Wrap(cause, ErrorTypeNetwork, "network issue")
	if wrapped.Cause != cause {
		t.Errorf("Expected cause to be preserved")
	}
	if !stderrors.Is(wrapped, cause) {
		t.Errorf("Expected errors.Is to reach the cause")
	}

	err.WithContext("field", "retries")
	if err.Context["field"] != "retries" {
		t.Errorf("Expected context to be set")
	}

	if got, want := wrapped.Error(), "network issue: underlying error"; got != want {
		t.Errorf("Expected '%s', got '%s'", want, got)
	}
}

func TestSentinelMatchesByType(t *testing.T) {
	configErr := New(ErrorTypeConfig, "bad token")
	wrapped := fmt.Errorf("building client: %w", configErr)

	if !stderrors.Is(wrapped, Sentinel(ErrorTypeConfig)) {
		t.Errorf("Expected wrapped config error to match config sentinel")
	}
	if stderrors.Is(wrapped, Sentinel(ErrorTypeValidation)) {
		t.Errorf("Expected config error not to match validation sentinel")
	}
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeConfig, "config error")

	if !IsType(err, ErrorTypeConfig) {
		t.Errorf("Expected IsType to return true for correct type")
	}
	if IsType(err, ErrorTypeNetwork) {
		t.Errorf("Expected IsType to return false for incorrect type")
	}
	if !IsType(fmt.Errorf("outer: %w", err), ErrorTypeConfig) {
		t.Errorf("Expected IsType to look through wrapping")
	}
	if IsType(fmt.Errorf("standard error"), ErrorTypeConfig) {
		t.Errorf("Expected IsType to return false for standard error")
	}
}

func TestGetType(t *testing.T) {
	err := New(ErrorTypeConfig, "config error")
	if GetType(err) != ErrorTypeConfig {
		t.Errorf("Expected type %s, got %s", ErrorTypeConfig, GetType(err))
	}

	if GetType(fmt.Errorf("standard error")) != ErrorTypeInternal {
		t.Errorf("Expected internal type for standard error")
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrorTypeConfig, "must be provided").WithContext("field", "accessToken")
	if got, want := UserMessage(err), "Configuration error (accessToken): must be provided"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	netErr := Wrap(fmt.Errorf("dial tcp: refused"), ErrorTypeNetwork, "request failed").
		WithContext("url", "https://shop.example.com")
	if got, want := UserMessage(netErr), "Network error accessing https://shop.example.com: request failed: dial tcp: refused"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
