package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrConfig, "Config not found", "Run 'wraith server add' first")

	if err.Code != ErrConfig {
		t.Errorf("Code = %q, want %q", err.Code, ErrConfig)
	}

	msg := err.Error()
	if !strings.Contains(msg, "Config not found") {
		t.Errorf("Error() missing message: %q", msg)
	}
	if !strings.Contains(msg, "Run 'wraith server add' first") {
		t.Errorf("Error() missing suggestion: %q", msg)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := Wrap(cause, "Engine tick failed")

	if err.Code != ErrEngine {
		t.Errorf("Code = %q, want %q", err.Code, ErrEngine)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !strings.Contains(err.Error(), "underlying failure") {
		t.Errorf("Error() missing cause: %q", err.Error())
	}
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := WrapWithCode(cause, ErrProbe, "Probe failed", "Check the host is reachable")

	if err.Code != ErrProbe {
		t.Errorf("Code = %q, want %q", err.Code, ErrProbe)
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestIsCode(t *testing.T) {
	err := New(ErrLaunch, "No terminal available", "")

	if !IsCode(err, ErrLaunch) {
		t.Error("IsCode(err, ErrLaunch) = false, want true")
	}
	if IsCode(err, ErrConfig) {
		t.Error("IsCode(err, ErrConfig) = true, want false")
	}
	if IsCode(nil, ErrLaunch) {
		t.Error("IsCode(nil, ...) = true, want false")
	}
	if IsCode(errors.New("plain"), ErrLaunch) {
		t.Error("IsCode(plain error, ...) = true, want false")
	}
}

func TestIsCode_Wrapped(t *testing.T) {
	inner := New(ErrProbe, "Probe failed", "")
	outer := Wrap(inner, "Refresh failed")

	if !IsCode(outer, ErrEngine) {
		t.Error("outer error should match ErrEngine")
	}
}
