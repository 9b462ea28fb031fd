package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrorTypeParse, "bad payload")
	if got := err.Error(); got != "parse error: bad payload" {
		t.Errorf("unexpected message: %s", got)
	}

	wrapped := Wrap(ErrorTypeSink, "flush failed", fmt.Errorf("disk full"))
	if got := wrapped.Error(); got != "sink error: flush failed: disk full" {
		t.Errorf("unexpected wrapped message: %s", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(ErrorTypeSink, "flush failed", cause)

	if !errors.Is(err, cause) {
		t.Error("expected wrapped error to match its cause")
	}

	var capErr *Error
	if !errors.As(fmt.Errorf("outer: %w", err), &capErr) {
		t.Fatal("expected errors.As to find the classified error")
	}
	if capErr.Type != ErrorTypeSink {
		t.Errorf("expected sink type, got %s", capErr.Type)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrorTypeSink) {
		t.Error("sink failures must be retryable")
	}
	for _, et := range []ErrorType{ErrorTypeParse, ErrorTypeLocator, ErrorTypeEntity, ErrorTypeNavigation, ErrorTypeUnknown} {
		if IsRetryable(et) {
			t.Errorf("%s should not be retryable", et)
		}
	}
}
