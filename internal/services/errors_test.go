package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"musicclean/internal/history"
	"musicclean/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "separation", "demucs", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"separation", "demucs", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaults(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err)
	}
}

func TestFailureStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want history.Status
	}{
		{"nil", nil, history.StatusFailed},
		{"tool", services.Wrap(services.ErrExternalTool, "encode", "ffmpeg", "failed", errors.New("exit 1")), history.StatusFailed},
		{"cancelled marker", services.Wrap(services.ErrCancelled, "clean", "confirm", "declined", nil), history.StatusCancelled},
		{"context cancelled", fmt.Errorf("separate: %w", context.Canceled), history.StatusCancelled},
		{"busy", services.Wrap(services.ErrBusy, "clean", "lock", "in use", nil), history.StatusSkipped},
	}
	for _, tc := range tests {
		if got := services.FailureStatus(tc.err); got != tc.want {
			t.Errorf("%s: FailureStatus = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestHint(t *testing.T) {
	if services.Hint(services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil)) == "" {
		t.Fatal("expected configuration hint")
	}
	if services.Hint(errors.New("plain")) != "" {
		t.Fatal("expected no hint for unclassified error")
	}
}
