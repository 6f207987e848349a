package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"musicclean/internal/history"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrCancelled     = errors.New("cancelled")
	ErrBusy          = errors.New("busy")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureStatus maps a run error to the outcome recorded in history.
func FailureStatus(err error) history.Status {
	switch {
	case err == nil:
		return history.StatusFailed
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return history.StatusCancelled
	case errors.Is(err, ErrBusy):
		return history.StatusSkipped
	default:
		return history.StatusFailed
	}
}

// Hint returns a short remediation hint for a classified error.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "check config with: musicclean config validate"
	case errors.Is(err, ErrExternalTool):
		return "check external tools with: musicclean status"
	case errors.Is(err, ErrNotFound):
		return "verify the input path exists"
	case errors.Is(err, ErrBusy):
		return "another musicclean process is working on this file"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
