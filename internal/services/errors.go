package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrMissingInput  = errors.New("missing input artifact")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrTimeout       = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsPrecondition reports whether err is a missing-input or configuration
// failure, i.e. the run was doomed before any external tool did work.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrMissingInput) || errors.Is(err, ErrConfiguration)
}

// Details extracts the human-readable portion of a wrapped stage error.
type ErrorDetails struct {
	Message string
}

// DetailsOf returns the message text with the sentinel prefix stripped.
func DetailsOf(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	msg := err.Error()
	for _, sentinel := range []error{ErrExternalTool, ErrMissingInput, ErrValidation, ErrConfiguration, ErrTimeout} {
		prefix := sentinel.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return ErrorDetails{Message: strings.TrimPrefix(msg, prefix)}
		}
	}
	return ErrorDetails{Message: msg}
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
