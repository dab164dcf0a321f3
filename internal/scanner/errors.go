// Package scanner - Custom error types for better error handling
package scanner

import (
	"errors"
	"fmt"

	"github.com/Serdar715/sinkprobe/internal/config"
	"github.com/Serdar715/sinkprobe/internal/report"
)

// Sentinel errors for common error conditions
var (
	// ErrUnknownMode indicates a scan mode the driver cannot dispatch
	ErrUnknownMode = config.ErrUnknownMode

	// ErrSandboxMissing indicates the sandbox element disappeared from the page
	ErrSandboxMissing = errors.New("sandbox element missing")

	// ErrSanitizerNotLoaded indicates the sanitizer global is absent from the page
	ErrSanitizerNotLoaded = errors.New(TagSanitizerNotLoaded)
)

// SanitizeError is an exception thrown by the in-page sanitizer
type SanitizeError struct {
	Message string
}

func (e *SanitizeError) Error() string {
	return TagSanitizeError + e.Message
}

// SanitizeTag maps a sanitizer failure to its report tag. It returns false
// for errors that are not sanitizer outcomes (transport, evaluation).
func SanitizeTag(err error) (string, bool) {
	var se *SanitizeError
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, ErrSanitizerNotLoaded):
		return TagSanitizerNotLoaded, true
	case errors.As(err, &se):
		return se.Error(), true
	default:
		return "", false
	}
}

// ProbeError provides detailed error information for one payload
type ProbeError struct {
	Mode      config.ScanMode // The scan mode
	Payload   string          // The payload being tested
	Target    string          // The URL navigated to (if applicable)
	State     string          // The injection state being entered (if applicable)
	Operation string          // The operation that failed
	Cause     error           // The underlying error
}

// Error implements the error interface
func (e *ProbeError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("%s failed entering %s: %v", e.Operation, e.State, e.Cause)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// Record converts the error into the report record that replaces the payload's result
func (e *ProbeError) Record() *report.ErrorRecord {
	return &report.ErrorRecord{
		Mode:    e.Mode,
		Payload: e.Payload,
		Target:  e.Target,
		State:   e.State,
		Error:   e.Error(),
	}
}

// truncateString truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
