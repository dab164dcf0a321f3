package cli

import (
	"errors"
	"fmt"
)

// Process exit codes
const (
	ExitOK            = 0
	ExitUsage         = 1
	ExitPayloadFile   = 2
	ExitUnknownMode   = 3
	ExitBrowserLaunch = 4
)

// ExitError carries the process exit code for a failed invocation
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitErr(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps an error returned by Execute to a process exit code.
// Errors without an ExitError in their chain, such as cobra flag errors, map to ExitUsage.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return ExitUsage
}
