package cli

import (
	"errors"
	"fmt"

	"github.com/dqcheck/dqcheck/internal/domain"
)

// Process exit codes.
const (
	ExitPassed = 0
	ExitFailed = 1
	ExitUsage  = 2
)

// ExitError carries the exit code for a command failure. Reported is set
// when the message was already printed to the user.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps err to a process exit code. Errors without an ExitError
// are usage or I/O failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitPassed
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitUsage
}

// userMessage turns a run error into the message printed on the console.
func userMessage(err error, datasetPath, suitePath string) string {
	switch {
	case errors.Is(err, domain.ErrDatasetNotFound):
		return "Input data file not found: " + datasetPath
	case errors.Is(err, domain.ErrSuiteNotFound):
		return "Suite file not found: " + suitePath
	case errors.Is(err, domain.ErrInvalidSuite):
		return "Suite loading error: " + err.Error()
	case errors.Is(err, domain.ErrInvalidDataset):
		return "Dataset loading error: " + err.Error()
	}
	return err.Error()
}
