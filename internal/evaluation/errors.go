package evaluation

import "errors"

// Terminal failures of a single comparison. None are retried.
var (
	ErrInputNotFound  = errors.New("input not found")
	ErrMalformedInput = errors.New("malformed input")
	ErrOutputWrite    = errors.New("output write failed")
)

// Process exit codes for comparison failures.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitNotFound    = 2
	ExitMalformed   = 3
	ExitOutputWrite = 4
)

// ExitCode maps an error to the process exit status reported by the CLI.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInputNotFound):
		return ExitNotFound
	case errors.Is(err, ErrMalformedInput):
		return ExitMalformed
	case errors.Is(err, ErrOutputWrite):
		return ExitOutputWrite
	default:
		return ExitFailure
	}
}
