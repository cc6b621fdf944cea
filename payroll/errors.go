/*
errors.go - Error types for the payout engine

PURPOSE:
  All engine error types in one place. Two conditions are fatal to a whole
  computation: an unparsable timestamp (every downstream comparison depends
  on comparable instants) and a broken configuration (missing directory,
  unknown time zone, malformed boundary). Everything else is reported as a
  warning on the Result, never as an error.

SEE ALSO:
  - time.go: produces TimeParseError
  - api: maps IsClientError to HTTP 400
*/
package payroll

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTimeParse is the sentinel wrapped by every TimeParseError.
	ErrTimeParse = errors.New("unparsable timestamp")

	// ErrConfiguration is the sentinel wrapped by every ConfigurationError.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrEmployeeNotFound is returned by directory lookups for unknown names.
	ErrEmployeeNotFound = errors.New("employee not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TimeParseError reports a malformed or empty timestamp string.
type TimeParseError struct {
	Input string
	Cause error
}

func (e *TimeParseError) Error() string {
	if e.Input == "" {
		return "empty timestamp"
	}
	if e.Cause != nil {
		return fmt.Sprintf("unparsable timestamp %q: %v", e.Input, e.Cause)
	}
	return fmt.Sprintf("unparsable timestamp %q", e.Input)
}

func (e *TimeParseError) Unwrap() error { return ErrTimeParse }

// ConfigurationError reports a broken engine configuration: an unknown time
// zone, a malformed boundary time, or a missing/malformed employee directory.
type ConfigurationError struct {
	Field string
	Cause error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("configuration: %s", e.Field)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is caused by invalid input rather
// than an internal failure. The HTTP layer maps these to 400.
func IsClientError(err error) bool {
	return errors.Is(err, ErrTimeParse) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrEmployeeNotFound)
}
