package service

import "errors"

// ValidationError represents user input issues.
type ValidationError struct {
	Message string
	Detail  string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}

var (
	// ErrUnauthenticated is returned when an operation needs a session and
	// the caller has none.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrFileRead wraps failures reading an uploaded CSV.
	ErrFileRead = errors.New("failed to read upload")
)
