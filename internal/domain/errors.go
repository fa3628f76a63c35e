package domain

import "errors"

var (
	// ErrInvalidLocation is returned when a location has no usable coordinates.
	// No request is attempted.
	ErrInvalidLocation = errors.New("location has no coordinates")

	// ErrFetch is the single error kind surfaced for any failed remote fetch:
	// transport failure, non-success status, or an unparsable payload.
	ErrFetch = errors.New("there was an error fetching the data, please try again")
)

// FetchError collapses a failed remote fetch into ErrFetch while keeping the
// underlying cause for logs.
type FetchError struct {
	Cause error
}

func (e *FetchError) Error() string {
	if e.Cause == nil {
		return ErrFetch.Error()
	}
	return ErrFetch.Error() + ": " + e.Cause.Error()
}

// Is reports ErrFetch so callers can match with errors.Is without seeing the cause.
func (e *FetchError) Is(target error) bool { return target == ErrFetch }

func (e *FetchError) Unwrap() error { return e.Cause }
