package cycle

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCycle means a cycle buffer holding no flow entry reached a
	// boundary check. The entry stream broke its ordering precondition.
	ErrEmptyCycle = errors.New("cycle has no flow entry")

	// ErrInsufficientData is returned when there are no closed cycles to
	// compute statistics over.
	ErrInsufficientData = errors.New("not enough data yet: no complete cycles")
)

// MalformedInputError reports an entry whose date is missing, unparseable or
// out of order.
type MalformedInputError struct {
	Index int
	Day   string
	Err   error
}

func (e *MalformedInputError) Error() string {
	if e.Day == "" {
		return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("entry %d (%q): %v", e.Index, e.Day, e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// UnknownIntensityError reports a flow token outside the fixed vocabulary
type UnknownIntensityError struct {
	Index int
	Token string
}

func (e *UnknownIntensityError) Error() string {
	return fmt.Sprintf("entry %d: unknown flow intensity %q", e.Index, e.Token)
}
