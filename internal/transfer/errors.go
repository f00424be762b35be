package transfer

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedSchemaVersion is returned for payloads newer than this build.
	ErrUnsupportedSchemaVersion = errors.New("unsupported schema version")
	// ErrInvalidPayload is returned when a payload fails structural validation.
	ErrInvalidPayload = errors.New("invalid export payload")
	// ErrItemTooDeep is returned when folders nest deeper than MaxItemDepth.
	ErrItemTooDeep = errors.New("app items nested too deeply")
	// ErrInvalidSelectionToken is returned for a selection token that is not n or a-b.
	ErrInvalidSelectionToken = errors.New("invalid selection token")
	// ErrSelectionOutOfRange is returned when a selected number has no matching space.
	ErrSelectionOutOfRange = errors.New("selection out of range")
	// ErrNoSpacesSelected is returned when a selection resolves to nothing.
	ErrNoSpacesSelected = errors.New("no spaces selected")
)

// UnsupportedSchemaVersionError identifies the rejected version and the one supported.
type UnsupportedSchemaVersionError struct {
	Got     int
	Current int
}

func (e *UnsupportedSchemaVersionError) Error() string {
	return fmt.Sprintf("unsupported schema version %d (current is %d)", e.Got, e.Current)
}

func (e *UnsupportedSchemaVersionError) Is(target error) bool {
	return target == ErrUnsupportedSchemaVersion
}

// SelectionError reports the offending token of a selection string.
type SelectionError struct {
	Token     string
	Available int
	Err       error
}

func (e *SelectionError) Error() string {
	if errors.Is(e.Err, ErrSelectionOutOfRange) {
		return fmt.Sprintf("%v: %q (valid: 1-%d)", e.Err, e.Token, e.Available)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Token)
}

func (e *SelectionError) Unwrap() error {
	return e.Err
}

func invalidPayload(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}
