package observable

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInitialState is returned by New when the record is not a
	// struct or a map keyed by strings, or when the map is nil.
	ErrInvalidInitialState = errors.New("invalid initial state")

	// ErrUnknownField is returned when a field name is not part of the record.
	ErrUnknownField = errors.New("unknown field")

	// ErrFieldType is returned when a value cannot be stored in a field.
	ErrFieldType = errors.New("field type mismatch")

	// ErrNilObserver is returned when Attach is given a nil callback.
	ErrNilObserver = errors.New("nil observer")

	// ErrAlreadyWatching is returned by a second call to Watch.
	ErrAlreadyWatching = errors.New("state already watching")
)

func unknownField(name string) error {
	return fmt.Errorf("%w: %q", ErrUnknownField, name)
}
