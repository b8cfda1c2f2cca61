package recording

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrNonMonotonic marks an append whose time does not exceed the previous record's.
	ErrNonMonotonic = errors.New("recording: timestamps must be strictly increasing")
	// ErrMalformedEvent is returned by Decode for bytes that are not one well-formed MIDI message.
	ErrMalformedEvent = errors.New("recording: malformed MIDI event")
	// ErrMalformedRecording is returned when serialized data does not describe a valid recording.
	ErrMalformedRecording = errors.New("recording: malformed recording data")
	// ErrNotFound is returned when a recording file does not exist.
	ErrNotFound = errors.New("recording: file not found")
)

// violate aborts on a broken caller contract. The panic value carries a stack trace.
func violate(sentinel error, format string, args ...any) {
	panic(pkgerrors.WithStack(fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)))
}
