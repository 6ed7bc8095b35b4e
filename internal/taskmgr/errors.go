package taskmgr

import "errors"

var (
	// ErrUnknownOperation is returned for a name that is neither a canonical
	// operation nor an alias.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrMissingArgument is returned when a required argument is absent or
	// has the wrong type.
	ErrMissingArgument = errors.New("missing argument")

	errInterrupted = errors.New("operation interrupted")
)
