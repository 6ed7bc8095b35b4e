package storage

import "errors"

// Sentinel errors for the storage package. Callers match them with errors.Is.
var (
	// ErrNotFound is returned when a requested file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidName is returned for names that would escape the base directory.
	ErrInvalidName = errors.New("invalid file name")

	// ErrEmptyFile is returned when a JSON record has no content.
	ErrEmptyFile = errors.New("empty file")
)
