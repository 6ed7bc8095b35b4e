// Package storage persists the task manager's work directory: the rendered
// requirement documents, the task plan, and the wizard's JSON state record.
package storage

// Storage is the interface for reading and writing work-directory files.
// Names are plain file names relative to the base directory.
type Storage interface {
	// Init creates the base directory if it is absent.
	Init() error

	// Exists reports whether the named file is present.
	Exists(name string) bool

	// ReadFile returns the file content.
	// A missing file yields an error matching ErrNotFound.
	ReadFile(name string) ([]byte, error)

	// WriteFile replaces the file content atomically.
	WriteFile(name string, data []byte) error

	// ReadJSON decodes the named file into v.
	ReadJSON(name string, v any) error

	// WriteJSON encodes v as indented JSON and writes it atomically.
	WriteJSON(name string, v any) error

	// Remove deletes the named file. Removing a missing file is not an error.
	Remove(name string) error

	// RemoveAll deletes the whole base directory.
	// Returns false when there was nothing to delete.
	RemoveAll() (bool, error)

	// Path returns the on-disk path for name.
	Path(name string) string

	// BaseDir returns the configured base directory.
	BaseDir() string
}
