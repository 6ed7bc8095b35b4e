package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	// DefaultBaseDir is the default work directory.
	DefaultBaseDir = "docs"

	dirPerm  = 0o755
	filePerm = 0o644
)

// FileStorage implements Storage on the local filesystem.
type FileStorage struct {
	// baseDir is the work directory root (e.g., docs).
	baseDir string

	mu sync.Mutex
}

// FileStorageOption configures a FileStorage instance.
type FileStorageOption func(*FileStorage)

// WithBaseDir sets the base directory.
func WithBaseDir(dir string) FileStorageOption {
	return func(s *FileStorage) {
		if dir != "" {
			s.baseDir = dir
		}
	}
}

// NewFileStorage creates a new file-based storage.
func NewFileStorage(opts ...FileStorageOption) *FileStorage {
	s := &FileStorage{baseDir: DefaultBaseDir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init creates the base directory.
func (s *FileStorage) Init() error {
	if err := os.MkdirAll(s.baseDir, dirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", s.baseDir, err)
	}
	return nil
}

// Exists reports whether name is present in the base directory.
func (s *FileStorage) Exists(name string) bool {
	path, err := s.resolve(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ReadFile returns the content of name.
func (s *FileStorage) ReadFile(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// WriteFile writes data to name via temp file and rename.
func (s *FileStorage) WriteFile(name string, data []byte) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return atomicWrite(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// ReadJSON decodes name into v.
func (s *FileStorage) ReadJSON(name string, v any) error {
	data, err := s.ReadFile(name)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("decode %s: %w", name, ErrEmptyFile)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// WriteJSON writes v as two-space indented JSON. Non-ASCII text is kept as is.
func (s *FileStorage) WriteJSON(name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.WriteFile(name, buf.Bytes())
}

// Remove deletes name. A missing file is not an error.
func (s *FileStorage) Remove(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// RemoveAll deletes the base directory and everything in it.
func (s *FileStorage) RemoveAll() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.baseDir); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err := os.RemoveAll(s.baseDir); err != nil {
		return false, fmt.Errorf("remove directory %s: %w", s.baseDir, err)
	}
	return true, nil
}

// Path returns the on-disk path for name without validating it.
func (s *FileStorage) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// BaseDir returns the configured base directory.
func (s *FileStorage) BaseDir() string {
	return s.baseDir
}

// resolve joins name onto the base directory, rejecting path traversal.
func (s *FileStorage) resolve(name string) (string, error) {
	clean := filepath.Clean(name)
	if name == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.baseDir, clean), nil
}

// atomicWrite writes to a temp file in the target directory and renames it
// over path, so readers never observe a partially written file.
func atomicWrite(path string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath) //nolint:errcheck // cleanup in error path
		}
	}()

	if err := writeFunc(tmpFile); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("write content: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close() //nolint:errcheck // cleanup in error path
		return fmt.Errorf("sync file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, filePerm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename to final: %w", err)
	}

	success = true
	return nil
}
