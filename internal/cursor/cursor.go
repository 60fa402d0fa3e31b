// Package cursor persists the inbound command stream position.
package cursor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileStore keeps the highest fully processed command sequence number
// in a small text file. The cursor is read once at startup and advanced
// before each command's side effects run, which guarantees a command is
// never reprocessed after a restart (at the cost that a crash between
// the advance and the action drops that one action).
type FileStore struct {
	path string
}

// NewFileStore creates a cursor store at path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("cursor path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create cursor directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Load returns the persisted cursor. A missing file means no command
// has ever been processed and reads as zero.
func (s *FileStore) Load() (int64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read cursor file: %w", err)
	}
	seq, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cursor file: %w", err)
	}
	return seq, nil
}

// Advance persists seq atomically. The cursor is monotonic: callers
// feed it ascending sequence numbers.
func (s *FileStore) Advance(seq int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cursor-*")
	if err != nil {
		return fmt.Errorf("create temp cursor file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(strconv.FormatInt(seq, 10)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp cursor file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cursor file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cursor file: %w", err)
	}
	return nil
}
