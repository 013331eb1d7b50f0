package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists a session's cart lines between requests. It stands in for
// the browser's local storage: written on every mutation, read once when the
// session first touches its cart.
type Store interface {
	// Load returns the persisted lines for a session, or (nil, nil) when the
	// session has no saved cart yet.
	Load(sessionID string) ([]Line, error)
	// Save replaces the persisted lines for a session.
	Save(sessionID string, lines []Line) error
	// Delete drops the persisted cart for a session.
	Delete(sessionID string) error
}

// FileStore keeps one JSON file per session under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(sessionID string) string {
	// Session IDs are UUIDs issued by this server; strip anything that could
	// escape the directory just in case.
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, sessionID)
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Load(sessionID string) ([]Line, error) {
	data, err := os.ReadFile(s.path(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *FileStore) Save(sessionID string, lines []Line) error {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(sessionID), data, 0o644)
}

func (s *FileStore) Delete(sessionID string) error {
	err := os.Remove(s.path(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
