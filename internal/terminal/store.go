package terminal

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// SessionStore persists the terminal's token/role pair across process
// restarts. Exactly two string entries; nothing else touches them.
type SessionStore interface {
	Load() (token, role string, err error)
	Save(token, role string) error
	Clear() error
}

type storedSession struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type fileStore struct {
	path string
}

// NewFileStore returns a store backed by a JSON file at path. Writes are
// atomic (temp file + rename) so a crash can't leave a torn pair.
func NewFileStore(path string) SessionStore {
	return &fileStore{path: path}
}

func (s *fileStore) Load() (string, string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", nil
		}
		return "", "", err
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		// Corrupt state file reads as unauthenticated.
		return "", "", nil
	}
	return stored.Token, stored.Role, nil
}

func (s *fileStore) Save(token, role string) error {
	data, err := json.Marshal(storedSession{Token: token, Role: role})
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}

func (s *fileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

type memoryStore struct {
	token string
	role  string
}

// NewMemoryStore returns a volatile store, useful in tests and for
// terminals that must not persist sessions.
func NewMemoryStore() SessionStore {
	return &memoryStore{}
}

func (s *memoryStore) Load() (string, string, error) {
	return s.token, s.role, nil
}

func (s *memoryStore) Save(token, role string) error {
	s.token = token
	s.role = role
	return nil
}

func (s *memoryStore) Clear() error {
	s.token = ""
	s.role = ""
	return nil
}
