package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	editorFile = "editor"
	apiKeyFile = "gemini_key"
)

// Store persists small user preferences next to the config file.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir; an empty dir uses Dir().
func NewStore(dir string) *Store {
	if dir == "" {
		dir = Dir()
	}
	return &Store{dir: dir}
}

// PreferredEditor returns the saved editor command, or "" when none is saved.
func (s *Store) PreferredEditor() (string, error) {
	return s.read(editorFile)
}

// SetPreferredEditor saves the editor command.
func (s *Store) SetPreferredEditor(command string) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return errors.New("editor command cannot be empty")
	}
	return s.write(editorFile, command, 0o644)
}

// APIKey returns the stored Gemini API key, or "".
func (s *Store) APIKey() (string, error) {
	return s.read(apiKeyFile)
}

// SetAPIKey stores the API key readable by the owner only.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key cannot be empty")
	}
	return s.write(apiKeyFile, key, 0o600)
}

func (s *Store) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *Store) write(name, value string, perm os.FileMode) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(value), perm); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	// WriteFile keeps the mode of an existing file
	return os.Chmod(path, perm)
}
