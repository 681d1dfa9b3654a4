package topic

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/KevinKickass/OpenDACCore/internal/host"
)

// FileStore keeps every topic in its own file. Reads search all configured
// paths in order; writes go to the first path.
type FileStore struct {
	searchPaths []string
	mu          sync.Mutex
}

func NewFileStore(searchPaths []string) (*FileStore, error) {
	if len(searchPaths) == 0 {
		return nil, errors.New("file topic store needs at least one search path")
	}

	if err := os.MkdirAll(searchPaths[0], 0o755); err != nil {
		return nil, fmt.Errorf("failed to create topic directory %s: %w", searchPaths[0], err)
	}

	return &FileStore{searchPaths: searchPaths}, nil
}

func (s *FileStore) ReadTopic(_ context.Context, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	for _, searchPath := range s.searchPaths {
		data, err := os.ReadFile(filepath.Join(searchPath, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("failed to read topic %s: %w", name, err)
		}
	}

	return "", fmt.Errorf("%w: %s (searched in: %v)", host.ErrTopicNotFound, name, s.searchPaths)
}

func (s *FileStore) WriteTopic(_ context.Context, name, text string) error {
	if err := checkName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.searchPaths[0], name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write topic %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace topic %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) WriteAppendTopic(_ context.Context, name, text string) error {
	if err := checkName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.searchPaths[0], name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open topic %s: %w", name, err)
	}
	if err := appendAndClose(f, text); err != nil {
		return fmt.Errorf("failed to append to topic %s: %w", name, err)
	}
	return nil
}

// appendAndClose writes text and closes w, returning the first error.
func appendAndClose(w io.WriteCloser, text string) error {
	if _, err := io.WriteString(w, text); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// checkName keeps topic names inside the store directories.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid topic name: %q", name)
	}
	return nil
}
