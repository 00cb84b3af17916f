package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/JonMunkholm/leavetrack/internal/logging"
)

// FileStore keeps every session in one JSON document on disk. Each write
// rewrites the document through a temp file and rename, so a crash leaves
// either the old or the new version.
type FileStore struct {
	path string

	mu sync.Mutex
}

// NewFileStore uses the document at path, creating its directory if needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

func (s *FileStore) Load(_ context.Context, id string) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return User{}, false, err
	}
	u, ok := doc[id]
	return u, ok, nil
}

func (s *FileStore) Save(ctx context.Context, id string, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if errors.Is(err, ErrCorrupt) {
		s.warnDiscard(ctx, err)
		doc, err = make(map[string]User), nil
	}
	if err != nil {
		return err
	}
	doc[id] = u
	return s.write(doc)
}

func (s *FileStore) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			s.warnDiscard(ctx, err)
			return s.write(map[string]User{})
		}
		return err
	}
	if _, ok := doc[id]; !ok {
		return nil
	}
	delete(doc, id)
	return s.write(doc)
}

// warnDiscard records that an unreadable document is about to be replaced,
// dropping every session it held.
func (s *FileStore) warnDiscard(ctx context.Context, err error) {
	logging.FromContext(ctx).Warn("discarding corrupt session file",
		"path", s.path,
		"error", err,
	)
}

func (s *FileStore) read() (map[string]User, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}

	doc := make(map[string]User)
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return doc, nil
}

func (s *FileStore) write(doc map[string]User) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sessions-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write sessions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace sessions: %w", err)
	}
	return nil
}
