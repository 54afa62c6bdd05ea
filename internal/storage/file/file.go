package file

import (
	"context"
	"dashboard/internal/model"
	"dashboard/internal/storage"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileStorage keeps the session as a single JSON document so the three
// values can only be replaced together.
type fileStorage struct {
	mu   sync.Mutex
	path string
}

func New(path string) storage.Storage {
	return &fileStorage{path: path}
}

func (f *fileStorage) Load(_ context.Context) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.read()
}

func (f *fileStorage) Save(_ context.Context, session *model.Session) error {
	if err := storage.Check(session); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.write(session)
}

func (f *fileStorage) SaveAccessToken(_ context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, err := f.read()
	if err != nil {
		return err
	}

	session.AccessToken = accessToken
	return f.write(session)
}

func (f *fileStorage) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (f *fileStorage) read() (*model.Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrPartial, err)
	}

	if err := storage.Check(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (f *fileStorage) write(session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	return nil
}
