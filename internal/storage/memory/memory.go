package memory

import (
	"context"
	"dashboard/internal/model"
	"dashboard/internal/storage"
	"sync"
)

type memoryStorage struct {
	mu      sync.Mutex
	session *model.Session
}

func New() storage.Storage {
	return &memoryStorage{}
}

func (m *memoryStorage) Load(_ context.Context) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := storage.Check(m.session); err != nil {
		return nil, err
	}
	return clone(m.session), nil
}

func (m *memoryStorage) Save(_ context.Context, session *model.Session) error {
	if err := storage.Check(session); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = clone(session)
	return nil
}

func (m *memoryStorage) SaveAccessToken(_ context.Context, accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return storage.ErrNotFound
	}
	m.session.AccessToken = accessToken
	return nil
}

func (m *memoryStorage) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	return nil
}

func clone(s *model.Session) *model.Session {
	out := *s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return &out
}
