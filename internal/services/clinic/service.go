package clinic

import (
	"context"
	"dashboard/internal/cache"
	"dashboard/internal/model"
	"dashboard/internal/provider/api"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
)

var (
	ErrNoDoctor   = errors.New("no signed in doctor")
	ErrValidation = errors.New("validation failed")
)

// Doer sends authorized requests to the clinic backend.
type Doer interface {
	Do(ctx context.Context, r api.Request, out any) (*api.Response, error)
}

// UserSource exposes the cached user summary of the session.
type UserSource interface {
	CurrentUser() (*model.User, bool)
}

// Service is the doctor facing part of the clinic API. Queries are served
// through the cache; successful mutations invalidate it.
type Service struct {
	api   Doer
	users UserSource
	cache *cache.Cache
	log   *slog.Logger
}

func New(client Doer, users UserSource, c *cache.Cache, log *slog.Logger) *Service {
	return &Service{api: client, users: users, cache: c, log: log}
}

func (s *Service) doctorID() (string, error) {
	u, ok := s.users.CurrentUser()
	if !ok || u.ID == "" {
		return "", ErrNoDoctor
	}
	return u.ID.String(), nil
}

// mutate sends r and, on success, applies the invalidations of m.
func (s *Service) mutate(ctx context.Context, m cache.Mutation, r api.Request, out any) error {
	if _, err := s.api.Do(ctx, r, out); err != nil {
		return err
	}

	s.cache.Invalidate(m)
	return nil
}

func query[T any](ctx context.Context, s *Service, key cache.Key, r api.Request) (T, error) {
	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (T, error) {
		var out T
		_, err := s.api.Do(ctx, r, &out)
		return out, err
	})
}

type PageQuery struct {
	Page     int
	PageSize int
}

func (p PageQuery) values(defaultSize int) url.Values {
	page, size := p.Page, p.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}

	return url.Values{
		"page":      {strconv.Itoa(page)},
		"page_size": {strconv.Itoa(size)},
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
