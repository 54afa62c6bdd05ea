package storage

import (
	"context"
	"dashboard/internal/model"
	"errors"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrPartial  = errors.New("session partially stored")
)

// Storage keeps the credential pair and user summary across restarts. The
// three values are written and removed together.
type Storage interface {
	Load(ctx context.Context) (*model.Session, error)
	Save(ctx context.Context, session *model.Session) error
	SaveAccessToken(ctx context.Context, accessToken string) error
	Clear(ctx context.Context) error
}

// Check reports whether a loaded session carries all three values.
func Check(s *model.Session) error {
	if s == nil {
		return ErrNotFound
	}

	present := 0
	if s.AccessToken != "" {
		present++
	}
	if s.RefreshToken != "" {
		present++
	}
	if s.User != nil {
		present++
	}

	switch present {
	case 0:
		return ErrNotFound
	case 3:
		return nil
	default:
		return ErrPartial
	}
}
