package memory_test

import (
	"context"
	"dashboard/internal/model"
	"dashboard/internal/storage"
	"dashboard/internal/storage/memory"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
	require.ErrorIs(t, s.SaveAccessToken(ctx, "A2"), storage.ErrNotFound)

	session := &model.Session{AccessToken: "A1", RefreshToken: "R1", User: &model.User{ID: "1", Role: "D"}}
	require.NoError(t, s.Save(ctx, session))

	// callers cannot mutate the stored value through their copy
	session.User.Role = "P"

	require.NoError(t, s.SaveAccessToken(ctx, "A2"))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.AccessToken)
	assert.Equal(t, "R1", got.RefreshToken)
	assert.Equal(t, "D", got.User.Role)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
