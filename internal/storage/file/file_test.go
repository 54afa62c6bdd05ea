package file_test

import (
	"context"
	"dashboard/internal/model"
	"dashboard/internal/storage"
	"dashboard/internal/storage/file"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() *model.Session {
	return &model.Session{
		AccessToken:  "A1",
		RefreshToken: "R1",
		User:         &model.User{ID: "7", Role: "D", Email: "doc@example.com", FullName: "Dr. House"},
	}
}

func TestFileStorage_SaveLoadClear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s := file.New(path)

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Save(ctx, newSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, newSession(), got)

	require.NoError(t, s.Clear(ctx))
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// clearing twice is fine
	require.NoError(t, s.Clear(ctx))
}

func TestFileStorage_SaveAccessTokenKeepsRefresh(t *testing.T) {
	ctx := context.Background()
	s := file.New(filepath.Join(t.TempDir(), "session.json"))

	require.ErrorIs(t, s.SaveAccessToken(ctx, "A2"), storage.ErrNotFound)

	require.NoError(t, s.Save(ctx, newSession()))
	require.NoError(t, s.SaveAccessToken(ctx, "A2"))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A2", got.AccessToken)
	assert.Equal(t, "R1", got.RefreshToken)
	assert.Equal(t, model.ID("7"), got.User.ID)
}

func TestFileStorage_RejectsPartial(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")
	s := file.New(path)

	require.ErrorIs(t, s.Save(ctx, &model.Session{AccessToken: "A1", RefreshToken: "R1"}), storage.ErrPartial)
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err), "nothing may be written for a partial session")

	require.NoError(t, os.WriteFile(path, []byte(`{"accessToken":"A1"}`), 0o600))
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, storage.ErrPartial)

	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0o600))
	_, err = s.Load(ctx)
	require.ErrorIs(t, err, storage.ErrPartial)
}
