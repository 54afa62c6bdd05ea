package redis_test

import (
	"context"
	"dashboard/internal/model"
	redisstore "dashboard/internal/redis"
	"dashboard/internal/storage"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, prefix string, ttl time.Duration) (*miniredis.Miniredis, storage.Storage) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return srv, redisstore.NewRepositoryRedis(client, prefix, ttl)
}

func session() *model.Session {
	return &model.Session{
		AccessToken:  "A1",
		RefreshToken: "R1",
		User:         &model.User{ID: "7", Role: "D", Email: "doc@example.com"},
	}
}

func TestRepositoryRedis_SaveWritesAllKeys(t *testing.T) {
	ctx := context.Background()
	srv, s := setup(t, "", 0)

	require.NoError(t, s.Save(ctx, session()))

	srv.CheckGet(t, "accessToken", "A1")
	srv.CheckGet(t, "refreshToken", "R1")
	assert.True(t, srv.Exists("user"))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, session(), got)
}

func TestRepositoryRedis_ClearRemovesAllKeys(t *testing.T) {
	ctx := context.Background()
	srv, s := setup(t, "dash:", 0)

	require.NoError(t, s.Save(ctx, session()))
	require.NoError(t, s.Clear(ctx))

	for _, key := range []string{"dash:accessToken", "dash:refreshToken", "dash:user"} {
		assert.False(t, srv.Exists(key), key)
	}

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRepositoryRedis_SaveAccessToken(t *testing.T) {
	ctx := context.Background()
	srv, s := setup(t, "", time.Hour)

	require.ErrorIs(t, s.SaveAccessToken(ctx, "A2"), storage.ErrNotFound)
	assert.False(t, srv.Exists("accessToken"))

	require.NoError(t, s.Save(ctx, session()))
	require.NoError(t, s.SaveAccessToken(ctx, "A2"))

	srv.CheckGet(t, "accessToken", "A2")
	srv.CheckGet(t, "refreshToken", "R1")
	assert.Equal(t, time.Hour, srv.TTL("accessToken"))
}

func TestRepositoryRedis_PartialIsRejected(t *testing.T) {
	ctx := context.Background()
	srv, s := setup(t, "", 0)

	require.NoError(t, srv.Set("accessToken", "A1"))

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, storage.ErrPartial)

	require.ErrorIs(t, s.Save(ctx, &model.Session{AccessToken: "A1"}), storage.ErrPartial)
}
