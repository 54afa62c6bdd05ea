package redis

import (
	"context"
	"dashboard/internal/config"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := NewClient(context.Background(), 1, config.StorageRedis{
		Host: srv.Host(),
		Port: srv.Port(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	srv.CheckGet(t, "k", "v")
}

func TestDoWithTries(t *testing.T) {
	calls := 0
	err := doWithTries(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	require.Equal(t, 3, calls)

	calls = 0
	err = doWithTries(context.Background(), func() error {
		calls++
		return errors.New("down")
	}, 2, time.Millisecond)

	require.EqualError(t, err, "down")
	require.Equal(t, 2, calls)
}
