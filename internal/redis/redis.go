package redis

import (
	"context"
	"dashboard/internal/model"
	"dashboard/internal/storage"
	"dashboard/pkg/client/redis"
	"encoding/json"
	"fmt"
	"time"

	redis2 "github.com/redis/go-redis/v9"
)

const (
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
	keyUser         = "user"
)

type repositoryRedis struct {
	Client redis.Client
	Prefix string
	TTL    time.Duration
}

// NewRepositoryRedis stores the session under <prefix>accessToken,
// <prefix>refreshToken and <prefix>user. ttl 0 keeps them until cleared.
func NewRepositoryRedis(client redis.Client, prefix string, ttl time.Duration) storage.Storage {
	return &repositoryRedis{Client: client, Prefix: prefix, TTL: ttl}
}

func (r *repositoryRedis) keys() []string {
	return []string{
		r.Prefix + keyAccessToken,
		r.Prefix + keyRefreshToken,
		r.Prefix + keyUser,
	}
}

func (r *repositoryRedis) Load(ctx context.Context) (*model.Session, error) {
	values, err := r.Client.MGet(ctx, r.keys()...).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	session := &model.Session{}
	if v, ok := values[0].(string); ok {
		session.AccessToken = v
	}
	if v, ok := values[1].(string); ok {
		session.RefreshToken = v
	}
	if v, ok := values[2].(string); ok && v != "" {
		var user model.User
		if err := json.Unmarshal([]byte(v), &user); err != nil {
			return nil, fmt.Errorf("%w: decode user: %v", storage.ErrPartial, err)
		}
		session.User = &user
	}

	if err := storage.Check(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *repositoryRedis) Save(ctx context.Context, session *model.Session) error {
	if err := storage.Check(session); err != nil {
		return err
	}

	user, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	keys := r.keys()
	_, err = r.Client.TxPipelined(ctx, func(pipe redis2.Pipeliner) error {
		pipe.Set(ctx, keys[0], session.AccessToken, r.TTL)
		pipe.Set(ctx, keys[1], session.RefreshToken, r.TTL)
		pipe.Set(ctx, keys[2], user, r.TTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

func (r *repositoryRedis) SaveAccessToken(ctx context.Context, accessToken string) error {
	ok, err := r.Client.SetXX(ctx, r.Prefix+keyAccessToken, accessToken, r.ttlOrKeep()).Result()
	if err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if !ok {
		return storage.ErrNotFound
	}
	return nil
}

func (r *repositoryRedis) Clear(ctx context.Context) error {
	keys := r.keys()
	_, err := r.Client.TxPipelined(ctx, func(pipe redis2.Pipeliner) error {
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ttlOrKeep keeps the remaining TTL of the pair when the access token alone
// is replaced.
func (r *repositoryRedis) ttlOrKeep() time.Duration {
	if r.TTL == 0 {
		return 0
	}
	return redis2.KeepTTL
}
