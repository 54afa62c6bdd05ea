package app

import (
	"context"
	grpcapp "dashboard/internal/app/grpc"
	"dashboard/internal/cache"
	"dashboard/internal/config"
	grpcAuth "dashboard/internal/grpc/auth"
	"dashboard/internal/provider/api"
	redisStorage "dashboard/internal/redis"
	"dashboard/internal/services/clinic"
	"dashboard/internal/services/session"
	"dashboard/internal/storage"
	"dashboard/internal/storage/file"
	"dashboard/internal/storage/memory"
	"dashboard/pkg/client/redis"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

const redisConnectAttempts = 5

// App holds the wired client: one session manager shared by the transport,
// the clinic service and the commands.
type App struct {
	Log     *slog.Logger
	Session *session.Manager
	Auth    *api.AuthAPI
	Clinic  *clinic.Service
	Cache   *cache.Cache

	closers []func()
}

func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	const op = "app.New"

	a := &App{Log: log}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	a.Auth = api.NewAuthAPI(client, cfg.Auth.AllowedRole)

	store, err := a.newStorage(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	issuer, err := a.newIssuer(cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Cache = cache.New(cfg.Cache.TTL, log)

	a.Session = session.New(issuer, store, session.Options{
		AllowedRole:    cfg.Auth.AllowedRole,
		RefreshTimeout: cfg.Auth.RefreshTimeout,
		RefreshRetries: cfg.Auth.RefreshRetries,
		RefreshBackoff: cfg.Auth.RefreshBackoff,
		OnExpired: func() {
			a.Cache.Invalidate(cache.SessionChanged)
		},
		OnSessionChange: func() {
			a.Cache.Invalidate(cache.SessionChanged)
		},
	}, log)

	client.SetAuthorizer(a.Session)

	if err := a.Session.Init(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Clinic = clinic.New(client, a.Session, a.Cache, log)

	return a, nil
}

func (a *App) newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case config.StorageTypeMemory:
		return memory.New(), nil
	case config.StorageTypeRedis:
		client, err := redis.NewClient(ctx, redisConnectAttempts, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })

		return redisStorage.NewRepositoryRedis(client, cfg.Storage.KeyPrefix, cfg.Storage.TTL), nil
	default:
		return file.New(cfg.Storage.Path), nil
	}
}

func (a *App) newIssuer(cfg *config.Config) (session.Issuer, error) {
	if cfg.Auth.Backend != config.BackendGRPC {
		return a.Auth, nil
	}

	conn, err := grpcapp.New(a.Log, cfg.GRPC.Addr)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, conn.Close)

	return grpcAuth.New(conn.Conn(), deviceID(cfg.Auth.DeviceID), cfg.GRPC.Timeout, a.Log), nil
}

// deviceID is stable per host unless configured.
func deviceID(configured string) string {
	if configured != "" {
		return configured
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		return uuid.NewString()
	}
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(host)).String()
}

// Close releases the connections opened by New, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
