package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendREST = "rest"
	BackendGRPC = "grpc"

	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
	StorageTypeMemory = "memory"
)

type Config struct {
	Env     string        `yaml:"env" env:"ENV" env-default:"local"`
	API     APIConfig     `yaml:"api"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Redis   StorageRedis  `yaml:"redis"`
	GRPC    GRPCConfig    `yaml:"grpc"`
	Cache   CacheConfig   `yaml:"cache"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:8000/api"`
	Timeout time.Duration `yaml:"timeout" env:"API_TIMEOUT" env-default:"15s"`
}

type AuthConfig struct {
	Backend        string        `yaml:"backend" env:"AUTH_BACKEND" env-default:"rest"`
	AllowedRole    string        `yaml:"allowed_role" env:"AUTH_ALLOWED_ROLE" env-default:"D"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"AUTH_REFRESH_TIMEOUT" env-default:"10s"`
	RefreshRetries int           `yaml:"refresh_retries" env:"AUTH_REFRESH_RETRIES" env-default:"0"`
	RefreshBackoff time.Duration `yaml:"refresh_backoff" env:"AUTH_REFRESH_BACKOFF" env-default:"500ms"`
	DeviceID       string        `yaml:"device_id" env:"AUTH_DEVICE_ID"`
}

type StorageConfig struct {
	Type      string        `yaml:"type" env:"STORAGE_TYPE" env-default:"file"`
	Path      string        `yaml:"path" env:"STORAGE_PATH" env-default:".dashboard/session.json"`
	KeyPrefix string        `yaml:"key_prefix" env:"STORAGE_KEY_PREFIX" env-default:"dashboard:"`
	TTL       time.Duration `yaml:"ttl" env:"STORAGE_TTL" env-default:"0s"`
}

type StorageRedis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"username" env:"REDIS_USERNAME"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type GRPCConfig struct {
	Addr    string        `yaml:"addr" env:"GRPC_ADDR"`
	Timeout time.Duration `yaml:"timeout" env:"GRPC_TIMEOUT" env-default:"5s"`
}

type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

const envConfigPath = "CONFIG_PATH"

var instance *Config
var once sync.Once

// GetConfig loads the configuration once and exits the process when it is
// unusable. CONFIG_PATH overrides path.
func GetConfig(path string) *Config {
	once.Do(func() {
		cfg, err := Load(path)
		if err != nil {
			desc, errDesc := cleanenv.GetDescription(&Config{}, nil)
			if errDesc == nil {
				slog.Info(desc)
			}
			slog.Error("failed to load config", slog.String("error", err.Error()))
			os.Exit(1)
		}
		instance = cfg
	})
	return instance
}

// Load reads the yaml file (if any), then env variables, which take
// precedence, then validates the result.
func Load(path string) (*Config, error) {
	if p, ok := os.LookupEnv(envConfigPath); ok {
		path = p
	}

	cfg := &Config{}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env variables: %w", err)
	}

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if cfg.Auth.AllowedRole == "" {
		return errors.New("auth.allowed_role is required")
	}
	if cfg.Auth.RefreshTimeout <= 0 {
		return errors.New("auth.refresh_timeout must be positive")
	}
	if cfg.Auth.RefreshRetries < 0 {
		return errors.New("auth.refresh_retries must not be negative")
	}

	switch cfg.Auth.Backend {
	case BackendREST:
	case BackendGRPC:
		if cfg.GRPC.Addr == "" {
			return errors.New("grpc.addr is required for the grpc auth backend")
		}
	default:
		return fmt.Errorf("unknown auth.backend %q", cfg.Auth.Backend)
	}

	switch cfg.Storage.Type {
	case StorageTypeFile:
		if cfg.Storage.Path == "" {
			return errors.New("storage.path is required for file storage")
		}
	case StorageTypeRedis:
		if cfg.Storage.TTL < 0 {
			return errors.New("storage.ttl must not be negative")
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("unknown storage.type %q", cfg.Storage.Type)
	}

	return nil
}
