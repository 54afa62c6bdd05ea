package suite

import (
	"context"
	"dashboard/internal/app"
	"dashboard/internal/config"
	"dashboard/internal/model"
	"dashboard/internal/storage"
	"dashboard/internal/storage/file"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	DoctorEmail     = "doc@example.com"
	DoctorPassword  = "Passw0rd!"
	PatientEmail    = "patient@example.com"
	PatientPassword = "Passw0rd!"
)

var Doctor = model.User{
	ID:               "7",
	Role:             "D",
	Email:            DoctorEmail,
	FullName:         "Dr. House",
	IsVerifiedDoctor: true,
}

var Patient = model.User{
	ID:       "9",
	Role:     "P",
	Email:    PatientEmail,
	FullName: "Jane Roe",
}

// Suite wires the real application against the fake backend, with the
// session persisted to a file in a temp dir.
type Suite struct {
	*testing.T

	App     *app.App
	Backend *Backend
	Config  *config.Config
	// Store reads the same file the application writes.
	Store storage.Storage
}

type Option func(*config.Config)

func WithRefreshRetries(n int) Option {
	return func(cfg *config.Config) {
		cfg.Auth.RefreshRetries = n
		cfg.Auth.RefreshBackoff = 10 * time.Millisecond
	}
}

func WithRefreshTimeout(d time.Duration) Option {
	return func(cfg *config.Config) {
		cfg.Auth.RefreshTimeout = d
	}
}

func New(t *testing.T, opts ...Option) *Suite {
	t.Helper()

	backend := newBackend()
	backend.AddAccount(DoctorEmail, DoctorPassword, Doctor)
	backend.AddAccount(PatientEmail, PatientPassword, Patient)

	path := filepath.Join(t.TempDir(), "session.json")
	cfg := &config.Config{
		Env: "local",
		API: config.APIConfig{BaseURL: backend.URL(), Timeout: 5 * time.Second},
		Auth: config.AuthConfig{
			Backend:        config.BackendREST,
			AllowedRole:    "D",
			RefreshTimeout: 5 * time.Second,
			RefreshBackoff: 10 * time.Millisecond,
		},
		Storage: config.StorageConfig{Type: config.StorageTypeFile, Path: path},
		Cache:   config.CacheConfig{TTL: time.Minute},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Suite{
		T:       t,
		Backend: backend,
		Config:  cfg,
		Store:   file.New(path),
	}
	s.App = s.Boot()

	t.Cleanup(func() {
		s.App.Close()
		backend.Close()
	})

	return s
}

// Boot builds a fresh application over the same config, like a new process.
func (s *Suite) Boot() *app.App {
	s.Helper()

	a, err := app.New(context.Background(), s.Config, Logger())
	require.NoError(s, err)
	return a
}

// LoginDoctor signs in with the doctor account and fails the test otherwise.
func (s *Suite) LoginDoctor() {
	s.Helper()

	_, err := s.App.Session.Login(context.Background(), model.Credentials{
		Email:    DoctorEmail,
		Password: DoctorPassword,
	})
	require.NoError(s, err)
}

func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
