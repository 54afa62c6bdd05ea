package session

import (
	"context"
	"dashboard/internal/model"
	"dashboard/internal/provider"
	"dashboard/internal/storage"
	"dashboard/internal/token"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

var (
	errNoRefreshToken = errors.New("no refresh token")
	errSessionChanged = errors.New("session changed during refresh")
)

// Issuer mints tokens: the REST auth endpoints or the sso gRPC service.
type Issuer interface {
	ObtainToken(ctx context.Context, creds model.Credentials) (*model.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshResponse, error)
}

// Options tunes a Manager. Zero durations fall back to defaults in New.
type Options struct {
	// AllowedRole is the only role allowed to hold a session.
	AllowedRole    string
	RefreshTimeout time.Duration
	// RefreshRetries is the number of extra attempts after a network failure.
	RefreshRetries int
	RefreshBackoff time.Duration

	// OnExpired runs when an authorization finds the session unrecoverable.
	OnExpired func()
	// OnSessionChange runs after login and logout.
	OnSessionChange func()

	Now func() time.Time
}

// Manager owns the credential pair of the dashboard. One instance per client.
type Manager struct {
	issuer  Issuer
	storage storage.Storage
	opts    Options
	log     *slog.Logger

	// storeMu orders storage writes with the in-memory changes they mirror.
	// Take it before mu, and never do storage I/O while holding mu.
	storeMu sync.Mutex

	mu      sync.Mutex
	state   State
	session *model.Session

	group singleflight.Group
}

// New returns a Manager with no session loaded; call Init to restore one.
func New(issuer Issuer, storage storage.Storage, opts Options, log *slog.Logger) *Manager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 10 * time.Second
	}
	if opts.RefreshBackoff <= 0 {
		opts.RefreshBackoff = 500 * time.Millisecond
	}

	return &Manager{
		issuer:  issuer,
		storage: storage,
		opts:    opts,
		log:     log,
		state:   Anonymous,
	}
}

// Init restores the session persisted by a previous run.
func (m *Manager) Init(ctx context.Context) error {
	const op = "session.Init"

	s, err := m.storage.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil
	case errors.Is(err, storage.ErrPartial):
		m.log.Warn("dropping partially stored session", slog.String("error", err.Error()))
		if err := m.storage.Clear(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	m.session = s
	m.state = Authenticated
	m.mu.Unlock()

	m.log.Debug("session restored", slog.String("user_id", s.User.ID.String()))
	return nil
}

// Teardown forgets the in-memory session and hooks. Storage is left as is.
func (m *Manager) Teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	m.state = Anonymous
	m.opts.OnExpired = nil
	m.opts.OnSessionChange = nil
	m.group.Forget(refreshKey)
}

func (m *Manager) IsValid(accessToken string) bool {
	return token.Valid(accessToken, m.opts.Now())
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// IsAuthenticated reports whether a valid or refreshable pair is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.session != nil
}

func (m *Manager) CurrentUser() (*model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || m.session.User == nil {
		return nil, false
	}
	u := *m.session.User
	return &u, true
}

func (m *Manager) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	const op = "session.Login"

	m.mu.Lock()
	prev := m.state
	m.state = Authenticating
	m.mu.Unlock()

	s, err := m.login(ctx, creds)
	if err == nil {
		err = m.commitLogin(ctx, s)
	}
	if err != nil {
		m.mu.Lock()
		if m.state == Authenticating {
			m.state = prev
		}
		m.mu.Unlock()

		m.log.Warn("login failed",
			slog.String("email", creds.Email),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	onChange := m.opts.OnSessionChange
	m.mu.Unlock()

	m.group.Forget(refreshKey)
	if onChange != nil {
		onChange()
	}

	m.log.Info("logged in",
		slog.String("user_id", s.User.ID.String()),
		slog.String("email", s.User.Email))

	u := *s.User
	return &u, nil
}

func (m *Manager) login(ctx context.Context, creds model.Credentials) (*model.Session, error) {
	resp, err := m.issuer.ObtainToken(ctx, creds)
	if err != nil {
		return nil, classifyLogin(err)
	}

	if resp.Access == "" || resp.Refresh == "" {
		return nil, &AuthError{Kind: ErrAuthUnavailable, Err: provider.ErrMalformedResponse}
	}

	user := resp.User
	if user == nil {
		user, err = userFromToken(resp.Access, creds.Email)
		if err != nil {
			return nil, &AuthError{Kind: ErrAuthUnavailable, Err: err}
		}
	}

	if user.Role != m.opts.AllowedRole {
		return nil, &AuthError{Kind: ErrRoleMismatch}
	}

	return &model.Session{
		AccessToken:  resp.Access,
		RefreshToken: resp.Refresh,
		User:         user,
	}, nil
}

// commitLogin persists s and then makes it the current session.
func (m *Manager) commitLogin(ctx context.Context, s *model.Session) error {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	if err := m.storage.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.session = s
	m.state = Authenticated
	m.mu.Unlock()
	return nil
}

// Logout drops the session locally. It never fails; storage errors are logged.
func (m *Manager) Logout(ctx context.Context) {
	m.storeMu.Lock()
	m.mu.Lock()
	m.session = nil
	m.state = Anonymous
	onChange := m.opts.OnSessionChange
	m.mu.Unlock()

	err := m.storage.Clear(ctx)
	m.storeMu.Unlock()

	m.group.Forget(refreshKey)

	if err != nil {
		m.log.Error("failed to clear stored session", slog.String("error", err.Error()))
	}
	if onChange != nil {
		onChange()
	}

	m.log.Info("logged out")
}

// Authorize attaches the bearer token to req, refreshing it first when it
// has expired. An unrecoverable session is cleared and reported with
// ErrUnrecoverable; req is then left without credentials. A session replaced
// by login or logout while its refresh was in flight is never cleared.
func (m *Manager) Authorize(ctx context.Context, req *http.Request, skipAuth bool) error {
	const op = "session.Authorize"

	if skipAuth {
		return nil
	}

	access, refresh := m.tokens()
	if m.IsValid(access) {
		setBearer(req, access)
		return nil
	}

	if refresh == "" {
		m.expire(ctx, refresh, errNoRefreshToken.Error())
		return fmt.Errorf("%s: %w", op, ErrUnrecoverable)
	}

	access, err := m.Refresh(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if m.expire(ctx, refresh, err.Error()) {
			return fmt.Errorf("%s: %w", op, errors.Join(ErrUnrecoverable, err))
		}

		// The failed refresh belonged to a session that is gone.
		if current, _ := m.tokens(); m.IsValid(current) {
			setBearer(req, current)
			return nil
		}
		return fmt.Errorf("%s: %w", op, errors.Join(ErrUnrecoverable, err))
	}

	setBearer(req, access)
	return nil
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// callers share a single exchange.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	const op = "session.Refresh"

	ch := m.group.DoChan(refreshKey, func() (any, error) {
		return m.refresh(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", fmt.Errorf("%s: %w", op, res.Err)
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, &RefreshError{Kind: ErrRefreshNetwork, Err: ctx.Err()})
	}
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.session == nil || m.session.RefreshToken == "" {
		m.mu.Unlock()
		return "", &RefreshError{Kind: ErrRefreshInvalid, Err: errNoRefreshToken}
	}
	// A flight that finished just before this one already did the work.
	if m.IsValid(m.session.AccessToken) {
		access := m.session.AccessToken
		m.mu.Unlock()
		return access, nil
	}
	refreshToken := m.session.RefreshToken
	prev := m.state
	m.state = Refreshing
	m.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, m.opts.RefreshTimeout)
	defer cancel()

	var resp *model.RefreshResponse
	err := doWithTries(ctx, func() error {
		r, err := m.issuer.RefreshToken(ctx, refreshToken)
		if err != nil {
			return classifyRefresh(err, refreshToken, m.opts.Now())
		}
		if r.Access == "" {
			return &RefreshError{Kind: ErrRefreshInvalid, Err: provider.ErrMalformedResponse}
		}
		resp = r
		return nil
	}, m.opts.RefreshRetries+1, m.opts.RefreshBackoff)

	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	m.mu.Lock()
	if m.state == Refreshing {
		m.state = prev
	}

	if err != nil {
		m.mu.Unlock()
		m.log.Info("token refresh failed", slog.String("error", err.Error()))
		return "", err
	}

	if m.session == nil || m.session.RefreshToken != refreshToken {
		m.mu.Unlock()
		return "", &RefreshError{Kind: ErrRefreshInvalid, Err: errSessionChanged}
	}

	rotated := resp.Refresh != "" && resp.Refresh != refreshToken
	m.session.AccessToken = resp.Access
	if rotated {
		m.session.RefreshToken = resp.Refresh
	}
	m.state = Authenticated
	snapshot := *m.session
	m.mu.Unlock()

	if rotated {
		err = m.storage.Save(ctx, &snapshot)
	} else {
		err = m.storage.SaveAccessToken(ctx, resp.Access)
	}
	if err != nil {
		m.log.Error("failed to persist refreshed token", slog.String("error", err.Error()))
	}

	m.log.Debug("access token refreshed", slog.String("user_id", snapshot.User.ID.String()))
	return resp.Access, nil
}

func (m *Manager) tokens() (access, refresh string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return "", ""
	}
	return m.session.AccessToken, m.session.RefreshToken
}

// expire moves the session to ANONYMOUS if it still holds refresh, and
// reports whether it did. Expiry is routine, so it is logged at info and
// reported to the view layer through OnExpired only.
func (m *Manager) expire(ctx context.Context, refresh, reason string) bool {
	m.storeMu.Lock()
	m.mu.Lock()
	current := ""
	if m.session != nil {
		current = m.session.RefreshToken
	}
	if current != refresh {
		m.mu.Unlock()
		m.storeMu.Unlock()
		m.log.Debug("session replaced during refresh, not expiring", slog.String("reason", reason))
		return false
	}
	m.session = nil
	m.state = Anonymous
	onExpired := m.opts.OnExpired
	m.mu.Unlock()

	err := m.storage.Clear(context.WithoutCancel(ctx))
	m.storeMu.Unlock()

	if err != nil {
		m.log.Error("failed to clear stored session", slog.String("error", err.Error()))
	}

	m.log.Info("session expired", slog.String("reason", reason))

	if onExpired != nil {
		onExpired()
	}
	return true
}

func setBearer(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
}

func userFromToken(accessToken, email string) (*model.User, error) {
	claims, err := token.Decode(accessToken)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:    model.ID(claims.Subject()),
		Role:  claims.Role,
		Email: claims.Email,
	}
	if user.Email == "" {
		user.Email = email
	}
	return user, nil
}

// doWithTries retries fn while it fails with a network error, doubling the
// delay between attempts.
func doWithTries(ctx context.Context, fn func() error, attempts int, delay time.Duration) (err error) {
	for attempts > 0 {
		if err = fn(); err == nil || !errors.Is(err, ErrRefreshNetwork) {
			return err
		}

		attempts--
		if attempts == 0 {
			break
		}

		select {
		case <-ctx.Done():
			return &RefreshError{Kind: ErrRefreshNetwork, Err: ctx.Err()}
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
