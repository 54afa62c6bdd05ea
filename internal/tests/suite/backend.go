package suite

import (
	"dashboard/internal/model"
	"dashboard/internal/tests/mock"
	"dashboard/internal/token"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type account struct {
	password string
	user     model.User
}

// Backend is a fake clinic REST API. It issues real JWTs so the client
// decides expiry the same way it does in production.
type Backend struct {
	srv *httptest.Server

	mu       sync.Mutex
	accounts map[string]account
	refresh  map[string]string
	// AccessTTL is added to now for every issued access token; negative
	// values issue already expired tokens.
	AccessTTL time.Duration
	// RefreshStatus, when set, is returned by the refresh endpoint.
	RefreshStatus int
	// RefreshDelay holds every refresh answer back.
	RefreshDelay time.Duration

	issued      []string
	counts      map[string]int
	authHeaders map[string][]string
	seq         int
}

func newBackend() *Backend {
	b := &Backend{
		accounts:    map[string]account{},
		refresh:     map[string]string{},
		AccessTTL:   15 * time.Minute,
		counts:      map[string]int{},
		authHeaders: map[string][]string{},
	}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	return b
}

func (b *Backend) URL() string {
	return b.srv.URL + "/api"
}

func (b *Backend) Close() {
	b.srv.Close()
}

// AddAccount registers credentials the token endpoint accepts.
func (b *Backend) AddAccount(email, password string, user model.User) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.accounts[email] = account{password: password, user: user}
}

// Set changes the backend behaviour under its lock.
func (b *Backend) Set(fn func(b *Backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fn(b)
}

// Count returns how many times "METHOD /path/" was requested.
func (b *Backend) Count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.counts[route]
}

// AuthHeaders returns the Authorization headers seen on route.
func (b *Backend) AuthHeaders(route string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.authHeaders[route]...)
}

// Issued returns the access tokens minted so far, oldest first.
func (b *Backend) Issued() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]string(nil), b.issued...)
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")

	b.mu.Lock()
	b.counts[route]++
	b.authHeaders[route] = append(b.authHeaders[route], r.Header.Get("Authorization"))
	b.mu.Unlock()

	switch route {
	case "POST /auth/token/":
		b.obtain(w, r)
	case "POST /auth/token/refresh/":
		b.refreshToken(w, r)
	case "POST /auth/register/", "POST /auth/password/reset/", "POST /auth/password/reset/confirm/":
		writeJSON(w, http.StatusCreated, map[string]string{"detail": "ok"})
	default:
		if !b.authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"detail": "Authentication credentials were not provided.",
			})
			return
		}
		b.clinic(w, route)
	}
}

func (b *Backend) obtain(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid body"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[creds.Email]
	if !ok || acc.password != creds.Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "No active account found with the given credentials",
		})
		return
	}

	b.seq++
	refresh := mock.Sign(jwt.MapClaims{
		"token_type": "refresh",
		"jti":        fmt.Sprintf("r-%d", b.seq),
		"user_id":    claimID(acc.user.ID),
		"exp":        time.Now().Add(24 * time.Hour).Unix(),
	})
	b.refresh[refresh] = creds.Email

	user := acc.user
	writeJSON(w, http.StatusOK, model.LoginResponse{
		Access:  b.issueLocked(acc.user),
		Refresh: refresh,
		User:    &user,
	})
}

func (b *Backend) refreshToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	delay, status := b.RefreshDelay, b.RefreshStatus
	b.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		writeJSON(w, status, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	email, ok := b.refresh[in.Refresh]
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
		return
	}

	writeJSON(w, http.StatusOK, model.RefreshResponse{Access: b.issueLocked(b.accounts[email].user)})
}

// issueLocked mints an access token; b.mu must be held.
func (b *Backend) issueLocked(user model.User) string {
	b.seq++
	access := mock.Sign(jwt.MapClaims{
		"token_type": "access",
		"jti":        fmt.Sprintf("a-%d", b.seq),
		"user_id":    claimID(user.ID),
		"role":       user.Role,
		"exp":        time.Now().Add(b.AccessTTL).Unix(),
	})
	b.issued = append(b.issued, access)
	return access
}

// claimID writes numeric ids as JSON numbers, the way the backend encodes
// integer primary keys.
func claimID(id model.ID) any {
	if n, err := strconv.Atoi(id.String()); err == nil {
		return n
	}
	return id.String()
}

func (b *Backend) authorized(r *http.Request) bool {
	access, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && token.Valid(access, time.Now())
}

func (b *Backend) clinic(w http.ResponseWriter, route string) {
	switch {
	case route == "GET /doctors/dashboard/":
		writeJSON(w, http.StatusOK, model.DashboardData{
			TotalEarnings:      300,
			TotalPatients:      2,
			TotalAppointments:  2,
			LatestAppointments: []model.Appointment{},
		})
	case route == "GET /appointments/":
		writeJSON(w, http.StatusOK, model.Page[model.Appointment]{
			Count:      1,
			TotalPages: 1,
			Current:    1,
			PageSize:   5,
			Results: []model.Appointment{{
				ID:       3,
				Status:   model.AppointmentPending,
				Datetime: "2026-10-20T10:00:00Z",
				Fees:     150,
				Patient:  model.Patient{User: model.PatientUser{FullName: "Jane Roe", DOB: "1990-01-01"}},
			}},
		})
	case strings.HasPrefix(route, "POST /appointments/"):
		w.WriteHeader(http.StatusOK)
	case route == "GET /specialties/":
		writeJSON(w, http.StatusOK, model.Page[model.Specialty]{Count: 1, Results: []model.Specialty{{ID: 1, Slug: "cardiology", Name: "Cardiology"}}})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
