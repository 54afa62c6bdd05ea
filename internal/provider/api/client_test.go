package api_test

import (
	"context"
	"dashboard/internal/provider"
	"dashboard/internal/provider/api"
	"dashboard/internal/tests/mock"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc) *api.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return api.NewClient(srv.URL+"/api/", 5*time.Second, discardLogger())
}

func TestClient_Do_DecodesJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/schedules/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "SAT", in["day"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42}`))
	})

	var out struct {
		ID int `json:"id"`
	}
	resp, err := client.Do(context.Background(), api.Request{
		Method: http.MethodPost,
		Path:   "schedules/",
		Query:  url.Values{"page": {"2"}},
		Body:   map[string]string{"day": "SAT"},
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
	assert.Equal(t, 42, out.ID)
}

func TestClient_Send_AttachesCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer A1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	auth := mock.NewMockAuthorizer()
	auth.On("Authorize", testifymock.Anything, testifymock.Anything, false).
		Run(func(args testifymock.Arguments) {
			args.Get(1).(*http.Request).Header.Set("Authorization", "Bearer A1")
		}).
		Return(nil).
		Once()
	client.SetAuthorizer(auth)

	resp, err := client.Send(context.Background(), api.Request{Method: http.MethodGet, Path: "/doctors/dashboard/"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	auth.AssertExpectations(t)
}

func TestClient_Send_PassesSkipAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	})

	auth := mock.NewMockAuthorizer()
	auth.On("Authorize", testifymock.Anything, testifymock.Anything, true).Return(nil).Once()
	client.SetAuthorizer(auth)

	_, err := client.Send(context.Background(), api.Request{Method: http.MethodPost, Path: "/auth/token/", SkipAuth: true})
	require.NoError(t, err)
	auth.AssertExpectations(t)
}

func TestClient_Send_UnauthorizedCarriesBothErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Authentication credentials were not provided."}`))
	})

	sessionGone := errors.New("session expired, login required")
	auth := mock.NewMockAuthorizer()
	auth.On("Authorize", testifymock.Anything, testifymock.Anything, false).Return(sessionGone).Once()
	client.SetAuthorizer(auth)

	resp, err := client.Send(context.Background(), api.Request{Method: http.MethodGet, Path: "/appointments/"})
	require.Error(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	require.ErrorIs(t, err, provider.ErrUnauthorized)
	require.ErrorIs(t, err, sessionGone)
	assert.Equal(t, "Authentication credentials were not provided.", provider.Detail(err))
}

func TestClient_Send_AuthorizeAbortsOnCancelledContext(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	auth := mock.NewMockAuthorizer()
	auth.On("Authorize", testifymock.Anything, testifymock.Anything, false).Return(context.Canceled).Once()
	client.SetAuthorizer(auth)

	resp, err := client.Send(ctx, api.Request{Method: http.MethodGet, Path: "/appointments/"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, resp)
	assert.False(t, called)
}

func TestClient_Send_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Send(context.Background(), api.Request{Method: http.MethodGet, Path: "/specialties/"})
	require.ErrorIs(t, err, provider.ErrServer)

	var se *provider.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Status)
}

func TestClient_Do_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})

	var out map[string]any
	_, err := client.Do(context.Background(), api.Request{Method: http.MethodGet, Path: "/specialties/"}, &out)
	require.ErrorIs(t, err, provider.ErrMalformedResponse)
}

func TestClient_Send_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	client := api.NewClient(srv.URL, 50*time.Millisecond, discardLogger())

	_, err := client.Send(context.Background(), api.Request{Method: http.MethodGet, Path: "/doctors/dashboard/"})
	require.Error(t, err)
}
