package auth_test

import (
	"context"
	grpcAuth "dashboard/internal/grpc/auth"
	"dashboard/internal/model"
	"dashboard/internal/provider"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/s10n41k/protos/gen/go/sso"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeAuthServer answers Login and GetAccessToken with canned values.
type fakeAuthServer struct {
	sso.UnimplementedAuthServer

	login   func(*sso.LoginRequest) (*sso.LoginResponse, error)
	refresh func(*sso.TokenRequest) (*sso.TokenResponse, error)
}

func (f *fakeAuthServer) Login(_ context.Context, in *sso.LoginRequest) (*sso.LoginResponse, error) {
	return f.login(in)
}

func (f *fakeAuthServer) GetAccessToken(_ context.Context, in *sso.TokenRequest) (*sso.TokenResponse, error) {
	return f.refresh(in)
}

func newIssuer(t *testing.T, srv *fakeAuthServer) *grpcAuth.Issuer {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	sso.RegisterAuthServer(server, srv)

	go func() {
		_ = server.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
	})

	return grpcAuth.New(conn, "device-1", 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestIssuer_ObtainToken(t *testing.T) {
	issuer := newIssuer(t, &fakeAuthServer{
		login: func(in *sso.LoginRequest) (*sso.LoginResponse, error) {
			assert.Equal(t, "doc@example.com", in.GetEmail())
			assert.Equal(t, "Passw0rd!", in.GetPassword())
			assert.Equal(t, "device-1", in.GetDeviceID())
			return &sso.LoginResponse{TokenAccess: "A1", TokenRefresh: "R1"}, nil
		},
	})

	resp, err := issuer.ObtainToken(context.Background(), model.Credentials{Email: "doc@example.com", Password: "Passw0rd!"})
	require.NoError(t, err)

	assert.Equal(t, "A1", resp.Access)
	assert.Equal(t, "R1", resp.Refresh)
	assert.Nil(t, resp.User)
}

func TestIssuer_ObtainToken_MissingCredentials(t *testing.T) {
	issuer := newIssuer(t, &fakeAuthServer{})

	_, err := issuer.ObtainToken(context.Background(), model.Credentials{Email: "doc@example.com"})
	require.ErrorIs(t, err, provider.ErrBadRequest)
}

func TestIssuer_ObtainToken_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		code codes.Code
		want error
	}{
		{"not found", codes.NotFound, provider.ErrUnauthorized},
		{"invalid argument", codes.InvalidArgument, provider.ErrUnauthorized},
		{"unauthenticated", codes.Unauthenticated, provider.ErrUnauthorized},
		{"permission denied", codes.PermissionDenied, provider.ErrForbidden},
		{"already exists", codes.AlreadyExists, provider.ErrConflict},
		{"internal", codes.Internal, provider.ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer := newIssuer(t, &fakeAuthServer{
				login: func(*sso.LoginRequest) (*sso.LoginResponse, error) {
					return nil, status.Error(tt.code, "nope")
				},
			})

			_, err := issuer.ObtainToken(context.Background(), model.Credentials{Email: "a@b.c", Password: "p"})
			require.ErrorIs(t, err, tt.want)

			var se *grpcAuth.StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code)
		})
	}
}

func TestIssuer_ObtainToken_UnavailableIsTransportError(t *testing.T) {
	issuer := newIssuer(t, &fakeAuthServer{
		login: func(*sso.LoginRequest) (*sso.LoginResponse, error) {
			return nil, status.Error(codes.Unavailable, "down")
		},
	})

	_, err := issuer.ObtainToken(context.Background(), model.Credentials{Email: "a@b.c", Password: "p"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, provider.ErrUnauthorized)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestIssuer_RefreshToken_Rotates(t *testing.T) {
	issuer := newIssuer(t, &fakeAuthServer{
		refresh: func(in *sso.TokenRequest) (*sso.TokenResponse, error) {
			assert.Equal(t, "R1", in.GetRefreshToken())
			return &sso.TokenResponse{AccessToken: "A2", RefreshToken: "R2"}, nil
		},
	})

	resp, err := issuer.RefreshToken(context.Background(), "R1")
	require.NoError(t, err)
	assert.Equal(t, "A2", resp.Access)
	assert.Equal(t, "R2", resp.Refresh)
}

func TestIssuer_RefreshToken_Rejected(t *testing.T) {
	issuer := newIssuer(t, &fakeAuthServer{
		refresh: func(*sso.TokenRequest) (*sso.TokenResponse, error) {
			return nil, status.Error(codes.PermissionDenied, "failed to get refresh token")
		},
	})

	_, err := issuer.RefreshToken(context.Background(), "R1")
	require.ErrorIs(t, err, provider.ErrForbidden)
}

func TestIssuer_RefreshToken_EmptyAccess(t *testing.T) {
	issuer := newIssuer(t, &fakeAuthServer{
		refresh: func(*sso.TokenRequest) (*sso.TokenResponse, error) {
			return &sso.TokenResponse{}, nil
		},
	})

	_, err := issuer.RefreshToken(context.Background(), "R1")
	require.ErrorIs(t, err, provider.ErrMalformedResponse)
}
