package auth

import (
	"context"
	"dashboard/internal/model"
	"dashboard/internal/provider"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/s10n41k/protos/gen/go/sso"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Issuer obtains and refreshes tokens through the sso auth service.
type Issuer struct {
	client   sso.AuthClient
	deviceID string
	timeout  time.Duration
	log      *slog.Logger
}

func New(conn grpc.ClientConnInterface, deviceID string, timeout time.Duration, log *slog.Logger) *Issuer {
	return &Issuer{
		client:   sso.NewAuthClient(conn),
		deviceID: deviceID,
		timeout:  timeout,
		log:      log,
	}
}

// ObtainToken logs in with the device id of this client. The service does
// not return the user, the session layer reads it from the token claims.
func (i *Issuer) ObtainToken(ctx context.Context, creds model.Credentials) (*model.LoginResponse, error) {
	const op = "grpc.ObtainToken"

	if creds.Email == "" || creds.Password == "" {
		return nil, fmt.Errorf("%s: %w: email and password are required", op, provider.ErrBadRequest)
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	resp, err := i.client.Login(ctx, &sso.LoginRequest{
		Email:    creds.Email,
		Password: creds.Password,
		DeviceID: i.deviceID,
	})
	if err != nil {
		i.log.Debug("gRPC Login failed",
			slog.String("email", creds.Email),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, mapStatus(err))
	}

	return &model.LoginResponse{
		Access:  resp.GetTokenAccess(),
		Refresh: resp.GetTokenRefresh(),
	}, nil
}

// RefreshToken exchanges the refresh token. The service rotates it on every
// call, so the response always carries a new pair.
func (i *Issuer) RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshResponse, error) {
	const op = "grpc.RefreshToken"

	if refreshToken == "" {
		return nil, fmt.Errorf("%s: %w: missing refresh token", op, provider.ErrBadRequest)
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	resp, err := i.client.GetAccessToken(ctx, &sso.TokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapStatus(err))
	}

	if resp.GetAccessToken() == "" {
		return nil, fmt.Errorf("%s: %w: missing access token", op, provider.ErrMalformedResponse)
	}

	return &model.RefreshResponse{
		Access:  resp.GetAccessToken(),
		Refresh: resp.GetRefreshToken(),
	}, nil
}

func (i *Issuer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, i.timeout)
}

// StatusError carries a gRPC status mapped onto the transport sentinels.
type StatusError struct {
	Code    codes.Code
	Message string
	kind    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("rpc error %s: %s", e.Code, e.Message)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

// mapStatus turns rejections into provider sentinels. Transport failures
// (Unavailable, DeadlineExceeded, ...) come back unchanged.
func mapStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	var kind error
	switch st.Code() {
	case codes.Unauthenticated, codes.NotFound, codes.InvalidArgument:
		kind = provider.ErrUnauthorized
	case codes.PermissionDenied:
		kind = provider.ErrForbidden
	case codes.AlreadyExists:
		kind = provider.ErrConflict
	case codes.Internal:
		kind = provider.ErrServer
	case codes.DeadlineExceeded:
		return errors.Join(context.DeadlineExceeded, err)
	case codes.Canceled:
		return errors.Join(context.Canceled, err)
	default:
		return err
	}

	return &StatusError{Code: st.Code(), Message: st.Message(), kind: kind}
}
