package api

import (
	"context"
	"dashboard/internal/model"
	"dashboard/internal/provider"
	"fmt"
	"net/http"
)

const (
	pathToken         = "/auth/token/"
	pathTokenRefresh  = "/auth/token/refresh/"
	pathRegister      = "/auth/register/"
	pathPasswordReset = "/auth/password/reset/"
	pathResetConfirm  = "/auth/password/reset/confirm/"
)

// AuthAPI covers the public auth endpoints. None of them carry credentials.
type AuthAPI struct {
	client *Client
	role   string
}

// NewAuthAPI returns the REST token issuer. role is sent with registrations.
func NewAuthAPI(client *Client, role string) *AuthAPI {
	return &AuthAPI{client: client, role: role}
}

func (a *AuthAPI) ObtainToken(ctx context.Context, creds model.Credentials) (*model.LoginResponse, error) {
	const op = "api.ObtainToken"

	var out model.LoginResponse
	_, err := a.client.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     pathToken,
		Body:     creds,
		SkipAuth: true,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (a *AuthAPI) RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshResponse, error) {
	const op = "api.RefreshToken"

	var out model.RefreshResponse
	_, err := a.client.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     pathTokenRefresh,
		Body:     map[string]string{"refresh": refreshToken},
		SkipAuth: true,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if out.Access == "" {
		return nil, fmt.Errorf("%s: %w: missing access token", op, provider.ErrMalformedResponse)
	}

	return &out, nil
}

func (a *AuthAPI) Register(ctx context.Context, reg model.Registration) error {
	const op = "api.Register"

	reg.Role = a.role
	if _, err := a.client.Send(ctx, Request{
		Method:   http.MethodPost,
		Path:     pathRegister,
		Body:     reg,
		SkipAuth: true,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) error {
	const op = "api.ForgotPassword"

	if _, err := a.client.Send(ctx, Request{
		Method:   http.MethodPost,
		Path:     pathPasswordReset,
		Body:     map[string]string{"email": email},
		SkipAuth: true,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *AuthAPI) ResetPasswordConfirm(ctx context.Context, reset model.PasswordReset) error {
	const op = "api.ResetPasswordConfirm"

	if _, err := a.client.Send(ctx, Request{
		Method:   http.MethodPost,
		Path:     pathResetConfirm,
		Body:     reset,
		SkipAuth: true,
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
