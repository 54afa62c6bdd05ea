package session

import (
	"context"
	"dashboard/internal/provider"
	"dashboard/internal/token"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRoleMismatch       = errors.New("only doctors are allowed")
	ErrUnverifiedAccount  = errors.New("account is not verified")
	ErrAuthUnavailable    = errors.New("login failed")

	ErrRefreshExpired = errors.New("refresh token expired")
	ErrRefreshInvalid = errors.New("refresh token invalid")
	ErrRefreshNetwork = errors.New("refresh failed")

	// ErrUnrecoverable means the session is gone and the user has to log in again.
	ErrUnrecoverable = errors.New("session expired, login required")
)

// AuthError is a classified login failure. Kind is one of the ErrInvalidCredentials,
// ErrRoleMismatch, ErrUnverifiedAccount or ErrAuthUnavailable sentinels.
type AuthError struct {
	Kind   error
	Detail string
	Err    error
}

// Error is the message shown to the user.
func (e *AuthError) Error() string {
	if e.Detail != "" {
		return e.Kind.Error() + ": " + e.Detail
	}
	return e.Kind.Error()
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// RefreshError is a failed token refresh. Kind is one of ErrRefreshExpired,
// ErrRefreshInvalid or ErrRefreshNetwork.
type RefreshError struct {
	Kind error
	Err  error
}

func (e *RefreshError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *RefreshError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func classifyLogin(err error) *AuthError {
	detail := provider.Detail(err)

	switch {
	case mentionsVerification(detail):
		return &AuthError{Kind: ErrUnverifiedAccount, Detail: detail, Err: err}
	case errors.Is(err, provider.ErrForbidden):
		return &AuthError{Kind: ErrUnverifiedAccount, Detail: detail, Err: err}
	case errors.Is(err, provider.ErrUnauthorized), errors.Is(err, provider.ErrBadRequest):
		return &AuthError{Kind: ErrInvalidCredentials, Detail: detail, Err: err}
	default:
		return &AuthError{Kind: ErrAuthUnavailable, Err: err}
	}
}

func mentionsVerification(detail string) bool {
	d := strings.ToLower(detail)
	return strings.Contains(d, "verif") || strings.Contains(d, "not active")
}

// classifyRefresh does not change the outcome: any rejection is
// fatal, it only tells expired from otherwise rejected for the logs.
func classifyRefresh(err error, refreshToken string, now time.Time) *RefreshError {
	var re *RefreshError
	if errors.As(err, &re) {
		return re
	}

	switch {
	case errors.Is(err, provider.ErrServer),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &RefreshError{Kind: ErrRefreshNetwork, Err: err}
	case errors.Is(err, provider.ErrMalformedResponse):
		return &RefreshError{Kind: ErrRefreshInvalid, Err: err}
	case isRejection(err):
		if token.Expired(refreshToken, now) {
			return &RefreshError{Kind: ErrRefreshExpired, Err: err}
		}
		return &RefreshError{Kind: ErrRefreshInvalid, Err: err}
	default:
		return &RefreshError{Kind: ErrRefreshNetwork, Err: err}
	}
}

func isRejection(err error) bool {
	return errors.Is(err, provider.ErrUnauthorized) ||
		errors.Is(err, provider.ErrBadRequest) ||
		errors.Is(err, provider.ErrForbidden) ||
		errors.Is(err, provider.ErrNotFound) ||
		errors.Is(err, provider.ErrConflict) ||
		errors.Is(err, provider.ErrUnexpectedStatus)
}
