package mock

import (
	"context"
	"dashboard/internal/model"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
)

// ===================== TOKENS =====================

const signingKey = "test-signing-key"

// Sign mints an HS256 token with the given claims.
func Sign(claims jwt.MapClaims) string {
	t, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		panic(err)
	}
	return t
}

// SignToken mints an access token the way the backend does.
func SignToken(exp time.Time, role, userID string) string {
	return Sign(jwt.MapClaims{
		"token_type": "access",
		"exp":        exp.Unix(),
		"role":       role,
		"user_id":    userID,
	})
}

// ===================== MOCK ISSUER =====================

type MockIssuer struct {
	mock.Mock
}

func NewMockIssuer() *MockIssuer {
	return &MockIssuer{}
}

func (m *MockIssuer) ObtainToken(ctx context.Context, creds model.Credentials) (*model.LoginResponse, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResponse), args.Error(1)
}

func (m *MockIssuer) RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshResponse, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RefreshResponse), args.Error(1)
}

// ===================== MOCK STORAGE =====================

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) Load(ctx context.Context) (*model.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockStorage) Save(ctx context.Context, session *model.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockStorage) SaveAccessToken(ctx context.Context, accessToken string) error {
	args := m.Called(ctx, accessToken)
	return args.Error(0)
}

func (m *MockStorage) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// ===================== MOCK AUTHORIZER =====================

type MockAuthorizer struct {
	mock.Mock
}

func NewMockAuthorizer() *MockAuthorizer {
	return &MockAuthorizer{}
}

func (m *MockAuthorizer) Authorize(ctx context.Context, req *http.Request, skipAuth bool) error {
	args := m.Called(ctx, req, skipAuth)
	return args.Error(0)
}
