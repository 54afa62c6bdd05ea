package tests

import (
	"context"
	"dashboard/internal/model"
	"dashboard/internal/services/session"
	"dashboard/internal/storage"
	"dashboard/internal/tests/suite"
	"dashboard/internal/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_HappyPath(t *testing.T) {
	s := suite.New(t)
	ctx := context.Background()

	user, err := s.App.Session.Login(ctx, model.Credentials{Email: suite.DoctorEmail, Password: suite.DoctorPassword})
	require.NoError(t, err)

	assert.Equal(t, suite.Doctor.ID, user.ID)
	assert.Equal(t, session.Authenticated, s.App.Session.State())

	_, err = s.App.Clinic.Dashboard(ctx)
	require.NoError(t, err)

	access := s.Backend.Issued()[0]
	assert.Equal(t, []string{"Bearer " + access}, s.Backend.AuthHeaders("GET /doctors/dashboard/"))
	assert.Zero(t, s.Backend.Count("POST /auth/token/refresh/"))

	stored, err := s.Store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, access, stored.AccessToken)
	assert.Equal(t, suite.Doctor.Email, stored.User.Email)
}

func TestLogin_NumericUserIDTokenIsUsable(t *testing.T) {
	s := suite.New(t)
	ctx := context.Background()
	s.LoginDoctor()

	access := s.Backend.Issued()[0]
	claims, err := token.Decode(access)
	require.NoError(t, err)
	assert.Equal(t, suite.Doctor.ID.String(), claims.Subject())
	assert.True(t, s.App.Session.IsValid(access))

	_, err = s.App.Clinic.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, s.Backend.Count("POST /auth/token/refresh/"))
	assert.Equal(t, session.Authenticated, s.App.Session.State())
}

func TestLogin_TokenRequestCarriesNoCredentials(t *testing.T) {
	s := suite.New(t)
	s.LoginDoctor()
	s.LoginDoctor()

	assert.Equal(t, []string{"", ""}, s.Backend.AuthHeaders("POST /auth/token/"))
}

func TestLogin_WrongPassword(t *testing.T) {
	s := suite.New(t)

	_, err := s.App.Session.Login(context.Background(), model.Credentials{Email: suite.DoctorEmail, Password: "wrong"})
	require.ErrorIs(t, err, session.ErrInvalidCredentials)

	var authErr *session.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid email or password: No active account found with the given credentials", authErr.Error())
	assert.Equal(t, session.Anonymous, s.App.Session.State())
}

func TestLogin_PatientIsRejected(t *testing.T) {
	s := suite.New(t)
	ctx := context.Background()

	_, err := s.App.Session.Login(ctx, model.Credentials{Email: suite.PatientEmail, Password: suite.PatientPassword})
	require.ErrorIs(t, err, session.ErrRoleMismatch)

	_, err = s.Store.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.False(t, s.App.Session.IsAuthenticated())
}

func TestSession_SurvivesRestart(t *testing.T) {
	s := suite.New(t)
	s.LoginDoctor()

	restarted := s.Boot()
	t.Cleanup(restarted.Close)

	assert.True(t, restarted.Session.IsAuthenticated())
	user, ok := restarted.Session.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, suite.Doctor.ID, user.ID)

	_, err := restarted.Clinic.Specialties(context.Background())
	require.NoError(t, err)
	assert.Zero(t, s.Backend.Count("POST /auth/token/refresh/"))
}

func TestLogout_ClearsStorageAndCache(t *testing.T) {
	s := suite.New(t)
	ctx := context.Background()
	s.LoginDoctor()

	_, err := s.App.Clinic.Dashboard(ctx)
	require.NoError(t, err)

	s.App.Session.Logout(ctx)

	_, err = s.Store.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, session.Anonymous, s.App.Session.State())

	s.LoginDoctor()
	_, err = s.App.Clinic.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Backend.Count("GET /doctors/dashboard/"), "a new session must not see cached data")
}
