package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	pkgauth "github.com/petalpost/florist-backend/pkg/auth"
	"github.com/petalpost/florist-backend/pkg/config"
	"github.com/petalpost/florist-backend/pkg/db/models"
	"github.com/petalpost/florist-backend/pkg/enums"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
)

type stubUserRepo struct {
	users map[string]*models.AdminUser
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	user, ok := s.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubSessions struct {
	created []string
	revoked []string
}

func (s *stubSessions) Create(_ context.Context, accessID string) error {
	s.created = append(s.created, accessID)
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-0123456789",
		Issuer:            "petalpost-test",
		ExpirationMinutes: 30,
		SessionTTLMinutes: 720,
	}
}

func newAuthService(t *testing.T, users ...*models.AdminUser) (Service, *stubSessions) {
	t.Helper()
	repo := &stubUserRepo{users: map[string]*models.AdminUser{}}
	for _, u := range users {
		repo.users[strings.ToLower(u.Email)] = u
	}
	sessions := &stubSessions{}
	svc, err := NewService(repo, sessions, testJWTConfig(), nil)
	require.NoError(t, err)
	return svc, sessions
}

func testOperator(t *testing.T, email, password string) *models.AdminUser {
	t.Helper()
	hash, err := HashPassword(testPasswordConfig(), password)
	require.NoError(t, err)
	return &models.AdminUser{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Role:         enums.AdminRoleManager,
	}
}

func TestLoginMintsSessionBackedToken(t *testing.T) {
	user := testOperator(t, "manager@petalpost.co.th", "secret password")
	svc, sessions := newAuthService(t, user)

	result, err := svc.Login(context.Background(), "manager@petalpost.co.th", "secret password")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, user.Email, result.User.Email)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, enums.AdminRoleManager, claims.Role)

	// The JWT is only valid while its server-side session exists.
	require.Len(t, sessions.created, 1)
	assert.Equal(t, claims.ID, sessions.created[0])
}

func TestLoginUnknownEmailAndWrongPasswordLookIdentical(t *testing.T) {
	user := testOperator(t, "manager@petalpost.co.th", "secret password")
	svc, sessions := newAuthService(t, user)

	_, unknownErr := svc.Login(context.Background(), "ghost@petalpost.co.th", "secret password")
	_, wrongErr := svc.Login(context.Background(), "manager@petalpost.co.th", "not the password")

	for _, err := range []error{unknownErr, wrongErr} {
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
		assert.Equal(t, "invalid email or password", typed.Message())
	}
	assert.Empty(t, sessions.created)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, sessions := newAuthService(t)

	require.NoError(t, svc.Logout(context.Background(), "access-123"))
	assert.Equal(t, []string{"access-123"}, sessions.revoked)
}
