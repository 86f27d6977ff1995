package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgauth "github.com/petalpost/florist-backend/pkg/auth"
	"github.com/petalpost/florist-backend/pkg/auth/session"
	"github.com/petalpost/florist-backend/pkg/config"
	"github.com/petalpost/florist-backend/pkg/db/models"
	pkgerrors "github.com/petalpost/florist-backend/pkg/errors"
	"github.com/petalpost/florist-backend/pkg/logger"
)

// LoginResult is what a successful login hands back to the controller.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.AdminUser
}

type sessionWriter interface {
	Create(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// Service authenticates operators and manages their sessions.
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	repo     Repository
	sessions sessionWriter
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the auth service.
func NewService(repo Repository, sessions sessionWriter, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		repo:     repo,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		logg:     logg,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Login verifies credentials and mints a session-backed access token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading operator account")
	}

	ok, err := VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, invalidCredentials()
	}

	now := s.now()
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	if err := s.sessions.Create(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "registering session")
	}

	if s.logg != nil {
		ctx = s.logg.WithUserID(ctx, user.ID.String())
		s.logg.Info(ctx, "operator logged in")
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		User:      user,
	}, nil
}

// Logout revokes the server-side session; the JWT dies with it.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

func invalidCredentials() error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")
}
