package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/dmitrijs2005/userdirectory/internal/logging"
	"github.com/dmitrijs2005/userdirectory/internal/server/auth"
	"github.com/dmitrijs2005/userdirectory/internal/server/config"
	"golang.org/x/crypto/bcrypt"
)

// AuthService checks the single configured admin credential and verifies
// the bearer tokens it issues.
type AuthService struct {
	login                       []byte
	passwordHash                []byte
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	logger                      logging.Logger
}

// NewAuthService hashes the configured admin password once at startup.
func NewAuthService(cfg *config.Config, logger logging.Logger) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	return &AuthService{
		login:                       []byte(cfg.AdminLogin),
		passwordHash:                hash,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		logger:                      logger.With("module", "auth"),
	}, nil
}

// Login returns a signed access token when uid and password match the admin
// credential, common.ErrorUnauthorized otherwise.
func (s *AuthService) Login(ctx context.Context, uid, password string) (string, error) {
	loginOK := subtle.ConstantTimeCompare([]byte(uid), s.login) == 1
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))

	if !loginOK || passErr != nil {
		s.logger.Warn(ctx, "login failed", "uid", uid)
		return "", common.ErrorUnauthorized
	}

	token, err := auth.GenerateToken(uid, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "login succeeded", "uid", uid)
	return token, nil
}

// VerifyHeader validates an Authorization header of the form
// "Bearer <token>" and returns the user the token was issued to.
func (s *AuthService) VerifyHeader(ctx context.Context, header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)

	if !ok || !strings.EqualFold(scheme, common.BearerScheme) || token == "" {
		return "", common.ErrMissingAuthHeader
	}

	return auth.ParseToken(token, s.jwtSecret)
}
