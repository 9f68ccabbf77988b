// Package auth provides the write-path auth gate for Trailhead: a single
// admin password checked against a stored bcrypt hash, exchanged for a
// signed short-lived bearer token.
package auth

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mariposa-trails/trailhead/config"
	"github.com/mariposa-trails/trailhead/errors"
)

// Service handles credential verification and token issuance
type Service struct {
	passwordHash string
	jwt          *JWTManager
	logger       *zap.SugaredLogger
}

// NewService creates the auth service from configuration
func NewService(cfg config.AuthConfig, logger *zap.SugaredLogger) (*Service, error) {
	jwt, err := NewJWTManager(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize JWT manager")
	}

	if cfg.AdminPasswordHash == "" {
		logger.Warnw("No admin password hash configured; /login will reject all passwords")
	}

	return &Service{
		passwordHash: cfg.AdminPasswordHash,
		jwt:          jwt,
		logger:       logger,
	}, nil
}

// IssueToken verifies the supplied password against the stored hash and, on
// success, returns a signed bearer token.
func (s *Service) IssueToken(password string) (string, error) {
	if password == "" {
		return "", errors.NewInvalidRequestError("password is required")
	}
	if s.passwordHash == "" {
		return "", errors.Wrap(errors.ErrUnauthorized, "no admin password configured")
	}

	err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return "", errors.Wrap(errors.ErrUnauthorized, "wrong password")
	}
	if err != nil {
		// Malformed hash or cost issues: a server-side problem, not a 401
		return "", errors.Wrap(err, "password hash comparison failed")
	}

	token, err := s.jwt.GenerateToken()
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	s.logger.Infow("Issued admin token", "expires_in", s.jwt.TokenExpiry().String())
	return token, nil
}

// Validate checks a bearer token, returning its claims when valid.
func (s *Service) Validate(token string) (*Claims, error) {
	return s.jwt.ValidateToken(token)
}

// JWT returns the token manager, mainly for tests
func (s *Service) JWT() *JWTManager {
	return s.jwt
}
