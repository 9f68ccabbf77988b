package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mariposa-trails/trailhead/config"
	"github.com/mariposa-trails/trailhead/errors"
)

// RoleAdmin is the fixed role claim carried by every issued token. There is
// exactly one credential in this system; the claim exists so clients and any
// future roles have something to branch on.
const RoleAdmin = "admin"

// defaultTokenExpiry is used when the configured duration does not parse
const defaultTokenExpiry = time.Hour

// Claims are the token claims for Trailhead sessions
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// JWTManager handles token creation and validation
type JWTManager struct {
	secret      []byte
	tokenExpiry time.Duration
}

// NewJWTManager creates a token manager from configuration. An empty secret
// is replaced with a generated one, which invalidates outstanding tokens on
// restart; fine for development, configure JWT_SECRET in production.
func NewJWTManager(cfg config.AuthConfig) (*JWTManager, error) {
	secret := cfg.JWTSecret
	if secret == "" {
		generated, err := generateSecret(32)
		if err != nil {
			return nil, errors.Wrap(err, "failed to generate JWT secret")
		}
		secret = generated
	}

	tokenExpiry, err := time.ParseDuration(cfg.TokenExpiry)
	if err != nil || tokenExpiry <= 0 {
		tokenExpiry = defaultTokenExpiry
	}

	return &JWTManager{
		secret:      []byte(secret),
		tokenExpiry: tokenExpiry,
	}, nil
}

// GenerateToken creates a signed admin token expiring after the configured
// duration.
func (m *JWTManager) GenerateToken() (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "trailhead",
		},
		Role: RoleAdmin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken parses and validates a token, distinguishing expiry from
// every other failure mode.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Newf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, errors.Wrap(errors.ErrExpired, "token expired")
	}
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "invalid token: %v", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Role != RoleAdmin {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "unexpected role %q", claims.Role)
	}
	return claims, nil
}

// TokenExpiry returns the configured token expiry duration
func (m *JWTManager) TokenExpiry() time.Duration {
	return m.tokenExpiry
}

// generateSecret generates a cryptographically secure random hex string
func generateSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "failed to generate random bytes")
	}
	return hex.EncodeToString(b), nil
}
