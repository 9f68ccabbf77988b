package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mariposa-trails/trailhead/errors"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// claimsContextKey is the context key for validated token claims
const claimsContextKey contextKey = "auth_claims"

// Middleware provides HTTP bearer-token enforcement
type Middleware struct {
	service *Service
	logger  *zap.SugaredLogger
}

// NewMiddleware creates auth middleware backed by the given service
func NewMiddleware(service *Service, logger *zap.SugaredLogger) *Middleware {
	return &Middleware{service: service, logger: logger}
}

// RequireAuth wraps a handler so it only runs with a valid bearer token.
// Failures are JSON error bodies, matching the rest of the API surface.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		claims, err := m.service.Validate(token)
		if err != nil {
			m.logger.Debugw("Token validation failed", "error", err)
			if errors.Is(err, errors.ErrExpired) {
				unauthorized(w, "token expired")
			} else {
				unauthorized(w, "invalid token")
			}
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// ClaimsFromContext extracts validated claims from a request context
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return authHeader
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
