// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/metrics"
)

// DevUserHeader names the caller in AUTH_MODE=none.
const DevUserHeader = "X-User-ID"

const (
	devUserID     = "dev-user"
	cronSubject   = "cron"
	bearerPrefix  = "Bearer "
	authModeNone  = "none"
	authErrorCode = "AUTHENTICATION_ERROR"
)

var errMissingCredentials = errors.New("missing bearer token")

// ErrorWriter writes an error response. The API passes its envelope writer.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, code, message string)

// Middleware authenticates requests.
type Middleware struct {
	jwt        *JWTManager
	authMode   string
	cronSecret []byte
	writeError ErrorWriter
	logger     zerolog.Logger
}

// NewMiddleware creates the authentication middleware. jwtManager may be
// nil when AUTH_MODE=none. A nil writeError falls back to http.Error.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMiddleware(jwtManager *JWTManager, cfg *config.SecurityConfig, writeError ErrorWriter, logger zerolog.Logger) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	m := &Middleware{
		jwt:        jwtManager,
		authMode:   cfg.AuthMode,
		writeError: writeError,
		logger:     logger.With().Str("component", "auth").Logger(),
	}
	if cfg.CronSecret != "" {
		m.cronSecret = []byte(cfg.CronSecret)
	}
	return m
}

// Authenticate rejects requests without valid credentials.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.authenticate(r)
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, errMissingCredentials) {
				reason = "missing"
			}
			metrics.RecordAuthAttempt("failure", reason)
			m.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("Authentication failed")
			w.Header().Set("WWW-Authenticate", `Bearer realm="eventide"`)
			m.writeError(w, r, http.StatusUnauthorized, authErrorCode, "Unauthorized: "+err.Error())
			return
		}
		metrics.RecordAuthAttempt("success", claims.Role)
		ctx := ContextWithClaims(r.Context(), claims)
		ctx = logging.ContextWithUserID(ctx, claims.UserID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches claims when valid credentials are present and lets
// anonymous requests through. Invalid credentials are still rejected.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.authMode != authModeNone && r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		m.Authenticate(next).ServeHTTP(w, r)
	})
}

func (m *Middleware) authenticate(r *http.Request) (*Claims, error) {
	if m.authMode == authModeNone {
		user := strings.TrimSpace(r.Header.Get(DevUserHeader))
		if user == "" {
			user = devUserID
		}
		claims := &Claims{Role: RoleAdmin}
		claims.Subject = user
		return claims, nil
	}

	token, ok := bearerToken(r)
	if !ok {
		return nil, errMissingCredentials
	}
	if m.isCronSecret(token) {
		claims := &Claims{Role: RoleService}
		claims.Subject = cronSubject
		return claims, nil
	}
	if m.jwt == nil {
		return nil, ErrInvalidToken
	}
	return m.jwt.ValidateToken(token)
}

func (m *Middleware) isCronSecret(token string) bool {
	if len(m.cronSecret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), m.cronSecret) == 1
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) <= len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(bearerPrefix):])
	return token, token != ""
}
