// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package authz

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/auth"
)

const authzErrorCode = "AUTHORIZATION_ERROR"

// Middleware authorizes authenticated requests by role and path.
type Middleware struct {
	enforcer   *Enforcer
	writeError auth.ErrorWriter
	logger     zerolog.Logger
}

// NewMiddleware creates the authorization middleware. A nil writeError
// falls back to http.Error.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMiddleware(enforcer *Enforcer, writeError auth.ErrorWriter, logger zerolog.Logger) *Middleware {
	if writeError == nil {
		writeError = func(w http.ResponseWriter, _ *http.Request, status int, _, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{
		enforcer:   enforcer,
		writeError: writeError,
		logger:     logger.With().Str("component", "authz").Logger(),
	}
}

// AuthorizeRequest allows the request when the caller's role may perform
// the method's action on the request path. It must run after
// auth.Middleware.Authenticate.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok {
			m.writeError(w, r, http.StatusForbidden, authzErrorCode, "Forbidden: no authentication context")
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.Enforce(claims.Role, r.URL.Path, action)
		if err != nil {
			m.logger.Error().Err(err).Str("path", r.URL.Path).Msg("Authorization error")
			m.writeError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
			return
		}
		if !allowed {
			m.logger.Debug().
				Str("user_id", claims.Subject).
				Str("role", claims.Role).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Access denied")
			m.writeError(w, r, http.StatusForbidden, authzErrorCode, "Forbidden: insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}
