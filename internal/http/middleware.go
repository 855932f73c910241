package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"budget/internal/auth"
	"budget/internal/core"
)

type (
	userKey        struct{}
	authoritiesKey struct{}
)

// authenticated wraps a handler with the common middleware plus bearer
// token verification. The resolved account and its authority set are
// stored on the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return s.withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		user, err := s.services.Auth.Identify(r.Context(), token)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}

		authorities, err := s.services.Auth.Authorities(r.Context(), user)
		if err != nil {
			// Unresolvable roles must not grant access.
			slog.ErrorContext(r.Context(), "Failed to resolve authorities",
				"username", user.Username, "error", err)
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}

		ctx := context.WithValue(r.Context(), userKey{}, user)
		ctx = context.WithValue(ctx, authoritiesKey{}, authorities)
		next(w, r.WithContext(ctx))
	})
}

// requireCapability allows the request through when the caller holds at
// least one of the named capabilities.
func (s *Server) requireCapability(next http.HandlerFunc, capabilities ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorities := requestAuthorities(r)
		if !authorities.HasAny(capabilities...) {
			respondError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", false
	}
	return token, true
}

func requestUser(r *http.Request) *core.User {
	user, _ := r.Context().Value(userKey{}).(*core.User)
	return user
}

func requestAuthorities(r *http.Request) auth.Authorities {
	authorities, _ := r.Context().Value(authoritiesKey{}).(auth.Authorities)
	return authorities
}
