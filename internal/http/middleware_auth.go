package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type contextKey string

const userContextKey contextKey = "user"

// requireUser verifies the bearer token and loads the authenticated user
// into the request context. Every credential failure gets the same 401 so
// callers cannot distinguish a bad token from a deleted account; storage
// failures surface as 500.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w)
			return
		}

		email, err := s.tokens.Verify(token)
		if err != nil {
			unauthorized(w)
			return
		}

		user, err := s.ledger.GetUserByEmail(r.Context(), email)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				unauthorized(w)
				return
			}
			slog.ErrorContext(r.Context(), "user lookup failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	respondError(w, http.StatusUnauthorized, "could not validate credentials")
}

func userFromContext(ctx context.Context) core.User {
	user, _ := ctx.Value(userContextKey).(core.User)
	return user
}
