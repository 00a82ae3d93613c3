package web

import (
	"context"
	"net/http"
	"strings"
)

type contextKey struct{}

var principalKey contextKey

// auth verifies the bearer token and stores the principal id on the request
// context. Requests without a valid token get 401 before the handler runs.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "missing Authorization header", http.StatusUnauthorized)
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			http.Error(w, "invalid Authorization header", http.StatusUnauthorized)
			return
		}

		userID, err := s.tokens.Verify(token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), principalKey, userID)))
	}
}

// principal returns the authenticated user id stored by the auth middleware.
func principal(r *http.Request) int64 {
	id, _ := r.Context().Value(principalKey).(int64)
	return id
}
