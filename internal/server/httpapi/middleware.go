package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskit/internal/server/models"
)

type ctxKey string

const (
	userKey  ctxKey = "user"
	tokenKey ctxKey = "token"
)

const bearerPrefix = "Bearer "

// authenticate is the auth gate: it turns a bearer Authorization header
// into a resolved account on the request context, or rejects the request
// with the uniform authentication failure. The presented token string is
// kept on the context too, so single-session logout can revoke exactly it.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: authFailureMessage})
			return
		}
		token := strings.TrimPrefix(header, bearerPrefix)

		user, err := s.tokens.Validate(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: authFailureMessage})
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, tokenKey, token)
		next(w, r.WithContext(ctx))
	}
}

// userFromContext returns the account resolved by the auth gate.
func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}

// tokenFromContext returns the token string the auth gate accepted.
func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
