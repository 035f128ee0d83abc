package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Clark-Hu/movie-ratings/internal/auth"
	"github.com/Clark-Hu/movie-ratings/internal/domain"
	"github.com/Clark-Hu/movie-ratings/internal/repository"
)

type userContextKey struct{}

func withUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// currentUser returns the user placed in the context by authenticate.
func currentUser(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(domain.User)
	return user, ok
}

// tokenFromRequest prefers the token query parameter and falls back to a bearer header.
func tokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get("token")); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// authenticate verifies the request token and resolves its user. Every failure is a 403.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.tokens.Parse(tokenFromRequest(r))
		if err != nil {
			s.respondError(w, http.StatusForbidden, "FORBIDDEN", tokenErrorMessage(err))
			return
		}

		user, err := s.repo.Users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.respondError(w, http.StatusForbidden, "FORBIDDEN", "unknown user")
				return
			}
			s.respondInternal(w, "resolve token user", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// requireRole admits only users whose role equals role exactly.
func (s *Server) requireRole(role domain.Role) func(http.Handler) http.Handler {
	message := "this endpoint is for users only"
	if role == domain.RoleAdmin {
		message = "access denied, admin privileges required"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := currentUser(r.Context())
			if !ok || user.Role != role {
				s.respondError(w, http.StatusForbidden, "FORBIDDEN", message)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func tokenErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenMissing):
		return "token missing"
	case errors.Is(err, auth.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, auth.ErrTokenMalformed):
		return "malformed token"
	default:
		return "invalid token"
	}
}
