package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/pkg/auth"
	"github.com/shashiranjanraj/mandi/pkg/response"
)

type actorCtxKey struct{}

// Auth validates the Bearer token and injects the acting user into the
// request context. Handlers read it back with UserFromCtx.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.Replace(r.Header.Get("Authorization"), "Bearer ", "", 1)

		if token == "" {
			response.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), actorCtxKey{}, claims.User())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromCtx returns the authenticated user, or nil when the request
// did not pass through Auth.
func UserFromCtx(ctx context.Context) *models.User {
	u, _ := ctx.Value(actorCtxKey{}).(*models.User)
	return u
}

// RequireAdmin rejects requests whose actor does not carry the admin role.
// Must be mounted after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !UserFromCtx(r.Context()).IsAdmin() {
			response.Error(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}
