package auth

import (
	"net/http"
	"strings"

	"github.com/quizroom/quizroom/internal/rbac"
)

// JWTMiddleware validates the bearer token and attaches the caller's
// identity (subject, display name, role) to the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := rbac.WithIdentity(r.Context(), c.Sub, c.Name, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
