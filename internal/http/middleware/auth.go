package middleware

import (
	"net/http"
	"strings"

	"github.com/carebridge/interpreter-booking/internal/auth"
	"github.com/carebridge/interpreter-booking/internal/identity"
)

// Authenticate verifies the bearer token and stores the principal in context.
func Authenticate(issuer *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")
			userID, role, err := issuer.Verify(tokenString)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := identity.WithUser(r.Context(), identity.User{ID: userID, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStaff admits staff and admin principals.
func RequireStaff(next http.Handler) http.Handler {
	return requireRole(next, auth.RoleStaff, auth.RoleAdmin)
}

// RequireInterpreter admits interpreter principals only.
func RequireInterpreter(next http.Handler) http.Handler {
	return requireRole(next, auth.RoleInterpreter)
}

// RequireAdmin admits admin principals only.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole(next, auth.RoleAdmin)
}

func requireRole(next http.Handler, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := identity.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		for _, role := range roles {
			if user.Role == role {
				next.ServeHTTP(w, r)
				return
			}
		}
		http.Error(w, "forbidden", http.StatusForbidden)
	})
}
