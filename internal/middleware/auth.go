package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mpetrenko/carshare/internal/auth"
	"github.com/mpetrenko/carshare/internal/store"
)

const loginRoute = "/api/login"

// RequireAuth passes requests that carry a resolved identity and redirects
// everything else to the login route. Browser-hosted login widget flow, so a
// redirect rather than a 401 body.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFromContext(r.Context()); !ok {
			http.Redirect(w, r, loginRoute, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin passes only authenticated users holding the admin role.
// Role misses and unknown users get the same login redirect as anonymous
// requests, so admin routes are not distinguishable from the outside.
func RequireAdmin(users *store.UserStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.IdentityFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, loginRoute, http.StatusSeeOther)
				return
			}

			admin, err := users.IsAdmin(id.UserID)
			if err != nil {
				logger.Error("admin check", "error", err, "user_id", id.UserID)
			}
			if !admin {
				http.Redirect(w, r, loginRoute, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
