package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mpetrenko/carshare/internal/auth"
	"github.com/mpetrenko/carshare/internal/metrics"
	"github.com/mpetrenko/carshare/internal/store"
)

const sessionCookieName = "session-token"

// ResolveIdentity reads the session-token cookie on every request and, when
// it resolves to a live session, attaches the Identity to the request
// context. It never rejects: a missing, malformed, or unknown token leaves
// the request anonymous and the access decision to the guards. Store errors
// are logged and likewise degrade to anonymous.
func ResolveIdentity(sessions *store.SessionStore, collector *metrics.Collector, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := sessions.ResolveByToken(cookie.Value)
			if err != nil {
				logger.Error("resolve session", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			collector.RecordSessionResolution(id != nil)
			if id == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithIdentity(r.Context(), *id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
