package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mpetrenko/carshare/internal/auth"
	"github.com/mpetrenko/carshare/internal/database"
	"github.com/mpetrenko/carshare/internal/metrics"
	"github.com/mpetrenko/carshare/internal/store"
)

func setupIdentityTest(t *testing.T) (*store.SessionStore, *store.UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewSessionStore(db), store.NewUserStore(db)
}

func identityEcho(t *testing.T, got *auth.Identity, found *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := auth.IdentityFromContext(r.Context()); ok {
			*got = id
			*found = true
		}
	})
}

func TestResolveIdentityNoCookie(t *testing.T) {
	ss, _ := setupIdentityTest(t)

	var id auth.Identity
	var found bool
	handler := ResolveIdentity(ss, metrics.NewCollector(), slog.Default())(identityEcho(t, &id, &found))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, anonymous request must pass through", rec.Code)
	}
	if found {
		t.Error("expected no identity without cookie")
	}
}

func TestResolveIdentityUnknownToken(t *testing.T) {
	ss, _ := setupIdentityTest(t)

	var id auth.Identity
	var found bool
	handler := ResolveIdentity(ss, metrics.NewCollector(), slog.Default())(identityEcho(t, &id, &found))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "12345"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, unknown token must not reject", rec.Code)
	}
	if found {
		t.Error("expected no identity for unknown token")
	}
}

func TestResolveIdentityMalformedToken(t *testing.T) {
	ss, _ := setupIdentityTest(t)

	var id auth.Identity
	var found bool
	handler := ResolveIdentity(ss, metrics.NewCollector(), slog.Default())(identityEcho(t, &id, &found))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "not-a-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || found {
		t.Errorf("malformed token: status=%d found=%v, want anonymous pass-through", rec.Code, found)
	}
}

func TestResolveIdentityValidSession(t *testing.T) {
	ss, us := setupIdentityTest(t)

	u, err := us.Ensure(443621429)
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	tok, err := auth.NewSessionToken()
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if err := ss.Create(tok, u.ID); err != nil {
		t.Fatalf("create session: %v", err)
	}

	var id auth.Identity
	var found bool
	handler := ResolveIdentity(ss, metrics.NewCollector(), slog.Default())(identityEcho(t, &id, &found))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: tok.String()})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !found {
		t.Fatal("expected identity for valid session")
	}
	if id.UserID != u.ID || id.TelegramID != u.TelegramID {
		t.Errorf("identity = %+v, want user %s / telegram %d", id, u.ID, u.TelegramID)
	}
}
