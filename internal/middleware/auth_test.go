package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mpetrenko/carshare/internal/auth"
	"github.com/mpetrenko/carshare/internal/database"
	"github.com/mpetrenko/carshare/internal/model"
	"github.com/mpetrenko/carshare/internal/store"
)

func setupGuardTest(t *testing.T) *store.UserStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.NewUserStore(db)
}

func requestWithIdentity(t *testing.T, id auth.Identity) *http.Request {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	return req.WithContext(auth.WithIdentity(req.Context(), id))
}

func TestRequireAuthAnonymous(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != loginRoute {
		t.Errorf("Location = %q, want %q", loc, loginRoute)
	}
}

func TestRequireAuthPassesIdentity(t *testing.T) {
	us := setupGuardTest(t)
	u, _ := us.Ensure(443621429)

	reached := false
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(t, auth.Identity{TelegramID: u.TelegramID, UserID: u.ID}))

	if !reached {
		t.Error("expected handler to be reached")
	}
}

func TestRequireAdminAnonymous(t *testing.T) {
	us := setupGuardTest(t)

	handler := RequireAdmin(us, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestRequireAdminNonAdmin(t *testing.T) {
	us := setupGuardTest(t)
	u, _ := us.Ensure(443621429)

	handler := RequireAdmin(us, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithIdentity(t, auth.Identity{TelegramID: u.TelegramID, UserID: u.ID}))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want redirect for non-admin", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != loginRoute {
		t.Errorf("Location = %q, want %q (no distinguishing response)", loc, loginRoute)
	}
}

func TestRequireAdminPasses(t *testing.T) {
	us := setupGuardTest(t)
	u, _ := us.Ensure(443621429)
	if err := us.SetRole(u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}

	reached := false
	handler := RequireAdmin(us, slog.Default())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	handler.ServeHTTP(httptest.NewRecorder(), requestWithIdentity(t, auth.Identity{TelegramID: u.TelegramID, UserID: u.ID}))

	if !reached {
		t.Error("expected admin to pass")
	}
}
