package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/mpetrenko/carshare/internal/auth"
	"github.com/mpetrenko/carshare/internal/metrics"
	"github.com/mpetrenko/carshare/internal/store"
)

const (
	sessionCookieName = "session-token"
	homeRoute         = "/"
)

type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	botToken     string
	collector    *metrics.Collector
	logger       *slog.Logger

	// newToken is swapped for a deterministic source in tests.
	newToken func() (auth.SessionToken, error)
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, botToken string, collector *metrics.Collector, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		botToken:     botToken,
		collector:    collector,
		logger:       logger,
		newToken:     auth.NewSessionToken,
	}
}

// Login handles the Telegram widget callback. The signature is verified
// before any write happens, so an unverified payload can never create a user
// row; an already-authenticated caller is redirected home without touching
// the store at all.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.IdentityFromContext(r.Context()); ok {
		http.Redirect(w, r, homeRoute, http.StatusSeeOther)
		return
	}

	var payload auth.TelegramLoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if err := auth.VerifyTelegramLogin(payload, h.botToken); err != nil {
		h.collector.RecordSignatureMismatch()
		h.logger.Warn("login rejected", "telegram_id", payload.ID)
		// Same opaque body as a store failure; no oracle for the verifier.
		writeServerError(w)
		return
	}

	user, err := h.userStore.Ensure(payload.ID)
	if err != nil {
		h.logger.Error("ensure user", "error", err)
		writeServerError(w)
		return
	}

	token, err := h.createSession(user.ID)
	if err != nil {
		h.logger.Error("create session", "error", err, "user_id", user.ID)
		writeServerError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	h.collector.RecordLogin()
	h.logger.Info("user logged in", "user_id", user.ID, "telegram_id", user.TelegramID)
	http.Redirect(w, r, homeRoute, http.StatusSeeOther)
}

// createSession generates a token and persists the binding. A token
// collision is a generation anomaly; retry once with a fresh token, then
// give up.
func (h *AuthHandler) createSession(userID uuid.UUID) (auth.SessionToken, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := h.newToken()
		if err != nil {
			return auth.SessionToken{}, err
		}
		err = h.sessionStore.Create(token, userID)
		if err == nil {
			return token, nil
		}
		if err != store.ErrConflict {
			return auth.SessionToken{}, err
		}
		h.logger.Error("session token collision", "user_id", userID)
	}
	return auth.SessionToken{}, store.ErrConflict
}

// Logout deletes the caller's session if one exists and expires the cookie
// either way. Logging out an already-dead session succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessionStore.Delete(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	http.Redirect(w, r, homeRoute, http.StatusSeeOther)
}
