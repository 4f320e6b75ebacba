package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mpetrenko/carshare/internal/auth"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Create inserts a token→user binding. A colliding token returns ErrConflict.
func (s *SessionStore) Create(token auth.SessionToken, userID uuid.UUID) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_token, user_id) VALUES (?, ?)`,
		token.Bytes(), userID.String(),
	)
	if err != nil {
		if isConflict(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ResolveByToken joins the session against its user and returns the identity,
// or nil if the token is unknown. A malformed token string resolves to nil
// the same as a missing row; it never errors.
func (s *SessionStore) ResolveByToken(token string) (*auth.Identity, error) {
	parsed, err := auth.ParseSessionToken(token)
	if err != nil {
		return nil, nil
	}

	row := s.db.QueryRow(
		`SELECT u.id, u.telegram_id
		 FROM sessions s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.session_token = ?`,
		parsed.Bytes(),
	)

	var idStr string
	var id auth.Identity
	err = row.Scan(&idStr, &id.TelegramID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	id.UserID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse session user id: %w", err)
	}
	return &id, nil
}

// Delete removes the session for the given token. Deleting an absent or
// malformed token is a no-op success, so logout is idempotent.
func (s *SessionStore) Delete(token string) error {
	parsed, err := auth.ParseSessionToken(token)
	if err != nil {
		return nil
	}
	_, err = s.db.Exec(`DELETE FROM sessions WHERE session_token = ?`, parsed.Bytes())
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Count returns the number of live sessions. Used by the metrics collector.
func (s *SessionStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}
