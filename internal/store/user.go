package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/mpetrenko/carshare/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userCols = `id, role, status, telegram_id, created_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	var id string
	err := scanner.Scan(&id, &u.Role, &u.Status, &u.TelegramID, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &u, nil
}

// Ensure returns the user with the given Telegram ID, creating one with the
// default role if none exists yet. First login creates the account.
func (s *UserStore) Ensure(telegramID int64) (*model.User, error) {
	existing, err := s.GetByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id := uuid.New()
	_, err = s.db.Exec(
		`INSERT INTO users (id, role, status, telegram_id) VALUES (?, ?, ?, ?)`,
		id.String(), model.RoleUser, model.StatusActive, telegramID,
	)
	if err != nil {
		if isConflict(err) {
			// Concurrent first login for the same Telegram account.
			return s.GetByTelegramID(telegramID)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(id)
}

func (s *UserStore) GetByID(id uuid.UUID) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id.String())
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByTelegramID(telegramID int64) (*model.User, error) {
	row := s.db.QueryRow(`SELECT `+userCols+` FROM users WHERE telegram_id = ?`, telegramID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return u, nil
}

// IsAdmin reports whether the user exists and holds the admin role.
func (s *UserStore) IsAdmin(id uuid.UUID) (bool, error) {
	u, err := s.GetByID(id)
	if err != nil {
		return false, err
	}
	return u != nil && u.Role == model.RoleAdmin, nil
}

// SetRole changes a user's role. Used by operator tooling, not by handlers.
func (s *UserStore) SetRole(id uuid.UUID, role string) error {
	_, err := s.db.Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id.String())
	if err != nil {
		return fmt.Errorf("set user role: %w", err)
	}
	return nil
}
