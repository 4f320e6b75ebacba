package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const StatusActive = "active"

type User struct {
	ID         uuid.UUID `json:"id"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	TelegramID int64     `json:"telegram_id"`
	CreatedAt  time.Time `json:"created_at"`
}
