package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	CarAvailable   = "available"
	CarRented      = "rented"
	CarMaintenance = "maintenance"
)

type Car struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	HourlyRate int       `json:"hourly_rate"`
	DailyRate  int       `json:"daily_rate"`
	WeeklyRate int       `json:"weekly_rate"`
	Photos     []string  `json:"photos"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}
