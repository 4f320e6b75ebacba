package model

import (
	"time"

	"github.com/google/uuid"
)

// Order lifecycle: pending → accepted → processing → finished, with
// cancelled reachable from pending by the order's owner.
const (
	OrderPending    = "pending"
	OrderAccepted   = "accepted"
	OrderProcessing = "processing"
	OrderFinished   = "finished"
	OrderCancelled  = "cancelled"
)

type Order struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	CarID         uuid.UUID  `json:"car_id"`
	StartRentTime *time.Time `json:"start_rent_time"`
	EndRentTime   *time.Time `json:"end_rent_time"`
	Status        string     `json:"status"`
	Paid          bool       `json:"paid"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at"`
}
