package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mpetrenko/carshare/internal/model"
)

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

const orderCols = `id, user_id, car_id, start_rent_time, end_rent_time, status, paid, created_at, updated_at`

func scanOrder(scanner interface{ Scan(...any) error }) (*model.Order, error) {
	var o model.Order
	var id, userID, carID string
	var start, end, updated sql.NullTime
	err := scanner.Scan(&id, &userID, &carID, &start, &end, &o.Status, &o.Paid, &o.CreatedAt, &updated)
	if err != nil {
		return nil, err
	}
	if o.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse order id: %w", err)
	}
	if o.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("parse order user id: %w", err)
	}
	if o.CarID, err = uuid.Parse(carID); err != nil {
		return nil, fmt.Errorf("parse order car id: %w", err)
	}
	if start.Valid {
		o.StartRentTime = &start.Time
	}
	if end.Valid {
		o.EndRentTime = &end.Time
	}
	if updated.Valid {
		o.UpdatedAt = &updated.Time
	}
	return &o, nil
}

// Create opens a pending order for the user on the given car.
func (s *OrderStore) Create(userID, carID uuid.UUID) (*model.Order, error) {
	id := uuid.New()
	_, err := s.db.Exec(
		`INSERT INTO orders (id, user_id, car_id, status) VALUES (?, ?, ?, ?)`,
		id.String(), userID.String(), carID.String(), model.OrderPending,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}
	return s.GetByID(id)
}

func (s *OrderStore) GetByID(id uuid.UUID) (*model.Order, error) {
	row := s.db.QueryRow(`SELECT `+orderCols+` FROM orders WHERE id = ?`, id.String())
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// List returns all orders, or only one user's when userID is non-nil.
func (s *OrderStore) List(userID *uuid.UUID) ([]*model.Order, error) {
	query := `SELECT ` + orderCols + ` FROM orders ORDER BY created_at, id`
	args := []any{}
	if userID != nil {
		query = `SELECT ` + orderCols + ` FROM orders WHERE user_id = ? ORDER BY created_at, id`
		args = append(args, userID.String())
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// OrderUpdate holds the optional fields of a lifecycle transition; nil means
// keep. Every applied update stamps updated_at.
type OrderUpdate struct {
	StartRentTime *time.Time
	EndRentTime   *time.Time
	Status        *string
	Paid          *bool
}

// Update applies the non-nil fields and returns the updated order, or nil if
// the order does not exist.
func (s *OrderStore) Update(id uuid.UUID, u OrderUpdate) (*model.Order, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	if u.StartRentTime != nil {
		sets = append(sets, "start_rent_time = ?")
		args = append(args, u.StartRentTime.UTC())
	}
	if u.EndRentTime != nil {
		sets = append(sets, "end_rent_time = ?")
		args = append(args, u.EndRentTime.UTC())
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if u.Paid != nil {
		sets = append(sets, "paid = ?")
		args = append(args, *u.Paid)
	}

	args = append(args, id.String())
	_, err := s.db.Exec(`UPDATE orders SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return s.GetByID(id)
}

func (s *OrderStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM orders WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}
