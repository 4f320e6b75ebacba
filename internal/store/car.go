package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mpetrenko/carshare/internal/model"
)

type CarStore struct {
	db *sql.DB
}

func NewCarStore(db *sql.DB) *CarStore {
	return &CarStore{db: db}
}

const carCols = `id, name, hourly_rate, daily_rate, weekly_rate, photos, status, created_at`

func scanCar(scanner interface{ Scan(...any) error }) (*model.Car, error) {
	var c model.Car
	var id, photos string
	err := scanner.Scan(&id, &c.Name, &c.HourlyRate, &c.DailyRate, &c.WeeklyRate, &photos, &c.Status, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse car id: %w", err)
	}
	if err := json.Unmarshal([]byte(photos), &c.Photos); err != nil {
		return nil, fmt.Errorf("decode car photos: %w", err)
	}
	return &c, nil
}

// NewCar holds the fields for a fleet addition.
type NewCar struct {
	Name       string
	HourlyRate int
	DailyRate  int
	WeeklyRate int
	Photos     []string
	Status     string
}

func (s *CarStore) Create(nc NewCar) (*model.Car, error) {
	if nc.Photos == nil {
		nc.Photos = []string{}
	}
	photos, err := json.Marshal(nc.Photos)
	if err != nil {
		return nil, fmt.Errorf("encode car photos: %w", err)
	}
	if nc.Status == "" {
		nc.Status = model.CarAvailable
	}

	id := uuid.New()
	_, err = s.db.Exec(
		`INSERT INTO cars (id, name, hourly_rate, daily_rate, weekly_rate, photos, status) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id.String(), nc.Name, nc.HourlyRate, nc.DailyRate, nc.WeeklyRate, string(photos), nc.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("insert car: %w", err)
	}
	return s.GetByID(id)
}

func (s *CarStore) GetByID(id uuid.UUID) (*model.Car, error) {
	row := s.db.QueryRow(`SELECT `+carCols+` FROM cars WHERE id = ?`, id.String())
	c, err := scanCar(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get car: %w", err)
	}
	return c, nil
}

// List returns the fleet, optionally filtered by status.
func (s *CarStore) List(status string) ([]*model.Car, error) {
	query := `SELECT ` + carCols + ` FROM cars ORDER BY created_at, id`
	args := []any{}
	if status != "" {
		query = `SELECT ` + carCols + ` FROM cars WHERE status = ? ORDER BY created_at, id`
		args = append(args, status)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	defer rows.Close()

	var cars []*model.Car
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan car: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	return cars, nil
}

// CarUpdate holds the optional fields of a partial update; nil means keep.
type CarUpdate struct {
	Name       *string
	HourlyRate *int
	DailyRate  *int
	WeeklyRate *int
	Status     *string
}

// Update applies the non-nil fields and returns the updated car, or nil if
// the car does not exist.
func (s *CarStore) Update(id uuid.UUID, u CarUpdate) (*model.Car, error) {
	var sets []string
	var args []any
	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.HourlyRate != nil {
		sets = append(sets, "hourly_rate = ?")
		args = append(args, *u.HourlyRate)
	}
	if u.DailyRate != nil {
		sets = append(sets, "daily_rate = ?")
		args = append(args, *u.DailyRate)
	}
	if u.WeeklyRate != nil {
		sets = append(sets, "weekly_rate = ?")
		args = append(args, *u.WeeklyRate)
	}
	if u.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *u.Status)
	}
	if len(sets) == 0 {
		return s.GetByID(id)
	}

	args = append(args, id.String())
	_, err := s.db.Exec(`UPDATE cars SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update car: %w", err)
	}
	return s.GetByID(id)
}

func (s *CarStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM cars WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	return nil
}
