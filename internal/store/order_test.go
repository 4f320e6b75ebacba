package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mpetrenko/carshare/internal/database"
	"github.com/mpetrenko/carshare/internal/model"
)

func setupOrderTestDB(t *testing.T) (*OrderStore, *UserStore, *CarStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewOrderStore(db), NewUserStore(db), NewCarStore(db)
}

func createOrder(t *testing.T, os *OrderStore, us *UserStore, cs *CarStore) *model.Order {
	t.Helper()
	u, err := us.Ensure(443621429)
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	c, err := cs.Create(NewCar{Name: "Kia Rio", HourlyRate: 500})
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	o, err := os.Create(u.ID, c.ID)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return o
}

func TestOrderCreate(t *testing.T) {
	os, us, cs := setupOrderTestDB(t)
	o := createOrder(t, os, us, cs)

	if o.Status != model.OrderPending {
		t.Errorf("status = %q, want %q", o.Status, model.OrderPending)
	}
	if o.Paid {
		t.Error("new order must be unpaid")
	}
	if o.StartRentTime != nil || o.EndRentTime != nil || o.UpdatedAt != nil {
		t.Errorf("new order has stamped times: %+v", o)
	}
}

func TestOrderLifecycle(t *testing.T) {
	os, us, cs := setupOrderTestDB(t)
	o := createOrder(t, os, us, cs)

	accepted := model.OrderAccepted
	got, err := os.Update(o.ID, OrderUpdate{Status: &accepted})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if got.Status != model.OrderAccepted {
		t.Errorf("status = %q, want accepted", got.Status)
	}
	if got.UpdatedAt == nil {
		t.Error("expected updated_at stamp")
	}

	now := time.Now().UTC()
	processing := model.OrderProcessing
	got, err = os.Update(o.ID, OrderUpdate{Status: &processing, StartRentTime: &now})
	if err != nil {
		t.Fatalf("start rent: %v", err)
	}
	if got.StartRentTime == nil {
		t.Error("expected start_rent_time")
	}

	finished := model.OrderFinished
	got, err = os.Update(o.ID, OrderUpdate{Status: &finished, EndRentTime: &now})
	if err != nil {
		t.Fatalf("finish rent: %v", err)
	}
	if got.EndRentTime == nil {
		t.Error("expected end_rent_time")
	}

	paid := true
	got, err = os.Update(o.ID, OrderUpdate{Paid: &paid})
	if err != nil {
		t.Fatalf("set paid: %v", err)
	}
	if !got.Paid {
		t.Error("expected paid order")
	}
	if got.Status != model.OrderFinished {
		t.Errorf("set paid changed status to %q", got.Status)
	}
}

func TestOrderListByUser(t *testing.T) {
	os, us, cs := setupOrderTestDB(t)
	o := createOrder(t, os, us, cs)

	other, err := us.Ensure(99999999)
	if err != nil {
		t.Fatalf("ensure other user: %v", err)
	}
	if _, err := os.Create(other.ID, o.CarID); err != nil {
		t.Fatalf("create other order: %v", err)
	}

	all, err := os.List(nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("list all = %d, want 2", len(all))
	}

	mine, err := os.List(&o.UserID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != o.ID {
		t.Errorf("list mine = %+v, want only %s", mine, o.ID)
	}
}

func TestOrderDelete(t *testing.T) {
	os, us, cs := setupOrderTestDB(t)
	o := createOrder(t, os, us, cs)

	if err := os.Delete(o.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := os.GetByID(o.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}
}

func TestOrderGetByIDNotFound(t *testing.T) {
	os, _, _ := setupOrderTestDB(t)

	o, err := os.GetByID(uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if o != nil {
		t.Error("expected nil for unknown id")
	}
}
