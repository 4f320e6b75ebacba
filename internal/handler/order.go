package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mpetrenko/carshare/internal/auth"
	"github.com/mpetrenko/carshare/internal/model"
	"github.com/mpetrenko/carshare/internal/store"
	"github.com/mpetrenko/carshare/internal/websocket"
)

type OrderHandler struct {
	orderStore *store.OrderStore
	carStore   *store.CarStore
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewOrderHandler(os *store.OrderStore, cs *store.CarStore, hub *websocket.Hub, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orderStore: os, carStore: cs, hub: hub, logger: logger}
}

func (h *OrderHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type makeOrderRequest struct {
	CarID string `json:"car_id"`
}

// Make opens a pending order for the authenticated user.
func (h *OrderHandler) Make(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// Guard middleware should make this unreachable.
		writeServerError(w)
		return
	}

	var req makeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid car id"})
		return
	}

	car, err := h.carStore.GetByID(carID)
	if err != nil {
		h.logger.Error("get car for order", "error", err)
		writeServerError(w)
		return
	}
	if car == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "car not found"})
		return
	}

	order, err := h.orderStore.Create(identity.UserID, carID)
	if err != nil {
		h.logger.Error("create order", "error", err)
		writeServerError(w)
		return
	}

	h.broadcast(websocket.NewMessage("order", "created", order.ID.String(), map[string]any{"car_id": carID.String()}))
	writeJSON(w, http.StatusCreated, order)
}

// Cancel lets a user cancel their own order. Orders belonging to someone
// else are rejected with 403 regardless of whether they exist.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeServerError(w)
		return
	}

	id, err := parseUUIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	order, err := h.orderStore.GetByID(id)
	if err != nil {
		h.logger.Error("get order", "error", err)
		writeServerError(w)
		return
	}
	if order == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	if order.UserID != identity.UserID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "not your order"})
		return
	}

	status := model.OrderCancelled
	order, err = h.orderStore.Update(id, store.OrderUpdate{Status: &status})
	if err != nil {
		h.logger.Error("cancel order", "error", err)
		writeServerError(w)
		return
	}

	h.broadcast(websocket.NewMessage("order", "cancelled", id.String(), nil))
	writeJSON(w, http.StatusOK, order)
}

// History returns the authenticated user's orders, oldest first.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeServerError(w)
		return
	}

	orders, err := h.orderStore.List(&identity.UserID)
	if err != nil {
		h.logger.Error("list order history", "error", err)
		writeServerError(w)
		return
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// List returns all orders, or one user's with ?user_id=. Admin only.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter *uuid.UUID
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		filter = &id
	}

	orders, err := h.orderStore.List(filter)
	if err != nil {
		h.logger.Error("list orders", "error", err)
		writeServerError(w)
		return
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	order, err := h.orderStore.GetByID(id)
	if err != nil {
		h.logger.Error("get order", "error", err)
		writeServerError(w)
		return
	}
	if order == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Accept moves a pending order to accepted.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	status := model.OrderAccepted
	h.transition(w, r, "accepted", store.OrderUpdate{Status: &status})
}

// StartRent marks the rental as underway and stamps the start time.
func (h *OrderHandler) StartRent(w http.ResponseWriter, r *http.Request) {
	status := model.OrderProcessing
	now := time.Now().UTC()
	h.transition(w, r, "started", store.OrderUpdate{Status: &status, StartRentTime: &now})
}

// FinishRent closes out the rental and stamps the end time.
func (h *OrderHandler) FinishRent(w http.ResponseWriter, r *http.Request) {
	status := model.OrderFinished
	now := time.Now().UTC()
	h.transition(w, r, "finished", store.OrderUpdate{Status: &status, EndRentTime: &now})
}

// SetPaid flags the order as settled.
func (h *OrderHandler) SetPaid(w http.ResponseWriter, r *http.Request) {
	paid := true
	h.transition(w, r, "paid", store.OrderUpdate{Paid: &paid})
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, action string, update store.OrderUpdate) {
	id, err := parseUUIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	order, err := h.orderStore.GetByID(id)
	if err != nil {
		h.logger.Error("get order", "error", err)
		writeServerError(w)
		return
	}
	if order == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}

	order, err = h.orderStore.Update(id, update)
	if err != nil {
		h.logger.Error("update order", "action", action, "error", err)
		writeServerError(w)
		return
	}

	h.broadcast(websocket.NewMessage("order", action, id.String(), nil))
	writeJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order id"})
		return
	}

	if err := h.orderStore.Delete(id); err != nil {
		h.logger.Error("delete order", "error", err)
		writeServerError(w)
		return
	}

	h.broadcast(websocket.NewMessage("order", "deleted", id.String(), nil))
	w.WriteHeader(http.StatusNoContent)
}
