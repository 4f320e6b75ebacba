package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mpetrenko/carshare/internal/model"
	"github.com/mpetrenko/carshare/internal/store"
	"github.com/mpetrenko/carshare/internal/websocket"
)

type CarHandler struct {
	carStore *store.CarStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewCarHandler(cs *store.CarStore, hub *websocket.Hub, logger *slog.Logger) *CarHandler {
	return &CarHandler{carStore: cs, hub: hub, logger: logger}
}

func (h *CarHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type carRequest struct {
	Name       string   `json:"name"`
	HourlyRate int      `json:"hourly_rate"`
	DailyRate  int      `json:"daily_rate"`
	WeeklyRate int      `json:"weekly_rate"`
	Photos     []string `json:"photos"`
	Status     string   `json:"status"`
}

func (h *CarHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req carRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	car, err := h.carStore.Create(store.NewCar{
		Name:       req.Name,
		HourlyRate: req.HourlyRate,
		DailyRate:  req.DailyRate,
		WeeklyRate: req.WeeklyRate,
		Photos:     req.Photos,
		Status:     req.Status,
	})
	if err != nil {
		h.logger.Error("create car", "error", err)
		writeServerError(w)
		return
	}

	h.broadcast(websocket.NewMessage("car", "created", car.ID.String(), nil))
	writeJSON(w, http.StatusCreated, car)
}

func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	cars, err := h.carStore.List(r.URL.Query().Get("status"))
	if err != nil {
		h.logger.Error("list cars", "error", err)
		writeServerError(w)
		return
	}
	if cars == nil {
		cars = []*model.Car{}
	}
	writeJSON(w, http.StatusOK, cars)
}

func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid car id"})
		return
	}

	car, err := h.carStore.GetByID(id)
	if err != nil {
		h.logger.Error("get car", "error", err)
		writeServerError(w)
		return
	}
	if car == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "car not found"})
		return
	}
	writeJSON(w, http.StatusOK, car)
}

type carUpdateRequest struct {
	Name       *string `json:"name"`
	HourlyRate *int    `json:"hourly_rate"`
	DailyRate  *int    `json:"daily_rate"`
	WeeklyRate *int    `json:"weekly_rate"`
	Status     *string `json:"status"`
}

func (h *CarHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid car id"})
		return
	}

	var req carUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	car, err := h.carStore.Update(id, store.CarUpdate{
		Name:       req.Name,
		HourlyRate: req.HourlyRate,
		DailyRate:  req.DailyRate,
		WeeklyRate: req.WeeklyRate,
		Status:     req.Status,
	})
	if err != nil {
		h.logger.Error("update car", "error", err)
		writeServerError(w)
		return
	}
	if car == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "car not found"})
		return
	}

	h.broadcast(websocket.NewMessage("car", "updated", car.ID.String(), nil))
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid car id"})
		return
	}

	if err := h.carStore.Delete(id); err != nil {
		h.logger.Error("delete car", "error", err)
		writeServerError(w)
		return
	}

	h.broadcast(websocket.NewMessage("car", "deleted", id.String(), nil))
	w.WriteHeader(http.StatusNoContent)
}
