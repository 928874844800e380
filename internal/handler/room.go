package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

// RoomHandler exposes room CRUD plus the administrative status override.
// Descriptive fields are edited freely; the status column only moves
// through the RoomController so overrides broadcast exactly like
// lifecycle-driven changes.
type RoomHandler struct {
	Rooms *repository.RoomRepo
	Ctrl  *service.RoomController
}

func NewRoomHandler(rooms *repository.RoomRepo, ctrl *service.RoomController) *RoomHandler {
	if rooms == nil || ctrl == nil {
		panic("nil dependency passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Ctrl: ctrl}
}

type roomReq struct {
	Number          string `json:"number"`
	Capacity        int    `json:"capacity"`
	Description     string `json:"description"`
	Characteristics string `json:"characteristics"`
	Floor           string `json:"floor"`
	PricePerNight   uint32 `json:"price_per_night"`
}

// CreateRoom handles POST /v1/rooms. New rooms always start AVAILABLE.
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	number := strings.TrimSpace(req.Number)
	if number == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number is required"})
	}
	if req.Capacity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}
	room, err := h.Rooms.Create(c.Request().Context(), model.Room{
		Number:          number,
		Status:          model.RoomAvailable,
		Capacity:        req.Capacity,
		Description:     strings.TrimSpace(req.Description),
		Characteristics: strings.TrimSpace(req.Characteristics),
		Floor:           strings.TrimSpace(req.Floor),
		PricePerNight:   req.PricePerNight,
	})
	if err != nil {
		if strings.Contains(err.Error(), "1062") { // duplicate room number
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create room"})
	}
	return c.JSON(http.StatusCreated, room)
}

// ListRooms handles GET /v1/rooms with optional ?status= filtering.
func (h *RoomHandler) ListRooms(c echo.Context) error {
	status := model.RoomStatus(strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))))
	if status != "" && !model.ValidRoomStatus(status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	limit, offset := pagination(c)
	rooms, err := h.Rooms.List(c.Request().Context(), status, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": rooms})
}

// GetRoom handles GET /v1/rooms/:id.
func (h *RoomHandler) GetRoom(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	room, err := h.Rooms.GetByID(c.Request().Context(), id)
	if err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, room)
}

// UpdateRoom handles PUT /v1/rooms/:id. Only descriptive fields change
// here; the status column is owned by the lifecycle engine and the
// override endpoint.
func (h *RoomHandler) UpdateRoom(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if n := strings.TrimSpace(req.Number); n != "" {
		room.Number = n
	}
	if req.Capacity > 0 {
		room.Capacity = req.Capacity
	}
	if req.Description != "" {
		room.Description = strings.TrimSpace(req.Description)
	}
	if req.Characteristics != "" {
		room.Characteristics = strings.TrimSpace(req.Characteristics)
	}
	if req.Floor != "" {
		room.Floor = strings.TrimSpace(req.Floor)
	}
	if req.PricePerNight > 0 {
		room.PricePerNight = req.PricePerNight
	}
	updated, err := h.Rooms.UpdateDetails(ctx, room)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

type roomStatusReq struct {
	Status string `json:"status"`
}

// SetRoomStatus handles PATCH /v1/rooms/:id/status, the administrative
// override. It accepts any of the four statuses and reports both the
// previous and the resulting status.
func (h *RoomHandler) SetRoomStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roomStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	to := model.RoomStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	old, changed, err := h.Ctrl.AdminSetStatus(c.Request().Context(), id, to)
	if err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"room_id":         id,
		"previous_status": old,
		"new_status":      to,
		"changed":         changed,
	})
}

// DeleteRoom handles DELETE /v1/rooms/:id.
func (h *RoomHandler) DeleteRoom(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		if strings.Contains(err.Error(), "1451") { // FK restriction from bookings
			return c.JSON(http.StatusConflict, echo.Map{"error": "room has bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// RoomStats handles GET /v1/rooms/stats.
func (h *RoomHandler) RoomStats(c echo.Context) error {
	stats, err := h.Rooms.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, stats)
}
