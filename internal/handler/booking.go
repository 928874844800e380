package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
	"github.com/iliyamo/hotel-room-reservation/internal/service"
)

// BookingHandler exposes the booking lifecycle over HTTP. All state
// transitions delegate to the Lifecycle service; the handler only does
// parsing, authorization and error translation. Customers see their own
// bookings, admins see everything.
type BookingHandler struct {
	Bookings  *repository.BookingRepo
	Lifecycle *service.Lifecycle
}

func NewBookingHandler(bookings *repository.BookingRepo, lifecycle *service.Lifecycle) *BookingHandler {
	if bookings == nil || lifecycle == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings, Lifecycle: lifecycle}
}

// parseDate accepts either a plain date (2006-01-02) or RFC 3339 and
// normalizes to UTC.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

type bookingReq struct {
	RoomID          uint64  `json:"room_id"`
	CheckIn         string  `json:"check_in"`
	CheckOut        string  `json:"check_out"`
	GuestName       string  `json:"guest_name"`
	GuestEmail      string  `json:"guest_email"`
	GuestPhone      string  `json:"guest_phone"`
	NumberOfGuests  int     `json:"number_of_guests"`
	SpecialRequests *string `json:"special_requests"`
}

// CreateBooking handles POST /v1/bookings. The booking is created for
// the authenticated user; availability and room status are validated by
// the lifecycle engine.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id is required"})
	}
	checkIn, err := parseDate(req.CheckIn)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in"})
	}
	checkOut, err := parseDate(req.CheckOut)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out"})
	}
	booking, err := h.Lifecycle.Create(c.Request().Context(), service.CreateBookingInput{
		RoomID:          req.RoomID,
		UserID:          userID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestName:       strings.TrimSpace(req.GuestName),
		GuestEmail:      strings.TrimSpace(req.GuestEmail),
		GuestPhone:      strings.TrimSpace(req.GuestPhone),
		NumberOfGuests:  req.NumberOfGuests,
		SpecialRequests: req.SpecialRequests,
	})
	if err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create booking"})
	}
	return c.JSON(http.StatusCreated, booking)
}

// ListBookings handles GET /v1/bookings. Admins may filter by any user
// or room; customers are pinned to their own bookings.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := repository.BookingFilter{}
	f.Limit, f.Offset = pagination(c)
	if v := c.QueryParam("room_id"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			f.RoomID = n
		}
	}
	if v := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); v != "" {
		f.Status = model.BookingStatus(v)
	}
	if v := c.QueryParam("from"); v != "" {
		if t, err := parseDate(v); err == nil {
			f.DateFrom = &t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := parseDate(v); err == nil {
			f.DateTo = &t
		}
	}
	if isAdmin(c) {
		if v := c.QueryParam("user_id"); v != "" {
			if n, err := strconv.ParseUint(v, 10, 64); err == nil {
				f.UserID = n
			}
		}
	} else {
		f.UserID = userID
	}
	items, err := h.Bookings.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// loadOwned fetches a booking and enforces that non-admin callers only
// touch their own bookings.
func (h *BookingHandler) loadOwned(c echo.Context) (model.Booking, error) {
	userID, err := getUserID(c)
	if err != nil {
		return model.Booking{}, echo.ErrUnauthorized
	}
	id, err := pathID(c)
	if err != nil {
		return model.Booking{}, repository.ErrInvalidArgument
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		return model.Booking{}, err
	}
	if !isAdmin(c) && b.UserID != userID {
		return model.Booking{}, repository.ErrForbidden
	}
	return b, nil
}

// GetBooking handles GET /v1/bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	b, err := h.loadOwned(c)
	if err != nil {
		if err == echo.ErrUnauthorized {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, b)
}

// UpdateBooking handles PUT /v1/bookings/:id (admin only). Dates are
// re-validated against overlapping bookings, excluding the booking
// itself; status is never touched here.
func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	b, err := h.loadOwned(c)
	if err != nil {
		if err == echo.ErrUnauthorized {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.CheckIn != "" {
		t, err := parseDate(req.CheckIn)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_in"})
		}
		b.CheckIn = t
	}
	if req.CheckOut != "" {
		t, err := parseDate(req.CheckOut)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid check_out"})
		}
		b.CheckOut = t
	}
	if v := strings.TrimSpace(req.GuestName); v != "" {
		b.GuestName = v
	}
	if v := strings.TrimSpace(req.GuestEmail); v != "" {
		b.GuestEmail = v
	}
	if v := strings.TrimSpace(req.GuestPhone); v != "" {
		b.GuestPhone = v
	}
	if req.NumberOfGuests > 0 {
		b.NumberOfGuests = req.NumberOfGuests
	}
	if req.SpecialRequests != nil {
		b.SpecialRequests = req.SpecialRequests
	}
	updated, err := h.Lifecycle.UpdateDates(c.Request().Context(), b)
	if err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// transition runs one of the lifecycle operations that return a
// TransitionResult and writes the uniform response.
func (h *BookingHandler) transition(c echo.Context, run func(uint64) (service.TransitionResult, error)) error {
	b, err := h.loadOwned(c)
	if err != nil {
		if err == echo.ErrUnauthorized {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	res, err := run(b.ID)
	if err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transition failed"})
	}
	return c.JSON(http.StatusOK, res)
}

// CheckIn handles POST /v1/bookings/:id/check-in (admin only; guests
// check in at the front desk, not through the API).
func (h *BookingHandler) CheckIn(c echo.Context) error {
	return h.transition(c, func(id uint64) (service.TransitionResult, error) {
		return h.Lifecycle.CheckIn(c.Request().Context(), id)
	})
}

// CheckOut handles POST /v1/bookings/:id/check-out (admin only).
func (h *BookingHandler) CheckOut(c echo.Context) error {
	return h.transition(c, func(id uint64) (service.TransitionResult, error) {
		return h.Lifecycle.CheckOut(c.Request().Context(), id)
	})
}

// Cancel handles POST /v1/bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.transition(c, func(id uint64) (service.TransitionResult, error) {
		return h.Lifecycle.Cancel(c.Request().Context(), id)
	})
}

// CompleteMaintenance handles POST /v1/bookings/:id/complete-maintenance.
// Admin only; returns the room to AVAILABLE once the cleaning window has
// elapsed and no upcoming booking is already due.
func (h *BookingHandler) CompleteMaintenance(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	room, err := h.Lifecycle.CompleteMaintenance(c.Request().Context(), id)
	if err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "transition failed"})
	}
	return c.JSON(http.StatusOK, room)
}

// BookingStats handles GET /v1/bookings/stats (admin only).
func (h *BookingHandler) BookingStats(c echo.Context) error {
	stats, err := h.Bookings.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, stats)
}
