package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// NotificationHandler exposes the notification queue over HTTP. Rows
// enter the queue here or through the event broadcaster; the delivery
// worker owns the status column, so this handler never changes delivery
// state beyond the read marker.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
	Users         *repository.UserRepo
}

func NewNotificationHandler(n *repository.NotificationRepo, u *repository.UserRepo) *NotificationHandler {
	if n == nil || u == nil {
		panic("nil dependency passed to NewNotificationHandler")
	}
	return &NotificationHandler{Notifications: n, Users: u}
}

type notificationReq struct {
	UserID      uint64  `json:"user_id"`
	Title       *string `json:"title"`
	Message     string  `json:"message"`
	Channel     string  `json:"channel"`
	ScheduledAt *string `json:"scheduled_at"` // RFC 3339, optional
}

// CreateNotification handles POST /v1/notifications (admin only). The
// row is queued PENDING and picked up by the worker on its next pass.
func (h *NotificationHandler) CreateNotification(c echo.Context) error {
	var req notificationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.UserID == 0 || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and message are required"})
	}
	channel := model.NotificationChannel(strings.ToUpper(strings.TrimSpace(req.Channel)))
	if channel == "" {
		channel = model.ChannelInApp
	}
	if !model.ValidChannel(channel) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown channel"})
	}
	ctx := c.Request().Context()
	ok, err := h.Users.Exists(ctx, req.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	n := model.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: strings.TrimSpace(req.Message),
		Channel: channel,
	}
	if req.ScheduledAt != nil && *req.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid scheduled_at"})
		}
		utc := t.UTC()
		n.ScheduledAt = &utc
	}
	created, err := h.Notifications.Insert(ctx, n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create notification"})
	}
	return c.JSON(http.StatusCreated, created)
}

// ListNotifications handles GET /v1/notifications. Customers see their
// own items; admins may filter by any user and by delivery status.
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := repository.NotificationFilter{}
	f.Limit, f.Offset = pagination(c)
	if v := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); v != "" {
		f.Status = model.NotificationStatus(v)
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
	items, err := h.Notifications.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// loadVisible fetches a notification and enforces that non-admin callers
// only see their own.
func (h *NotificationHandler) loadVisible(c echo.Context) (model.Notification, error) {
	userID, err := getUserID(c)
	if err != nil {
		return model.Notification{}, echo.ErrUnauthorized
	}
	id, err := pathID(c)
	if err != nil {
		return model.Notification{}, repository.ErrInvalidArgument
	}
	n, err := h.Notifications.GetByID(c.Request().Context(), id)
	if err != nil {
		return model.Notification{}, err
	}
	if !isAdmin(c) && n.UserID != userID {
		return model.Notification{}, repository.ErrForbidden
	}
	return n, nil
}

// GetNotification handles GET /v1/notifications/:id.
func (h *NotificationHandler) GetNotification(c echo.Context) error {
	n, err := h.loadVisible(c)
	if err != nil {
		if err == echo.ErrUnauthorized {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, n)
}

// MarkRead handles POST /v1/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	n, err := h.loadVisible(c)
	if err != nil {
		if err == echo.ErrUnauthorized {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	ctx := c.Request().Context()
	if err := h.Notifications.MarkRead(ctx, n.ID, time.Now().UTC()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Notifications.GetByID(ctx, n.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// UpdateNotification handles PUT /v1/notifications/:id (admin only).
// Only content fields change; the delivery state machine is off limits.
func (h *NotificationHandler) UpdateNotification(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req notificationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	n, err := h.Notifications.GetByID(ctx, id)
	if err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	title := n.Title
	if req.Title != nil {
		title = req.Title
	}
	message := n.Message
	if strings.TrimSpace(req.Message) != "" {
		message = strings.TrimSpace(req.Message)
	}
	channel := n.Channel
	if v := strings.ToUpper(strings.TrimSpace(req.Channel)); v != "" {
		channel = model.NotificationChannel(v)
		if !model.ValidChannel(channel) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown channel"})
		}
	}
	updated, err := h.Notifications.UpdateContent(ctx, id, title, message, channel)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteNotification handles DELETE /v1/notifications/:id (admin only).
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Notifications.Delete(c.Request().Context(), id); err != nil {
		if handled, resp := writeDomainError(c, err); handled {
			return resp
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
