package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"net/http"
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64: // JWT numeric claims decode as float64
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the authenticated caller carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "ADMIN"
}

// pathID parses the :id path parameter. Zero is never a valid identifier.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// pagination reads limit/offset query parameters with sane defaults.
func pagination(c echo.Context) (limit, offset int) {
	limit = 50
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// writeDomainError converts repository and service errors into JSON
// responses. Returns true when the error was handled.
func writeDomainError(c echo.Context, err error) (bool, error) {
	var conflict *repository.AvailabilityConflictError
	var transition *repository.InvalidTransitionError
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, repository.ErrNotFound):
		return true, c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrInvalidArgument):
		return true, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid argument"})
	case errors.Is(err, repository.ErrForbidden):
		return true, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.As(err, &conflict):
		return true, c.JSON(http.StatusConflict, echo.Map{
			"error":     "room is not available for the requested dates",
			"conflicts": conflict.Conflicts,
		})
	case errors.As(err, &transition):
		return true, c.JSON(http.StatusConflict, echo.Map{
			"error":          transition.Error(),
			"current_status": transition.Current,
		})
	}
	return false, nil
}
